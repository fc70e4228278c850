//go:build !gd32e103

package spi

import (
	"bytes"
	"errors"
	"testing"

	"gd32hal/drivers/gd25q"
	"gd32hal/errcode"
	"gd32hal/gpio"
	"gd32hal/nb"
	"gd32hal/pac"
	"gd32hal/rcu"
	"gd32hal/x/timex"
)

type rig struct {
	p     *pac.Peripherals
	pa    *gpio.Parts
	clock rcu.Clocks
}

func setup(t *testing.T) *rig {
	t.Helper()
	pac.Reset()
	p, err := pac.Take()
	if err != nil {
		t.Fatal(err)
	}
	c, err := rcu.Compute(rcu.Config{HXTAL: 8 * timex.MHz, Sysclk: 72 * timex.MHz})
	if err != nil {
		t.Fatal(err)
	}
	pa, err := gpio.Split(p.GPIOA)
	if err != nil {
		t.Fatal(err)
	}
	return &rig{p: p, pa: pa, clock: c}
}

func (r *rig) pins() Pins {
	return Pins{
		SCK:  r.pa.P5.IntoAlternatePushPull(),
		MISO: r.pa.P6,
		MOSI: r.pa.P7.IntoAlternatePushPull(),
	}
}

func (r *rig) spi0(t *testing.T, cfg Config) *SPI {
	t.Helper()
	s, err := New(r.p.SPI0, r.pins(), nil, cfg, r.clock)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPrescaler(t *testing.T) {
	tests := []struct {
		freq timex.Hertz
		psc  uint32
		real timex.Hertz
	}{
		{36 * timex.MHz, 0, 36 * timex.MHz},
		{100 * timex.MHz, 0, 36 * timex.MHz},
		{10 * timex.MHz, 2, 9 * timex.MHz},
		{1 * timex.MHz, 6, 562_500},
		{281_250, 7, 281_250},
	}
	for _, tt := range tests {
		r := setup(t)
		s := r.spi0(t, Config{Frequency: tt.freq})
		if got := pac.SPI0.CTL0.Get() >> pac.SPI_CTL0_PSC_Pos & pac.SPI_CTL0_PSC_Msk; got != tt.psc {
			t.Fatalf("%s: PSC=%d", tt.freq, got)
		}
		if s.Frequency() != tt.real {
			t.Fatalf("%s: realised %s", tt.freq, s.Frequency())
		}
	}
}

func TestNewRejects(t *testing.T) {
	r := setup(t)
	if _, err := New(r.p.SPI0, r.pins(), nil, Config{Frequency: 100 * timex.KHz}, r.clock); !errors.Is(err, errcode.UnreachableFrequency) {
		t.Fatalf("too slow: %v", err)
	}
	r = setup(t)
	if _, err := New(r.p.SPI0, r.pins(), nil, Config{}, r.clock); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("zero: %v", err)
	}
	r = setup(t)
	pins := Pins{SCK: r.pa.P5.IntoAlternatePushPull(), MISO: r.pa.P6, MOSI: r.pa.P8.IntoAlternatePushPull()}
	if _, err := New(r.p.SPI0, pins, nil, Config{Frequency: timex.MHz}, r.clock); !errors.Is(err, errcode.InvalidPin) {
		t.Fatalf("stray MOSI: %v", err)
	}
	if r.p.SPI0.Claimed() {
		t.Fatal("token kept")
	}
}

func TestModeBits(t *testing.T) {
	for m, want := range map[Mode]uint32{
		Mode0: 0,
		Mode1: pac.SPI_CTL0_CKPH,
		Mode2: pac.SPI_CTL0_CKPL,
		Mode3: pac.SPI_CTL0_CKPL | pac.SPI_CTL0_CKPH,
	} {
		r := setup(t)
		r.spi0(t, Config{Frequency: timex.MHz, Mode: m, LSBFirst: true})
		ctl0 := pac.SPI0.CTL0.Get()
		if ctl0&(pac.SPI_CTL0_CKPL|pac.SPI_CTL0_CKPH) != want {
			t.Fatalf("mode %d: CTL0=%#x", m, ctl0)
		}
		const need = pac.SPI_CTL0_MSTMOD | pac.SPI_CTL0_SWNSSEN | pac.SPI_CTL0_SWNSS | pac.SPI_CTL0_SPIEN | pac.SPI_CTL0_LF
		if ctl0&need != need {
			t.Fatalf("mode %d: CTL0=%#x", m, ctl0)
		}
	}
}

func TestLoopbackTx(t *testing.T) {
	r := setup(t)
	s := r.spi0(t, Config{Frequency: timex.MHz})
	w := []byte{1, 2, 3, 0xFF}
	got := make([]byte, len(w))
	if err := s.Tx(w, got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, w) {
		t.Fatalf("looped % x", got)
	}
	if err := s.Tx(nil, got); err != nil || !bytes.Equal(got, make([]byte, 4)) {
		t.Fatalf("read-only: % x %v", got, err)
	}
	if err := s.Tx(w, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Tx(w, got[:2]); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("mismatched: %v", err)
	}
	b, err := s.Transfer(0x5A)
	if b != 0x5A || err != nil {
		t.Fatalf("Transfer %#x %v", b, err)
	}
}

// jedec makes SPI0 answer a JEDEC ID read the way a GD25Q16 does while
// cs is low.
func jedec(regs *pac.SPI_Type, cs gpio.Output[gpio.PushPull]) {
	var reply []byte
	regs.DATA.Model(func(v uint32) uint32 {
		regs.STAT.Poke(regs.STAT.Peek() &^ pac.SPI_STAT_RBNE)
		return v
	}, func(_, v uint32) uint32 {
		regs.STAT.Poke(regs.STAT.Peek() | pac.SPI_STAT_TBE | pac.SPI_STAT_RBNE)
		if cs.IsSetHigh() {
			reply = nil
			return 0xFF
		}
		out := byte(0xFF)
		if len(reply) > 0 {
			out, reply = reply[0], reply[1:]
		}
		if v == 0x9F && reply == nil {
			reply = []byte{gd25q.Manufacturer, 0x40, 0x15}
		}
		return uint32(out)
	})
}

// The bus serves tinygo drivers through drivers.SPI.
func TestFlashDriver(t *testing.T) {
	r := setup(t)
	s := r.spi0(t, Config{Frequency: 18 * timex.MHz})
	cs := r.pa.P4.IntoPushPullOutput()
	jedec(pac.SPI0, cs)
	flash := gd25q.New(s, cs, gd25q.Config{})
	if !cs.IsSetHigh() {
		t.Fatal("chip select not idle high")
	}
	id, err := flash.ReadID()
	if err != nil {
		t.Fatal(err)
	}
	if id.Manufacturer != gd25q.Manufacturer || id.Size() != 2<<20 {
		t.Fatalf("id %+v", id)
	}
	if !cs.IsSetHigh() {
		t.Fatal("chip select left low")
	}
}

func TestOverrunKeepsByte(t *testing.T) {
	r := setup(t)
	s := r.spi0(t, Config{Frequency: timex.MHz})
	if _, err := s.TryRead(); !nb.IsWouldBlock(err) {
		t.Fatalf("empty: %v", err)
	}
	if err := s.TrySend(1); err != nil {
		t.Fatal(err)
	}
	if err := s.TrySend(2); err != nil {
		t.Fatal(err)
	}
	b, err := s.TryRead()
	if b != 2 || !errors.Is(err, errcode.Overrun) {
		t.Fatalf("got %d %v", b, err)
	}
	if _, err := s.TryRead(); !nb.IsWouldBlock(err) {
		t.Fatalf("fault not cleared: %v", err)
	}
}

func TestFree(t *testing.T) {
	r := setup(t)
	s := r.spi0(t, Config{Frequency: timex.MHz})
	tok, pins := s.Free()
	if tok.Claimed() || rcu.IsEnabled(tok.Gate) || pac.SPI0.CTL0.Get() != 0 {
		t.Fatal("not released")
	}
	if pins.SCK.ID() != gpio.PA(5) || pins.MOSI.ID() != gpio.PA(7) {
		t.Fatal("pins")
	}
}
