// Package spi is a full-duplex SPI master with software slave select.
package spi

import (
	"tinygo.org/x/drivers"

	"gd32hal/errcode"
	"gd32hal/gpio"
	"gd32hal/nb"
	"gd32hal/pac"
	"gd32hal/rcu"
	"gd32hal/x/timex"
)

var _ drivers.SPI = (*SPI)(nil)

// Mode is the clock polarity and phase.
type Mode uint8

const (
	Mode0 Mode = iota // idle low, sample on first edge
	Mode1             // idle low, sample on second edge
	Mode2             // idle high, sample on first edge
	Mode3             // idle high, sample on second edge
)

func (m Mode) bits() uint32 {
	var v uint32
	if m&1 != 0 {
		v |= pac.SPI_CTL0_CKPH
	}
	if m&2 != 0 {
		v |= pac.SPI_CTL0_CKPL
	}
	return v
}

type Config struct {
	// Frequency is an upper bound; the nearest slower prescaler is used.
	Frequency timex.Hertz
	Mode      Mode
	LSBFirst  bool
}

type Pins struct {
	SCK  gpio.Alternate[gpio.PushPull]
	MISO gpio.Input[gpio.Floating]
	MOSI gpio.Alternate[gpio.PushPull]
}

var routes = [2]gpio.Routes{
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_SPI0_REMAP_Pos, Width: 1},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PA(5), gpio.PA(6), gpio.PA(7)}},
			{Remap: 1, Pins: []gpio.ID{gpio.PB(3), gpio.PB(4), gpio.PB(5)}},
		},
	},
	{
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PB(13), gpio.PB(14), gpio.PB(15)}},
		},
	},
}

type SPI struct {
	tok  *pac.Peripheral[pac.SPI_Type]
	regs *pac.SPI_Type
	pins Pins
	freq timex.Hertz
}

// prescaler returns the PSC field for the fastest clock pclk/2^(n+1) not
// above freq.
func prescaler(op string, pclk, freq timex.Hertz) (uint32, error) {
	if freq == 0 {
		return 0, errcode.New(op, errcode.InvalidParams, "zero frequency")
	}
	for psc := uint32(0); psc <= pac.SPI_CTL0_PSC_Msk; psc++ {
		if pclk>>(psc+1) <= freq {
			return psc, nil
		}
	}
	return 0, errcode.New(op, errcode.UnreachableFrequency, freq.String()+" below "+(pclk/256).String())
}

// New claims tok, routes the pins and enables the peripheral as master.
func New(tok *pac.Peripheral[pac.SPI_Type], pins Pins, afio *gpio.AFIO, cfg Config, clocks rcu.Clocks) (*SPI, error) {
	const op = "spi.New"
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	pclk := clocks.Bus(tok.Gate.Bus)
	psc, err := prescaler(op, pclk, cfg.Frequency)
	if err == nil {
		err = routes[tok.Index].Connect(op, afio, pins.SCK.ID(), pins.MISO.ID(), pins.MOSI.ID())
	}
	if err != nil {
		tok.Release()
		return nil, err
	}
	rcu.Enable(tok.Gate)
	rcu.Reset(tok.Gate)
	ctl0 := pac.SPI_CTL0_MSTMOD | pac.SPI_CTL0_SWNSSEN | pac.SPI_CTL0_SWNSS |
		psc<<pac.SPI_CTL0_PSC_Pos | cfg.Mode.bits()
	if cfg.LSBFirst {
		ctl0 |= pac.SPI_CTL0_LF
	}
	tok.Regs.CTL0.Set(ctl0)
	tok.Regs.CTL0.SetBits(pac.SPI_CTL0_SPIEN)
	return &SPI{
		tok:  tok,
		regs: tok.Regs,
		pins: Pins{SCK: pins.SCK.Move(), MISO: pins.MISO.Move(), MOSI: pins.MOSI.Move()},
		freq: pclk >> (psc + 1),
	}, nil
}

// Frequency is the realised SCK rate.
func (s *SPI) Frequency() timex.Hertz { return s.freq }

// TrySend starts shifting out b, or reports ErrWouldBlock while the
// transmit buffer is full.
func (s *SPI) TrySend(b byte) error {
	if !s.regs.STAT.HasBits(pac.SPI_STAT_TBE) {
		return nb.ErrWouldBlock
	}
	s.regs.DATA.Set(uint32(b))
	return nil
}

// TryRead returns the byte shifted in. An overrun is reported with the
// byte that is in the buffer; reading it clears the fault.
func (s *SPI) TryRead() (byte, error) {
	stat := s.regs.STAT.Get()
	switch {
	case stat&pac.SPI_STAT_CONFERR != 0:
		// Cleared by a CTL0 write after the status read.
		s.regs.CTL0.Set(s.regs.CTL0.Get())
		return 0, errcode.New("spi.Read", errcode.ModeFault, "")
	case stat&pac.SPI_STAT_RXORERR != 0:
		b := byte(s.regs.DATA.Get())
		_ = s.regs.STAT.Get()
		return b, errcode.New("spi.Read", errcode.Overrun, "")
	case stat&pac.SPI_STAT_RBNE != 0:
		return byte(s.regs.DATA.Get()), nil
	}
	return 0, nb.ErrWouldBlock
}

// Transfer sends b and returns the byte clocked in with it.
func (s *SPI) Transfer(b byte) (byte, error) {
	if err := nb.Block(func() error { return s.TrySend(b) }); err != nil {
		return 0, err
	}
	return nb.BlockValue(s.TryRead)
}

// Tx exchanges w for r. A nil w sends zeros; a nil r discards what is
// received. When both are given they must be the same length.
func (s *SPI) Tx(w, r []byte) error {
	n := len(w)
	switch {
	case w == nil:
		n = len(r)
	case r != nil && len(r) != len(w):
		return errcode.New("spi.Tx", errcode.InvalidParams, "buffer lengths differ")
	}
	for i := 0; i < n; i++ {
		var out byte
		if w != nil {
			out = w[i]
		}
		in, err := s.Transfer(out)
		if err != nil {
			return err
		}
		if r != nil {
			r[i] = in
		}
	}
	return nil
}

// Free waits for the last frame, disables the peripheral and its clock
// and returns the token and pins.
func (s *SPI) Free() (*pac.Peripheral[pac.SPI_Type], Pins) {
	_ = nb.Retry(0x10000, func() error {
		if s.regs.STAT.HasBits(pac.SPI_STAT_TRANS) {
			return nb.ErrWouldBlock
		}
		return nil
	})
	s.regs.CTL0.Set(0)
	rcu.Disable(s.tok.Gate)
	s.tok.Release()
	return s.tok, Pins{SCK: s.pins.SCK.Move(), MISO: s.pins.MISO.Move(), MOSI: s.pins.MOSI.Move()}
}
