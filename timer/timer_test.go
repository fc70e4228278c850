//go:build !gd32e103

package timer

import (
	"errors"
	"testing"

	"gd32hal/errcode"
	"gd32hal/gpio"
	"gd32hal/nb"
	"gd32hal/pac"
	"gd32hal/rcu"
	"gd32hal/x/mathx"
	"gd32hal/x/timex"
)

const MHz = timex.MHz

func newTimer(t *testing.T, pick func(*pac.Peripherals) *pac.Peripheral[pac.TIMER_Type]) (*Timer, *pac.Peripherals) {
	t.Helper()
	pac.Reset()
	p, err := pac.Take()
	if err != nil {
		t.Fatal(err)
	}
	c, err := rcu.Compute(rcu.Config{HXTAL: 8 * MHz, Sysclk: 72 * MHz})
	if err != nil {
		t.Fatal(err)
	}
	tm, err := New(pick(p), c)
	if err != nil {
		t.Fatal(err)
	}
	return tm, p
}

func timer1(p *pac.Peripherals) *pac.Peripheral[pac.TIMER_Type] { return p.TIMER1 }

func TestPrescalerReload(t *testing.T) {
	tests := []struct {
		clock, freq timex.Hertz
		psc, car    uint16
	}{
		{72 * MHz, 1000, 1, 35999},
		{72 * MHz, 1, 1098, 65513},
		{72 * MHz, 36 * MHz, 0, 1},
		{8 * MHz, 1000, 0, 7999},
	}
	for _, tt := range tests {
		psc, car, err := PrescalerReload(tt.clock, tt.freq)
		if err != nil {
			t.Fatalf("%s/%s: %v", tt.clock, tt.freq, err)
		}
		if psc != tt.psc || car != tt.car {
			t.Fatalf("%s/%s: psc %d car %d", tt.clock, tt.freq, psc, car)
		}
	}
}

func TestPrescalerReloadSweep(t *testing.T) {
	clock := 72 * MHz
	for freq := timex.Hertz(2); freq < clock/2; freq = freq*3/2 + 1 {
		psc, car, err := PrescalerReload(clock, freq)
		if err != nil {
			t.Fatalf("%s: %v", freq, err)
		}
		got := Frequency(clock, psc, car)
		// One prescaled tick is the resolution.
		f := uint64(freq)
		step := 2*f*f*(uint64(psc)+1)/uint64(clock) + 1
		if mathx.AbsDiff(uint64(got), f) > step {
			t.Fatalf("%s: got %s (psc %d car %d)", freq, got, psc, car)
		}
	}
}

func TestPrescalerReloadRejects(t *testing.T) {
	for _, tt := range []struct {
		freq timex.Hertz
		code errcode.Code
	}{
		{0, errcode.InvalidParams},
		{72 * MHz, errcode.UnreachableFrequency},
		{50 * MHz, errcode.UnreachableFrequency},
	} {
		if _, _, err := PrescalerReload(72*MHz, tt.freq); !errors.Is(err, tt.code) {
			t.Fatalf("%s: %v", tt.freq, err)
		}
	}
	if _, _, err := PrescalerReload(timex.Hertz(0xFFFF_FFFF), 0); !errors.Is(err, errcode.InvalidParams) {
		t.Fatal(err)
	}
}

func TestTimerClockDoubledBehindDivider(t *testing.T) {
	tm, _ := newTimer(t, timer1)
	if tm.Clock() != 72*MHz {
		t.Fatalf("TIMER1 clock %s", tm.Clock())
	}
}

func TestCountDown(t *testing.T) {
	tm, _ := newTimer(t, timer1)
	cd, err := tm.StartCountDown(1000)
	if err != nil {
		t.Fatal(err)
	}
	regs := pac.TIMER1
	if regs.PSC.Get() != 1 || regs.CAR.Get() != 35999 {
		t.Fatalf("PSC %d CAR %d", regs.PSC.Get(), regs.CAR.Get())
	}
	if !regs.CTL0.HasBits(pac.TIMER_CTL0_CEN) || regs.CTL0.HasBits(pac.TIMER_CTL0_UPS) {
		t.Fatalf("CTL0=%#x", regs.CTL0.Get())
	}
	// Loading the prescaler must not look like an elapsed period.
	if err := cd.Wait(); !nb.IsWouldBlock(err) {
		t.Fatalf("wait right after start: %v", err)
	}

	regs.INTF.Poke(pac.TIMER_INTF_UPIF)
	if !cd.IsUpdatePending() {
		t.Fatal("update not pending")
	}
	if err := cd.Wait(); err != nil {
		t.Fatal(err)
	}
	if cd.IsUpdatePending() {
		t.Fatal("flag not cleared")
	}

	cd.Listen(EventUpdate)
	if !regs.DMAINTEN.HasBits(pac.TIMER_DMAINTEN_UPIE) {
		t.Fatal("UPIE")
	}
	cd.Unlisten(EventUpdate)
	if regs.DMAINTEN.HasBits(pac.TIMER_DMAINTEN_UPIE) {
		t.Fatal("UPIE still set")
	}

	if err := cd.Cancel(); err != nil {
		t.Fatal(err)
	}
	if err := cd.Cancel(); !errors.Is(err, errcode.Canceled) {
		t.Fatalf("second cancel: %v", err)
	}
}

func TestMicrosSince(t *testing.T) {
	tm, _ := newTimer(t, timer1)
	cd, err := tm.StartCountDown(10)
	if err != nil {
		t.Fatal(err)
	}
	pac.TIMER1.PSC.Poke(71) // 1 MHz tick
	pac.TIMER1.CNT.Poke(500)
	if got := cd.MicrosSince(); got != 500 {
		t.Fatalf("MicrosSince=%d", got)
	}
	cd.Reset()
	if pac.TIMER1.CNT.Get() != 0 || cd.IsUpdatePending() {
		t.Fatal("reset raised an update or kept the count")
	}
}

func TestStopAndFree(t *testing.T) {
	tm, p := newTimer(t, timer1)
	cd, _ := tm.StartCountDown(1000)
	tm = cd.Stop()
	if pac.TIMER1.CTL0.HasBits(pac.TIMER_CTL0_CEN) {
		t.Fatal("still counting")
	}
	tok := tm.Free()
	if tok != p.TIMER1 || tok.Claimed() || rcu.IsEnabled(tok.Gate) {
		t.Fatal("not released")
	}
}

func TestPWM(t *testing.T) {
	tm, p := newTimer(t, func(p *pac.Peripherals) *pac.Peripheral[pac.TIMER_Type] { return p.TIMER0 })
	pa, err := gpio.Split(p.GPIOA)
	if err != nil {
		t.Fatal(err)
	}
	c0 := pa.P8.IntoAlternatePushPull()
	c2 := pa.P10.IntoAlternatePushPull()
	pwm, err := tm.PWM(PWMPins{&c0, nil, &c2, nil}, nil, 10*timex.KHz)
	if err != nil {
		t.Fatal(err)
	}
	regs := pac.TIMER0
	if !regs.CCHP.HasBits(pac.TIMER_CCHP_POEN) {
		t.Fatal("advanced timer outputs not enabled")
	}
	if got := regs.CHCTL0.Get() & 0xFF; got != 0x68 {
		t.Fatalf("CHCTL0 ch0=%#x", got)
	}
	if got := regs.CHCTL1.Get() & 0xFF; got != 0x68 {
		t.Fatalf("CHCTL1 ch2=%#x", got)
	}
	if regs.CHCTL0.Get()>>8 != 0 {
		t.Fatal("unused channel configured")
	}

	if _, err := pwm.Channel(C1); !errors.Is(err, errcode.IncorrectMode) {
		t.Fatalf("C1 without pin: %v", err)
	}
	ch, err := pwm.Channel(C2)
	if err != nil {
		t.Fatal(err)
	}
	full := ch.MaxDuty()
	if full != 7200 {
		t.Fatalf("MaxDuty=%d", full)
	}
	ch.SetDuty(full / 4)
	if regs.CHCV[2].Get() != 1800 || ch.Duty() != 1800 {
		t.Fatalf("CH2CV=%d", regs.CHCV[2].Get())
	}
	ch.SetDuty(full + 100)
	if ch.Duty() != full {
		t.Fatal("duty not clamped")
	}
	ch.Enable()
	ch.SetPolarity(ActiveLow)
	if got := regs.CHCTL2.Get(); got != (pac.TIMER_CHCTL2_CHEN|pac.TIMER_CHCTL2_CHP)<<8 {
		t.Fatalf("CHCTL2=%#x", got)
	}
	ch.Disable()
	ch.SetPolarity(ActiveHigh)
	if regs.CHCTL2.Get() != 0 {
		t.Fatal("CHCTL2 not cleared")
	}

	if err := pwm.SetFrequency(20 * timex.KHz); err != nil {
		t.Fatal(err)
	}
	if pwm.MaxDuty() != 3600 {
		t.Fatalf("MaxDuty after SetFrequency=%d", pwm.MaxDuty())
	}

	_, pins := pwm.Stop()
	if pins[0] == nil || pins[1] != nil || pins[2].ID() != gpio.PA(10) {
		t.Fatal("pins not returned")
	}
	if regs.CTL0.Get() != 0 || regs.CHCTL0.Get() != 0 {
		t.Fatal("not stopped")
	}
}

func TestPWMRejectsForeignPins(t *testing.T) {
	tm, p := newTimer(t, timer1)
	pb, _ := gpio.Split(p.GPIOB)
	c0 := pb.P6.IntoAlternatePushPull()
	if _, err := tm.PWM(PWMPins{&c0}, nil, 1000); !errors.Is(err, errcode.InvalidPin) {
		t.Fatalf("TIMER3 pin on TIMER1: %v", err)
	}
	if _, err := tm.PWM(PWMPins{}, nil, 1000); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("no pins: %v", err)
	}
}

func TestPWMFade(t *testing.T) {
	tm, p := newTimer(t, func(p *pac.Peripherals) *pac.Peripheral[pac.TIMER_Type] { return p.TIMER0 })
	pa, _ := gpio.Split(p.GPIOA)
	c0 := pa.P8.IntoAlternatePushPull()
	pwm, err := tm.PWM(PWMPins{&c0}, nil, 10*timex.KHz)
	if err != nil {
		t.Fatal(err)
	}
	ch, err := pwm.Channel(C0)
	if err != nil {
		t.Fatal(err)
	}

	var seen []uint32
	record := func() error { seen = append(seen, ch.Duty()); return nil }
	if err := ch.Fade(100, 4, record); err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 25, 50, 75}
	if len(seen) != len(want) || ch.Duty() != 100 {
		t.Fatalf("seen %v, final %d", seen, ch.Duty())
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen %v want %v", seen, want)
		}
	}

	seen = seen[:0]
	if err := ch.Fade(0, 3, record); err != nil {
		t.Fatal(err)
	}
	if seen[1] != 67 || seen[2] != 34 || ch.Duty() != 0 {
		t.Fatalf("fade down seen %v, final %d", seen, ch.Duty())
	}

	calls := 0
	stop := func() error {
		if calls++; calls == 3 {
			return errcode.Canceled
		}
		return nil
	}
	if err := ch.Fade(400, 4, stop); !errors.Is(err, errcode.Canceled) {
		t.Fatalf("got %v", err)
	}
	if ch.Duty() != 200 {
		t.Fatalf("stopped at %d", ch.Duty())
	}

	if err := ch.Fade(1<<20, 0, nil); err != nil || ch.Duty() != pwm.MaxDuty() {
		t.Fatalf("snap: %v duty %d", err, ch.Duty())
	}
}
