// Package timer drives TIMER0-3 as periodic count-down timers and PWM
// generators.
package timer

import (
	"gd32hal/errcode"
	"gd32hal/pac"
	"gd32hal/rcu"
	"gd32hal/x/mathx"
	"gd32hal/x/timex"
)

// Timer is a clocked, stopped timer.
type Timer struct {
	tok   *pac.Peripheral[pac.TIMER_Type]
	regs  *pac.TIMER_Type
	clock timex.Hertz
}

// New claims tok, enables and resets the timer and records its input clock.
func New(tok *pac.Peripheral[pac.TIMER_Type], clocks rcu.Clocks) (*Timer, error) {
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	rcu.Enable(tok.Gate)
	rcu.Reset(tok.Gate)
	return &Timer{tok: tok, regs: tok.Regs, clock: clocks.Timer(tok.Gate.Bus)}, nil
}

// Clock is the counter input frequency before the prescaler.
func (t *Timer) Clock() timex.Hertz { return t.clock }

// Free stops the timer, gates its clock and returns the token.
func (t *Timer) Free() *pac.Peripheral[pac.TIMER_Type] {
	t.regs.CTL0.Set(0)
	t.regs.DMAINTEN.Set(0)
	rcu.Disable(t.tok.Gate)
	t.tok.Release()
	return t.tok
}

// PrescalerReload splits clock/freq into PSC and CAR values. The tick count
// is rounded to the nearest integer and spread over the smallest prescaler
// that keeps the reload within 16 bits, so the realised frequency is the
// closest the hardware can produce. A period shorter than two ticks, or
// longer than the 32-bit count, is unreachable.
func PrescalerReload(clock, freq timex.Hertz) (psc, car uint16, err error) {
	const op = "timer.PrescalerReload"
	if freq == 0 {
		return 0, 0, errcode.New(op, errcode.InvalidParams, "zero frequency")
	}
	ticks := mathx.RoundDiv(uint64(clock), uint64(freq))
	if ticks < 2 {
		return 0, 0, errcode.New(op, errcode.UnreachableFrequency, freq.String()+" above "+clock.String()+"/2")
	}
	p := (ticks - 1) >> 16
	if p > 0xFFFF {
		return 0, 0, errcode.New(op, errcode.UnreachableFrequency, freq.String()+" too slow for "+clock.String())
	}
	return uint16(p), uint16(mathx.RoundDiv(ticks, p+1) - 1), nil
}

// Frequency returns the update rate produced by psc and car.
func Frequency(clock timex.Hertz, psc, car uint16) timex.Hertz {
	return timex.Hertz(mathx.RoundDiv(uint64(clock), (uint64(psc)+1)*(uint64(car)+1)))
}

func (t *Timer) configure(freq timex.Hertz) error {
	psc, car, err := PrescalerReload(t.clock, freq)
	if err != nil {
		return err
	}
	t.regs.PSC.Set(uint32(psc))
	t.regs.CAR.Set(uint32(car))
	return nil
}

// reload forces an update event so PSC and CAR take effect, without raising
// the update flag.
func (t *Timer) reload() {
	t.regs.CTL0.SetBits(pac.TIMER_CTL0_UPS)
	t.regs.SWEVG.Set(pac.TIMER_SWEVG_UPG)
	t.regs.CTL0.ClearBits(pac.TIMER_CTL0_UPS)
}

// Event is a timer interrupt source.
type Event uint8

const (
	EventUpdate Event = iota
)

func (t *Timer) listen(e Event, on bool) {
	if e != EventUpdate {
		return
	}
	if on {
		t.regs.DMAINTEN.SetBits(pac.TIMER_DMAINTEN_UPIE)
	} else {
		t.regs.DMAINTEN.ClearBits(pac.TIMER_DMAINTEN_UPIE)
	}
}

func (t *Timer) updatePending() bool { return t.regs.INTF.HasBits(pac.TIMER_INTF_UPIF) }

// INTF flags are cleared by writing zero; ones leave the others alone.
func (t *Timer) clearUpdate() { t.regs.INTF.Set(^uint32(pac.TIMER_INTF_UPIF)) }
