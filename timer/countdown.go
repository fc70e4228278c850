package timer

import (
	"gd32hal/errcode"
	"gd32hal/nb"
	"gd32hal/pac"
	"gd32hal/x/timex"
)

// CountDown is a periodic timer that raises an update event at a fixed
// frequency.
type CountDown struct {
	t *Timer
}

// StartCountDown turns t into a periodic count-down at freq.
func (t *Timer) StartCountDown(freq timex.Hertz) (*CountDown, error) {
	c := &CountDown{t: t}
	if err := c.Start(freq); err != nil {
		return nil, err
	}
	return c, nil
}

// Start reprograms the period and restarts the count from zero.
func (c *CountDown) Start(freq timex.Hertz) error {
	regs := c.t.regs
	regs.CTL0.ClearBits(pac.TIMER_CTL0_CEN)
	if err := c.t.configure(freq); err != nil {
		return err
	}
	c.t.reload()
	regs.CTL0.SetBits(pac.TIMER_CTL0_CEN)
	return nil
}

// Wait reports ErrWouldBlock until the period has elapsed, then clears the
// update flag.
func (c *CountDown) Wait() error {
	if !c.t.updatePending() {
		return nb.ErrWouldBlock
	}
	c.t.clearUpdate()
	return nil
}

// Cancel pauses the counter. It fails with Canceled if it was not running.
func (c *CountDown) Cancel() error {
	regs := c.t.regs
	if !regs.CTL0.HasBits(pac.TIMER_CTL0_CEN) {
		return errcode.New("timer.Cancel", errcode.Canceled, "counter not running")
	}
	regs.CTL0.ClearBits(pac.TIMER_CTL0_CEN)
	return nil
}

func (c *CountDown) Listen(e Event)        { c.t.listen(e, true) }
func (c *CountDown) Unlisten(e Event)      { c.t.listen(e, false) }
func (c *CountDown) IsUpdatePending() bool { return c.t.updatePending() }
func (c *CountDown) ClearUpdateFlag()      { c.t.clearUpdate() }

// Reset restarts the count without raising an update event.
func (c *CountDown) Reset() { c.t.reload() }

// MicrosSince returns the time since the last update event. An update
// missed by the caller is not accounted for.
func (c *CountDown) MicrosSince() uint32 {
	regs := c.t.regs
	tick := uint64(c.t.clock) / (uint64(regs.PSC.Get()) + 1)
	if tick == 0 {
		return 0
	}
	return uint32(1_000_000 * uint64(regs.CNT.Get()) / tick)
}

// Stop pauses the counter and gives back the timer.
func (c *CountDown) Stop() *Timer {
	c.t.regs.CTL0.ClearBits(pac.TIMER_CTL0_CEN)
	t := c.t
	c.t = nil
	return t
}
