package timer

// Fade moves the channel's duty to `to` in steps even increments, calling
// wait before each one. A CountDown makes a natural pacer:
//
//	ch.Fade(ch.MaxDuty(), 50, func() error { return nb.Block(cd.Wait) })
//
// steps zero sets `to` at once. An error from wait stops the fade where it
// is and is returned. `to` is clamped to MaxDuty.
func (c *PWMChannel) Fade(to uint32, steps uint32, wait func() error) error {
	to = min(to, c.MaxDuty())
	if steps == 0 {
		c.SetDuty(to)
		return nil
	}
	cur := int64(c.Duty())
	d := int64(to) - cur
	st := int64(steps)
	var acc int64
	for i := uint32(1); i < steps; i++ {
		if err := wait(); err != nil {
			return err
		}
		acc += d
		if inc := acc / st; inc != 0 {
			acc -= inc * st
			cur += inc
			c.SetDuty(uint32(cur))
		}
	}
	if err := wait(); err != nil {
		return err
	}
	c.SetDuty(to)
	return nil
}
