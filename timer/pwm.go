package timer

import (
	"gd32hal/errcode"
	"gd32hal/gpio"
	"gd32hal/pac"
	"gd32hal/x/timex"
)

// Channel is a capture/compare channel.
type Channel uint8

const (
	C0 Channel = iota
	C1
	C2
	C3
)

type Polarity uint8

const (
	ActiveHigh Polarity = iota
	ActiveLow
)

// PWMPins are the output pins per channel; nil leaves a channel unused.
type PWMPins [4]*gpio.Alternate[gpio.PushPull]

var pwmRoutes = [4]gpio.Routes{
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_TIMER0_REMAP_Pos, Width: 2},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PA(8), gpio.PA(9), gpio.PA(10), gpio.PA(11)}},
			{Remap: 3, Pins: []gpio.ID{gpio.PE(9), gpio.PE(11), gpio.PE(13), gpio.PE(14)}},
		},
	},
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_TIMER1_REMAP_Pos, Width: 2},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PA(0), gpio.PA(1), gpio.PA(2), gpio.PA(3)}},
			{Remap: 1, Pins: []gpio.ID{gpio.PA(15), gpio.PB(3), gpio.PA(2), gpio.PA(3)}},
			{Remap: 2, Pins: []gpio.ID{gpio.PA(0), gpio.PA(1), gpio.PB(10), gpio.PB(11)}},
			{Remap: 3, Pins: []gpio.ID{gpio.PA(15), gpio.PB(3), gpio.PB(10), gpio.PB(11)}},
		},
	},
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_TIMER2_REMAP_Pos, Width: 2},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PA(6), gpio.PA(7), gpio.PB(0), gpio.PB(1)}},
			{Remap: 2, Pins: []gpio.ID{gpio.PB(4), gpio.PB(5), gpio.PB(0), gpio.PB(1)}},
			{Remap: 3, Pins: []gpio.ID{gpio.PC(6), gpio.PC(7), gpio.PC(8), gpio.PC(9)}},
		},
	},
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_TIMER3_REMAP_Pos, Width: 1},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PB(6), gpio.PB(7), gpio.PB(8), gpio.PB(9)}},
			{Remap: 1, Pins: []gpio.ID{gpio.PD(12), gpio.PD(13), gpio.PD(14), gpio.PD(15)}},
		},
	},
}

// PWM is a timer generating edge-aligned PWM on up to four channels.
type PWM struct {
	t    *Timer
	pins PWMPins
}

// PWMChannel is one output of a PWM.
type PWMChannel struct {
	p  *PWM
	ch Channel
}

// chctl returns the mode register and bit offset for channel ch.
func chctl(regs *pac.TIMER_Type, ch Channel) (*pac.Register32, uint8) {
	off := uint8(ch%2) * 8
	if ch < C2 {
		return &regs.CHCTL0, off
	}
	return &regs.CHCTL1, off
}

// PWM routes the pins and starts the counter at freq with every used
// channel in PWM mode 0, outputs disabled and duty zero.
func (t *Timer) PWM(pins PWMPins, afio *gpio.AFIO, freq timex.Hertz) (*PWM, error) {
	const op = "timer.PWM"
	ids := make([]gpio.ID, len(pins))
	used := false
	for i, p := range pins {
		ids[i] = gpio.NoPin
		if p != nil {
			ids[i] = p.ID()
			used = true
		}
	}
	if !used {
		return nil, errcode.New(op, errcode.InvalidParams, "no channel pins")
	}
	if err := pwmRoutes[t.tok.Index].Connect(op, afio, ids...); err != nil {
		return nil, err
	}
	regs := t.regs
	regs.CTL0.Set(0)
	if err := t.configure(freq); err != nil {
		return nil, err
	}
	pwm := &PWM{t: t}
	for i, p := range pins {
		if p == nil {
			continue
		}
		moved := p.Move()
		pwm.pins[i] = &moved
		reg, off := chctl(regs, Channel(i))
		mode := uint32(pac.TIMER_OC_MODE_PWM0<<pac.TIMER_CHCTL_CHCOMCTL_Pos | pac.TIMER_CHCTL_CHCOMSEN)
		reg.Set(reg.Get()&^(0xFF<<off) | mode<<off)
		regs.CHCV[i].Set(0)
	}
	if t.tok.Index == 0 {
		// Outputs of the advanced timer stay off until POEN is set.
		regs.CCHP.SetBits(pac.TIMER_CCHP_POEN)
	}
	t.reload()
	regs.CTL0.Set(pac.TIMER_CTL0_ARSE | pac.TIMER_CTL0_CEN)
	return pwm, nil
}

// Channel returns the handle for ch. It fails with IncorrectMode when no
// pin was given for ch.
func (p *PWM) Channel(ch Channel) (*PWMChannel, error) {
	if ch > C3 || p.pins[ch] == nil {
		return nil, errcode.New("timer.Channel", errcode.IncorrectMode, "channel has no pin")
	}
	return &PWMChannel{p: p, ch: ch}, nil
}

// SetFrequency changes the PWM period. Compare values are kept, so duty
// ratios change unless the caller rescales them against MaxDuty.
func (p *PWM) SetFrequency(freq timex.Hertz) error {
	if err := p.t.configure(freq); err != nil {
		return err
	}
	p.t.reload()
	return nil
}

// MaxDuty is the compare value for a 100% duty cycle.
func (p *PWM) MaxDuty() uint32 { return p.t.regs.CAR.Get() + 1 }

func (p *PWM) Listen(e Event)        { p.t.listen(e, true) }
func (p *PWM) Unlisten(e Event)      { p.t.listen(e, false) }
func (p *PWM) IsUpdatePending() bool { return p.t.updatePending() }
func (p *PWM) ClearUpdateFlag()      { p.t.clearUpdate() }

// Stop resets the channels and hands back the stopped timer and the pins.
func (p *PWM) Stop() (*Timer, PWMPins) {
	regs := p.t.regs
	regs.CTL0.Set(0)
	regs.CHCTL2.Set(0)
	regs.CHCTL0.Set(0)
	regs.CHCTL1.Set(0)
	for i := range regs.CHCV {
		regs.CHCV[i].Set(0)
	}
	if p.t.tok.Index == 0 {
		regs.CCHP.Set(0)
	}
	var pins PWMPins
	for i, pin := range p.pins {
		if pin != nil {
			moved := pin.Move()
			pins[i] = &moved
		}
	}
	t := p.t
	p.t = nil
	return t, pins
}

func (c *PWMChannel) Enable() {
	c.p.t.regs.CHCTL2.SetBits(pac.TIMER_CHCTL2_CHEN << (4 * c.ch))
}

func (c *PWMChannel) Disable() {
	c.p.t.regs.CHCTL2.ClearBits(pac.TIMER_CHCTL2_CHEN << (4 * c.ch))
}

// SetDuty writes the compare value, clamped to MaxDuty. The register is
// preloaded, so the new duty starts with the next period.
func (c *PWMChannel) SetDuty(d uint32) {
	c.p.t.regs.CHCV[c.ch].Set(min(d, c.p.MaxDuty()))
}

// Duty returns the last compare value written.
func (c *PWMChannel) Duty() uint32 { return c.p.t.regs.CHCV[c.ch].Get() }

func (c *PWMChannel) MaxDuty() uint32 { return c.p.MaxDuty() }

func (c *PWMChannel) SetPolarity(pol Polarity) {
	bit := uint32(pac.TIMER_CHCTL2_CHP) << (4 * c.ch)
	if pol == ActiveLow {
		c.p.t.regs.CHCTL2.SetBits(bit)
	} else {
		c.p.t.regs.CHCTL2.ClearBits(bit)
	}
}
