// Package i2c is a polling I2C master. Every wait is bounded by a retry
// count, so a stuck bus surfaces as errcode.Timeout rather than a hang.
package i2c

import (
	"tinygo.org/x/drivers"

	"gd32hal/errcode"
	"gd32hal/gpio"
	"gd32hal/pac"
	"gd32hal/rcu"
	"gd32hal/x/mathx"
	"gd32hal/x/timex"
)

var _ drivers.I2C = (*I2C)(nil)

type DutyCycle uint8

const (
	// Duty2to1 is a fast-mode SCL low/high ratio of 2.
	Duty2to1 DutyCycle = iota
	// Duty16to9 is a fast-mode SCL low/high ratio of 16/9.
	Duty16to9
)

// Mode is the bus speed.
type Mode struct {
	Frequency timex.Hertz
	Fast      bool
	Duty      DutyCycle
}

// Standard is a standard-mode bus at f, up to 100 kHz.
func Standard(f timex.Hertz) Mode { return Mode{Frequency: f} }

// Fast is a fast-mode bus at f, up to 400 kHz.
func Fast(f timex.Hertz, duty DutyCycle) Mode {
	return Mode{Frequency: f, Fast: true, Duty: duty}
}

// Timeouts bound the busy waits in polls of the status registers. Zero
// fields take DefaultTimeouts.
type Timeouts struct {
	StartRetries int
	Start        int
	Addr         int
	Data         int
}

var DefaultTimeouts = Timeouts{StartRetries: 3, Start: 10_000, Addr: 10_000, Data: 10_000}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts
	if t.StartRetries > 0 {
		d.StartRetries = t.StartRetries
	}
	if t.Start > 0 {
		d.Start = t.Start
	}
	if t.Addr > 0 {
		d.Addr = t.Addr
	}
	if t.Data > 0 {
		d.Data = t.Data
	}
	return d
}

var routes = [2]gpio.Routes{
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_I2C0_REMAP_Pos, Width: 1},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PB(6), gpio.PB(7)}},
			{Remap: 1, Pins: []gpio.ID{gpio.PB(8), gpio.PB(9)}},
		},
	},
	{
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PB(10), gpio.PB(11)}},
		},
	},
}

// I2C is a master on one bus.
type I2C struct {
	tok      *pac.Peripheral[pac.I2C_Type]
	regs     *pac.I2C_Type
	scl, sda gpio.Alternate[gpio.OpenDrain]
	mode     Mode
	pclk     timex.Hertz
	to       Timeouts
}

// New claims tok, routes scl and sda, and enables the peripheral as a
// master at mode's speed.
func New(tok *pac.Peripheral[pac.I2C_Type], scl, sda gpio.Alternate[gpio.OpenDrain], afio *gpio.AFIO,
	mode Mode, clocks rcu.Clocks, to Timeouts) (*I2C, error) {
	const op = "i2c.New"
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	pclk := clocks.Bus(tok.Gate.Bus)
	if err := check(op, mode, pclk); err != nil {
		tok.Release()
		return nil, err
	}
	if err := routes[tok.Index].Connect(op, afio, scl.ID(), sda.ID()); err != nil {
		tok.Release()
		return nil, err
	}
	rcu.Enable(tok.Gate)
	rcu.Reset(tok.Gate)
	i := &I2C{
		tok:  tok,
		regs: tok.Regs,
		scl:  scl.Move(),
		sda:  sda.Move(),
		mode: mode,
		pclk: pclk,
		to:   to.withDefaults(),
	}
	i.init()
	return i, nil
}

func check(op string, mode Mode, pclk timex.Hertz) error {
	limit := 100 * timex.KHz
	if mode.Fast {
		limit = 400 * timex.KHz
	}
	if mode.Frequency == 0 || mode.Frequency > limit {
		return errcode.New(op, errcode.InvalidParams, "bus speed "+mode.Frequency.String()+" out of range")
	}
	if mhz := pclk.MHzPart(); mhz < 2 || mhz > 60 {
		return errcode.New(op, errcode.InvalidParams, "peripheral clock "+pclk.String()+" out of range")
	}
	return nil
}

// timing returns the CKCFG and RT register values. Divisors round up so
// SCL never runs above the requested rate.
func timing(mode Mode, pclk timex.Hertz) (ckcfg, rt uint32) {
	const clkcMax = 0xFFF
	mhz := pclk.MHzPart()
	f := uint32(mode.Frequency)
	p := uint32(pclk)
	if !mode.Fast {
		return mathx.Clamp(mathx.CeilDiv(p, 2*f), 4, clkcMax), mhz + 1
	}
	ckcfg = pac.I2C_CKCFG_FAST
	if mode.Duty == Duty16to9 {
		ckcfg |= pac.I2C_CKCFG_DTCY | mathx.Clamp(mathx.CeilDiv(p, 25*f), 1, clkcMax)
	} else {
		ckcfg |= mathx.Clamp(mathx.CeilDiv(p, 3*f), 1, clkcMax)
	}
	return ckcfg, mhz*300/1000 + 1
}

func (i *I2C) init() {
	ckcfg, rt := timing(i.mode, i.pclk)
	i.regs.CTL1.ReplaceBits(i.pclk.MHzPart(), pac.I2C_CTL1_I2CCLK_Msk, pac.I2C_CTL1_I2CCLK_Pos)
	i.regs.CTL0.Set(0)
	i.regs.RT.Set(rt)
	i.regs.CKCFG.Set(ckcfg)
	i.regs.CTL0.SetBits(pac.I2C_CTL0_I2CEN)
}

// reset recovers a wedged peripheral with a software reset.
func (i *I2C) reset() {
	i.regs.CTL0.Set(pac.I2C_CTL0_I2CEN | pac.I2C_CTL0_SRESET)
	i.regs.CTL0.Set(0)
	i.init()
}

// Free disables the peripheral and its clock and returns the token and pins.
func (i *I2C) Free() (*pac.Peripheral[pac.I2C_Type], gpio.Alternate[gpio.OpenDrain], gpio.Alternate[gpio.OpenDrain]) {
	i.regs.CTL0.Set(0)
	rcu.Disable(i.tok.Gate)
	i.tok.Release()
	return i.tok, i.scl.Move(), i.sda.Move()
}
