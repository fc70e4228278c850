// Package can owns the CAN controllers' clock and pin routing. Frame
// handling is left to the caller.
package can

import (
	"gd32hal/errcode"
	"gd32hal/gpio"
	"gd32hal/nb"
	"gd32hal/pac"
	"gd32hal/rcu"
)

// ModeRetries bounds the wait for a mode change to be acknowledged.
const ModeRetries = 0x1000

var routes = [2]gpio.Routes{
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_CAN0_REMAP_Pos, Width: 2},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PA(12), gpio.PA(11)}},
			{Remap: 2, Pins: []gpio.ID{gpio.PB(9), gpio.PB(8)}},
			{Remap: 3, Pins: []gpio.ID{gpio.PD(1), gpio.PD(0)}},
		},
	},
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_CAN1_REMAP_Pos, Width: 1},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PB(13), gpio.PB(12)}},
			{Remap: 1, Pins: []gpio.ID{gpio.PB(6), gpio.PB(5)}},
		},
	},
}

type Pins struct {
	TX gpio.Alternate[gpio.PushPull]
	RX gpio.Input[gpio.Floating]
}

type CAN struct {
	tok      *pac.Peripheral[pac.CAN_Type]
	regs     *pac.CAN_Type
	pins     Pins
	assigned bool
}

// New claims tok and clocks the controller. It stays in sleep mode.
func New(tok *pac.Peripheral[pac.CAN_Type]) (*CAN, error) {
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	rcu.Enable(tok.Gate)
	rcu.Reset(tok.Gate)
	return &CAN{tok: tok, regs: tok.Regs}, nil
}

// AssignPins routes tx and rx to the controller. CAN1 shares its filter
// bank with CAN0 but has its own pins.
func (c *CAN) AssignPins(tx gpio.Alternate[gpio.PushPull], rx gpio.Input[gpio.Floating], afio *gpio.AFIO) error {
	const op = "can.AssignPins"
	if c.assigned {
		return errcode.New(op, errcode.InvalidState, "pins already assigned")
	}
	if err := routes[c.tok.Index].Connect(op, afio, tx.ID(), rx.ID()); err != nil {
		return err
	}
	c.pins = Pins{TX: tx.Move(), RX: rx.Move()}
	c.assigned = true
	return nil
}

func (c *CAN) mode(set, clear, want uint32) error {
	c.regs.CTL.Set(c.regs.CTL.Get()&^clear | set)
	err := nb.Retry(ModeRetries, func() error {
		if c.regs.STAT.Get()&(pac.CAN_STAT_IWS|pac.CAN_STAT_SLPWS) != want {
			return nb.ErrWouldBlock
		}
		return nil
	})
	if err != nil {
		return errcode.New("can.mode", errcode.Timeout, "mode change not acknowledged")
	}
	return nil
}

// EnterInit leaves sleep for initialisation mode, where the bit timing
// and filters may be written.
func (c *CAN) EnterInit() error {
	return c.mode(pac.CAN_CTL_IWMOD, pac.CAN_CTL_SLPWMOD, pac.CAN_STAT_IWS)
}

// Sleep puts the controller into low-power sleep.
func (c *CAN) Sleep() error {
	return c.mode(pac.CAN_CTL_SLPWMOD, pac.CAN_CTL_IWMOD, pac.CAN_STAT_SLPWS)
}

// Regs exposes the register block for frame and filter handling.
func (c *CAN) Regs() *pac.CAN_Type { return c.regs }

// Free gates the controller clock and returns the token and, if assigned,
// the pins.
func (c *CAN) Free() (*pac.Peripheral[pac.CAN_Type], Pins, bool) {
	rcu.Disable(c.tok.Gate)
	c.tok.Release()
	if !c.assigned {
		return c.tok, Pins{}, false
	}
	c.assigned = false
	return c.tok, Pins{TX: c.pins.TX.Move(), RX: c.pins.RX.Move()}, true
}
