package gpio

import (
	"gd32hal/errcode"
	"gd32hal/internal/critical"
	"gd32hal/pac"
	"gd32hal/rcu"
)

// AFIO owns pin remapping and the debug port configuration.
type AFIO struct {
	tok *pac.Peripheral[pac.AFIO_Type]
	// SWJ_CFG reads back as zero, so its last written value is kept here
	// and merged into every PCF0 write.
	swj uint32
}

func NewAFIO(tok *pac.Peripheral[pac.AFIO_Type]) (*AFIO, error) {
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	rcu.Enable(tok.Gate)
	return &AFIO{tok: tok}, nil
}

// Field locates a remap field in PCF0. Width zero means the peripheral has
// a single pin assignment.
type Field struct {
	Pos   uint8
	Width uint8
}

// Remap writes v into field f.
func (a *AFIO) Remap(f Field, v uint32) {
	if f.Width == 0 {
		return
	}
	mask := uint32(1)<<f.Width - 1
	regs := a.tok.Regs
	s := critical.Enter()
	pcf := regs.PCF0.Get() &^ (pac.AFIO_PCF0_SWJ_CFG_Msk << pac.AFIO_PCF0_SWJ_CFG_Pos)
	pcf = pcf&^(mask<<f.Pos) | (v&mask)<<f.Pos | a.swj<<pac.AFIO_PCF0_SWJ_CFG_Pos
	regs.PCF0.Set(pcf)
	critical.Exit(s)
}

// Remapped returns the current value of field f.
func (a *AFIO) Remapped(f Field) uint32 {
	if f.Width == 0 {
		return 0
	}
	return a.tok.Regs.PCF0.Get() >> f.Pos & (uint32(1)<<f.Width - 1)
}

// DisableJTAG keeps serial-wire debug but frees the JTAG-only pins PA15,
// PB3 and PB4 for general use.
func (a *AFIO) DisableJTAG() {
	a.swj = pac.AFIO_SWJ_SWD_ONLY
	regs := a.tok.Regs
	s := critical.Enter()
	regs.PCF0.ReplaceBits(a.swj, pac.AFIO_PCF0_SWJ_CFG_Msk, pac.AFIO_PCF0_SWJ_CFG_Pos)
	critical.Exit(s)
}

// DisableSWJ turns off both the JTAG and serial-wire debug ports and
// returns PA13 and PA14 as ordinary floating inputs. A debugger can no
// longer attach afterwards.
func (a *AFIO) DisableSWJ(swdio, swclk Debug) (Input[Floating], Input[Floating]) {
	swdio.p.check()
	swclk.p.check()
	a.swj = pac.AFIO_SWJ_DISABLED
	regs := a.tok.Regs
	s := critical.Enter()
	regs.PCF0.ReplaceBits(a.swj, pac.AFIO_PCF0_SWJ_CFG_Msk, pac.AFIO_PCF0_SWJ_CFG_Pos)
	critical.Exit(s)
	return swdio.p.IntoFloatingInput(), swclk.p.IntoFloatingInput()
}

// Free stops the AFIO clock and returns the token. Remaps stay in force.
func (a *AFIO) Free() *pac.Peripheral[pac.AFIO_Type] {
	rcu.Disable(a.tok.Gate)
	a.tok.Release()
	return a.tok
}

// Route is one pin assignment a peripheral supports, selected by writing
// Remap into the peripheral's field.
type Route struct {
	Remap uint32
	Pins  []ID
}

// Routes is a peripheral's remap field with its supported assignments.
type Routes struct {
	Field  Field
	Routes []Route
}

// Match returns the first route whose pins equal ids position by position.
// NoPin in ids matches any pin.
func (t Routes) Match(ids ...ID) (Route, bool) {
next:
	for _, r := range t.Routes {
		if len(r.Pins) != len(ids) {
			continue
		}
		for i, id := range ids {
			if id != NoPin && id != r.Pins[i] {
				continue next
			}
		}
		return r, true
	}
	return Route{}, false
}

// Connect checks ids against the table and programs the matching remap.
// afio may be nil when the match needs no remap.
func (t Routes) Connect(op string, afio *AFIO, ids ...ID) error {
	r, ok := t.Match(ids...)
	if !ok {
		msg := "no route for"
		for _, id := range ids {
			if id != NoPin {
				msg += " " + id.String()
			}
		}
		return errcode.New(op, errcode.InvalidPin, msg)
	}
	if afio == nil {
		if r.Remap != 0 {
			return errcode.New(op, errcode.InvalidParams, "route needs AFIO remap")
		}
		return nil
	}
	afio.Remap(t.Field, r.Remap)
	return nil
}
