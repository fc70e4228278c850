package gpio

import "gd32hal/errcode"

// Input pull configurations.
type (
	Floating struct{}
	PullUp   struct{}
	PullDown struct{}
)

// Output drive configurations.
type (
	PushPull  struct{}
	OpenDrain struct{}
)

type Pull interface{ Floating | PullUp | PullDown }
type Drive interface{ PushPull | OpenDrain }

// Input is a pin configured as a digital input.
type Input[P Pull] struct{ pin }

func (p Input[P]) IsHigh() bool { p.check(); return p.level() == High }
func (p Input[P]) IsLow() bool  { p.check(); return p.level() == Low }

// Move returns a fresh handle and makes p stale. Drivers call it on the
// pins they are handed so the caller's copy cannot be used behind them.
func (p Input[P]) Move() Input[P] { return Input[P]{p.reissue()} }

// Output is a pin configured as a general purpose output.
type Output[D Drive] struct{ pin }

func (p Output[D]) SetHigh() { p.check(); p.drive(High) }
func (p Output[D]) SetLow()  { p.check(); p.drive(Low) }

func (p Output[D]) Set(st PinState) {
	p.check()
	p.drive(st)
}

func (p Output[D]) Toggle() {
	p.check()
	p.drive(p.latched() ^ 1)
}

// State returns the latched output level.
func (p Output[D]) State() PinState { p.check(); return p.latched() }
func (p Output[D]) IsSetHigh() bool { return p.State() == High }
func (p Output[D]) IsSetLow() bool  { return p.State() == Low }

// IsHigh reads the pad, which differs from the latch when an open-drain
// line is held low externally.
func (p Output[D]) IsHigh() bool { p.check(); return p.level() == High }
func (p Output[D]) IsLow() bool  { p.check(); return p.level() == Low }

func (p Output[D]) SetSpeed(sp Speed) {
	p.check()
	p.setSpeed(sp)
}

func (p Output[D]) Move() Output[D] { return Output[D]{p.reissue()} }

// Alternate is a pin handed to a peripheral function.
type Alternate[D Drive] struct{ pin }

func (p Alternate[D]) SetSpeed(sp Speed) {
	p.check()
	p.setSpeed(sp)
}

func (p Alternate[D]) Move() Alternate[D] { return Alternate[D]{p.reissue()} }

// Analog is a pin disconnected from the digital input path, for the ADC.
type Analog struct{ pin }

func (p Analog) Move() Analog { return Analog{p.reissue()} }

// Debug is a serial-wire debug pin still owned by the debug port. It has
// no operations until AFIO.DisableSWJ releases it.
type Debug struct{ p pin }

func (d Debug) ID() ID { return d.p.ID() }

// DynamicMode is the run-time mode of a Dynamic pin.
type DynamicMode uint8

const (
	DynFloatingInput DynamicMode = iota
	DynPullUpInput
	DynPullDownInput
	DynPushPullOutput
	DynOpenDrainOutput
)

func (m DynamicMode) isInput() bool  { return m <= DynPullDownInput }
func (m DynamicMode) isOutput() bool { return !m.isInput() }

// Dynamic is a pin whose mode is checked at run time instead of by type,
// for code that must reconfigure a pin in place.
type Dynamic struct {
	pin
	mode DynamicMode
}

func (d *Dynamic) Mode() DynamicMode { return d.mode }

func (d *Dynamic) MakeFloatingInput() {
	d.check()
	d.setField(fieldFloating)
	d.mode = DynFloatingInput
}

func (d *Dynamic) MakePullUpInput() {
	d.check()
	d.drive(High)
	d.setField(fieldPull)
	d.mode = DynPullUpInput
}

func (d *Dynamic) MakePullDownInput() {
	d.check()
	d.drive(Low)
	d.setField(fieldPull)
	d.mode = DynPullDownInput
}

func (d *Dynamic) MakePushPullOutput() {
	d.check()
	d.setField(fieldPushPull)
	d.mode = DynPushPullOutput
}

func (d *Dynamic) MakeOpenDrainOutput() {
	d.check()
	d.setField(fieldOpenDrain)
	d.mode = DynOpenDrainOutput
}

func (d *Dynamic) SetHigh() error { return d.Set(High) }
func (d *Dynamic) SetLow() error  { return d.Set(Low) }

func (d *Dynamic) Set(st PinState) error {
	d.check()
	if !d.mode.isOutput() {
		return errcode.New("gpio.Dynamic", errcode.IncorrectMode, "not an output")
	}
	d.drive(st)
	return nil
}

func (d *Dynamic) IsHigh() (bool, error) {
	d.check()
	if !d.mode.isInput() {
		return false, errcode.New("gpio.Dynamic", errcode.IncorrectMode, "not an input")
	}
	return d.level() == High, nil
}

func (d *Dynamic) IsLow() (bool, error) {
	h, err := d.IsHigh()
	if err != nil {
		return false, err
	}
	return !h, nil
}
