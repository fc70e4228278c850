// Package gpio hands out the pins of a port as typed handles. A pin's mode
// is part of its type (Input[PullUp], Output[PushPull], ...); changing mode
// consumes the handle and returns one of the new type, so operations that
// make no sense in a mode are not even methods on it.
//
// Go cannot forbid reuse of a consumed value, so every pin carries a
// generation stamp. Using a handle after it was transitioned, moved into a
// driver or freed panics.
package gpio

import (
	"sync/atomic"

	"gd32hal/internal/critical"
	"gd32hal/pac"
	"gd32hal/x/conv"
)

// ID names a pin independently of its mode.
type ID struct {
	Port uint8 // 0 = A
	Num  uint8
}

// NoPin stands for an unused signal in route lookups.
var NoPin = ID{Port: 0xFF, Num: 0xFF}

func PA(n uint8) ID { return ID{0, n} }
func PB(n uint8) ID { return ID{1, n} }
func PC(n uint8) ID { return ID{2, n} }
func PD(n uint8) ID { return ID{3, n} }
func PE(n uint8) ID { return ID{4, n} }

func (id ID) String() string {
	if id == NoPin {
		return "none"
	}
	b := []byte{'P', 'A' + id.Port}
	return string(conv.AppendUint(b, uint64(id.Num)))
}

// PinState is a logic level.
type PinState uint8

const (
	Low PinState = iota
	High
)

// Speed is the output slew setting in the MD bits.
type Speed uint8

const (
	Speed10MHz Speed = 0x1
	Speed2MHz  Speed = 0x2
	Speed50MHz Speed = 0x3
)

// CNF<<2 | MD nibble per mode.
const (
	fieldAnalog       = 0x0
	fieldFloating     = 0x4
	fieldPull         = 0x8
	fieldPushPull     = 0x3
	fieldOpenDrain    = 0x7
	fieldAltPushPull  = 0xB
	fieldAltOpenDrain = 0xF
)

// Port is the shared state behind one GPIO port's pins.
type Port struct {
	tok  *pac.Peripheral[pac.GPIO_Type]
	regs *pac.GPIO_Type
	seq  uint32
	gen  [16]uint32
}

type pin struct {
	port *Port
	n    uint8
	gen  uint32
}

func (p pin) check() {
	if p.port == nil {
		panic("gpio: pin was not issued by Split")
	}
	if atomic.LoadUint32(&p.port.gen[p.n]) != p.gen {
		panic("gpio: stale handle for " + p.id().String())
	}
}

// reissue invalidates p and returns a fresh handle for the same pin.
func (p pin) reissue() pin {
	p.check()
	g := atomic.AddUint32(&p.port.seq, 1)
	atomic.StoreUint32(&p.port.gen[p.n], g)
	return pin{port: p.port, n: p.n, gen: g}
}

func (p pin) id() ID { return ID{Port: p.port.tok.Index, Num: p.n} }

// ID returns the pin's name. It panics on a stale handle.
func (p pin) ID() ID {
	p.check()
	return p.id()
}

func (p pin) ctl() (*pac.Register32, uint8) {
	if p.n < 8 {
		return &p.port.regs.CTL0, 4 * p.n
	}
	return &p.port.regs.CTL1, 4 * (p.n - 8)
}

func (p pin) setField(v uint32) {
	reg, pos := p.ctl()
	s := critical.Enter()
	reg.ReplaceBits(v, 0xF, pos)
	critical.Exit(s)
}

func (p pin) field() uint32 {
	reg, pos := p.ctl()
	return reg.Get() >> pos & 0xF
}

func (p pin) setSpeed(sp Speed) {
	reg, pos := p.ctl()
	s := critical.Enter()
	reg.ReplaceBits(uint32(sp), 0x3, pos)
	critical.Exit(s)
}

// drive sets the output latch through the atomic set/clear registers.
func (p pin) drive(st PinState) {
	if st == High {
		p.port.regs.BOP.Set(1 << p.n)
	} else {
		p.port.regs.BC.Set(1 << p.n)
	}
}

func (p pin) latched() PinState {
	if p.port.regs.OCTL.Get()&(1<<p.n) != 0 {
		return High
	}
	return Low
}

func (p pin) level() PinState {
	if p.port.regs.ISTAT.Get()&(1<<p.n) != 0 {
		return High
	}
	return Low
}

func (p pin) IntoFloatingInput() Input[Floating] {
	q := p.reissue()
	q.setField(fieldFloating)
	return Input[Floating]{q}
}

func (p pin) IntoPullUpInput() Input[PullUp] {
	q := p.reissue()
	q.drive(High)
	q.setField(fieldPull)
	return Input[PullUp]{q}
}

func (p pin) IntoPullDownInput() Input[PullDown] {
	q := p.reissue()
	q.drive(Low)
	q.setField(fieldPull)
	return Input[PullDown]{q}
}

// IntoPushPullOutput drives the pin low before switching it to output.
func (p pin) IntoPushPullOutput() Output[PushPull] {
	return p.IntoPushPullOutputWithState(Low)
}

// IntoPushPullOutputWithState latches st first so the pin never glitches.
func (p pin) IntoPushPullOutputWithState(st PinState) Output[PushPull] {
	q := p.reissue()
	q.drive(st)
	q.setField(fieldPushPull)
	return Output[PushPull]{q}
}

func (p pin) IntoOpenDrainOutput() Output[OpenDrain] {
	return p.IntoOpenDrainOutputWithState(Low)
}

func (p pin) IntoOpenDrainOutputWithState(st PinState) Output[OpenDrain] {
	q := p.reissue()
	q.drive(st)
	q.setField(fieldOpenDrain)
	return Output[OpenDrain]{q}
}

func (p pin) IntoAlternatePushPull() Alternate[PushPull] {
	q := p.reissue()
	q.setField(fieldAltPushPull)
	return Alternate[PushPull]{q}
}

func (p pin) IntoAlternateOpenDrain() Alternate[OpenDrain] {
	q := p.reissue()
	q.setField(fieldAltOpenDrain)
	return Alternate[OpenDrain]{q}
}

func (p pin) IntoAnalog() Analog {
	q := p.reissue()
	q.setField(fieldAnalog)
	return Analog{q}
}

// IntoDynamic returns a pin whose mode is tracked at run time, starting as
// a floating input.
func (p pin) IntoDynamic() *Dynamic {
	q := p.reissue()
	q.setField(fieldFloating)
	return &Dynamic{pin: q, mode: DynFloatingInput}
}

// temporarily runs fn with the pin in the mode encoded by field, then
// restores the previous configuration and revalidates p.
func (p pin) temporarily(field uint32, fn func(pin)) {
	p.check()
	saved := p.field()
	tmp := p.reissue()
	tmp.setField(field)
	fn(tmp)
	p.setField(saved)
	atomic.StoreUint32(&p.port.gen[p.n], p.gen)
}

// AsPushPullOutput lends fn a push-pull output view of the pin. The
// handle fn receives is stale once fn returns.
func (p pin) AsPushPullOutput(fn func(Output[PushPull])) {
	p.temporarily(fieldPushPull, func(q pin) { fn(Output[PushPull]{q}) })
}

func (p pin) AsOpenDrainOutput(fn func(Output[OpenDrain])) {
	p.temporarily(fieldOpenDrain, func(q pin) { fn(Output[OpenDrain]{q}) })
}

func (p pin) AsFloatingInput(fn func(Input[Floating])) {
	p.temporarily(fieldFloating, func(q pin) { fn(Input[Floating]{q}) })
}

func (p pin) AsPullUpInput(fn func(Input[PullUp])) {
	p.temporarily(fieldPull, func(q pin) {
		q.drive(High)
		fn(Input[PullUp]{q})
	})
}

func (p pin) AsPullDownInput(fn func(Input[PullDown])) {
	p.temporarily(fieldPull, func(q pin) {
		q.drive(Low)
		fn(Input[PullDown]{q})
	})
}
