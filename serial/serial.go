// Package serial drives the USARTs as asynchronous serial ports. The
// constructor checks the pins against the peripheral's routes and the
// clock tree against the baud rate; after that every transmit and receive
// operation is non-blocking and reports nb.ErrWouldBlock when the hardware
// is not ready.
package serial

import (
	"gd32hal/errcode"
	"gd32hal/gpio"
	"gd32hal/internal/critical"
	"gd32hal/nb"
	"gd32hal/pac"
	"gd32hal/rcu"
	"gd32hal/x/timex"
)

// Pins are the transmit and receive pins in the modes the USART needs.
type Pins struct {
	TX gpio.Alternate[gpio.PushPull]
	RX gpio.Input[gpio.Floating]
}

var routes = [3]gpio.Routes{
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_USART0_REMAP_Pos, Width: 1},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PA(9), gpio.PA(10)}},
			{Remap: 1, Pins: []gpio.ID{gpio.PB(6), gpio.PB(7)}},
		},
	},
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_USART1_REMAP_Pos, Width: 1},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PA(2), gpio.PA(3)}},
			{Remap: 1, Pins: []gpio.ID{gpio.PD(5), gpio.PD(6)}},
		},
	},
	{
		Field: gpio.Field{Pos: pac.AFIO_PCF0_USART2_REMAP_Pos, Width: 2},
		Routes: []gpio.Route{
			{Remap: 0, Pins: []gpio.ID{gpio.PB(10), gpio.PB(11)}},
			{Remap: 1, Pins: []gpio.ID{gpio.PC(10), gpio.PC(11)}},
			{Remap: 3, Pins: []gpio.ID{gpio.PD(8), gpio.PD(9)}},
		},
	},
}

// Event is an interrupt source a handler can listen for.
type Event uint8

const (
	EventRxNotEmpty Event = iota
	EventTxEmpty
	EventTxComplete
	EventIdle
)

func (e Event) mask() uint32 {
	switch e {
	case EventTxEmpty:
		return pac.USART_CTL0_TBEIE
	case EventTxComplete:
		return pac.USART_CTL0_TCIE
	case EventIdle:
		return pac.USART_CTL0_IDLEIE
	}
	return pac.USART_CTL0_RBNEIE
}

// Serial is a configured USART.
type Serial struct {
	tok  *pac.Peripheral[pac.USART_Type]
	pins Pins
	baud timex.Bps
	tx   Tx
	rx   Rx
}

// Tx is the transmit half.
type Tx struct {
	regs  *pac.USART_Type
	index uint8
}

// Rx is the receive half.
type Rx struct {
	regs  *pac.USART_Type
	index uint8
}

// New claims tok, routes the pins, and enables the USART with cfg. The pins
// move into the driver; the caller's handles go stale.
func New(tok *pac.Peripheral[pac.USART_Type], pins Pins, afio *gpio.AFIO, cfg Config, clocks rcu.Clocks) (*Serial, error) {
	const op = "serial.New"
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	fail := func(err error) (*Serial, error) {
		tok.Release()
		return nil, err
	}
	ctl0, stb, ctl2, err := cfg.registers(op)
	if err != nil {
		return fail(err)
	}
	pclk := clocks.Bus(tok.Gate.Bus)
	div, err := divisor(op, pclk, cfg.baud())
	if err != nil {
		return fail(err)
	}
	if err := routes[tok.Index].Connect(op, afio, pins.TX.ID(), pins.RX.ID()); err != nil {
		return fail(err)
	}

	rcu.Enable(tok.Gate)
	rcu.Reset(tok.Gate)
	regs := tok.Regs
	regs.BAUD.Set(div)
	regs.CTL1.ReplaceBits(stb, pac.USART_CTL1_STB_Msk, pac.USART_CTL1_STB_Pos)
	regs.CTL2.Set(ctl2)
	regs.CTL0.Set(ctl0 | pac.USART_CTL0_TEN | pac.USART_CTL0_REN | pac.USART_CTL0_UEN)

	return &Serial{
		tok:  tok,
		pins: Pins{TX: pins.TX.Move(), RX: pins.RX.Move()},
		baud: timex.Bps(uint32(pclk) / div),
		tx:   Tx{regs: regs, index: tok.Index},
		rx:   Rx{regs: regs, index: tok.Index},
	}, nil
}

// Baud returns the realised line rate.
func (s *Serial) Baud() timex.Bps { return s.baud }

// Split returns the two halves so they can be used from different places,
// typically the receiver from an interrupt handler.
func (s *Serial) Split() (*Tx, *Rx) { return &s.tx, &s.rx }

func (s *Serial) TryWrite(b byte) error               { return s.tx.TryWrite(b) }
func (s *Serial) TryRead() (byte, error)              { return s.rx.TryRead() }
func (s *Serial) Flush() error                        { return s.tx.Flush() }
func (s *Serial) Write(p []byte) (int, error)         { return s.tx.Write(p) }
func (s *Serial) WriteString(str string) (int, error) { return s.tx.WriteString(str) }
func (s *Serial) Read(p []byte) (int, error)          { return s.rx.Read(p) }

func (s *Serial) Listen(e Event)   { listen(s.tx.regs, e, true) }
func (s *Serial) Unlisten(e Event) { listen(s.tx.regs, e, false) }

// Free disables the USART and its clock and hands back the token and pins.
func (s *Serial) Free() (*pac.Peripheral[pac.USART_Type], Pins) {
	s.tok.Regs.CTL0.Set(0)
	rcu.Disable(s.tok.Gate)
	s.tok.Release()
	return s.tok, Pins{TX: s.pins.TX.Move(), RX: s.pins.RX.Move()}
}

func listen(regs *pac.USART_Type, e Event, on bool) {
	st := critical.Enter()
	if on {
		regs.CTL0.SetBits(e.mask())
	} else {
		regs.CTL0.ClearBits(e.mask())
	}
	critical.Exit(st)
}

// TryWrite queues b, or reports ErrWouldBlock while the transmit data
// register is full.
func (t *Tx) TryWrite(b byte) error { return t.TryWriteWord(uint16(b)) }

// TryWriteWord queues a 9-bit frame.
func (t *Tx) TryWriteWord(w uint16) error {
	if !t.regs.STAT.HasBits(pac.USART_STAT_TBE) {
		return nb.ErrWouldBlock
	}
	t.regs.DATA.Set(uint32(w) & 0x1FF)
	return nil
}

// Flush reports ErrWouldBlock until the last frame has left the shifter.
func (t *Tx) Flush() error {
	if !t.regs.STAT.HasBits(pac.USART_STAT_TC) {
		return nb.ErrWouldBlock
	}
	return nil
}

// WriteByte blocks until b is queued.
func (t *Tx) WriteByte(b byte) error {
	return nb.Block(func() error { return t.TryWrite(b) })
}

// Write blocks until every byte of p is queued.
func (t *Tx) Write(p []byte) (int, error) {
	for _, b := range p {
		if err := t.WriteByte(b); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (t *Tx) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if err := t.WriteByte(s[i]); err != nil {
			return i, err
		}
	}
	return len(s), nil
}

func (t *Tx) IsTxEmpty() bool    { return t.regs.STAT.HasBits(pac.USART_STAT_TBE) }
func (t *Tx) IsTxComplete() bool { return t.regs.STAT.HasBits(pac.USART_STAT_TC) }

func (t *Tx) Listen(e Event)   { listen(t.regs, e, true) }
func (t *Tx) Unlisten(e Event) { listen(t.regs, e, false) }

// TryRead returns the next received byte. Status is read before data: the
// data read clears the error flags, and a byte that arrived with a fault
// is returned together with that fault. Overrun means earlier frames were
// lost but the byte returned is good.
func (r *Rx) TryRead() (byte, error) {
	w, err := r.TryReadWord()
	return byte(w), err
}

// TryReadWord is TryRead for 9-bit frames.
func (r *Rx) TryReadWord() (uint16, error) {
	stat := r.regs.STAT.Get()
	const faults = pac.USART_STAT_ORERR | pac.USART_STAT_FERR | pac.USART_STAT_NERR | pac.USART_STAT_PERR
	if stat&(pac.USART_STAT_RBNE|faults) == 0 {
		return 0, nb.ErrWouldBlock
	}
	w := uint16(r.regs.DATA.Get() & 0x1FF)
	switch {
	case stat&pac.USART_STAT_ORERR != 0:
		return w, errcode.New("serial.Read", errcode.Overrun, "")
	case stat&pac.USART_STAT_FERR != 0:
		return w, errcode.New("serial.Read", errcode.Framing, "")
	case stat&pac.USART_STAT_NERR != 0:
		return w, errcode.New("serial.Read", errcode.Noise, "")
	case stat&pac.USART_STAT_PERR != 0:
		return w, errcode.New("serial.Read", errcode.Parity, "")
	}
	return w, nil
}

// ReadByte is TryRead under the io.ByteReader name.
func (r *Rx) ReadByte() (byte, error) { return r.TryRead() }

// Read copies whatever has already arrived into p without waiting. It
// returns 0, nil when nothing is pending, and stops at the first fault,
// counting the byte that carried it.
func (r *Rx) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := r.TryRead()
		if nb.IsWouldBlock(err) {
			break
		}
		p[n] = b
		n++
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (r *Rx) IsRxNotEmpty() bool { return r.regs.STAT.HasBits(pac.USART_STAT_RBNE) }
func (r *Rx) IsIdle() bool       { return r.regs.STAT.HasBits(pac.USART_STAT_IDLEF) }

// ClearIdle clears the idle-line flag by the status-then-data read
// sequence. A pending byte is discarded.
func (r *Rx) ClearIdle() {
	_ = r.regs.STAT.Get()
	_ = r.regs.DATA.Get()
}

func (r *Rx) Listen(e Event)   { listen(r.regs, e, true) }
func (r *Rx) Unlisten(e Event) { listen(r.regs, e, false) }
