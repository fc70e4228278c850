package gpio

import (
	"gd32hal/pac"
	"gd32hal/rcu"
)

// Parts is a split port: sixteen pins in their reset mode. On port A,
// PA13 and PA14 belong to the serial-wire debug port and are issued as
// SWDIO and SWCLK instead of P13 and P14, which stay zero. PA15, PB3 and
// PB4 carry JTAG until AFIO.DisableJTAG is called.
type Parts struct {
	P0, P1, P2, P3, P4, P5, P6, P7       Input[Floating]
	P8, P9, P10, P11, P12, P13, P14, P15 Input[Floating]
	SWDIO, SWCLK                         Debug

	port *Port
}

// Split claims a GPIO port, clocks and resets it, and returns its pins.
func Split(tok *pac.Peripheral[pac.GPIO_Type]) (*Parts, error) {
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	rcu.Enable(tok.Gate)
	rcu.Reset(tok.Gate)

	port := &Port{tok: tok, regs: tok.Regs}
	var pins [16]pin
	for n := range pins {
		port.seq++
		port.gen[n] = port.seq
		pins[n] = pin{port: port, n: uint8(n), gen: port.seq}
	}
	in := func(n int) Input[Floating] { return Input[Floating]{pins[n]} }
	p := &Parts{
		P0: in(0), P1: in(1), P2: in(2), P3: in(3),
		P4: in(4), P5: in(5), P6: in(6), P7: in(7),
		P8: in(8), P9: in(9), P10: in(10), P11: in(11),
		P12: in(12), P13: in(13), P14: in(14), P15: in(15),
		port: port,
	}
	if tok.Index == 0 {
		p.P13, p.P14 = Input[Floating]{}, Input[Floating]{}
		p.SWDIO, p.SWCLK = Debug{pins[13]}, Debug{pins[14]}
	}
	return p, nil
}

// Free stops the port clock, invalidates every pin issued from it and
// returns the token.
func (p *Parts) Free() *pac.Peripheral[pac.GPIO_Type] {
	port := p.port
	for n := range port.gen {
		port.gen[n] = 0
	}
	rcu.Disable(port.tok.Gate)
	port.tok.Release()
	return port.tok
}
