//go:build gd32e103

// cmd/boardtest/main.go
package main

import (
	"gd32hal/board"
	"gd32hal/crc"
	"gd32hal/gpio"
	"gd32hal/nb"
	"gd32hal/pac"
	"gd32hal/rcu"
	"gd32hal/serial"
	"gd32hal/timer"
	"gd32hal/x/conv"
	"gd32hal/x/timex"
)

// The count-down fires twice a second; each expiry toggles the LED.
const blinkHz timex.Hertz = 2

type console struct {
	u   *serial.Serial
	buf []byte
}

func (c *console) line(label string, v uint64) {
	c.buf = append(c.buf[:0], label...)
	c.buf = append(c.buf, ": "...)
	c.buf = conv.AppendUint(c.buf, v)
	c.emit()
}

func (c *console) hex(label string, v uint32) {
	c.buf = append(c.buf[:0], label...)
	c.buf = append(c.buf, ": "...)
	c.buf = conv.AppendHex32(c.buf, v)
	c.emit()
}

func (c *console) emit() {
	c.buf = append(c.buf, '\r', '\n')
	println(string(c.buf[:len(c.buf)-2]))
	if c.u != nil {
		_, _ = c.u.Write(c.buf)
	}
}

func fail(what string, err error) {
	for {
		println("boardtest:", what, err.Error())
	}
}

func main() {
	b := board.Selected
	p, err := pac.Take()
	if err != nil {
		fail("take", err)
	}

	r, err := rcu.New(p.RCU, p.FMC)
	if err != nil {
		fail("rcu", err)
	}
	clocks, err := r.Freeze(b.Clocks())
	if err != nil {
		fail("freeze", err)
	}

	afio, err := gpio.NewAFIO(p.AFIO)
	if err != nil {
		fail("afio", err)
	}
	pa, err := gpio.Split(p.GPIOA)
	if err != nil {
		fail("gpioa", err)
	}
	pc, err := gpio.Split(p.GPIOC)
	if err != nil {
		fail("gpioc", err)
	}

	out := &console{buf: make([]byte, 0, 48)}
	u, err := serial.New(p.USART0, serial.Pins{TX: pa.P9.IntoAlternatePushPull(), RX: pa.P10}, afio, b.Console(), clocks)
	if err != nil {
		println("boardtest: console:", err.Error())
	} else {
		out.u = u
	}

	println("boardtest:", b.Name, clocks.Source().String())
	out.line("sysclk", uint64(clocks.Sysclk()))
	out.line("hclk", uint64(clocks.HCLK()))
	out.line("pclk1", uint64(clocks.PCLK1()))
	out.line("pclk2", uint64(clocks.PCLK2()))
	out.line("adcclk", uint64(clocks.ADCCLK()))

	if c, err := crc.New(p.CRC); err == nil {
		out.hex("crc(0x12345678)", c.Checksum([]uint32{0x1234_5678}))
		c.Free()
	}

	idle := gpio.Low
	if b.LEDActiveLow {
		idle = gpio.High
	}
	led := pc.P13.IntoPushPullOutputWithState(idle)

	t, err := timer.New(p.TIMER1, clocks)
	if err != nil {
		fail("timer", err)
	}
	cd, err := t.StartCountDown(blinkHz)
	if err != nil {
		fail("countdown", err)
	}
	for n := uint64(1); ; n++ {
		if err := nb.Block(cd.Wait); err != nil {
			fail("wait", err)
		}
		led.Toggle()
		if n%uint64(blinkHz) == 0 {
			out.line("uptime", n/uint64(blinkHz))
		}
	}
}
