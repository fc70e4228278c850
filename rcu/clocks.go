package rcu

import (
	"gd32hal/pac"
	"gd32hal/x/timex"
)

// Source is the oscillator driving the system clock.
type Source uint8

const (
	SourceIRC8M Source = iota
	SourceHXTAL
	SourcePLL
)

func (s Source) String() string {
	switch s {
	case SourceIRC8M:
		return "IRC8M"
	case SourceHXTAL:
		return "HXTAL"
	case SourcePLL:
		return "PLL"
	}
	return "source?"
}

// Clocks is the frozen clock tree. It is a value: once returned by Freeze
// it never changes, and every driver sizes its dividers from it.
type Clocks struct {
	sysclk timex.Hertz
	hclk   timex.Hertz
	pclk1  timex.Hertz
	pclk2  timex.Hertz
	adcclk timex.Hertz
	pllclk timex.Hertz
	pllIn  Source
	source Source
	apb1   uint32
	apb2   uint32
}

func (c Clocks) Sysclk() timex.Hertz { return c.sysclk }
func (c Clocks) HCLK() timex.Hertz   { return c.hclk }
func (c Clocks) PCLK1() timex.Hertz  { return c.pclk1 }
func (c Clocks) PCLK2() timex.Hertz  { return c.pclk2 }
func (c Clocks) ADCCLK() timex.Hertz { return c.adcclk }

// Source reports what drives the system clock.
func (c Clocks) Source() Source { return c.source }

// PLLCLK returns the PLL output and its input oscillator; ok is false when
// the PLL is unused.
func (c Clocks) PLLCLK() (f timex.Hertz, in Source, ok bool) {
	return c.pllclk, c.pllIn, c.source == SourcePLL
}

// APB1Div and APB2Div return the bus prescaler divisors.
func (c Clocks) APB1Div() uint32 { return c.apb1 }
func (c Clocks) APB2Div() uint32 { return c.apb2 }

// Bus returns the clock feeding peripherals on b.
func (c Clocks) Bus(b pac.Bus) timex.Hertz {
	switch b {
	case pac.APB1:
		return c.pclk1
	case pac.APB2:
		return c.pclk2
	}
	return c.hclk
}

// Timer returns the timer kernel clock on b: twice the bus clock whenever
// the bus prescaler divides.
func (c Clocks) Timer(b pac.Bus) timex.Hertz {
	switch b {
	case pac.APB1:
		if c.apb1 > 1 {
			return 2 * c.pclk1
		}
		return c.pclk1
	case pac.APB2:
		if c.apb2 > 1 {
			return 2 * c.pclk2
		}
		return c.pclk2
	}
	return c.hclk
}
