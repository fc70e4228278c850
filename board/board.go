// Package board describes the hardware a build targets. The descriptor is
// chosen by build tags; a build without a board tag gets the bare-chip
// defaults.
package board

import (
	"gd32hal/rcu"
	"gd32hal/serial"
	"gd32hal/x/timex"
)

type Board struct {
	Name string

	// HXTAL is the fitted crystal; zero runs from IRC8M.
	HXTAL        timex.Hertz
	Sysclk       timex.Hertz
	ConsoleBaud  timex.Bps
	LEDActiveLow bool // PC13
}

// Selected is set by the board file matching the build tags.
var Selected Board

func (b Board) Clocks() rcu.Config {
	return rcu.Config{HXTAL: b.HXTAL, Sysclk: b.Sysclk}
}

// Console is the serial format for the board's USART0 console.
func (b Board) Console() serial.Config {
	baud := b.ConsoleBaud
	if baud == 0 {
		baud = serial.DefaultBaud
	}
	return serial.Config{Baud: baud}
}
