package rcu

import (
	"gd32hal/internal/critical"
	"gd32hal/pac"
)

func enableReg(b pac.Bus) *pac.Register32 {
	switch b {
	case pac.APB1:
		return &pac.RCU.APB1EN
	case pac.APB2:
		return &pac.RCU.APB2EN
	}
	return &pac.RCU.AHBEN
}

// Enable turns on the clock to the gated peripheral.
func Enable(g pac.Gate) {
	s := critical.Enter()
	enableReg(g.Bus).SetBits(1 << g.Bit)
	critical.Exit(s)
}

// Disable stops the clock to the gated peripheral.
func Disable(g pac.Gate) {
	s := critical.Enter()
	enableReg(g.Bus).ClearBits(1 << g.Bit)
	critical.Exit(s)
}

// IsEnabled reports whether the peripheral is clocked.
func IsEnabled(g pac.Gate) bool {
	return enableReg(g.Bus).HasBits(1 << g.Bit)
}

// Reset pulses the peripheral's reset line, returning its registers to
// their reset values. AHB peripherals here have no reset line.
func Reset(g pac.Gate) {
	var reg *pac.Register32
	switch g.Bus {
	case pac.APB1:
		reg = &pac.RCU.APB1RST
	case pac.APB2:
		reg = &pac.RCU.APB2RST
	default:
		return
	}
	s := critical.Enter()
	reg.SetBits(1 << g.Bit)
	critical.Exit(s)
	s = critical.Enter()
	reg.ClearBits(1 << g.Bit)
	critical.Exit(s)
}
