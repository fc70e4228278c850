// Package timex carries the frequency and rate units used across the clock
// tree and the drivers.
package timex

import "gd32hal/x/conv"

// Hertz is a frequency in cycles per second.
type Hertz uint32

const (
	Hz  Hertz = 1
	KHz Hertz = 1_000
	MHz Hertz = 1_000_000
)

// Bps is a serial line rate in bits per second.
type Bps uint32

// MHzPart returns f in whole megahertz, rounded down.
func (f Hertz) MHzPart() uint32 { return uint32(f / MHz) }

// String renders f using the largest unit that divides it exactly.
func (f Hertz) String() string {
	var buf [24]byte
	b := buf[:0]
	switch {
	case f != 0 && f%MHz == 0:
		b = append(conv.AppendUint(b, uint64(f/MHz)), "MHz"...)
	case f != 0 && f%KHz == 0:
		b = append(conv.AppendUint(b, uint64(f/KHz)), "kHz"...)
	default:
		b = append(conv.AppendUint(b, uint64(f)), "Hz"...)
	}
	return string(b)
}

