//go:build gd32e103

package pac

import "runtime/volatile"

// Register32 is a memory-mapped 32-bit register.
type Register32 = volatile.Register32
