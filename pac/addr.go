package pac

import "unsafe"

// Addr returns the bus address of a register, for DMA peripheral pointers.
func Addr(r *Register32) uint32 { return uint32(uintptr(unsafe.Pointer(r))) }
