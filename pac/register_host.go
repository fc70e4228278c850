//go:build !gd32e103

package pac

import "sync/atomic"

// Register32 is the host stand-in for a memory-mapped register. Accesses are
// atomic; an optional model reproduces hardware side effects such as ready
// bits following enables or flags cleared by a data read.
type Register32 struct {
	Reg   uint32
	read  func(v uint32) uint32
	write func(old, v uint32) uint32
}

// Get returns the register value as software would read it.
func (r *Register32) Get() uint32 {
	v := atomic.LoadUint32(&r.Reg)
	if r.read != nil {
		v = r.read(v)
	}
	return v
}

// Set stores v as software would write it.
func (r *Register32) Set(v uint32) {
	if r.write != nil {
		v = r.write(atomic.LoadUint32(&r.Reg), v)
	}
	atomic.StoreUint32(&r.Reg, v)
}

func (r *Register32) SetBits(v uint32)   { r.Set(r.Get() | v) }
func (r *Register32) ClearBits(v uint32) { r.Set(r.Get() &^ v) }
func (r *Register32) HasBits(v uint32) bool {
	return r.Get()&v > 0
}

// ReplaceBits replaces the mask-wide field at pos with value.
func (r *Register32) ReplaceBits(value uint32, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | value<<pos)
}

// Model installs hardware side effects. read receives the stored value and
// returns what software observes; write receives the stored and written
// values and returns what is stored. Either may be nil.
func (r *Register32) Model(read func(v uint32) uint32, write func(old, v uint32) uint32) {
	r.read, r.write = read, write
}

// Poke stores v bypassing the model, as hardware itself would.
func (r *Register32) Poke(v uint32) { atomic.StoreUint32(&r.Reg, v) }

// Peek loads the stored value bypassing the model.
func (r *Register32) Peek() uint32 { return atomic.LoadUint32(&r.Reg) }
