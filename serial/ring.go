package serial

import (
	"sync/atomic"

	"gd32hal/nb"
)

// Ring buffers received bytes between the USART interrupt and a reader.
// One context may Pump into it and one may Read from it at a time.
type Ring struct {
	buf     []byte
	mask    uint32
	rd      atomic.Uint32 // consumer index, free-running
	wr      atomic.Uint32 // producer index, free-running
	dropped atomic.Uint32
}

// NewRing allocates a ring of size bytes; size must be a power of two.
func NewRing(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("serial: ring size must be a power of two >= 2")
	}
	return &Ring{buf: make([]byte, size), mask: uint32(size - 1)}
}

// Len reports the bytes waiting to be read.
func (r *Ring) Len() int { return int(r.wr.Load() - r.rd.Load()) }

// Dropped counts bytes discarded because the ring was full.
func (r *Ring) Dropped() uint32 { return r.dropped.Load() }

func (r *Ring) put(b byte) {
	wr := r.wr.Load()
	if wr-r.rd.Load() == uint32(len(r.buf)) {
		r.dropped.Add(1)
		return
	}
	r.buf[wr&r.mask] = b
	r.wr.Store(wr + 1)
}

// Read copies buffered bytes into p. Like Rx.Read it never waits and
// returns 0, nil when the ring is empty.
func (r *Ring) Read(p []byte) (int, error) {
	rd := r.rd.Load()
	n := int(r.wr.Load() - rd)
	if n > len(p) {
		n = len(p)
	}
	if n == 0 {
		return 0, nil
	}
	i := int(rd & r.mask)
	first := copy(p[:n], r.buf[i:])
	copy(p[first:n], r.buf[:n-first])
	r.rd.Store(rd + uint32(n))
	return n, nil
}

// Pump moves every byte the receiver holds into ring. Call it from the
// USART interrupt with EventRxNotEmpty listened. A receive fault is
// returned after its byte has been stored.
func (r *Rx) Pump(ring *Ring) error {
	for {
		b, err := r.TryRead()
		if nb.IsWouldBlock(err) {
			return nil
		}
		ring.put(b)
		if err != nil {
			return err
		}
	}
}
