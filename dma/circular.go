package dma

import (
	"gd32hal/errcode"
	"gd32hal/pac"
)

// Half names one half of a circular buffer.
type Half uint8

const (
	First Half = iota
	Second
)

// Circular is a continuously running peripheral-to-memory transfer into a
// double buffer. The hardware flags half and full completion; software
// reads whichever half was finished last.
type Circular[T Word] struct {
	c        *Channel
	buf      []T
	readable Half
}

// ArmCircular starts c filling buf over and over. buf must have even length.
func ArmCircular[T Word](c *Channel, buf []T, req Request) (*Circular[T], error) {
	const op = "dma.ArmCircular"
	if c.state != Idle {
		return nil, errcode.New(op, errcode.Busy, "channel "+c.state.String())
	}
	if err := checkLen(op, len(buf)); err != nil {
		return nil, err
	}
	if len(buf)%2 != 0 {
		return nil, errcode.New(op, errcode.InvalidParams, "odd buffer length")
	}
	c.program(bufAddr(buf), len(buf), widthBits[T](), req, pac.DMA_CTL_CMEN)
	c.ch.CTL.SetBits(pac.DMA_CTL_CHEN)
	c.state = Running
	return &Circular[T]{c: c, buf: buf, readable: Second}, nil
}

func (r *Circular[T]) half(h Half) []T {
	n := len(r.buf) / 2
	if h == First {
		return r.buf[:n]
	}
	return r.buf[n:]
}

// ReadableHalf returns the half that was completed most recently. Both
// halves completing since the last call is an overrun: the flags are
// cleared, the half behind the transfer's current position becomes
// readable, and Overrun is returned with it.
func (r *Circular[T]) ReadableHalf() (Half, error) {
	f := r.c.flags()
	first, second := f&pac.DMA_FLAG_HTF != 0, f&pac.DMA_FLAG_FTF != 0
	if first && second {
		r.c.clearFlags(pac.DMA_FLAG_HTF | pac.DMA_FLAG_FTF)
		// CNT counts down; above half, the hardware is refilling First.
		r.readable = First
		if int(r.c.ch.CNT.Get()) > len(r.buf)/2 {
			r.readable = Second
		}
		return r.readable, errcode.New("dma.ReadableHalf", errcode.Overrun, "both halves completed")
	}
	switch r.readable {
	case First:
		if second {
			r.c.clearFlags(pac.DMA_FLAG_FTF)
			r.readable = Second
		}
	case Second:
		if first {
			r.c.clearFlags(pac.DMA_FLAG_HTF)
			r.readable = First
		}
	}
	return r.readable, nil
}

// Peek hands fn the readable half. If the hardware finished the other half
// while fn ran, the data fn saw may be torn and Overrun is returned.
func (r *Circular[T]) Peek(fn func(half []T, h Half)) error {
	h, err := r.ReadableHalf()
	if err != nil {
		return err
	}
	fn(r.half(h), h)
	f := r.c.flags()
	if (h == First && f&pac.DMA_FLAG_FTF != 0) || (h == Second && f&pac.DMA_FLAG_HTF != 0) {
		return errcode.New("dma.Peek", errcode.Overrun, "half overwritten while read")
	}
	return nil
}

// Stop halts the channel and returns the buffer.
func (r *Circular[T]) Stop() []T {
	c := r.c
	c.disable()
	c.clearFlags(pac.DMA_FLAG_GIF)
	c.state = Idle
	buf := r.buf
	r.buf = nil
	return buf
}
