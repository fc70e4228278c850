package dma

import (
	"unsafe"

	"gd32hal/errcode"
	"gd32hal/nb"
	"gd32hal/pac"
)

// Word is an item type a channel can move.
type Word interface{ ~uint8 | ~uint16 | ~uint32 }

func widthBits[T Word]() uint32 {
	var z T
	switch unsafe.Sizeof(z) {
	case 2:
		return 1
	case 4:
		return 2
	}
	return 0
}

func bufAddr[T Word](buf []T) uint32 {
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}

func (c *Channel) program(addr uint32, n int, width uint32, req Request, extra uint32) {
	c.disable()
	c.clearFlags(pac.DMA_FLAG_GIF)
	c.ch.PADDR.Set(req.Periph)
	c.ch.MADDR.Set(addr)
	c.ch.CNT.Set(uint32(n))
	ctl := width<<pac.DMA_CTL_PWIDTH_Pos |
		width<<pac.DMA_CTL_MWIDTH_Pos |
		uint32(req.Priority)<<pac.DMA_CTL_PRIO_Pos |
		pac.DMA_CTL_MNAGA | extra
	switch req.Dir {
	case MemoryToPeripheral:
		ctl |= pac.DMA_CTL_DIR
	case MemoryToMemory:
		ctl |= pac.DMA_CTL_M2M
	}
	if req.PeriphIncrement {
		ctl |= pac.DMA_CTL_PNAGA
	}
	if req.Interrupts {
		ctl |= pac.DMA_CTL_FTFIE | pac.DMA_CTL_ERRIE
	}
	c.ch.CTL.Set(ctl)
}

func checkLen(op string, n int) error {
	if n == 0 || n > 0xFFFF {
		return errcode.New(op, errcode.InvalidParams, "buffer length must be 1..65535")
	}
	return nil
}

// Transfer is a one-shot transfer that owns its buffer until its result is
// taken.
type Transfer[T Word] struct {
	c     *Channel
	buf   []T
	state State
}

// Arm programs c to move buf and leaves it ready to Start. It fails with
// Busy unless the channel is idle.
func Arm[T Word](c *Channel, buf []T, req Request) (*Transfer[T], error) {
	const op = "dma.Arm"
	if c.state != Idle {
		return nil, errcode.New(op, errcode.Busy, "channel "+c.state.String())
	}
	if err := checkLen(op, len(buf)); err != nil {
		return nil, err
	}
	c.program(bufAddr(buf), len(buf), widthBits[T](), req, 0)
	c.state = Armed
	return &Transfer[T]{c: c, buf: buf, state: Armed}, nil
}

// Start enables the channel.
func (t *Transfer[T]) Start() error {
	if t.state != Armed {
		return errcode.New("dma.Start", errcode.InvalidState, "transfer "+t.state.String())
	}
	t.c.ch.CTL.SetBits(pac.DMA_CTL_CHEN)
	t.state, t.c.state = Running, Running
	return nil
}

func (t *Transfer[T]) State() State { return t.state }

// Remaining is the number of items not yet moved.
func (t *Transfer[T]) Remaining() int {
	if t.state != Running && t.state != Armed {
		return 0
	}
	return int(t.c.ch.CNT.Get())
}

// IsDone reports whether the hardware finished or faulted.
func (t *Transfer[T]) IsDone() bool {
	return t.state == Running && t.c.flags()&(pac.DMA_FLAG_FTF|pac.DMA_FLAG_ERR) != 0
}

// Peek returns the prefix of the buffer already written by a
// peripheral-to-memory transfer.
func (t *Transfer[T]) Peek() []T {
	if t.state != Running {
		return nil
	}
	return t.buf[:len(t.buf)-int(t.c.ch.CNT.Get())]
}

// Poll returns the result once the hardware finished, ErrWouldBlock while
// it runs. A bus error yields the buffer with status Failed and
// TransferError.
func (t *Transfer[T]) Poll() (Result[T], error) {
	if t.state != Running {
		return Result[T]{}, errcode.New("dma.Poll", errcode.InvalidState, "transfer "+t.state.String())
	}
	f := t.c.flags()
	switch {
	case f&pac.DMA_FLAG_ERR != 0:
		res := t.finish(Failed)
		return res, errcode.New("dma.Poll", errcode.TransferError, "bus error")
	case f&pac.DMA_FLAG_FTF != 0:
		return t.finish(Complete), nil
	}
	return Result[T]{}, nb.ErrWouldBlock
}

// Wait busy-polls until the transfer finishes.
func (t *Transfer[T]) Wait() (Result[T], error) {
	return nb.BlockValue(t.Poll)
}

// Cancel stops the transfer wherever it is. The result is always marked
// partial: data may have moved even when Remaining reads zero. A transfer
// whose result was already taken yields InvalidState.
func (t *Transfer[T]) Cancel() (Result[T], error) {
	if t.state != Armed && t.state != Running {
		return Result[T]{}, errcode.New("dma.Cancel", errcode.InvalidState, "transfer "+t.state.String())
	}
	res := t.finish(Cancelled)
	res.Partial = true
	return res, nil
}

func (t *Transfer[T]) finish(st State) Result[T] {
	c := t.c
	c.disable()
	rem := int(c.ch.CNT.Get())
	c.clearFlags(pac.DMA_FLAG_GIF)
	res := Result[T]{Buf: t.buf, Status: st, Partial: rem != 0 || st != Complete, Remaining: rem}
	t.buf = nil
	t.state = st
	c.state = Idle
	return res
}
