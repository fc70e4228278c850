// Package dma drives the seven-channel DMA controller. A transfer owns its
// buffer from Arm until its result is taken, and a channel runs one
// transfer at a time:
//
//	Idle -> Armed -> Running -> Complete | Cancelled | Failed -> Idle
//
// Taking the result (Poll, Wait or Cancel) returns the channel to Idle.
package dma

import (
	"gd32hal/errcode"
	"gd32hal/pac"
	"gd32hal/rcu"
)

type State uint8

const (
	Idle State = iota
	Armed
	Running
	Complete
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Running:
		return "running"
	case Complete:
		return "complete"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return "state?"
}

type Direction uint8

const (
	PeripheralToMemory Direction = iota
	MemoryToPeripheral
	MemoryToMemory
)

type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityVeryHigh
)

// Request describes the peripheral side of a transfer.
type Request struct {
	// Periph is the peripheral register address, or the source address
	// for MemoryToMemory.
	Periph   uint32
	Dir      Direction
	Priority Priority
	// PeriphIncrement advances the peripheral address per item.
	PeriphIncrement bool
	// Interrupts enables the full, half and error interrupts.
	Interrupts bool
}

// Channels is the split controller.
type Channels struct {
	tok *pac.Peripheral[pac.DMA_Type]
	C   [7]*Channel
}

// Split claims the controller, enables its clock and returns its channels.
func Split(tok *pac.Peripheral[pac.DMA_Type]) (*Channels, error) {
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	rcu.Enable(tok.Gate)
	cs := &Channels{tok: tok}
	for i := range cs.C {
		cs.C[i] = &Channel{regs: tok.Regs, ch: &tok.Regs.CH[i], index: uint8(i)}
		cs.C[i].clearFlags(pac.DMA_FLAG_GIF)
	}
	return cs, nil
}

// Free stops the controller clock. Every channel must be idle.
func (cs *Channels) Free() (*pac.Peripheral[pac.DMA_Type], error) {
	for _, c := range cs.C {
		if c.state != Idle {
			return nil, errcode.New("dma.Free", errcode.Busy, "channel not idle")
		}
	}
	rcu.Disable(cs.tok.Gate)
	cs.tok.Release()
	return cs.tok, nil
}

// Channel is one DMA stream. Its CTL, CNT and address registers are
// private to it; the shared flag registers are read-only or
// write-1-to-clear, so no critical section is needed.
type Channel struct {
	regs  *pac.DMA_Type
	ch    *pac.DMAChannel_Type
	index uint8
	state State
}

func (c *Channel) Index() uint8 { return c.index }
func (c *Channel) State() State { return c.state }

func (c *Channel) flags() uint32 {
	return c.regs.INTF.Get() >> (4 * c.index) & 0xF
}

func (c *Channel) clearFlags(f uint32) {
	c.regs.INTC.Set(f << (4 * c.index))
}

func (c *Channel) disable() {
	c.ch.CTL.ClearBits(pac.DMA_CTL_CHEN)
}

// Result is what a finished transfer hands back.
type Result[T Word] struct {
	Buf    []T
	Status State
	// Partial is set when fewer than len(Buf) items moved.
	Partial   bool
	Remaining int
}
