// Package adc runs software-triggered conversions on ADC0, one channel at a
// time or streamed into memory by DMA.
package adc

import (
	"gd32hal/dma"
	"gd32hal/errcode"
	"gd32hal/gpio"
	"gd32hal/nb"
	"gd32hal/pac"
	"gd32hal/rcu"
	"gd32hal/x/timex"
)

// CalibrationRetries bounds each calibration wait.
const CalibrationRetries = 0x1000

// SampleTime is the sampling duration in ADC clock cycles.
type SampleTime uint8

const (
	Cycles1_5 SampleTime = iota
	Cycles7_5
	Cycles13_5
	Cycles28_5
	Cycles41_5
	Cycles55_5
	Cycles71_5
	Cycles239_5
)

// Channel is an analog input bound to its pin.
type Channel struct {
	pin gpio.Analog
	n   uint8
}

// Number is the input multiplexer channel.
func (c Channel) Number() uint8 { return c.n }

// Release hands back the pin.
func (c Channel) Release() gpio.Analog { return c.pin.Move() }

type ADC struct {
	tok    *pac.Peripheral[pac.ADC_Type]
	regs   *pac.ADC_Type
	clock  timex.Hertz
	sample SampleTime
	busy   bool
}

// New claims tok, powers the converter up and calibrates it. A calibration
// that never completes yields Timeout with the converter off.
func New(tok *pac.Peripheral[pac.ADC_Type], clocks rcu.Clocks) (*ADC, error) {
	const op = "adc.New"
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	rcu.Enable(tok.Gate)
	rcu.Reset(tok.Gate)
	a := &ADC{tok: tok, regs: tok.Regs, clock: clocks.ADCCLK(), sample: Cycles28_5}
	regs := a.regs
	regs.CTL1.Set(pac.ADC_CTL1_ADCON | pac.ADC_CTL1_ETERC | pac.ADC_ETSRC_SWRCST<<pac.ADC_CTL1_ETSRC_Pos)
	for _, bit := range []uint32{pac.ADC_CTL1_RSTCLB, pac.ADC_CTL1_CLB} {
		regs.CTL1.SetBits(bit)
		err := nb.Retry(CalibrationRetries, func() error {
			if regs.CTL1.HasBits(bit) {
				return nb.ErrWouldBlock
			}
			return nil
		})
		if err != nil {
			regs.CTL1.Set(0)
			rcu.Disable(tok.Gate)
			tok.Release()
			return nil, errcode.New(op, errcode.Timeout, "calibration")
		}
	}
	return a, nil
}

// Clock is the converter clock.
func (a *ADC) Clock() timex.Hertz { return a.clock }

// Channel binds an analog pin to its input channel.
func (a *ADC) Channel(pin gpio.Analog) (Channel, error) {
	id := pin.ID()
	var n uint8
	switch {
	case id.Port == 0 && id.Num <= 7:
		n = id.Num
	case id.Port == 1 && id.Num <= 1:
		n = 8 + id.Num
	case id.Port == 2 && id.Num <= 5:
		n = 10 + id.Num
	default:
		return Channel{}, errcode.New("adc.Channel", errcode.InvalidPin, id.String()+" has no ADC input")
	}
	return Channel{pin: pin.Move(), n: n}, nil
}

// SetSampleTime applies to conversions started afterwards.
func (a *ADC) SetSampleTime(st SampleTime) { a.sample = st }

func (a *ADC) selectChannel(n uint8) {
	regs := a.regs
	if n < 10 {
		regs.SAMPT1.ReplaceBits(uint32(a.sample), pac.ADC_SAMPT_Msk, 3*n)
	} else {
		regs.SAMPT0.ReplaceBits(uint32(a.sample), pac.ADC_SAMPT_Msk, 3*(n-10))
	}
	regs.RSQ0.ReplaceBits(0, pac.ADC_RSQ0_RL_Msk, pac.ADC_RSQ0_RL_Pos)
	regs.RSQ2.ReplaceBits(uint32(n), pac.ADC_RSQ2_RSQ0_Msk, pac.ADC_RSQ2_RSQ0_Pos)
}

// Start triggers a conversion of ch. Only one conversion runs at a time.
func (a *ADC) Start(ch Channel) error {
	if a.busy {
		return errcode.New("adc.Start", errcode.Busy, "conversion pending")
	}
	a.selectChannel(ch.n)
	a.busy = true
	a.regs.CTL1.SetBits(pac.ADC_CTL1_SWRCST)
	return nil
}

// TryRead returns the result of the pending conversion, or ErrWouldBlock
// until it completes.
func (a *ADC) TryRead() (uint16, error) {
	if !a.busy {
		return 0, errcode.New("adc.Read", errcode.InvalidState, "no conversion started")
	}
	if !a.regs.STAT.HasBits(pac.ADC_STAT_EOC) {
		return 0, nb.ErrWouldBlock
	}
	a.busy = false
	return uint16(a.regs.RDATA.Get() & 0xFFF), nil
}

// Read converts ch and waits for the result.
func (a *ADC) Read(ch Channel) (uint16, error) {
	if err := a.Start(ch); err != nil {
		return 0, err
	}
	return nb.BlockValue(a.TryRead)
}

// Free powers the converter down, gates its clock and returns the token.
func (a *ADC) Free() *pac.Peripheral[pac.ADC_Type] {
	a.regs.CTL1.Set(0)
	rcu.Disable(a.tok.Gate)
	a.tok.Release()
	return a.tok
}

// dmaChannel is the DMA0 channel wired to ADC0.
const dmaChannel = 0

// DMARead is a conversion stream into a buffer.
type DMARead struct {
	a *ADC
	t *dma.Transfer[uint16]
}

// ReadDMA converts ch continuously, storing len(buf) results through dc,
// which must be DMA0 channel 0.
func (a *ADC) ReadDMA(ch Channel, dc *dma.Channel, buf []uint16) (*DMARead, error) {
	const op = "adc.ReadDMA"
	if dc.Index() != dmaChannel {
		return nil, errcode.New(op, errcode.InvalidParams, "ADC0 is served by DMA channel 0")
	}
	if a.busy {
		return nil, errcode.New(op, errcode.Busy, "conversion pending")
	}
	t, err := dma.Arm(dc, buf, dma.Request{
		Periph:   pac.Addr(&a.regs.RDATA),
		Dir:      dma.PeripheralToMemory,
		Priority: dma.PriorityHigh,
	})
	if err != nil {
		return nil, err
	}
	a.selectChannel(ch.n)
	a.regs.CTL1.SetBits(pac.ADC_CTL1_CTN | pac.ADC_CTL1_DMA)
	if err := t.Start(); err != nil {
		a.stopStream()
		return nil, err
	}
	a.busy = true
	a.regs.CTL1.SetBits(pac.ADC_CTL1_SWRCST)
	return &DMARead{a: a, t: t}, nil
}

func (a *ADC) stopStream() {
	a.regs.CTL1.ClearBits(pac.ADC_CTL1_CTN | pac.ADC_CTL1_DMA)
	a.busy = false
}

func (r *DMARead) IsDone() bool { return r.t.IsDone() }

// Wait blocks until the buffer is full and returns it; the converter goes
// back to single conversions.
func (r *DMARead) Wait() (dma.Result[uint16], error) {
	res, err := r.t.Wait()
	r.a.stopStream()
	return res, err
}

// Cancel stops the stream early. The result is always partial.
func (r *DMARead) Cancel() (dma.Result[uint16], error) {
	r.a.stopStream()
	return r.t.Cancel()
}
