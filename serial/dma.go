package serial

import (
	"gd32hal/dma"
	"gd32hal/errcode"
	"gd32hal/nb"
	"gd32hal/pac"
)

// Fixed DMA0 channel assignment per USART.
var (
	txChannel = [3]uint8{3, 6, 1}
	rxChannel = [3]uint8{4, 5, 2}
)

// DMATransfer is a USART transfer on DMA0. Taking its result also drops
// the USART's DMA request.
type DMATransfer struct {
	*dma.Transfer[byte]
	regs *pac.USART_Type
	den  uint32
}

func (t *DMATransfer) Poll() (dma.Result[byte], error) {
	res, err := t.Transfer.Poll()
	if !nb.IsWouldBlock(err) {
		t.regs.CTL2.ClearBits(t.den)
	}
	return res, err
}

func (t *DMATransfer) Wait() (dma.Result[byte], error) {
	return nb.BlockValue(t.Poll)
}

func (t *DMATransfer) Cancel() (dma.Result[byte], error) {
	t.regs.CTL2.ClearBits(t.den)
	return t.Transfer.Cancel()
}

// CircularRead is a USART double-buffered receive on DMA0.
type CircularRead struct {
	*dma.Circular[byte]
	regs *pac.USART_Type
}

// Stop drops the receive DMA request and returns the buffer.
func (c *CircularRead) Stop() []byte {
	c.regs.CTL2.ClearBits(pac.USART_CTL2_DENR)
	return c.Circular.Stop()
}

func checkChannel(op string, ch *dma.Channel, want uint8) error {
	if ch.Index() != want {
		return errcode.New(op, errcode.InvalidParams, "wrong DMA channel for this USART")
	}
	return nil
}

// WriteDMA starts sending buf through ch, which must be this USART's
// transmit channel. The transfer owns buf until its result is taken.
func (t *Tx) WriteDMA(ch *dma.Channel, buf []byte) (*DMATransfer, error) {
	const op = "serial.WriteDMA"
	if err := checkChannel(op, ch, txChannel[t.index]); err != nil {
		return nil, err
	}
	tr, err := dma.Arm(ch, buf, dma.Request{
		Periph:   pac.Addr(&t.regs.DATA),
		Dir:      dma.MemoryToPeripheral,
		Priority: dma.PriorityMedium,
	})
	if err != nil {
		return nil, err
	}
	// TC must be clear so Flush waits for the DMA data.
	t.regs.STAT.ClearBits(pac.USART_STAT_TC)
	t.regs.CTL2.SetBits(pac.USART_CTL2_DENT)
	if err := tr.Start(); err != nil {
		t.regs.CTL2.ClearBits(pac.USART_CTL2_DENT)
		return nil, err
	}
	return &DMATransfer{Transfer: tr, regs: t.regs, den: pac.USART_CTL2_DENT}, nil
}

// ReadDMA starts filling buf from the receiver through ch, which must be
// this USART's receive channel.
func (r *Rx) ReadDMA(ch *dma.Channel, buf []byte) (*DMATransfer, error) {
	const op = "serial.ReadDMA"
	if err := checkChannel(op, ch, rxChannel[r.index]); err != nil {
		return nil, err
	}
	tr, err := dma.Arm(ch, buf, r.request())
	if err != nil {
		return nil, err
	}
	r.regs.CTL2.SetBits(pac.USART_CTL2_DENR)
	if err := tr.Start(); err != nil {
		r.regs.CTL2.ClearBits(pac.USART_CTL2_DENR)
		return nil, err
	}
	return &DMATransfer{Transfer: tr, regs: r.regs, den: pac.USART_CTL2_DENR}, nil
}

// ReadCircular keeps filling buf as a double buffer until stopped.
func (r *Rx) ReadCircular(ch *dma.Channel, buf []byte) (*CircularRead, error) {
	const op = "serial.ReadCircular"
	if err := checkChannel(op, ch, rxChannel[r.index]); err != nil {
		return nil, err
	}
	c, err := dma.ArmCircular(ch, buf, r.request())
	if err != nil {
		return nil, err
	}
	r.regs.CTL2.SetBits(pac.USART_CTL2_DENR)
	return &CircularRead{Circular: c, regs: r.regs}, nil
}

func (r *Rx) request() dma.Request {
	return dma.Request{
		Periph:   pac.Addr(&r.regs.DATA),
		Dir:      dma.PeripheralToMemory,
		Priority: dma.PriorityHigh,
	}
}
