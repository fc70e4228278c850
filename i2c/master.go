package i2c

import (
	"gd32hal/errcode"
	"gd32hal/nb"
	"gd32hal/pac"
)

const opTx = "i2c.Tx"

// flag checks the fault bits, clearing the one it reports, then reports
// ErrWouldBlock until flag is set.
func (i *I2C) flag(flag uint32) error {
	stat := i.regs.STAT0.Get()
	var bit uint32
	var code errcode.Code
	switch {
	case stat&pac.I2C_STAT0_BERR != 0:
		bit, code = pac.I2C_STAT0_BERR, errcode.Bus
	case stat&pac.I2C_STAT0_LOSTARB != 0:
		bit, code = pac.I2C_STAT0_LOSTARB, errcode.Arbitration
	case stat&pac.I2C_STAT0_AERR != 0:
		bit, code = pac.I2C_STAT0_AERR, errcode.Acknowledge
	case stat&pac.I2C_STAT0_OUERR != 0:
		bit, code = pac.I2C_STAT0_OUERR, errcode.Overrun
	case stat&flag != 0:
		return nil
	default:
		return nb.ErrWouldBlock
	}
	// Error flags clear on writing zero.
	i.regs.STAT0.Set(^bit)
	return errcode.New(opTx, code, "")
}

func (i *I2C) wait(n int, what string, f func() error) error {
	err := nb.Retry(n, f)
	if err == errcode.Timeout {
		return errcode.New(opTx, errcode.Timeout, what)
	}
	return err
}

func (i *I2C) waitFlag(n int, what string, flag uint32) error {
	return i.wait(n, what, func() error { return i.flag(flag) })
}

func (i *I2C) stopped() error {
	if i.regs.CTL0.HasBits(pac.I2C_CTL0_STOP) {
		return nb.ErrWouldBlock
	}
	return nil
}

func (i *I2C) stop() error {
	i.regs.CTL0.SetBits(pac.I2C_CTL0_STOP)
	return i.wait(i.to.Data, "stop", i.stopped)
}

// start generates a (repeated) start condition. A start that does not
// complete resets the peripheral before trying again.
func (i *I2C) start() error {
	var err error
	for n := 0; n < i.to.StartRetries; n++ {
		i.regs.CTL0.SetBits(pac.I2C_CTL0_START)
		if err = i.waitFlag(i.to.Start, "start", pac.I2C_STAT0_SBSEND); err == nil {
			return nil
		}
		i.reset()
	}
	return err
}

// address sends the 7-bit address and direction. A NACK ends the
// transaction with a stop.
func (i *I2C) address(addr uint8, read bool) error {
	_ = i.regs.STAT0.Get()
	v := uint32(addr) << 1
	if read {
		v |= 1
	}
	i.regs.DATA.Set(v)
	err := i.waitFlag(i.to.Addr, "address", pac.I2C_STAT0_ADDSEND)
	if errcode.Of(err) == errcode.Acknowledge {
		i.regs.CTL0.SetBits(pac.I2C_CTL0_STOP)
	}
	return err
}

// clearAddr completes the address phase: ADDSEND clears on reading STAT0
// then STAT1.
func (i *I2C) clearAddr() {
	_ = i.regs.STAT0.Get()
	_ = i.regs.STAT1.Get()
}

func (i *I2C) write(addr uint8, w []byte) error {
	if err := i.start(); err != nil {
		return err
	}
	if err := i.address(addr, false); err != nil {
		return err
	}
	i.clearAddr()
	if len(w) == 0 {
		return nil
	}
	for _, b := range w {
		if err := i.waitFlag(i.to.Data, "transmit", pac.I2C_STAT0_TBE); err != nil {
			i.abort(err)
			return err
		}
		i.regs.DATA.Set(uint32(b))
	}
	err := i.waitFlag(i.to.Data, "byte transfer", pac.I2C_STAT0_BTC)
	i.abort(err)
	return err
}

// abort releases the bus after a NACK on data.
func (i *I2C) abort(err error) {
	if errcode.Of(err) == errcode.Acknowledge {
		i.regs.CTL0.SetBits(pac.I2C_CTL0_STOP)
	}
}

// read receives len(r) bytes and ends with a stop. The last byte is NACKed:
// ACKEN is cleared and STOP set once the byte before it has been taken.
func (i *I2C) read(addr uint8, r []byte) error {
	if err := i.start(); err != nil {
		return err
	}
	if err := i.address(addr, true); err != nil {
		return err
	}
	last := len(r) - 1
	if last == 0 {
		i.regs.CTL0.ClearBits(pac.I2C_CTL0_ACKEN)
		i.clearAddr()
		i.regs.CTL0.SetBits(pac.I2C_CTL0_STOP)
	} else {
		i.regs.CTL0.SetBits(pac.I2C_CTL0_ACKEN)
		i.clearAddr()
	}
	for n := range r {
		if err := i.waitFlag(i.to.Data, "receive", pac.I2C_STAT0_RBNE); err != nil {
			i.regs.CTL0.ClearBits(pac.I2C_CTL0_ACKEN)
			i.regs.CTL0.SetBits(pac.I2C_CTL0_STOP)
			return err
		}
		r[n] = byte(i.regs.DATA.Get())
		if n == last-1 {
			i.regs.CTL0.ClearBits(pac.I2C_CTL0_ACKEN)
			i.regs.CTL0.SetBits(pac.I2C_CTL0_STOP)
		}
	}
	err := i.wait(i.to.Data, "stop", i.stopped)
	i.regs.CTL0.SetBits(pac.I2C_CTL0_ACKEN)
	return err
}

// Tx writes w to the 7-bit address addr and then reads len(r) bytes, with
// a repeated start between the two. Either may be empty; both empty probes
// the address.
func (i *I2C) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return errcode.New(opTx, errcode.InvalidParams, "address beyond 7 bits")
	}
	a := uint8(addr)
	switch {
	case len(r) > 0:
		if len(w) > 0 {
			if err := i.write(a, w); err != nil {
				return err
			}
		}
		return i.read(a, r)
	default:
		if err := i.write(a, w); err != nil {
			return err
		}
		return i.stop()
	}
}

// ReadRegister reads len(buf) bytes starting at register reg.
func (i *I2C) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return i.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes buf starting at register reg.
func (i *I2C) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	w = append(w, reg)
	return i.Tx(uint16(addr), append(w, buf...), nil)
}
