// Package crc drives the CRC-32 unit: polynomial 0x04C11DB7, initial value
// 0xFFFFFFFF, one 32-bit word per write, no reflection or final XOR.
package crc

import (
	"gd32hal/pac"
	"gd32hal/rcu"
)

type CRC struct {
	tok  *pac.Peripheral[pac.CRC_Type]
	regs *pac.CRC_Type
}

// New claims tok, clocks the unit and resets the accumulator.
func New(tok *pac.Peripheral[pac.CRC_Type]) (*CRC, error) {
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	rcu.Enable(tok.Gate)
	c := &CRC{tok: tok, regs: tok.Regs}
	c.Reset()
	return c, nil
}

// Reset loads 0xFFFFFFFF into the accumulator.
func (c *CRC) Reset() { c.regs.CTL.Set(pac.CRC_CTL_RST) }

// Write folds w into the accumulator.
func (c *CRC) Write(w uint32) { c.regs.DATA.Set(w) }

// Read returns the accumulator.
func (c *CRC) Read() uint32 { return c.regs.DATA.Get() }

// Checksum resets the unit and returns the CRC of words.
func (c *CRC) Checksum(words []uint32) uint32 {
	c.Reset()
	for _, w := range words {
		c.Write(w)
	}
	return c.Read()
}

// SetScratch stores b in the free data byte, which Reset leaves alone.
func (c *CRC) SetScratch(b uint8) { c.regs.FDATA.Set(uint32(b)) }

func (c *CRC) Scratch() uint8 { return uint8(c.regs.FDATA.Get()) }

func (c *CRC) Free() *pac.Peripheral[pac.CRC_Type] {
	rcu.Disable(c.tok.Gate)
	c.tok.Release()
	return c.tok
}
