// Package gd25q drives GD25Q series SPI NOR flash, such as the GD25Q16 on
// the GD32E103 evaluation board, over any drivers.SPI bus with a GPIO chip
// select.
package gd25q

import (
	"tinygo.org/x/drivers"

	"gd32hal/errcode"
	"gd32hal/nb"
)

const (
	cmdWriteEnable = 0x06
	cmdReadStatus  = 0x05
	cmdRead        = 0x03
	cmdPageProgram = 0x02
	cmdSectorErase = 0x20
	cmdJEDECID     = 0x9F

	statusWIP = 0x01
	statusWEL = 0x02
)

const (
	PageSize   = 256
	SectorSize = 4096
)

// GigaDevice JEDEC manufacturer code.
const Manufacturer = 0xC8

// Select is a chip-select output, driven low for the length of a command.
type Select interface {
	SetHigh()
	SetLow()
}

// Config bounds the busy polling. Zero fields take defaults.
type Config struct {
	ProgramRetries int
	EraseRetries   int
}

// ID is the JEDEC identification.
type ID struct {
	Manufacturer byte
	MemoryType   byte
	Capacity     byte
}

// Size is the array length in bytes the capacity code announces.
func (id ID) Size() int { return 1 << id.Capacity }

// Device is one flash chip.
type Device struct {
	bus drivers.SPI
	cs  Select
	cfg Config
	hdr [4]byte
}

// New returns a device on bus selected by cs, which is raised here. The bus
// must already be configured for mode 0 or 3.
func New(bus drivers.SPI, cs Select, cfg Config) *Device {
	if cfg.ProgramRetries <= 0 {
		cfg.ProgramRetries = 10_000
	}
	if cfg.EraseRetries <= 0 {
		cfg.EraseRetries = 1_000_000
	}
	cs.SetHigh()
	return &Device{bus: bus, cs: cs, cfg: cfg}
}

// command runs one selected transaction: hdr out, then r in.
func (d *Device) command(hdr []byte, w, r []byte) error {
	d.cs.SetLow()
	defer d.cs.SetHigh()
	if err := d.bus.Tx(hdr, nil); err != nil {
		return err
	}
	if len(w) > 0 {
		if err := d.bus.Tx(w, nil); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		return d.bus.Tx(nil, r)
	}
	return nil
}

func (d *Device) addressed(cmd byte, addr uint32) []byte {
	d.hdr = [4]byte{cmd, byte(addr >> 16), byte(addr >> 8), byte(addr)}
	return d.hdr[:]
}

// ReadID returns the JEDEC identification.
func (d *Device) ReadID() (ID, error) {
	var b [3]byte
	if err := d.command([]byte{cmdJEDECID}, nil, b[:]); err != nil {
		return ID{}, err
	}
	return ID{Manufacturer: b[0], MemoryType: b[1], Capacity: b[2]}, nil
}

// Status returns status register 1.
func (d *Device) Status() (byte, error) {
	var b [1]byte
	err := d.command([]byte{cmdReadStatus}, nil, b[:])
	return b[0], err
}

// ReadAt fills p from address addr.
func (d *Device) ReadAt(p []byte, addr uint32) error {
	if len(p) == 0 {
		return nil
	}
	return d.command(d.addressed(cmdRead, addr), nil, p)
}

// ProgramPage writes p at addr and waits for the program cycle. p must not
// cross a page boundary. Flash only clears bits; erase first.
func (d *Device) ProgramPage(p []byte, addr uint32) error {
	const op = "gd25q.ProgramPage"
	if len(p) == 0 || int(addr%PageSize)+len(p) > PageSize {
		return errcode.New(op, errcode.InvalidParams, "write crosses a page")
	}
	if err := d.writeEnable(op); err != nil {
		return err
	}
	if err := d.command(d.addressed(cmdPageProgram, addr), p, nil); err != nil {
		return err
	}
	return d.wait(op, d.cfg.ProgramRetries)
}

// EraseSector erases the 4 KiB sector holding addr and waits for it.
func (d *Device) EraseSector(addr uint32) error {
	const op = "gd25q.EraseSector"
	if err := d.writeEnable(op); err != nil {
		return err
	}
	if err := d.command(d.addressed(cmdSectorErase, addr&^(SectorSize-1)), nil, nil); err != nil {
		return err
	}
	return d.wait(op, d.cfg.EraseRetries)
}

func (d *Device) writeEnable(op string) error {
	if err := d.command([]byte{cmdWriteEnable}, nil, nil); err != nil {
		return err
	}
	st, err := d.Status()
	if err != nil {
		return err
	}
	if st&statusWEL == 0 {
		return errcode.New(op, errcode.InvalidState, "write enable not latched")
	}
	return nil
}

func (d *Device) wait(op string, n int) error {
	err := nb.Retry(n, func() error {
		st, err := d.Status()
		switch {
		case err != nil:
			return err
		case st&statusWIP != 0:
			return nb.ErrWouldBlock
		}
		return nil
	})
	if errcode.Of(err) == errcode.Timeout {
		return errcode.New(op, errcode.Timeout, "flash still busy")
	}
	return err
}
