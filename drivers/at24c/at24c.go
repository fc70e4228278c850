// Package at24c drives the AT24C family of I2C serial EEPROMs, such as the
// AT24C02 on the GD32E103 evaluation board.
//
// Reads may span the whole array. Writes are split at page boundaries and
// each page is followed by acknowledge polling until the internal write
// cycle ends.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package at24c

import (
	"tinygo.org/x/drivers"

	"gd32hal/errcode"
	"gd32hal/nb"
)

// Address is the bus address with A2..A0 tied low.
const Address = 0x50

// Config describes the part. Zero fields take the AT24C02 values.
type Config struct {
	Address  uint16
	Size     int // bytes
	PageSize int // bytes per write page
	// WriteRetries bounds the acknowledge polling after each page.
	WriteRetries int
}

// Device is one EEPROM on the bus.
type Device struct {
	bus drivers.I2C
	cfg Config
	buf [17]byte // address byte plus the largest page
}

// New returns a device using bus with the AT24C02 geometry. The bus must
// already be configured; nothing is sent.
func New(bus drivers.I2C) *Device {
	d := &Device{bus: bus}
	d.Configure(Config{})
	return d
}

// Configure replaces the geometry. A page larger than 16 bytes is clamped.
func (d *Device) Configure(cfg Config) {
	if cfg.Address == 0 {
		cfg.Address = Address
	}
	if cfg.Size <= 0 || cfg.Size > 256 {
		cfg.Size = 256
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 8
	}
	cfg.PageSize = min(cfg.PageSize, len(d.buf)-1)
	if cfg.WriteRetries <= 0 {
		cfg.WriteRetries = 1000
	}
	d.cfg = cfg
}

// Size is the array length in bytes.
func (d *Device) Size() int { return d.cfg.Size }

func (d *Device) check(op string, n int, off int64) error {
	if off < 0 || off+int64(n) > int64(d.cfg.Size) {
		return errcode.New(op, errcode.InvalidParams, "outside the array")
	}
	return nil
}

// ReadAt fills p from offset off.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if err := d.check("at24c.ReadAt", len(p), off); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if err := d.bus.Tx(d.cfg.Address, []byte{byte(off)}, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteAt stores p at offset off, one page at a time. It returns the
// number of bytes whose write cycle completed.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	if err := d.check("at24c.WriteAt", len(p), off); err != nil {
		return 0, err
	}
	done := 0
	for done < len(p) {
		at := int(off) + done
		n := min(d.cfg.PageSize-at%d.cfg.PageSize, len(p)-done)
		d.buf[0] = byte(at)
		copy(d.buf[1:], p[done:done+n])
		if err := d.bus.Tx(d.cfg.Address, d.buf[:1+n], nil); err != nil {
			return done, err
		}
		if err := d.settle(); err != nil {
			return done, err
		}
		done += n
	}
	return done, nil
}

// settle polls the device until it acknowledges its address again.
func (d *Device) settle() error {
	return nb.Retry(d.cfg.WriteRetries, func() error {
		if d.bus.Tx(d.cfg.Address, nil, nil) != nil {
			return nb.ErrWouldBlock
		}
		return nil
	})
}
