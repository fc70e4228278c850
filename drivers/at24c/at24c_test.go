//go:build !gd32e103

package at24c

import (
	"bytes"
	"errors"
	"testing"

	"gd32hal/errcode"
)

// eeprom answers like an AT24C part: a write sets the word address and
// stores the rest within the page, then the part ignores its address for
// busy polls.
type eeprom struct {
	mem    [256]byte
	page   int
	ptr    byte
	busy   int // polls left to NACK after a write
	writes []int
}

func (e *eeprom) Tx(addr uint16, w, r []byte) error {
	if addr != Address {
		return errcode.Acknowledge
	}
	if e.busy > 0 {
		e.busy--
		return errcode.Acknowledge
	}
	if len(w) > 0 {
		e.ptr = w[0]
		base := int(e.ptr) &^ (e.page - 1)
		for i, b := range w[1:] {
			e.mem[base+(int(e.ptr)+i)%e.page] = b
		}
		if len(w) > 1 {
			e.writes = append(e.writes, len(w)-1)
			e.busy = 3
		}
	}
	for i := range r {
		r[i] = e.mem[e.ptr]
		e.ptr++
	}
	return nil
}

func TestWriteSplitsPages(t *testing.T) {
	tests := []struct {
		name string
		off  int64
		n    int
		want []int
	}{
		{"aligned", 0, 16, []int{8, 8}},
		{"unaligned", 5, 12, []int{3, 8, 1}},
		{"inside page", 9, 4, []int{4}},
		{"last byte", 255, 1, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &eeprom{page: 8}
			d := New(e)
			data := make([]byte, tt.n)
			for i := range data {
				data[i] = byte(0xA0 + i)
			}
			n, err := d.WriteAt(data, tt.off)
			if err != nil || n != tt.n {
				t.Fatalf("WriteAt %d %v", n, err)
			}
			if len(e.writes) != len(tt.want) {
				t.Fatalf("page writes %v want %v", e.writes, tt.want)
			}
			for i := range tt.want {
				if e.writes[i] != tt.want[i] {
					t.Fatalf("page writes %v want %v", e.writes, tt.want)
				}
			}
			if !bytes.Equal(e.mem[tt.off:int(tt.off)+tt.n], data) {
				t.Fatalf("stored % x", e.mem[tt.off:int(tt.off)+tt.n])
			}
			got := make([]byte, tt.n)
			if _, err := d.ReadAt(got, tt.off); err != nil || !bytes.Equal(got, data) {
				t.Fatalf("ReadAt % x %v", got, err)
			}
		})
	}
}

func TestRange(t *testing.T) {
	d := New(&eeprom{page: 8})
	if _, err := d.ReadAt(make([]byte, 2), 255); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("read past end: %v", err)
	}
	if _, err := d.WriteAt([]byte{1}, -1); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("negative offset: %v", err)
	}
	if n, err := d.ReadAt(nil, 256); n != 0 || err != nil {
		t.Fatalf("empty read at end: %d %v", n, err)
	}
}

func TestWriteCycleTimeout(t *testing.T) {
	e := &eeprom{page: 8}
	d := New(e)
	d.Configure(Config{WriteRetries: 2})
	n, err := d.WriteAt([]byte{1, 2}, 0)
	if !errors.Is(err, errcode.Timeout) || n != 0 {
		t.Fatalf("got %d %v", n, err)
	}
}

func TestConfigure(t *testing.T) {
	d := New(&eeprom{})
	d.Configure(Config{Size: 128, PageSize: 64})
	if d.Size() != 128 || d.cfg.PageSize != 16 || d.cfg.Address != Address {
		t.Fatalf("config %+v", d.cfg)
	}
}
