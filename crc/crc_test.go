//go:build !gd32e103

package crc

import (
	"testing"

	"gd32hal/pac"
	"gd32hal/rcu"
)

func setup(t *testing.T) *CRC {
	t.Helper()
	pac.Reset()
	p, err := pac.Take()
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(p.CRC)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestChecksum(t *testing.T) {
	c := setup(t)
	tests := []struct {
		words []uint32
		want  uint32
	}{
		{nil, 0xFFFF_FFFF},
		{[]uint32{0x1234_5678}, 0xDF8A_8A2B},
		{[]uint32{0}, 0xC704_DD7B},
	}
	for _, tt := range tests {
		if got := c.Checksum(tt.words); got != tt.want {
			t.Errorf("Checksum(%#x)=%#x want %#x", tt.words, got, tt.want)
		}
	}
}

func TestIncremental(t *testing.T) {
	c := setup(t)
	words := []uint32{0xDEAD_BEEF, 0x0BAD_F00D, 0x1234_5678}
	want := c.Checksum(words)
	c.Reset()
	for _, w := range words {
		c.Write(w)
	}
	if got := c.Read(); got != want {
		t.Fatalf("incremental %#x, one-shot %#x", got, want)
	}
	if c.Checksum(words[:1]) == want {
		t.Fatal("prefix matched full checksum")
	}
}

func TestScratchSurvivesReset(t *testing.T) {
	c := setup(t)
	c.SetScratch(0xA5)
	c.Reset()
	if c.Scratch() != 0xA5 {
		t.Fatalf("scratch=%#x", c.Scratch())
	}
}

func TestFree(t *testing.T) {
	c := setup(t)
	tok := c.Free()
	if tok.Claimed() || rcu.IsEnabled(tok.Gate) {
		t.Fatal("not released")
	}
	if _, err := New(tok); err != nil {
		t.Fatal(err)
	}
}
