//go:build !gd32e103

package board

import (
	"testing"

	"gd32hal/rcu"
	"gd32hal/serial"
	"gd32hal/x/timex"
)

func TestDefaultBoard(t *testing.T) {
	if Selected.Name != "none" {
		t.Fatalf("host build selected %q", Selected.Name)
	}
	c, err := rcu.Compute(Selected.Clocks())
	if err != nil {
		t.Fatal(err)
	}
	if c.Sysclk() != 8*timex.MHz || c.Source() != rcu.SourceIRC8M {
		t.Fatalf("sysclk %v from %v", c.Sysclk(), c.Source())
	}
	if Selected.Console().Baud != serial.DefaultBaud {
		t.Fatalf("console baud %d", Selected.Console().Baud)
	}
}

func TestCrystalBoard(t *testing.T) {
	b := Board{HXTAL: 8 * timex.MHz, Sysclk: 72 * timex.MHz, ConsoleBaud: 9600}
	c, err := rcu.Compute(b.Clocks())
	if err != nil {
		t.Fatal(err)
	}
	if c.Sysclk() != 72*timex.MHz {
		t.Fatalf("sysclk %v", c.Sysclk())
	}
	if _, in, ok := c.PLLCLK(); !ok || in != rcu.SourceHXTAL {
		t.Fatalf("PLL input %v ok=%v", in, ok)
	}
	if b.Console().Baud != 9600 {
		t.Fatalf("console baud %d", b.Console().Baud)
	}
}
