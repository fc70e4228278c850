package mathx

import "testing"

func TestDivisions(t *testing.T) {
	cases := []struct {
		a, b        uint32
		ceil, round uint32
	}{
		{72_000_000, 115_200, 625, 625},
		{8_000_000, 9_600, 834, 833},
		{10, 4, 3, 3},
		{9, 4, 3, 2},
		{5, 0, 0, 0},
	}
	for _, c := range cases {
		if got := CeilDiv(c.a, c.b); got != c.ceil {
			t.Errorf("CeilDiv(%d,%d)=%d want %d", c.a, c.b, got, c.ceil)
		}
		if got := RoundDiv(c.a, c.b); got != c.round {
			t.Errorf("RoundDiv(%d,%d)=%d want %d", c.a, c.b, got, c.round)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ v, lo, hi, want uint32 }{
		{4500, 1, 0xFFF, 0xFFF},
		{0, 4, 0xFFF, 4},
		{180, 4, 0xFFF, 180},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d,%d,%d)=%d want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
	if AbsDiff(uint32(3), uint32(10)) != 7 || AbsDiff(uint32(10), uint32(3)) != 7 {
		t.Fatal("AbsDiff")
	}
}
