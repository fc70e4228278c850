package timex

import "testing"

func TestHertzString(t *testing.T) {
	cases := map[Hertz]string{
		108 * MHz: "108MHz",
		400 * KHz: "400kHz",
		115_201:   "115201Hz",
		0:         "0Hz",
	}
	for f, want := range cases {
		if got := f.String(); got != want {
			t.Errorf("%d: got %q want %q", uint32(f), got, want)
		}
	}
}

func TestMHzPart(t *testing.T) {
	if (72 * MHz).MHzPart() != 72 {
		t.Fatal("MHzPart")
	}
}
