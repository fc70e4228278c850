//go:build gd32e103 && eval

package board

import "gd32hal/x/timex"

func init() {
	Selected = Board{
		Name:         "gd32e103-eval",
		HXTAL:        8 * timex.MHz,
		Sysclk:       72 * timex.MHz,
		ConsoleBaud:  115_200,
		LEDActiveLow: true,
	}
}
