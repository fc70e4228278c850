//go:build !(gd32e103 && eval)

package board

import "gd32hal/x/timex"

func init() {
	Selected = Board{
		Name:   "none",
		Sysclk: 8 * timex.MHz,
	}
}
