package rcu

import "gd32hal/x/timex"

// IRC8M is the internal RC oscillator frequency. The PLL sees it halved.
const IRC8M = 8 * timex.MHz

// Limits are the clock-tree ceilings and PLL ranges of one chip family.
type Limits struct {
	Name string

	SysclkMax timex.Hertz
	APB1Max   timex.Hertz
	APB2Max   timex.Hertz
	ADCMax    timex.Hertz

	HXTALMin timex.Hertz
	HXTALMax timex.Hertz

	PLLInMin  timex.Hertz
	PLLMulMin uint32
	PLLMulMax uint32
	PredivMax uint32

	// WaitStates[n] is the highest system clock that runs with n flash
	// wait states; above the last entry len(WaitStates) are used.
	WaitStates []timex.Hertz
}

var GD32E10x = Limits{
	Name:       "GD32E10x",
	SysclkMax:  120 * timex.MHz,
	APB1Max:    60 * timex.MHz,
	APB2Max:    120 * timex.MHz,
	ADCMax:     14 * timex.MHz,
	HXTALMin:   4 * timex.MHz,
	HXTALMax:   32 * timex.MHz,
	PLLInMin:   1 * timex.MHz,
	PLLMulMin:  2,
	PLLMulMax:  63,
	PredivMax:  16,
	WaitStates: []timex.Hertz{30 * timex.MHz, 60 * timex.MHz, 90 * timex.MHz},
}

var GD32F10x = Limits{
	Name:       "GD32F10x",
	SysclkMax:  108 * timex.MHz,
	APB1Max:    54 * timex.MHz,
	APB2Max:    108 * timex.MHz,
	ADCMax:     14 * timex.MHz,
	HXTALMin:   4 * timex.MHz,
	HXTALMax:   16 * timex.MHz,
	PLLInMin:   1 * timex.MHz,
	PLLMulMin:  2,
	PLLMulMax:  32,
	PredivMax:  2,
	WaitStates: []timex.Hertz{24 * timex.MHz, 48 * timex.MHz, 72 * timex.MHz},
}

// WaitStates returns the flash wait states needed at sysclk.
func WaitStates(l *Limits, sysclk timex.Hertz) uint32 {
	var ws uint32
	for _, top := range l.WaitStates {
		if sysclk > top {
			ws++
		}
	}
	return ws
}
