package rcu

import (
	"gd32hal/errcode"
	"gd32hal/pac"
	"gd32hal/x/timex"
)

// Config describes the clock tree an application wants. Zero fields take
// defaults: no crystal, system clock at the oscillator frequency, bus clocks
// as fast as the ceilings allow, ADC at PCLK2/8 or slower.
type Config struct {
	// HXTAL is the external crystal frequency; zero means none fitted.
	HXTAL timex.Hertz
	// HXTALBypass feeds HXTAL from an external clock instead of a crystal.
	HXTALBypass bool

	Sysclk timex.Hertz

	// Upper-bound hints for the derived clocks.
	HCLK   timex.Hertz
	PCLK1  timex.Hertz
	PCLK2  timex.Hertz
	ADCCLK timex.Hertz

	// Limits selects the chip family; nil means GD32E10x.
	Limits *Limits
}

func (c *Config) limits() *Limits {
	if c.Limits != nil {
		return c.Limits
	}
	return &GD32E10x
}

// setup is a resolved configuration: the clocks plus the register fields
// that produce them.
type setup struct {
	clocks Clocks

	scs    uint32
	hxtal  bool
	usePLL bool
	predv  uint32
	pllmf  uint32
	ahb    uint32
	apb1   uint32
	apb2   uint32
	adc    uint32
	ws     uint32
}

var (
	ahbDivs = [...]uint32{1, 2, 4, 8, 16, 64, 128, 256, 512}
	ahbBits = [...]uint32{0x0, 0x8, 0x9, 0xA, 0xB, 0xC, 0xD, 0xE, 0xF}
	apbDivs = [...]uint32{1, 2, 4, 8, 16}
	apbBits = [...]uint32{0x0, 0x4, 0x5, 0x6, 0x7}
	adcDivs = [...]uint32{2, 4, 6, 8, 12, 16}
	adcBits = [...]uint32{0x0, 0x1, 0x2, 0x3, 0x5, 0x7}
)

// adcDefault indexes /8 in adcDivs.
const adcDefault = 3

// Compute resolves cfg into a clock tree without touching hardware.
//
// A Sysclk at or below the oscillator runs the system straight from that
// oscillator, so the result can be faster than requested: HXTAL 16 MHz with
// Sysclk 4 MHz yields 16 MHz even though the PLL could reach 4 MHz. The PLL
// is only used to go above the oscillator, and then never above Sysclk.
func Compute(cfg Config) (Clocks, error) {
	s, err := plan(cfg)
	return s.clocks, err
}

func plan(cfg Config) (setup, error) {
	const op = "rcu.Compute"
	lim := cfg.limits()
	var s setup

	osc := IRC8M
	if cfg.HXTAL != 0 && cfg.HXTAL >= lim.HXTALMin && cfg.HXTAL <= lim.HXTALMax {
		osc = cfg.HXTAL
		s.hxtal = true
	}

	target := cfg.Sysclk
	if target == 0 {
		target = osc
	}
	if target > lim.SysclkMax {
		return s, unreachable(op, "sysclk", target, lim.SysclkMax)
	}

	var sysclk timex.Hertz
	switch {
	case target <= osc:
		sysclk = osc
		s.scs = pac.RCU_SCS_IRC8M
		s.clocks.source = SourceIRC8M
		if s.hxtal {
			s.scs = pac.RCU_SCS_HXTAL
			s.clocks.source = SourceHXTAL
		}
	default:
		p, ok := searchPLL(s.hxtal, osc, target, lim)
		if !ok {
			return s, unreachable(op, "sysclk", target, lim.SysclkMax)
		}
		sysclk = p.out
		s.scs = pac.RCU_SCS_PLL
		s.usePLL = true
		s.predv, s.pllmf = p.predv, p.mul
		s.clocks.source = SourcePLL
		s.clocks.pllclk = p.out
		s.clocks.pllIn = SourceIRC8M
		if s.hxtal {
			s.clocks.pllIn = SourceHXTAL
		}
	}
	s.clocks.sysclk = sysclk

	hint := cfg.HCLK
	if hint == 0 {
		hint = sysclk
	}
	i, ok := pickDiv(sysclk, hint, ahbDivs[:], 0)
	if !ok {
		return s, unreachable(op, "hclk", hint, sysclk)
	}
	s.ahb = ahbBits[i]
	hclk := sysclk / timex.Hertz(ahbDivs[i])
	s.clocks.hclk = hclk

	i1, ok := pickDiv(hclk, ceiling(lim.APB1Max, cfg.PCLK1), apbDivs[:], 0)
	if !ok {
		return s, unreachable(op, "pclk1", ceiling(lim.APB1Max, cfg.PCLK1), hclk)
	}
	i2, ok := pickDiv(hclk, ceiling(lim.APB2Max, cfg.PCLK2), apbDivs[:], 0)
	if !ok {
		return s, unreachable(op, "pclk2", ceiling(lim.APB2Max, cfg.PCLK2), hclk)
	}
	// APB1 never runs faster than APB2.
	i1 = max(i1, i2)
	s.apb1, s.apb2 = apbBits[i1], apbBits[i2]
	s.clocks.apb1, s.clocks.apb2 = apbDivs[i1], apbDivs[i2]
	s.clocks.pclk1 = hclk / timex.Hertz(apbDivs[i1])
	s.clocks.pclk2 = hclk / timex.Hertz(apbDivs[i2])

	start := adcDefault
	if cfg.ADCCLK != 0 {
		start = 0
	}
	ia, ok := pickDiv(s.clocks.pclk2, ceiling(lim.ADCMax, cfg.ADCCLK), adcDivs[:], start)
	if !ok {
		return s, unreachable(op, "adcclk", ceiling(lim.ADCMax, cfg.ADCCLK), s.clocks.pclk2)
	}
	s.adc = adcBits[ia]
	s.clocks.adcclk = s.clocks.pclk2 / timex.Hertz(adcDivs[ia])

	s.ws = WaitStates(lim, sysclk)
	return s, nil
}

// ceiling is the hardware limit lowered by an optional hint.
func ceiling(limit, hint timex.Hertz) timex.Hertz {
	if hint == 0 {
		return limit
	}
	return min(limit, hint)
}

// pickDiv returns the index of the smallest divisor, from start on, that
// brings in at or below max.
func pickDiv(in, max timex.Hertz, divs []uint32, start int) (int, bool) {
	for i := start; i < len(divs); i++ {
		if in/timex.Hertz(divs[i]) <= max {
			return i, true
		}
	}
	return 0, false
}

type pll struct {
	predv uint32
	mul   uint32
	out   timex.Hertz
}

// searchPLL finds the PLL setting closest to target without exceeding it.
// Exact matches win; among equals the smallest predivider is kept. Only
// predividers that divide the crystal exactly are considered so the
// resulting clocks stay whole hertz.
func searchPLL(hxtal bool, osc, target timex.Hertz, lim *Limits) (pll, bool) {
	var best pll
	try := func(in timex.Hertz, predv uint32) {
		for m := lim.PLLMulMin; m <= lim.PLLMulMax; m++ {
			out := uint64(in) * uint64(m)
			if out > uint64(target) {
				return
			}
			if timex.Hertz(out) > best.out {
				best = pll{predv: predv, mul: m, out: timex.Hertz(out)}
			}
		}
	}
	if !hxtal {
		try(IRC8M/2, 1)
		return best, best.out != 0
	}
	for d := uint32(1); d <= lim.PredivMax; d++ {
		if uint32(osc)%d != 0 {
			continue
		}
		in := osc / timex.Hertz(d)
		if in < lim.PLLInMin {
			break
		}
		try(in, d)
		if best.out == target {
			break
		}
	}
	return best, best.out != 0
}

// pllmfBits encodes a PLL multiplier into its split CFG0 field.
func pllmfBits(mul uint32) uint32 {
	v := mul - 1
	if mul <= 16 {
		v = mul - 2
	}
	bits := (v & pac.RCU_CFG0_PLLMF_Msk) << pac.RCU_CFG0_PLLMF_Pos
	if v&0x10 != 0 {
		bits |= pac.RCU_CFG0_PLLMF_4
	}
	if v&0x20 != 0 {
		bits |= pac.RCU_CFG0_PLLMF_5
	}
	return bits
}

func unreachable(op, what string, want, limit timex.Hertz) error {
	return errcode.New(op, errcode.UnreachableFrequency,
		what+" "+want.String()+" outside what "+limit.String()+" allows")
}
