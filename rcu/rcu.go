// Package rcu resolves a requested clock tree into oscillator, PLL and
// prescaler settings, applies them, and hands out the frozen Clocks every
// driver derives its dividers from.
package rcu

import (
	"gd32hal/errcode"
	"gd32hal/nb"
	"gd32hal/pac"
)

// StartupRetries bounds every oscillator, PLL and switch ready poll.
const StartupRetries = 0x5000

// RCU owns the reset and clock unit and the flash wait-state register.
type RCU struct {
	rcu *pac.Peripheral[pac.RCU_Type]
	fmc *pac.Peripheral[pac.FMC_Type]

	clocks Clocks
	frozen bool
}

// New claims the clock and flash controller tokens.
func New(rcuTok *pac.Peripheral[pac.RCU_Type], fmcTok *pac.Peripheral[pac.FMC_Type]) (*RCU, error) {
	if err := rcuTok.Claim(); err != nil {
		return nil, err
	}
	if err := fmcTok.Claim(); err != nil {
		rcuTok.Release()
		return nil, err
	}
	return &RCU{rcu: rcuTok, fmc: fmcTok}, nil
}

// Clocks returns the last frozen tree; ok is false before the first Freeze.
func (r *RCU) Clocks() (Clocks, bool) { return r.clocks, r.frozen }

// Free releases both tokens. The clock tree keeps running.
func (r *RCU) Free() (*pac.Peripheral[pac.RCU_Type], *pac.Peripheral[pac.FMC_Type]) {
	r.rcu.Release()
	r.fmc.Release()
	return r.rcu, r.fmc
}

// Freeze resolves cfg and switches the chip onto it. Flash wait states are
// raised before the faster clock is selected and lowered only after a
// slower one is active. If an oscillator, the PLL or the switch itself does
// not report ready within StartupRetries polls, Freeze returns
// SourceNotReady and the system keeps its previous source and wait states.
//
// Reprogramming a PLL that already drives the system passes through IRC8M.
// Should the old PLL then fail to relock, the system stays on IRC8M, the
// error says so and Clocks reports the IRC8M tree.
func (r *RCU) Freeze(cfg Config) (Clocks, error) {
	s, err := plan(cfg)
	if err != nil {
		return Clocks{}, err
	}
	if err := r.apply(&s, &cfg); err != nil {
		return Clocks{}, err
	}
	r.clocks, r.frozen = s.clocks, true
	return s.clocks, nil
}

const cfg0Switch = pac.RCU_CFG0_SCS_Msk<<pac.RCU_CFG0_SCS_Pos |
	pac.RCU_CFG0_AHBPSC_Msk<<pac.RCU_CFG0_AHBPSC_Pos |
	pac.RCU_CFG0_APB1PSC_Msk<<pac.RCU_CFG0_APB1PSC_Pos |
	pac.RCU_CFG0_APB2PSC_Msk<<pac.RCU_CFG0_APB2PSC_Pos |
	pac.RCU_CFG0_ADCPSC_Msk<<pac.RCU_CFG0_ADCPSC_Pos |
	pac.RCU_CFG0_ADCPSC_2

const cfg0PLL = pac.RCU_CFG0_PLLSEL |
	pac.RCU_CFG0_PLLMF_Msk<<pac.RCU_CFG0_PLLMF_Pos |
	pac.RCU_CFG0_PLLMF_4 | pac.RCU_CFG0_PLLMF_5

// switchBits merges the source and prescaler fields of s into cfg0.
func (s *setup) switchBits(cfg0 uint32) uint32 {
	next := cfg0&^cfg0Switch |
		s.scs<<pac.RCU_CFG0_SCS_Pos |
		s.ahb<<pac.RCU_CFG0_AHBPSC_Pos |
		s.apb1<<pac.RCU_CFG0_APB1PSC_Pos |
		s.apb2<<pac.RCU_CFG0_APB2PSC_Pos |
		(s.adc&0x3)<<pac.RCU_CFG0_ADCPSC_Pos
	if s.adc&0x4 != 0 {
		next |= pac.RCU_CFG0_ADCPSC_2
	}
	return next
}

func withSCS(cfg0, scs uint32) uint32 {
	return cfg0&^(pac.RCU_CFG0_SCS_Msk<<pac.RCU_CFG0_SCS_Pos) | scs<<pac.RCU_CFG0_SCS_Pos
}

// pllState is the PLL configuration the system ran on before Freeze.
type pllState struct {
	cfg0, cfg1 uint32
}

func (r *RCU) apply(s *setup, cfg *Config) error {
	const op = "rcu.Freeze"
	regs, fmc := r.rcu.Regs, r.fmc.Regs

	prevWS := fmc.WS.Get() >> pac.FMC_WS_WSCNT_Pos & pac.FMC_WS_WSCNT_Msk
	if s.ws > prevWS {
		fmc.WS.ReplaceBits(s.ws, pac.FMC_WS_WSCNT_Msk, pac.FMC_WS_WSCNT_Pos)
	}
	var saved *pllState
	fail := func(what string) error {
		if saved != nil && !r.restorePLL(*saved, cfg.Limits) {
			return errcode.New(op, errcode.SourceNotReady,
				what+" not ready and the previous PLL did not relock; running from IRC8M")
		}
		if s.ws > prevWS {
			fmc.WS.ReplaceBits(prevWS, pac.FMC_WS_WSCNT_Msk, pac.FMC_WS_WSCNT_Pos)
		}
		return errcode.New(op, errcode.SourceNotReady, what+" not ready")
	}

	// The PLL cannot be reprogrammed while enabled, nor disabled while it
	// drives the system, so fall back to IRC8M first.
	if s.usePLL && regs.CTL.HasBits(pac.RCU_CTL_PLLEN) {
		if active(regs) == pac.RCU_SCS_PLL {
			regs.CTL.SetBits(pac.RCU_CTL_IRC8MEN)
			if !r.ready(&regs.CTL, pac.RCU_CTL_IRC8MSTB) {
				return fail("IRC8M")
			}
			cfg0 := regs.CFG0.Get()
			regs.CFG0.Set(withSCS(cfg0, pac.RCU_SCS_IRC8M))
			if !r.switched(regs, pac.RCU_SCS_IRC8M) {
				regs.CFG0.Set(cfg0)
				return fail("IRC8M switch")
			}
			saved = &pllState{cfg0: cfg0, cfg1: regs.CFG1.Get()}
		}
		regs.CTL.ClearBits(pac.RCU_CTL_PLLEN)
	}

	if s.hxtal {
		wasOn := regs.CTL.HasBits(pac.RCU_CTL_HXTALEN)
		if !wasOn {
			if cfg.HXTALBypass {
				regs.CTL.SetBits(pac.RCU_CTL_HXTALBPS)
			} else {
				regs.CTL.ClearBits(pac.RCU_CTL_HXTALBPS)
			}
		}
		regs.CTL.SetBits(pac.RCU_CTL_HXTALEN)
		if !r.ready(&regs.CTL, pac.RCU_CTL_HXTALSTB) {
			if !wasOn {
				regs.CTL.ClearBits(pac.RCU_CTL_HXTALEN)
			}
			return fail("HXTAL")
		}
	} else {
		regs.CTL.SetBits(pac.RCU_CTL_IRC8MEN)
		if !r.ready(&regs.CTL, pac.RCU_CTL_IRC8MSTB) {
			return fail("IRC8M")
		}
	}

	if s.usePLL {
		cfg0 := regs.CFG0.Get() &^ cfg0PLL
		cfg0 |= pllmfBits(s.pllmf)
		if s.hxtal {
			cfg0 |= pac.RCU_CFG0_PLLSEL
			regs.CFG1.ReplaceBits(s.predv-1, pac.RCU_CFG1_PREDV0_Msk, pac.RCU_CFG1_PREDV0_Pos)
		}
		regs.CFG0.Set(cfg0)
		regs.CTL.SetBits(pac.RCU_CTL_PLLEN)
		if !r.ready(&regs.CTL, pac.RCU_CTL_PLLSTB) {
			regs.CTL.ClearBits(pac.RCU_CTL_PLLEN)
			return fail("PLL")
		}
	}

	// Source and prescalers change in one write.
	prev := regs.CFG0.Get()
	regs.CFG0.Set(s.switchBits(prev))
	if !r.switched(regs, s.scs) {
		regs.CFG0.Set(prev)
		return fail("clock switch")
	}

	if s.ws < prevWS {
		fmc.WS.ReplaceBits(s.ws, pac.FMC_WS_WSCNT_Msk, pac.FMC_WS_WSCNT_Pos)
	}
	return nil
}

// restorePLL relocks the PLL described by old and switches back to it. It
// runs with the system on IRC8M. When the PLL does not relock the system
// stays on IRC8M with prescalers for the default tree, which becomes the
// recorded one, and restorePLL reports false.
func (r *RCU) restorePLL(old pllState, lim *Limits) bool {
	regs := r.rcu.Regs
	onIRC := withSCS(old.cfg0, pac.RCU_SCS_IRC8M)
	regs.CTL.ClearBits(pac.RCU_CTL_PLLEN)
	regs.CFG1.Set(old.cfg1)
	regs.CFG0.Set(onIRC)
	regs.CTL.SetBits(pac.RCU_CTL_PLLEN)
	if r.ready(&regs.CTL, pac.RCU_CTL_PLLSTB) {
		regs.CFG0.Set(old.cfg0)
		if r.switched(regs, pac.RCU_SCS_PLL) {
			return true
		}
		regs.CFG0.Set(onIRC)
	}
	regs.CTL.ClearBits(pac.RCU_CTL_PLLEN)

	// The IRC8M tree always resolves; it needs no PLL and no wait states.
	s, _ := plan(Config{Limits: lim})
	regs.CFG0.Set(s.switchBits(regs.CFG0.Get()))
	r.clocks, r.frozen = s.clocks, true
	return false
}

func active(regs *pac.RCU_Type) uint32 {
	return regs.CFG0.Get() >> pac.RCU_CFG0_SCSS_Pos & pac.RCU_CFG0_SCSS_Msk
}

func (r *RCU) ready(reg *pac.Register32, mask uint32) bool {
	return nb.Retry(StartupRetries, func() error {
		if reg.HasBits(mask) {
			return nil
		}
		return nb.ErrWouldBlock
	}) == nil
}

func (r *RCU) switched(regs *pac.RCU_Type, scs uint32) bool {
	return nb.Retry(StartupRetries, func() error {
		if active(regs) == scs {
			return nil
		}
		return nb.ErrWouldBlock
	}) == nil
}
