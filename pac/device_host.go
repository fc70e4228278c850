//go:build !gd32e103

package pac

import "gd32hal/internal/critical"

// Host register file. Each block is plain memory with a model installed by
// Reset so drivers see the side effects they rely on.
var (
	RCU  = new(RCU_Type)
	FMC  = new(FMC_Type)
	AFIO = new(AFIO_Type)

	GPIOA = new(GPIO_Type)
	GPIOB = new(GPIO_Type)
	GPIOC = new(GPIO_Type)
	GPIOD = new(GPIO_Type)
	GPIOE = new(GPIO_Type)

	USART0 = new(USART_Type)
	USART1 = new(USART_Type)
	USART2 = new(USART_Type)

	TIMER0 = new(TIMER_Type)
	TIMER1 = new(TIMER_Type)
	TIMER2 = new(TIMER_Type)
	TIMER3 = new(TIMER_Type)

	DMA0 = new(DMA_Type)

	I2C0 = new(I2C_Type)
	I2C1 = new(I2C_Type)
	SPI0 = new(SPI_Type)
	SPI1 = new(SPI_Type)
	ADC0 = new(ADC_Type)
	CRC  = new(CRC_Type)
	CAN0 = new(CAN_Type)
	CAN1 = new(CAN_Type)
)

// Sim holds fault knobs and inputs for the host model.
type Sim struct {
	HXTALFault       bool // HXTALSTB never rises
	PLLFault         bool // PLLSTB never rises
	PLLLockFailures  int  // the next n PLL enables never lock
	SwitchFault      bool // SCSS never follows SCS
	TxStall          bool // TBE and TC stay clear after a DATA write
	CalibrationStuck bool // ADC CLB never self-clears

	// ADC conversion result per channel.
	ADC [18]uint16
}

// Hardware is the live model configuration. Reset clears it.
var Hardware Sim

var txLog = map[*USART_Type][]byte{}

func init() { Reset() }

// Reset returns every register to its reset value, clears the fault knobs
// and makes the tokens available to Take again.
func Reset() {
	s := critical.Enter()
	defer critical.Exit(s)

	taken = false
	unclaimAll()
	Hardware = Sim{}
	txLog = map[*USART_Type][]byte{}

	resetRCU()
	*FMC = FMC_Type{}
	*AFIO = AFIO_Type{}
	for _, g := range []*GPIO_Type{GPIOA, GPIOB, GPIOC, GPIOD, GPIOE} {
		resetGPIO(g)
	}
	for _, u := range []*USART_Type{USART0, USART1, USART2} {
		resetUSART(u)
	}
	for _, t := range []*TIMER_Type{TIMER0, TIMER1, TIMER2, TIMER3} {
		resetTIMER(t)
	}
	resetDMA(DMA0)
	*I2C0 = I2C_Type{}
	*I2C1 = I2C_Type{}
	resetSPI(SPI0)
	resetSPI(SPI1)
	resetADC(ADC0)
	resetCRC(CRC)
	resetCAN(CAN0)
	resetCAN(CAN1)
}

func resetRCU() {
	r := RCU
	*r = RCU_Type{}
	r.CTL.Poke(0x0000_0083) // IRC8M on and stable, trim at midpoint
	pllStuck := false
	r.CTL.Model(nil, func(old, v uint32) uint32 {
		if old&RCU_CTL_PLLEN == 0 && v&RCU_CTL_PLLEN != 0 {
			pllStuck = Hardware.PLLLockFailures > 0
			if pllStuck {
				Hardware.PLLLockFailures--
			}
		}
		v &^= RCU_CTL_IRC8MSTB | RCU_CTL_HXTALSTB | RCU_CTL_PLLSTB
		if v&RCU_CTL_IRC8MEN != 0 {
			v |= RCU_CTL_IRC8MSTB
		}
		if v&RCU_CTL_HXTALEN != 0 && !Hardware.HXTALFault {
			v |= RCU_CTL_HXTALSTB
		}
		if v&RCU_CTL_PLLEN != 0 && !Hardware.PLLFault && !pllStuck {
			v |= RCU_CTL_PLLSTB
		}
		return v
	})
	r.CFG0.Model(nil, func(old, v uint32) uint32 {
		scss := old >> RCU_CFG0_SCSS_Pos & RCU_CFG0_SCSS_Msk
		scs := v >> RCU_CFG0_SCS_Pos & RCU_CFG0_SCS_Msk
		ready := RCU_CTL_IRC8MSTB
		switch scs {
		case RCU_SCS_HXTAL:
			ready = RCU_CTL_HXTALSTB
		case RCU_SCS_PLL:
			ready = RCU_CTL_PLLSTB
		}
		if !Hardware.SwitchFault && r.CTL.Peek()&uint32(ready) != 0 {
			scss = scs
		}
		return v&^(RCU_CFG0_SCSS_Msk<<RCU_CFG0_SCSS_Pos) | scss<<RCU_CFG0_SCSS_Pos
	})
}

func resetGPIO(g *GPIO_Type) {
	*g = GPIO_Type{}
	g.CTL0.Poke(0x4444_4444)
	g.CTL1.Poke(0x4444_4444)
	drive := func(set, clr uint32) {
		octl := (g.OCTL.Peek() | set) &^ (clr &^ set)
		changed := (set | clr) & 0xFFFF
		g.OCTL.Poke(octl)
		g.ISTAT.Poke(g.ISTAT.Peek()&^changed | octl&changed)
	}
	g.BOP.Model(nil, func(_, v uint32) uint32 {
		drive(v&0xFFFF, v>>16)
		return 0
	})
	g.BC.Model(nil, func(_, v uint32) uint32 {
		drive(0, v&0xFFFF)
		return 0
	})
}

func resetUSART(u *USART_Type) {
	*u = USART_Type{}
	u.STAT.Poke(USART_STAT_TBE | USART_STAT_TC)
	u.STAT.Model(nil, func(old, v uint32) uint32 { return old & v })
	const rxFlags = USART_STAT_RBNE | USART_STAT_ORERR | USART_STAT_FERR | USART_STAT_NERR | USART_STAT_PERR | USART_STAT_IDLEF
	u.DATA.Model(func(v uint32) uint32 {
		u.STAT.Poke(u.STAT.Peek() &^ rxFlags)
		return v & 0x1FF
	}, func(old, v uint32) uint32 {
		txLog[u] = append(txLog[u], byte(v))
		if Hardware.TxStall {
			u.STAT.Poke(u.STAT.Peek() &^ (USART_STAT_TBE | USART_STAT_TC))
		} else {
			u.STAT.Poke(u.STAT.Peek() | USART_STAT_TBE | USART_STAT_TC)
		}
		// DATA is shared by both directions; keep the received word.
		return old
	})
}

// TxLog returns the bytes written to u's data register since Reset.
func TxLog(u *USART_Type) []byte {
	s := critical.Enter()
	defer critical.Exit(s)
	return append([]byte(nil), txLog[u]...)
}

// InjectRx delivers b to u's receiver with the given extra status flags.
// A frame arriving while RBNE is still set is lost and raises ORERR.
func InjectRx(u *USART_Type, b uint16, flags uint32) {
	stat := u.STAT.Peek()
	if stat&USART_STAT_RBNE != 0 {
		u.STAT.Poke(stat | USART_STAT_ORERR | flags)
		return
	}
	u.DATA.Poke(uint32(b))
	u.STAT.Poke(stat | USART_STAT_RBNE | flags)
}

func resetTIMER(t *TIMER_Type) {
	*t = TIMER_Type{}
	t.INTF.Model(nil, func(old, v uint32) uint32 { return old & v })
	t.SWEVG.Model(nil, func(_, v uint32) uint32 {
		if v&TIMER_SWEVG_UPG != 0 {
			t.CNT.Poke(0)
			if t.CTL0.Peek()&TIMER_CTL0_UPS == 0 {
				t.INTF.Poke(t.INTF.Peek() | TIMER_INTF_UPIF)
			}
		}
		return 0
	})
}

func resetDMA(d *DMA_Type) {
	*d = DMA_Type{}
	d.INTC.Model(nil, func(_, v uint32) uint32 {
		clr := v
		for ch := 0; ch < len(d.CH); ch++ {
			if v>>(4*ch)&DMA_FLAG_GIF != 0 {
				clr |= 0xF << (4 * ch)
			}
		}
		d.INTF.Poke(d.INTF.Peek() &^ clr)
		return 0
	})
}

func resetSPI(p *SPI_Type) {
	*p = SPI_Type{}
	p.STAT.Poke(SPI_STAT_TBE)
	p.STAT.Model(nil, func(old, v uint32) uint32 { return old & v })
	p.DATA.Model(func(v uint32) uint32 {
		p.STAT.Poke(p.STAT.Peek() &^ (SPI_STAT_RBNE | SPI_STAT_RXORERR))
		return v
	}, func(_, v uint32) uint32 {
		stat := p.STAT.Peek() | SPI_STAT_TBE | SPI_STAT_RBNE
		if p.STAT.Peek()&SPI_STAT_RBNE != 0 {
			stat |= SPI_STAT_RXORERR
		}
		p.STAT.Poke(stat)
		// MOSI wired to MISO.
		return v
	})
}

func resetADC(a *ADC_Type) {
	*a = ADC_Type{}
	a.STAT.Model(nil, func(old, v uint32) uint32 { return old & v })
	a.RDATA.Model(func(v uint32) uint32 {
		a.STAT.Poke(a.STAT.Peek() &^ ADC_STAT_EOC)
		return v
	}, nil)
	a.CTL1.Model(nil, func(_, v uint32) uint32 {
		v &^= ADC_CTL1_RSTCLB
		if !Hardware.CalibrationStuck {
			v &^= ADC_CTL1_CLB
		}
		if v&ADC_CTL1_SWRCST != 0 && v&ADC_CTL1_ADCON != 0 {
			v &^= ADC_CTL1_SWRCST
			ch := a.RSQ2.Peek() >> ADC_RSQ2_RSQ0_Pos & ADC_RSQ2_RSQ0_Msk
			if int(ch) < len(Hardware.ADC) {
				a.RDATA.Poke(uint32(Hardware.ADC[ch]))
			}
			a.STAT.Poke(a.STAT.Peek() | ADC_STAT_EOC)
		}
		return v
	})
}

func resetCRC(c *CRC_Type) {
	*c = CRC_Type{}
	c.DATA.Poke(0xFFFF_FFFF)
	c.DATA.Model(nil, func(old, v uint32) uint32 { return crc32Word(old, v) })
	c.CTL.Model(nil, func(_, v uint32) uint32 {
		if v&CRC_CTL_RST != 0 {
			c.DATA.Poke(0xFFFF_FFFF)
		}
		return v &^ CRC_CTL_RST
	})
}

// crc32Word folds one word into crc, MSB first, polynomial 0x04C11DB7.
func crc32Word(crc, w uint32) uint32 {
	crc ^= w
	for i := 0; i < 32; i++ {
		if crc&0x8000_0000 != 0 {
			crc = crc<<1 ^ 0x04C1_1DB7
		} else {
			crc <<= 1
		}
	}
	return crc
}

func resetCAN(c *CAN_Type) {
	*c = CAN_Type{}
	c.CTL.Poke(CAN_CTL_SLPWMOD)
	c.STAT.Poke(CAN_STAT_SLPWS)
	c.CTL.Model(nil, func(_, v uint32) uint32 {
		var st uint32
		if v&CAN_CTL_IWMOD != 0 {
			st |= CAN_STAT_IWS
		}
		if v&CAN_CTL_SLPWMOD != 0 {
			st |= CAN_STAT_SLPWS
		}
		c.STAT.Poke(c.STAT.Peek()&^(CAN_STAT_IWS|CAN_STAT_SLPWS) | st)
		return v
	})
}
