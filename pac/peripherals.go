package pac

import (
	"gd32hal/errcode"
	"gd32hal/internal/critical"
)

// Bus identifies the clock domain a peripheral hangs off.
type Bus uint8

const (
	AHB Bus = iota
	APB1
	APB2
)

func (b Bus) String() string {
	switch b {
	case AHB:
		return "AHB"
	case APB1:
		return "APB1"
	case APB2:
		return "APB2"
	}
	return "bus?"
}

// Gate locates a peripheral's clock enable and reset bits.
type Gate struct {
	Bus Bus
	Bit uint8
}

// Peripheral is the ownership token for one register block. A driver
// claims it on construction and releases it on Free; only the holder of a
// claimed token may touch Regs.
type Peripheral[T any] struct {
	Regs  *T
	Name  string
	Index uint8
	Gate  Gate

	claimed bool
}

// Claim marks the token owned. It fails if another driver holds it.
func (p *Peripheral[T]) Claim() error {
	s := critical.Enter()
	busy := p.claimed
	p.claimed = true
	critical.Exit(s)
	if busy {
		return errcode.New(p.Name, errcode.PeripheralInUse, "already claimed")
	}
	return nil
}

// Release returns the token so a new driver may claim it.
func (p *Peripheral[T]) Release() {
	s := critical.Enter()
	p.claimed = false
	critical.Exit(s)
}

// Claimed reports whether a driver holds the token.
func (p *Peripheral[T]) Claimed() bool {
	s := critical.Enter()
	c := p.claimed
	critical.Exit(s)
	return c
}

func (p *Peripheral[T]) unclaim() { p.claimed = false }

// Peripherals is the full set of tokens for the device.
type Peripherals struct {
	RCU  *Peripheral[RCU_Type]
	FMC  *Peripheral[FMC_Type]
	AFIO *Peripheral[AFIO_Type]

	GPIOA, GPIOB, GPIOC, GPIOD, GPIOE *Peripheral[GPIO_Type]

	USART0, USART1, USART2 *Peripheral[USART_Type]

	TIMER0, TIMER1, TIMER2, TIMER3 *Peripheral[TIMER_Type]

	DMA0 *Peripheral[DMA_Type]

	I2C0, I2C1 *Peripheral[I2C_Type]
	SPI0, SPI1 *Peripheral[SPI_Type]
	ADC0       *Peripheral[ADC_Type]
	CRC        *Peripheral[CRC_Type]
	CAN0, CAN1 *Peripheral[CAN_Type]
}

var taken bool

var device = Peripherals{
	RCU:  &Peripheral[RCU_Type]{Regs: RCU, Name: "RCU"},
	FMC:  &Peripheral[FMC_Type]{Regs: FMC, Name: "FMC"},
	AFIO: &Peripheral[AFIO_Type]{Regs: AFIO, Name: "AFIO", Gate: Gate{APB2, 0}},

	GPIOA: &Peripheral[GPIO_Type]{Regs: GPIOA, Name: "GPIOA", Index: 0, Gate: Gate{APB2, 2}},
	GPIOB: &Peripheral[GPIO_Type]{Regs: GPIOB, Name: "GPIOB", Index: 1, Gate: Gate{APB2, 3}},
	GPIOC: &Peripheral[GPIO_Type]{Regs: GPIOC, Name: "GPIOC", Index: 2, Gate: Gate{APB2, 4}},
	GPIOD: &Peripheral[GPIO_Type]{Regs: GPIOD, Name: "GPIOD", Index: 3, Gate: Gate{APB2, 5}},
	GPIOE: &Peripheral[GPIO_Type]{Regs: GPIOE, Name: "GPIOE", Index: 4, Gate: Gate{APB2, 6}},

	USART0: &Peripheral[USART_Type]{Regs: USART0, Name: "USART0", Index: 0, Gate: Gate{APB2, 14}},
	USART1: &Peripheral[USART_Type]{Regs: USART1, Name: "USART1", Index: 1, Gate: Gate{APB1, 17}},
	USART2: &Peripheral[USART_Type]{Regs: USART2, Name: "USART2", Index: 2, Gate: Gate{APB1, 18}},

	TIMER0: &Peripheral[TIMER_Type]{Regs: TIMER0, Name: "TIMER0", Index: 0, Gate: Gate{APB2, 11}},
	TIMER1: &Peripheral[TIMER_Type]{Regs: TIMER1, Name: "TIMER1", Index: 1, Gate: Gate{APB1, 0}},
	TIMER2: &Peripheral[TIMER_Type]{Regs: TIMER2, Name: "TIMER2", Index: 2, Gate: Gate{APB1, 1}},
	TIMER3: &Peripheral[TIMER_Type]{Regs: TIMER3, Name: "TIMER3", Index: 3, Gate: Gate{APB1, 2}},

	DMA0: &Peripheral[DMA_Type]{Regs: DMA0, Name: "DMA0", Gate: Gate{AHB, 0}},

	I2C0: &Peripheral[I2C_Type]{Regs: I2C0, Name: "I2C0", Index: 0, Gate: Gate{APB1, 21}},
	I2C1: &Peripheral[I2C_Type]{Regs: I2C1, Name: "I2C1", Index: 1, Gate: Gate{APB1, 22}},
	SPI0: &Peripheral[SPI_Type]{Regs: SPI0, Name: "SPI0", Index: 0, Gate: Gate{APB2, 12}},
	SPI1: &Peripheral[SPI_Type]{Regs: SPI1, Name: "SPI1", Index: 1, Gate: Gate{APB1, 14}},
	ADC0: &Peripheral[ADC_Type]{Regs: ADC0, Name: "ADC0", Index: 0, Gate: Gate{APB2, 9}},
	CRC:  &Peripheral[CRC_Type]{Regs: CRC, Name: "CRC", Gate: Gate{AHB, 6}},
	CAN0: &Peripheral[CAN_Type]{Regs: CAN0, Name: "CAN0", Index: 0, Gate: Gate{APB1, 25}},
	CAN1: &Peripheral[CAN_Type]{Regs: CAN1, Name: "CAN1", Index: 1, Gate: Gate{APB1, 26}},
}

// Take hands out the device tokens. It succeeds exactly once.
func Take() (*Peripherals, error) {
	s := critical.Enter()
	was := taken
	taken = true
	critical.Exit(s)
	if was {
		return nil, errcode.New("pac.Take", errcode.AlreadyTaken, "peripherals already taken")
	}
	return &device, nil
}

func unclaimAll() {
	d := &device
	d.RCU.unclaim()
	d.FMC.unclaim()
	d.AFIO.unclaim()
	for _, p := range []*Peripheral[GPIO_Type]{d.GPIOA, d.GPIOB, d.GPIOC, d.GPIOD, d.GPIOE} {
		p.unclaim()
	}
	for _, p := range []*Peripheral[USART_Type]{d.USART0, d.USART1, d.USART2} {
		p.unclaim()
	}
	for _, p := range []*Peripheral[TIMER_Type]{d.TIMER0, d.TIMER1, d.TIMER2, d.TIMER3} {
		p.unclaim()
	}
	d.DMA0.unclaim()
	d.I2C0.unclaim()
	d.I2C1.unclaim()
	d.SPI0.unclaim()
	d.SPI1.unclaim()
	d.ADC0.unclaim()
	d.CRC.unclaim()
	d.CAN0.unclaim()
	d.CAN1.unclaim()
}
