// Package pac is the register access layer for the GD32E10x: register block
// layouts, bit positions, base addresses and the ownership tokens handed to
// drivers.
//
// Field constants follow the device-file convention: NAME for a single bit,
// NAME_Pos and NAME_Msk (unshifted width mask) for multi-bit fields, ready
// for Register32.ReplaceBits.
package pac

// Reset and clock unit.
type RCU_Type struct {
	CTL     Register32 // 0x00
	CFG0    Register32 // 0x04
	INT     Register32 // 0x08
	APB2RST Register32 // 0x0C
	APB1RST Register32 // 0x10
	AHBEN   Register32 // 0x14
	APB2EN  Register32 // 0x18
	APB1EN  Register32 // 0x1C
	BDCTL   Register32 // 0x20
	RSTSCK  Register32 // 0x24
	AHBRST  Register32 // 0x28
	CFG1    Register32 // 0x2C
}

const (
	RCU_CTL_IRC8MEN  = 1 << 0
	RCU_CTL_IRC8MSTB = 1 << 1
	RCU_CTL_HXTALEN  = 1 << 16
	RCU_CTL_HXTALSTB = 1 << 17
	RCU_CTL_HXTALBPS = 1 << 18
	RCU_CTL_CKMEN    = 1 << 19
	RCU_CTL_PLLEN    = 1 << 24
	RCU_CTL_PLLSTB   = 1 << 25

	RCU_CFG0_SCS_Pos     = 0
	RCU_CFG0_SCS_Msk     = 0x3
	RCU_CFG0_SCSS_Pos    = 2
	RCU_CFG0_SCSS_Msk    = 0x3
	RCU_CFG0_AHBPSC_Pos  = 4
	RCU_CFG0_AHBPSC_Msk  = 0xF
	RCU_CFG0_APB1PSC_Pos = 8
	RCU_CFG0_APB1PSC_Msk = 0x7
	RCU_CFG0_APB2PSC_Pos = 11
	RCU_CFG0_APB2PSC_Msk = 0x7
	RCU_CFG0_ADCPSC_Pos  = 14
	RCU_CFG0_ADCPSC_Msk  = 0x3
	RCU_CFG0_PLLSEL      = 1 << 16
	RCU_CFG0_PLLMF_Pos   = 18
	RCU_CFG0_PLLMF_Msk   = 0xF
	RCU_CFG0_PLLMF_4     = 1 << 27
	RCU_CFG0_ADCPSC_2    = 1 << 28
	RCU_CFG0_PLLMF_5     = 1 << 30

	// System clock switch values for SCS and SCSS.
	RCU_SCS_IRC8M = 0
	RCU_SCS_HXTAL = 1
	RCU_SCS_PLL   = 2

	RCU_CFG1_PREDV0_Pos = 0
	RCU_CFG1_PREDV0_Msk = 0xF
)

// Flash memory controller.
type FMC_Type struct {
	WS     Register32 // 0x00
	KEY    Register32 // 0x04
	OBKEY  Register32 // 0x08
	STAT   Register32 // 0x0C
	CTL    Register32 // 0x10
	ADDR   Register32 // 0x14
	_      Register32 // 0x18
	OBSTAT Register32 // 0x1C
	WP     Register32 // 0x20
}

const (
	FMC_WS_WSCNT_Pos = 0
	FMC_WS_WSCNT_Msk = 0x7
)

// General purpose I/O port.
type GPIO_Type struct {
	CTL0  Register32 // 0x00 pins 0-7
	CTL1  Register32 // 0x04 pins 8-15
	ISTAT Register32 // 0x08
	OCTL  Register32 // 0x0C
	BOP   Register32 // 0x10
	BC    Register32 // 0x14
	LOCK  Register32 // 0x18
}

// Alternate function I/O.
type AFIO_Type struct {
	EC     Register32    // 0x00
	PCF0   Register32    // 0x04
	EXTISS [4]Register32 // 0x08
	_      Register32    // 0x18
	PCF1   Register32    // 0x1C
}

const (
	AFIO_PCF0_SPI0_REMAP_Pos   = 0
	AFIO_PCF0_I2C0_REMAP_Pos   = 1
	AFIO_PCF0_USART0_REMAP_Pos = 2
	AFIO_PCF0_USART1_REMAP_Pos = 3
	AFIO_PCF0_USART2_REMAP_Pos = 4
	AFIO_PCF0_TIMER0_REMAP_Pos = 6
	AFIO_PCF0_TIMER1_REMAP_Pos = 8
	AFIO_PCF0_TIMER2_REMAP_Pos = 10
	AFIO_PCF0_TIMER3_REMAP_Pos = 12
	AFIO_PCF0_CAN0_REMAP_Pos   = 13
	AFIO_PCF0_PD01_REMAP_Pos   = 15
	AFIO_PCF0_CAN1_REMAP_Pos   = 22
	AFIO_PCF0_SWJ_CFG_Pos      = 24
	AFIO_PCF0_SWJ_CFG_Msk      = 0x7

	// SWJ_CFG values.
	AFIO_SWJ_SWD_ONLY = 0x2
	AFIO_SWJ_DISABLED = 0x4
)

// Universal synchronous/asynchronous receiver transmitter.
type USART_Type struct {
	STAT Register32 // 0x00
	DATA Register32 // 0x04
	BAUD Register32 // 0x08
	CTL0 Register32 // 0x0C
	CTL1 Register32 // 0x10
	CTL2 Register32 // 0x14
	GP   Register32 // 0x18
}

const (
	USART_STAT_PERR  = 1 << 0
	USART_STAT_FERR  = 1 << 1
	USART_STAT_NERR  = 1 << 2
	USART_STAT_ORERR = 1 << 3
	USART_STAT_IDLEF = 1 << 4
	USART_STAT_RBNE  = 1 << 5
	USART_STAT_TC    = 1 << 6
	USART_STAT_TBE   = 1 << 7

	USART_CTL0_REN    = 1 << 2
	USART_CTL0_TEN    = 1 << 3
	USART_CTL0_IDLEIE = 1 << 4
	USART_CTL0_RBNEIE = 1 << 5
	USART_CTL0_TCIE   = 1 << 6
	USART_CTL0_TBEIE  = 1 << 7
	USART_CTL0_PERRIE = 1 << 8
	USART_CTL0_PM     = 1 << 9
	USART_CTL0_PCEN   = 1 << 10
	USART_CTL0_WL     = 1 << 12
	USART_CTL0_UEN    = 1 << 13

	USART_CTL1_STB_Pos = 12
	USART_CTL1_STB_Msk = 0x3

	USART_CTL2_ERRIE = 1 << 0
	USART_CTL2_DENR  = 1 << 6
	USART_CTL2_DENT  = 1 << 7
	USART_CTL2_RTSEN = 1 << 8
	USART_CTL2_CTSEN = 1 << 9
)

// Advanced (TIMER0) and general purpose (TIMER1-3) timers share a layout.
type TIMER_Type struct {
	CTL0     Register32    // 0x00
	CTL1     Register32    // 0x04
	SMCFG    Register32    // 0x08
	DMAINTEN Register32    // 0x0C
	INTF     Register32    // 0x10
	SWEVG    Register32    // 0x14
	CHCTL0   Register32    // 0x18
	CHCTL1   Register32    // 0x1C
	CHCTL2   Register32    // 0x20
	CNT      Register32    // 0x24
	PSC      Register32    // 0x28
	CAR      Register32    // 0x2C
	CREP     Register32    // 0x30
	CHCV     [4]Register32 // 0x34
	CCHP     Register32    // 0x44
	DMACFG   Register32    // 0x48
	DMATB    Register32    // 0x4C
}

const (
	TIMER_CTL0_CEN   = 1 << 0
	TIMER_CTL0_UPDIS = 1 << 1
	TIMER_CTL0_UPS   = 1 << 2
	TIMER_CTL0_SPM   = 1 << 3
	TIMER_CTL0_DIR   = 1 << 4
	TIMER_CTL0_ARSE  = 1 << 7

	TIMER_DMAINTEN_UPIE = 1 << 0
	TIMER_INTF_UPIF     = 1 << 0
	TIMER_SWEVG_UPG     = 1 << 0

	// Per-channel fields in CHCTL0 (channels 0,1) and CHCTL1 (2,3), offset
	// by 8 bits for the odd channel.
	TIMER_CHCTL_CHMS_Msk     = 0x3
	TIMER_CHCTL_CHCOMSEN     = 1 << 3
	TIMER_CHCTL_CHCOMCTL_Pos = 4
	TIMER_CHCTL_CHCOMCTL_Msk = 0x7
	TIMER_OC_MODE_PWM0       = 0x6

	// Per-channel bits in CHCTL2, offset by 4 bits per channel.
	TIMER_CHCTL2_CHEN = 1 << 0
	TIMER_CHCTL2_CHP  = 1 << 1

	TIMER_CCHP_POEN = 1 << 15
)

// DMA channel registers, repeated every 0x14 bytes.
type DMAChannel_Type struct {
	CTL   Register32 // 0x00
	CNT   Register32 // 0x04
	PADDR Register32 // 0x08
	MADDR Register32 // 0x0C
	_     Register32 // 0x10
}

// Direct memory access controller.
type DMA_Type struct {
	INTF Register32         // 0x00
	INTC Register32         // 0x04
	CH   [7]DMAChannel_Type // 0x08
}

const (
	DMA_CTL_CHEN       = 1 << 0
	DMA_CTL_FTFIE      = 1 << 1
	DMA_CTL_HTFIE      = 1 << 2
	DMA_CTL_ERRIE      = 1 << 3
	DMA_CTL_DIR        = 1 << 4
	DMA_CTL_CMEN       = 1 << 5
	DMA_CTL_PNAGA      = 1 << 6
	DMA_CTL_MNAGA      = 1 << 7
	DMA_CTL_PWIDTH_Pos = 8
	DMA_CTL_MWIDTH_Pos = 10
	DMA_CTL_WIDTH_Msk  = 0x3
	DMA_CTL_PRIO_Pos   = 12
	DMA_CTL_PRIO_Msk   = 0x3
	DMA_CTL_M2M        = 1 << 14

	// Flag bits within a channel's 4-bit group of INTF/INTC.
	DMA_FLAG_GIF = 1 << 0
	DMA_FLAG_FTF = 1 << 1
	DMA_FLAG_HTF = 1 << 2
	DMA_FLAG_ERR = 1 << 3
)

// Inter-integrated circuit interface.
type I2C_Type struct {
	CTL0   Register32 // 0x00
	CTL1   Register32 // 0x04
	SADDR0 Register32 // 0x08
	SADDR1 Register32 // 0x0C
	DATA   Register32 // 0x10
	STAT0  Register32 // 0x14
	STAT1  Register32 // 0x18
	CKCFG  Register32 // 0x1C
	RT     Register32 // 0x20
}

const (
	I2C_CTL0_I2CEN  = 1 << 0
	I2C_CTL0_START  = 1 << 8
	I2C_CTL0_STOP   = 1 << 9
	I2C_CTL0_ACKEN  = 1 << 10
	I2C_CTL0_SRESET = 1 << 15

	I2C_CTL1_I2CCLK_Pos = 0
	I2C_CTL1_I2CCLK_Msk = 0x3F

	I2C_STAT0_SBSEND  = 1 << 0
	I2C_STAT0_ADDSEND = 1 << 1
	I2C_STAT0_BTC     = 1 << 2
	I2C_STAT0_STPDET  = 1 << 4
	I2C_STAT0_RBNE    = 1 << 6
	I2C_STAT0_TBE     = 1 << 7
	I2C_STAT0_BERR    = 1 << 8
	I2C_STAT0_LOSTARB = 1 << 9
	I2C_STAT0_AERR    = 1 << 10
	I2C_STAT0_OUERR   = 1 << 11

	I2C_STAT1_MASTER = 1 << 0
	I2C_STAT1_I2CBSY = 1 << 1

	I2C_CKCFG_CLKC_Msk = 0xFFF
	I2C_CKCFG_DTCY     = 1 << 14
	I2C_CKCFG_FAST     = 1 << 15
)

// Serial peripheral interface.
type SPI_Type struct {
	CTL0    Register32 // 0x00
	CTL1    Register32 // 0x04
	STAT    Register32 // 0x08
	DATA    Register32 // 0x0C
	CRCPOLY Register32 // 0x10
	RCRC    Register32 // 0x14
	TCRC    Register32 // 0x18
	I2SCTL  Register32 // 0x1C
	I2SPSC  Register32 // 0x20
}

const (
	SPI_CTL0_CKPH    = 1 << 0
	SPI_CTL0_CKPL    = 1 << 1
	SPI_CTL0_MSTMOD  = 1 << 2
	SPI_CTL0_PSC_Pos = 3
	SPI_CTL0_PSC_Msk = 0x7
	SPI_CTL0_SPIEN   = 1 << 6
	SPI_CTL0_LF      = 1 << 7
	SPI_CTL0_SWNSS   = 1 << 8
	SPI_CTL0_SWNSSEN = 1 << 9

	SPI_STAT_RBNE    = 1 << 0
	SPI_STAT_TBE     = 1 << 1
	SPI_STAT_CRCERR  = 1 << 4
	SPI_STAT_CONFERR = 1 << 5
	SPI_STAT_RXORERR = 1 << 6
	SPI_STAT_TRANS   = 1 << 7
)

// Analog to digital converter.
type ADC_Type struct {
	STAT   Register32    // 0x00
	CTL0   Register32    // 0x04
	CTL1   Register32    // 0x08
	SAMPT0 Register32    // 0x0C channels 10-17
	SAMPT1 Register32    // 0x10 channels 0-9
	IOFF   [4]Register32 // 0x14
	WDHT   Register32    // 0x24
	WDLT   Register32    // 0x28
	RSQ0   Register32    // 0x2C
	RSQ1   Register32    // 0x30
	RSQ2   Register32    // 0x34
	ISQ    Register32    // 0x38
	IDATA  [4]Register32 // 0x3C
	RDATA  Register32    // 0x4C
}

const (
	ADC_STAT_EOC = 1 << 1

	ADC_CTL0_SM = 1 << 8

	ADC_CTL1_ADCON     = 1 << 0
	ADC_CTL1_CTN       = 1 << 1
	ADC_CTL1_CLB       = 1 << 2
	ADC_CTL1_RSTCLB    = 1 << 3
	ADC_CTL1_DMA       = 1 << 8
	ADC_CTL1_DAL       = 1 << 11
	ADC_CTL1_ETSRC_Pos = 17
	ADC_CTL1_ETSRC_Msk = 0x7
	ADC_CTL1_ETERC     = 1 << 20
	ADC_CTL1_SWRCST    = 1 << 22

	ADC_ETSRC_SWRCST = 0x7

	ADC_SAMPT_Msk = 0x7

	ADC_RSQ0_RL_Pos   = 20
	ADC_RSQ0_RL_Msk   = 0xF
	ADC_RSQ2_RSQ0_Pos = 0
	ADC_RSQ2_RSQ0_Msk = 0x1F
)

// Cyclic redundancy check unit.
type CRC_Type struct {
	DATA  Register32 // 0x00
	FDATA Register32 // 0x04
	CTL   Register32 // 0x08
}

const CRC_CTL_RST = 1 << 0

// Controller area network, first registers only.
type CAN_Type struct {
	CTL    Register32 // 0x00
	STAT   Register32 // 0x04
	TSTAT  Register32 // 0x08
	RFIFO0 Register32 // 0x0C
	RFIFO1 Register32 // 0x10
	INTEN  Register32 // 0x14
	ERR    Register32 // 0x18
	BT     Register32 // 0x1C
}

const (
	CAN_CTL_IWMOD   = 1 << 0
	CAN_CTL_SLPWMOD = 1 << 1
	CAN_STAT_IWS    = 1 << 0
	CAN_STAT_SLPWS  = 1 << 1
)
