//go:build gd32e103

package pac

import "unsafe"

var (
	RCU  = (*RCU_Type)(unsafe.Pointer(uintptr(0x40021000)))
	FMC  = (*FMC_Type)(unsafe.Pointer(uintptr(0x40022000)))
	AFIO = (*AFIO_Type)(unsafe.Pointer(uintptr(0x40010000)))

	GPIOA = (*GPIO_Type)(unsafe.Pointer(uintptr(0x40010800)))
	GPIOB = (*GPIO_Type)(unsafe.Pointer(uintptr(0x40010C00)))
	GPIOC = (*GPIO_Type)(unsafe.Pointer(uintptr(0x40011000)))
	GPIOD = (*GPIO_Type)(unsafe.Pointer(uintptr(0x40011400)))
	GPIOE = (*GPIO_Type)(unsafe.Pointer(uintptr(0x40011800)))

	USART0 = (*USART_Type)(unsafe.Pointer(uintptr(0x40013800)))
	USART1 = (*USART_Type)(unsafe.Pointer(uintptr(0x40004400)))
	USART2 = (*USART_Type)(unsafe.Pointer(uintptr(0x40004800)))

	TIMER0 = (*TIMER_Type)(unsafe.Pointer(uintptr(0x40012C00)))
	TIMER1 = (*TIMER_Type)(unsafe.Pointer(uintptr(0x40000000)))
	TIMER2 = (*TIMER_Type)(unsafe.Pointer(uintptr(0x40000400)))
	TIMER3 = (*TIMER_Type)(unsafe.Pointer(uintptr(0x40000800)))

	DMA0 = (*DMA_Type)(unsafe.Pointer(uintptr(0x40020000)))

	I2C0 = (*I2C_Type)(unsafe.Pointer(uintptr(0x40005400)))
	I2C1 = (*I2C_Type)(unsafe.Pointer(uintptr(0x40005800)))
	SPI0 = (*SPI_Type)(unsafe.Pointer(uintptr(0x40013000)))
	SPI1 = (*SPI_Type)(unsafe.Pointer(uintptr(0x40003800)))
	ADC0 = (*ADC_Type)(unsafe.Pointer(uintptr(0x40012400)))
	CRC  = (*CRC_Type)(unsafe.Pointer(uintptr(0x40023000)))
	CAN0 = (*CAN_Type)(unsafe.Pointer(uintptr(0x40006400)))
	CAN1 = (*CAN_Type)(unsafe.Pointer(uintptr(0x40006800)))
)

// Layout checks: indexing a one-element array with a non-zero constant
// fails to compile if a block drifts from its documented size.
var (
	_ = [1]struct{}{}[unsafe.Sizeof(RCU_Type{})-0x30]
	_ = [1]struct{}{}[unsafe.Sizeof(FMC_Type{})-0x24]
	_ = [1]struct{}{}[unsafe.Sizeof(AFIO_Type{})-0x20]
	_ = [1]struct{}{}[unsafe.Sizeof(USART_Type{})-0x1C]
	_ = [1]struct{}{}[unsafe.Sizeof(TIMER_Type{})-0x50]
	_ = [1]struct{}{}[unsafe.Sizeof(DMA_Type{})-0x94]
	_ = [1]struct{}{}[unsafe.Sizeof(I2C_Type{})-0x24]
	_ = [1]struct{}{}[unsafe.Sizeof(ADC_Type{})-0x50]
)

