package serial

import (
	"gd32hal/errcode"
	"gd32hal/pac"
	"gd32hal/x/mathx"
	"gd32hal/x/timex"
)

type WordLength uint8

const (
	Bits8 WordLength = iota
	Bits9
)

type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// StopBits values match the CTL1 STB encoding.
type StopBits uint8

const (
	Stop1 StopBits = iota
	Stop0_5
	Stop2
	Stop1_5
)

type FlowControl uint8

const (
	FlowNone FlowControl = iota
	// FlowRTSCTS enables hardware handshaking; the RTS and CTS pins must be
	// configured as alternate function and input by the caller.
	FlowRTSCTS
)

// DefaultBaud is used when Config.Baud is zero.
const DefaultBaud timex.Bps = 115_200

// Config is the line format. The zero value is 115200 8N1.
type Config struct {
	Baud        timex.Bps
	WordLength  WordLength
	Parity      Parity
	StopBits    StopBits
	FlowControl FlowControl
}

func (c Config) baud() timex.Bps {
	if c.Baud == 0 {
		return DefaultBaud
	}
	return c.Baud
}

// registers returns the CTL0 format bits, the STB field and the CTL2 bits.
func (c Config) registers(op string) (ctl0, stb, ctl2 uint32, err error) {
	switch c.Parity {
	case ParityNone:
		if c.WordLength == Bits9 {
			ctl0 |= pac.USART_CTL0_WL
		}
	case ParityEven, ParityOdd:
		// The parity bit takes the ninth position.
		if c.WordLength == Bits9 {
			return 0, 0, 0, errcode.New(op, errcode.InvalidParams, "parity needs 8 data bits")
		}
		ctl0 |= pac.USART_CTL0_WL | pac.USART_CTL0_PCEN
		if c.Parity == ParityOdd {
			ctl0 |= pac.USART_CTL0_PM
		}
	default:
		return 0, 0, 0, errcode.New(op, errcode.InvalidParams, "unknown parity")
	}
	if c.StopBits > Stop1_5 {
		return 0, 0, 0, errcode.New(op, errcode.InvalidParams, "unknown stop bits")
	}
	stb = uint32(c.StopBits)
	if c.FlowControl == FlowRTSCTS {
		ctl2 |= pac.USART_CTL2_RTSEN | pac.USART_CTL2_CTSEN
	}
	return ctl0, stb, ctl2, nil
}

// divisor returns the BAUD register value for baud at pclk: the nearest
// integer to pclk/baud, which packs the 16x oversampling mantissa and
// fraction. The realised rate may differ from the request by the rounding.
func divisor(op string, pclk timex.Hertz, baud timex.Bps) (uint32, error) {
	div := mathx.RoundDiv(uint32(pclk), uint32(baud))
	if div < 16 || div > 0xFFFF {
		return 0, errcode.New(op, errcode.InvalidParams,
			"baud "+timex.Hertz(baud).String()+" unreachable from "+pclk.String())
	}
	return div, nil
}
