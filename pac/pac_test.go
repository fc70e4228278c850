//go:build !gd32e103

package pac

import (
	"errors"
	"testing"

	"gd32hal/errcode"
)

func TestTakeOnce(t *testing.T) {
	Reset()
	p, err := Take()
	if err != nil || p == nil {
		t.Fatalf("first Take: %v", err)
	}
	if _, err := Take(); !errors.Is(err, errcode.AlreadyTaken) {
		t.Fatalf("second Take: %v", err)
	}
	Reset()
	if _, err := Take(); err != nil {
		t.Fatalf("Take after Reset: %v", err)
	}
}

func TestClaimRelease(t *testing.T) {
	Reset()
	p, _ := Take()
	if err := p.USART0.Claim(); err != nil {
		t.Fatal(err)
	}
	if err := p.USART0.Claim(); !errors.Is(err, errcode.PeripheralInUse) {
		t.Fatalf("double claim: %v", err)
	}
	p.USART0.Release()
	if p.USART0.Claimed() {
		t.Fatal("still claimed after Release")
	}
	if err := p.USART0.Claim(); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
}

func TestReplaceBits(t *testing.T) {
	var r Register32
	r.Set(0xFFFF_FFFF)
	r.ReplaceBits(0x5, 0xF, 8)
	if got := r.Get(); got != 0xFFFF_F5FF {
		t.Fatalf("got %#x", got)
	}
	if !r.HasBits(0x100) || r.HasBits(0x200) {
		t.Fatal("HasBits")
	}
}

func TestRCUReadyBitsFollowEnables(t *testing.T) {
	Reset()
	RCU.CTL.SetBits(RCU_CTL_HXTALEN)
	if !RCU.CTL.HasBits(RCU_CTL_HXTALSTB) {
		t.Fatal("HXTALSTB did not follow HXTALEN")
	}
	RCU.CFG0.ReplaceBits(RCU_SCS_HXTAL, RCU_CFG0_SCS_Msk, RCU_CFG0_SCS_Pos)
	if got := RCU.CFG0.Get() >> RCU_CFG0_SCSS_Pos & RCU_CFG0_SCSS_Msk; got != RCU_SCS_HXTAL {
		t.Fatalf("SCSS=%d", got)
	}

	Reset()
	Hardware.HXTALFault = true
	RCU.CTL.SetBits(RCU_CTL_HXTALEN)
	if RCU.CTL.HasBits(RCU_CTL_HXTALSTB) {
		t.Fatal("HXTALSTB set despite fault")
	}
	RCU.CFG0.ReplaceBits(RCU_SCS_HXTAL, RCU_CFG0_SCS_Msk, RCU_CFG0_SCS_Pos)
	if got := RCU.CFG0.Get() >> RCU_CFG0_SCSS_Pos & RCU_CFG0_SCSS_Msk; got != RCU_SCS_IRC8M {
		t.Fatalf("switched to an unready source: SCSS=%d", got)
	}
}

func TestUSARTModel(t *testing.T) {
	Reset()
	USART1.DATA.Set('h')
	USART1.DATA.Set('i')
	if got := string(TxLog(USART1)); got != "hi" {
		t.Fatalf("tx log %q", got)
	}
	InjectRx(USART1, 'a', 0)
	InjectRx(USART1, 'b', 0)
	stat := USART1.STAT.Get()
	if stat&USART_STAT_ORERR == 0 || stat&USART_STAT_RBNE == 0 {
		t.Fatalf("stat=%#x", stat)
	}
	if got := USART1.DATA.Get(); got != 'a' {
		t.Fatalf("data=%q", rune(got))
	}
	if USART1.STAT.Get()&(USART_STAT_ORERR|USART_STAT_RBNE) != 0 {
		t.Fatal("data read did not clear flags")
	}
}

func TestCRCModel(t *testing.T) {
	Reset()
	CRC.DATA.Set(0x1234_5678)
	if got := CRC.DATA.Get(); got != 0xDF8A_8A2B {
		t.Fatalf("crc=%#x", got)
	}
	CRC.CTL.Set(CRC_CTL_RST)
	if CRC.DATA.Get() != 0xFFFF_FFFF || CRC.CTL.Get() != 0 {
		t.Fatal("reset")
	}
}

func TestDMAClearByGlobalFlag(t *testing.T) {
	Reset()
	DMA0.INTF.Poke(0xF << 12)
	DMA0.INTC.Set(DMA_FLAG_GIF << 12)
	if DMA0.INTF.Get() != 0 {
		t.Fatalf("INTF=%#x", DMA0.INTF.Get())
	}
}
