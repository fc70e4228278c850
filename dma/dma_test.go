//go:build !gd32e103

package dma

import (
	"errors"
	"testing"

	"gd32hal/errcode"
	"gd32hal/nb"
	"gd32hal/pac"
)

func channels(t *testing.T) *Channels {
	t.Helper()
	pac.Reset()
	p, err := pac.Take()
	if err != nil {
		t.Fatal(err)
	}
	cs, err := Split(p.DMA0)
	if err != nil {
		t.Fatal(err)
	}
	return cs
}

// raise sets hardware flags for channel ch.
func raise(ch int, f uint32) {
	pac.DMA0.INTF.Poke(pac.DMA0.INTF.Peek() | (f|pac.DMA_FLAG_GIF)<<(4*ch))
}

func TestArmProgramsChannel(t *testing.T) {
	cs := channels(t)
	buf := make([]byte, 16)
	tr, err := Arm(cs.C[3], buf, Request{Periph: 0x4001_3804, Dir: MemoryToPeripheral, Priority: PriorityHigh})
	if err != nil {
		t.Fatal(err)
	}
	ch := &pac.DMA0.CH[3]
	if ch.PADDR.Get() != 0x4001_3804 || ch.CNT.Get() != 16 {
		t.Fatalf("PADDR %#x CNT %d", ch.PADDR.Get(), ch.CNT.Get())
	}
	want := uint32(pac.DMA_CTL_DIR | pac.DMA_CTL_MNAGA | 2<<pac.DMA_CTL_PRIO_Pos)
	if ch.CTL.Get() != want {
		t.Fatalf("CTL %#x want %#x", ch.CTL.Get(), want)
	}
	if err := tr.Start(); err != nil {
		t.Fatal(err)
	}
	if !ch.CTL.HasBits(pac.DMA_CTL_CHEN) || cs.C[3].State() != Running {
		t.Fatal("not running")
	}
	if err := tr.Start(); !errors.Is(err, errcode.InvalidState) {
		t.Fatalf("restart: %v", err)
	}
}

func TestHalfWordWidth(t *testing.T) {
	cs := channels(t)
	if _, err := Arm(cs.C[0], make([]uint16, 4), Request{}); err != nil {
		t.Fatal(err)
	}
	ctl := pac.DMA0.CH[0].CTL.Get()
	if ctl>>pac.DMA_CTL_PWIDTH_Pos&0x3 != 1 || ctl>>pac.DMA_CTL_MWIDTH_Pos&0x3 != 1 {
		t.Fatalf("CTL %#x", ctl)
	}
}

func TestDoubleArmRejected(t *testing.T) {
	cs := channels(t)
	first, err := Arm(cs.C[4], make([]byte, 4), Request{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Arm(cs.C[4], make([]byte, 4), Request{}); !errors.Is(err, errcode.Busy) {
		t.Fatalf("second Arm: %v", err)
	}
	_ = first.Start()
	if _, err := Arm(cs.C[4], make([]byte, 4), Request{}); !errors.Is(err, errcode.Busy) {
		t.Fatalf("Arm while running: %v", err)
	}
	if _, err := cs.Free(); !errors.Is(err, errcode.Busy) {
		t.Fatalf("Free with running channel: %v", err)
	}
}

func TestCompleteReturnsBufferAndIdles(t *testing.T) {
	cs := channels(t)
	buf := []byte("hello")
	tr, _ := Arm(cs.C[6], buf, Request{Dir: MemoryToPeripheral})
	_ = tr.Start()
	if _, err := tr.Poll(); !nb.IsWouldBlock(err) {
		t.Fatalf("Poll while running: %v", err)
	}
	pac.DMA0.CH[6].CNT.Poke(0)
	raise(6, pac.DMA_FLAG_FTF)
	if !tr.IsDone() {
		t.Fatal("IsDone")
	}
	res, err := tr.Wait()
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Buf) != "hello" || res.Status != Complete || res.Partial || res.Remaining != 0 {
		t.Fatalf("result %+v", res)
	}
	if cs.C[6].State() != Idle || pac.DMA0.INTF.Get() != 0 {
		t.Fatal("channel not released")
	}
	if _, err := tr.Poll(); !errors.Is(err, errcode.InvalidState) {
		t.Fatalf("Poll after result: %v", err)
	}
	if _, err := Arm(cs.C[6], buf, Request{}); err != nil {
		t.Fatalf("re-arm: %v", err)
	}
}

func TestCancelIsAlwaysPartial(t *testing.T) {
	cs := channels(t)
	tr, _ := Arm(cs.C[5], make([]byte, 8), Request{})
	_ = tr.Start()
	pac.DMA0.CH[5].CNT.Poke(3)
	if got := len(tr.Peek()); got != 5 {
		t.Fatalf("Peek len %d", got)
	}
	res, err := tr.Cancel()
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != Cancelled || !res.Partial || res.Remaining != 3 || len(res.Buf) != 8 {
		t.Fatalf("result %+v", res)
	}
	if pac.DMA0.CH[5].CTL.HasBits(pac.DMA_CTL_CHEN) || cs.C[5].State() != Idle {
		t.Fatal("channel still enabled")
	}

	// Even with nothing left to move, a cancelled result is partial.
	tr, _ = Arm(cs.C[5], make([]byte, 8), Request{})
	pac.DMA0.CH[5].CNT.Poke(0)
	if res, err := tr.Cancel(); err != nil || !res.Partial || res.Status != Cancelled {
		t.Fatalf("armed cancel %+v %v", res, err)
	}
	if res, err := tr.Cancel(); !errors.Is(err, errcode.InvalidState) || res.Buf != nil || res.Partial {
		t.Fatalf("repeat cancel %+v %v", res, err)
	}

	// Cancelling after completion does not invent a partial result.
	tr, _ = Arm(cs.C[5], make([]byte, 2), Request{})
	_ = tr.Start()
	raise(5, pac.DMA_FLAG_FTF)
	if res, err := tr.Wait(); err != nil || res.Status != Complete {
		t.Fatalf("wait %+v %v", res, err)
	}
	if _, err := tr.Cancel(); !errors.Is(err, errcode.InvalidState) {
		t.Fatalf("cancel after completion: %v", err)
	}
}

func TestErrorFlagFailsTransfer(t *testing.T) {
	cs := channels(t)
	tr, _ := Arm(cs.C[1], make([]uint32, 2), Request{})
	_ = tr.Start()
	raise(1, pac.DMA_FLAG_ERR)
	res, err := tr.Poll()
	if !errors.Is(err, errcode.TransferError) || res.Status != Failed || res.Buf == nil {
		t.Fatalf("res %+v err %v", res, err)
	}
	if cs.C[1].State() != Idle {
		t.Fatal("channel not released after error")
	}
}

func TestArmRejectsBadLength(t *testing.T) {
	cs := channels(t)
	if _, err := Arm(cs.C[0], []byte{}, Request{}); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := ArmCircular(cs.C[0], make([]byte, 3), Request{}); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("odd circular: %v", err)
	}
}

func TestCircularHalves(t *testing.T) {
	cs := channels(t)
	buf := []byte{1, 2, 3, 4}
	rx, err := ArmCircular(cs.C[4], buf, Request{})
	if err != nil {
		t.Fatal(err)
	}
	ctl := pac.DMA0.CH[4].CTL.Get()
	if ctl&pac.DMA_CTL_CMEN == 0 || ctl&pac.DMA_CTL_CHEN == 0 {
		t.Fatalf("CTL %#x", ctl)
	}

	raise(4, pac.DMA_FLAG_HTF)
	var seen []byte
	err = rx.Peek(func(half []byte, h Half) {
		if h != First {
			t.Errorf("half %d", h)
		}
		seen = append(seen, half...)
	})
	if err != nil || string(seen) != "\x01\x02" {
		t.Fatalf("first half %v err %v", seen, err)
	}

	raise(4, pac.DMA_FLAG_FTF)
	if h, err := rx.ReadableHalf(); err != nil || h != Second {
		t.Fatalf("h=%d err=%v", h, err)
	}
	if h, _ := rx.ReadableHalf(); h != Second {
		t.Fatal("readable half changed without a new flag")
	}

	// Both halves done while the hardware is back in the first half: the
	// second half is the fresh one and the stream recovers.
	raise(4, pac.DMA_FLAG_HTF|pac.DMA_FLAG_FTF)
	if h, err := rx.ReadableHalf(); !errors.Is(err, errcode.Overrun) || h != Second {
		t.Fatalf("both halves: h=%d err=%v", h, err)
	}
	if h, err := rx.ReadableHalf(); err != nil || h != Second {
		t.Fatalf("after overrun: h=%d err=%v", h, err)
	}
	raise(4, pac.DMA_FLAG_HTF)
	seen = seen[:0]
	err = rx.Peek(func(half []byte, h Half) { seen = append(seen, half...) })
	if err != nil || string(seen) != "\x01\x02" {
		t.Fatalf("read after overrun %v err %v", seen, err)
	}

	// Overrun caught with the hardware in the second half.
	pac.DMA0.CH[4].CNT.Poke(1)
	raise(4, pac.DMA_FLAG_HTF|pac.DMA_FLAG_FTF)
	if h, err := rx.ReadableHalf(); !errors.Is(err, errcode.Overrun) || h != First {
		t.Fatalf("h=%d err=%v", h, err)
	}
	if f := pac.DMA0.INTF.Get() >> 16 & (pac.DMA_FLAG_HTF | pac.DMA_FLAG_FTF); f != 0 {
		t.Fatalf("flags left set %#x", f)
	}

	out := rx.Stop()
	if len(out) != 4 || cs.C[4].State() != Idle {
		t.Fatal("Stop")
	}
}

func TestPeekDetectsTornRead(t *testing.T) {
	cs := channels(t)
	rx, _ := ArmCircular(cs.C[2], make([]uint16, 8), Request{})
	raise(2, pac.DMA_FLAG_HTF)
	err := rx.Peek(func(half []uint16, h Half) {
		raise(2, pac.DMA_FLAG_FTF)
	})
	if !errors.Is(err, errcode.Overrun) {
		t.Fatalf("err=%v", err)
	}
}
