package dma

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/clktmr/stm32l4/mcu/cpu"
	"github.com/clktmr/stm32l4/mcu/rcc"
	l4testing "github.com/clktmr/stm32l4/testing"
)

func TestMain(m *testing.M) { l4testing.TestMain(m) }

func mustPanic(t *testing.T, msg string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic:", msg)
		}
	}()
	f()
}

func TestSplitOnce(t *testing.T) {
	regs := new(registers)
	d := newController(uintptr(unsafe.Pointer(regs)), rcc.DMA1, rtosIRQs)
	chs := d.Split()
	if chs.C1 == nil || chs.C7 == nil {
		t.Fatal("missing channels")
	}
	if chs.C1 == chs.C2 {
		t.Fatal("channels not distinct")
	}
	mustPanic(t, "second split", func() { d.Split() })
	runtime.KeepAlive(regs)
}

func TestRequestRouting(t *testing.T) {
	_, chs := testController()
	target := &loopback{req: 3, routes: []*Channel{chs.C2}}

	if req, ok := target.Request(chs.C2); !ok || req != 3 {
		t.Fatal("expected route on C2")
	}
	if _, ok := target.Request(chs.C5); ok {
		t.Fatal("unexpected route on C5")
	}

	buf := MakeBuf[uint8](8)
	defer buf.Unpin()
	mustPanic(t, "no request line", func() {
		Setup[uint8](target, chs.C5, buf, Config{Direction: MemToPeriph})
	})
	// Nothing was programmed on the rejected channel.
	if chs.C5.regs.ndtr.Load() != 0 || chs.C5.regs.cr.Load() != 0 {
		t.Fatal("registers written before validation")
	}
}

func TestEmptyBuffer(t *testing.T) {
	_, chs := testController()
	target := &loopback{routes: []*Channel{chs.C1}}

	// A zero-length transfer would never raise a flag, so it must be
	// rejected before the channel is programmed and armed.
	buf := MakeBuf[uint8](0)
	defer buf.Unpin()
	mustPanic(t, "empty transfer", func() {
		Setup[uint8](target, chs.C1, buf, Config{Direction: MemToPeriph})
	})
	if chs.C1.regs.ndtr.Load() != 0 || chs.C1.regs.cr.Load() != 0 {
		t.Fatal("registers written before validation")
	}
}

func TestLengthLimit(t *testing.T) {
	_, chs := testController()
	target := &loopback{routes: []*Channel{chs.C1}}

	buf := MakeBuf[uint8](0x10000)
	defer buf.Unpin()
	mustPanic(t, "transfer too long", func() {
		Setup[uint8](target, chs.C1, buf, Config{Direction: MemToPeriph})
	})
	if chs.C1.regs.ndtr.Load() != 0 || chs.C1.regs.cr.Load() != 0 {
		t.Fatal("registers written before validation")
	}

	// 65535 words is the documented maximum and must pass.
	max := Pin(buf.Slice()[:0xffff])
	defer max.Unpin()
	Setup[uint8](target, chs.C1, max, Config{Direction: MemToPeriph})
	if chs.C1.regs.ndtr.Load() != 0xffff {
		t.Fatal("maximum length rejected")
	}
}

func TestAlignment(t *testing.T) {
	_, chs := testController()
	target := &loopback{routes: []*Channel{chs.C1}}

	backing := make([]byte, 16)
	odd := backing[1:13] // length multiple of 4, address off by one

	mustPanic(t, "unaligned word view", func() { WordView[uint32](odd) })
	mustPanic(t, "view length", func() { WordView[uint32](backing[:6]) })

	// Setup itself re-checks the buffer address, also for hand-rolled
	// Buffer implementations that bypassed WordView.
	bad := UnsafeBuf[uint32]{a: cpu.AddrOfSlice(odd), n: 3}
	mustPanic(t, "unaligned buffer", func() {
		Setup[uint32](target, chs.C1, bad, Config{Direction: MemToPeriph})
	})
	if chs.C1.regs.cr.Load() != 0 {
		t.Fatal("registers written before validation")
	}
}

// rtosIRQs keeps TestSplitOnce independent of the real vector numbers.
var rtosIRQs = DMA1.irqs
