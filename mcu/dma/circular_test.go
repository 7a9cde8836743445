package dma

import "testing"

func TestCircularFlags(t *testing.T) {
	d, chs := testController()
	eng := newEngine(d)
	target := &loopback{routes: []*Channel{chs.C1}}

	buf := MakeBuf[uint16](256)
	defer buf.Unpin()

	active := Setup[uint16](target, chs.C1, buf, Config{
		Direction: PeriphToMem,
		Circular:  true,
	}).Start()

	// First half of the cycle.
	eng.runN(128)
	remaining, half, complete := active.State()
	if remaining != 128 || !half || complete {
		t.Fatalf("after half cycle: remaining=%d half=%v complete=%v",
			remaining, half, complete)
	}

	active.ClearFlags()
	eng.runN(0) // apply the clears without moving data
	if _, half, complete := active.State(); half || complete {
		t.Fatal("flags still set after clear")
	}
	if chs.C1.regs.cr.LoadBits(enable) == 0 {
		t.Fatal("clearing flags disabled the channel")
	}

	// Second half: the channel wraps around and keeps running.
	eng.runN(128)
	remaining, half, complete = active.State()
	if remaining != 256 || half || !complete {
		t.Fatalf("after full cycle: remaining=%d half=%v complete=%v",
			remaining, half, complete)
	}
	active.ClearFlags()
	eng.runN(64)
	if remaining, _, _ := active.State(); remaining != 192 {
		t.Fatal("channel stopped after completed cycle: remaining =", remaining)
	}

	res, err := active.Stop()
	if err != nil {
		t.Fatal("stop:", err)
	}
	if res.Channel != chs.C1 {
		t.Fatal("resources not returned by stop")
	}
	if chs.C1.regs.cr.LoadBits(enable) != 0 {
		t.Fatal("channel still enabled after stop")
	}
}
