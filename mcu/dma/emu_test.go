package dma

import (
	"unsafe"

	"github.com/clktmr/stm32l4/mcu/cpu"
)

// The tests in this package don't touch the real controllers. They run
// against a register file in RAM and a software engine that implements the
// documented channel semantics: one word per request, memory increment,
// sticky status flags, write-1-to-clear, circular reload. This keeps the
// state machine testable without depending on any peripheral and allows
// injecting bus errors, which real hardware won't produce on demand.

// testController builds a controller whose register block lives on the heap.
// Channels are handed out directly, bypassing Split and the clock gate.
func testController() (*Controller, *Channels) {
	d := &Controller{regs: new(registers)}
	for i := range d.chs {
		d.chs[i] = Channel{ctl: d, regs: &d.regs.ch[i], num: uint8(i)}
	}
	return d, &Channels{
		&d.chs[0], &d.chs[1], &d.chs[2], &d.chs[3],
		&d.chs[4], &d.chs[5], &d.chs[6],
	}
}

type engineChan struct {
	total  uint32
	armed  bool
	broken bool
}

// engine emulates the DMA silicon for one test controller.
type engine struct {
	d  *Controller
	st [numChannels]engineChan
}

func newEngine(d *Controller) *engine {
	return &engine{d: d}
}

// run steps all channels round-robin, one word per channel per pass, until no
// channel makes progress anymore. The round-robin interleave is what makes
// loopback targets work: a producing channel feeds the data register that a
// consuming channel drains within the same pass.
func (e *engine) run() {
	for {
		e.applyClear()
		progress := false
		for i := 0; i < numChannels; i++ {
			progress = e.step(i) || progress
		}
		if !progress {
			e.applyClear()
			return
		}
	}
}

// runN is like run, but steps at most n passes. Needed for circular
// transfers, which never stop making progress on their own.
func (e *engine) runN(n int) {
	for ; n > 0; n-- {
		e.applyClear()
		for i := 0; i < numChannels; i++ {
			e.step(i)
		}
	}
	e.applyClear()
}

// fail injects a bus error on ch, as if the hardware had rejected an access.
// The channel stops making progress, like the real one.
func (e *engine) fail(ch *Channel) {
	e.st[ch.num].broken = true
	e.setFlags(int(ch.num), flagError|flagGlobal)
}

// applyClear implements ifcr: bits written there clear the matching isr bits.
func (e *engine) applyClear() {
	w := e.d.regs.ifcr.Load()
	if w == 0 {
		return
	}
	// Clearing a channel's global bit clears all its flags.
	for i := 0; i < numChannels; i++ {
		if w>>(4*i)&uint32(flagGlobal) != 0 {
			w |= uint32(flagsAll) << (4 * i)
		}
	}
	e.d.regs.isr.Store(e.d.regs.isr.Load() &^ w)
	e.d.regs.ifcr.Store(0)
}

func (e *engine) setFlags(i int, f statusFlags) {
	e.d.regs.isr.Store(e.d.regs.isr.Load() | uint32(f|flagGlobal)<<(4*i))
}

func (e *engine) step(i int) bool {
	ch := &e.d.regs.ch[i]
	st := &e.st[i]

	cr := ch.cr.Load()
	if cr&enable == 0 {
		st.armed = false
		return false
	}
	if !st.armed {
		st.armed = true
		st.broken = false
		st.total = ch.ndtr.Load()
	}
	n := ch.ndtr.Load()
	if st.broken || n == 0 || st.total == 0 {
		return false
	}

	size := uintptr(1) << (uint32(cr) >> memSizeShift & 0b11)
	off := uintptr(st.total-n) * size
	if cr&fromMem != 0 {
		busStore(ch.par.Load(), size, busLoad(ch.mar.Load()+cpu.Addr(off), size))
	} else {
		busStore(ch.mar.Load()+cpu.Addr(off), size, busLoad(ch.par.Load(), size))
	}

	n--
	if n == st.total-st.total/2 {
		e.setFlags(i, flagHalf)
	}
	if n == 0 {
		e.setFlags(i, flagComplete)
		if cr&circular != 0 {
			n = st.total
		}
	}
	ch.ndtr.Store(n)
	return true
}

func busLoad(a cpu.Addr, size uintptr) uint32 {
	p := unsafe.Pointer(uintptr(a))
	switch size {
	case 1:
		return uint32(*(*uint8)(p))
	case 2:
		return uint32(*(*uint16)(p))
	default:
		return *(*uint32)(p)
	}
}

func busStore(a cpu.Addr, size uintptr, v uint32) {
	p := unsafe.Pointer(uintptr(a))
	switch size {
	case 1:
		*(*uint8)(p) = uint8(v)
	case 2:
		*(*uint16)(p) = uint16(v)
	default:
		*(*uint32)(p) = v
	}
}

// loopback is a fake peripheral endpoint: both directions share a single data
// register, what one channel transmits another can receive. It accepts the
// channels it was given and rejects all others, mimicking the fixed request
// routing of real peripherals.
type loopback struct {
	dr     uint32
	req    Request
	routes []*Channel
}

func (t *loopback) Addr() cpu.Addr {
	return cpu.AddrOf(uintptr(unsafe.Pointer(&t.dr)))
}

func (t *loopback) Request(ch *Channel) (Request, bool) {
	for _, r := range t.routes {
		if ch == r {
			return t.req, true
		}
	}
	return 0, false
}
