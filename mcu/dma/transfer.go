package dma

import (
	"embedded/rtos"
	"errors"
	"runtime"
	"unsafe"

	"github.com/clktmr/stm32l4/debug"
	"github.com/clktmr/stm32l4/mcu/cpu"
)

// ErrTransfer is the only runtime error this package reports: the hardware
// flagged a bus error on the peripheral or memory side of the channel.
// Everything else, wrong lengths, misalignment, invalid routing, is a
// programmer error and panics in [Setup].
var ErrTransfer = errors.New("dma: transfer error")

// Direction of a transfer, as seen from memory.
type Direction uint8

const (
	PeriphToMem Direction = iota
	MemToPeriph
)

// Priority resolves which channel wins when several request the bus in the
// same cycle. Ties go to the lower channel number.
type Priority uint8

const (
	PrioLow Priority = iota
	PrioMedium
	PrioHigh
	PrioVeryHigh
)

// Events that can raise the channel's interrupt, see
// [Transfer.EnableInterrupts].
type Events uint8

const (
	Complete Events = Events(completeIntr)
	Half     Events = Events(halfIntr)
	Failed   Events = Events(errorIntr)

	AllEvents = Complete | Half | Failed
)

// Config fixes direction, bus priority and circular mode of a transfer at
// [Setup] time.
type Config struct {
	Direction Direction
	Priority  Priority

	// Circular reloads the word count on completion and starts over, for
	// continuous streams like ADC sampling. A circular transfer never
	// completes on its own, see [ActiveTransfer.State] and
	// [ActiveTransfer.Stop].
	Circular bool
}

// Resources bundles everything a transfer consumed. Wait returns it on both
// the success and the error path: target, channel and buffer are never lost,
// the caller can immediately set up the next transfer from them.
type Resources[T Word] struct {
	Target  Target
	Channel *Channel
	Buf     Buffer[T]
}

// Transfer is a fully programmed but not yet armed transfer. Its only
// transitions are [Transfer.Start] and, for the interrupt path,
// [Transfer.EnableInterrupts]. That Wait and IsActive don't exist before
// Start is the point: they are methods of [ActiveTransfer].
type Transfer[T Word] struct {
	res      Resources[T]
	circular bool
	started  bool
}

// Setup validates the (target, channel, buffer) combination and programs the
// channel registers. The hardware is not yet armed, nothing moves until
// [Transfer.Start].
//
// Setup panics if the buffer is empty or exceeds 65535 words, if the buffer
// is not aligned to its word size or if no request line routes ch to target.
// These checks happen before any register is written.
func Setup[T Word](target Target, ch *Channel, buf Buffer[T], cfg Config) *Transfer[T] {
	var zero T
	size := unsafe.Sizeof(zero)

	// A zero count is unprogrammable: the hardware would never raise a
	// flag and Wait could not give the resources back.
	if buf.words() == 0 {
		panic("dma: empty transfer")
	}
	if buf.words() > 0xffff {
		panic("dma: transfer longer than 65535 words")
	}
	if uintptr(buf.addr())%size != 0 {
		panic("dma: buffer unaligned to word size")
	}
	req, ok := target.Request(ch)
	if !ok {
		panic("dma: no request line routes channel to target")
	}
	debug.Assert(ch.regs.cr.LoadBits(enable) == 0, "dma: channel still enabled")

	cr := incrementMem | sizeBits[T]()<<periphSizeShift | sizeBits[T]()<<memSizeShift |
		controlFlags(cfg.Priority)<<priorityShift
	if cfg.Direction == MemToPeriph {
		cr |= fromMem
	}
	if cfg.Circular {
		cr |= circular
	}

	ch.selectRequest(req)
	ch.regs.par.Store(target.Addr())
	ch.regs.mar.Store(buf.addr())
	ch.regs.ndtr.Store(uint32(buf.words()))
	ch.clear(flagsAll)
	ch.regs.cr.Store(cr) // enable and interrupt enables cleared

	return &Transfer[T]{
		res:      Resources[T]{Target: target, Channel: ch, Buf: buf},
		circular: cfg.Circular,
	}
}

func sizeBits[T Word]() controlFlags {
	var zero T
	switch unsafe.Sizeof(zero) {
	case 1:
		return bits8
	case 2:
		return bits16
	default:
		return bits32
	}
}

// EnableInterrupts sets the given interrupt enables on this channel only.
// The next [Setup] on the same channel starts with them cleared again.
// Remember to also unmask the NVIC line, see [Channel.EnableIRQ].
func (t *Transfer[T]) EnableInterrupts(ev Events) {
	t.res.Channel.regs.cr.SetBits(controlFlags(ev))
}

// Start arms the channel. The barrier makes all previous writes to the
// buffer visible to the hardware before it is told to go.
func (t *Transfer[T]) Start() *ActiveTransfer[T] {
	debug.Assert(!t.started, "dma: transfer started twice")
	t.started = true

	ch := t.res.Channel
	ch.done.Clear()
	cpu.DMB()
	ch.regs.cr.SetBits(enable)

	return &ActiveTransfer[T]{res: t.res, circular: t.circular}
}

// ActiveTransfer is a transfer the hardware is working on. It is consumed by
// [ActiveTransfer.Wait].
type ActiveTransfer[T Word] struct {
	res      Resources[T]
	circular bool
	finished bool
}

// IsActive reports whether the hardware is still busy. It is a pure status
// read, polling it never changes channel state.
func (t *ActiveTransfer[T]) IsActive() bool {
	return t.res.Channel.flags()&flagComplete == 0
}

// EnableInterrupts is the same as [Transfer.EnableInterrupts], but for a
// transfer that is already running.
func (t *ActiveTransfer[T]) EnableInterrupts(ev Events) {
	t.res.Channel.regs.cr.SetBits(controlFlags(ev))
}

// Note returns the note woken by the channel's interrupt handler. The
// non-blocking pattern is
//
//	at := t.Start()
//	at.EnableInterrupts(dma.Complete | dma.Failed)
//	at.Note().Sleep(-1)
//	res, err := at.Wait() // returns immediately
//
// The note is cleared by Start.
func (t *ActiveTransfer[T]) Note() *rtos.Note {
	return &t.res.Channel.done
}

// Wait blocks until the transfer completed or failed, tears the channel down
// and returns the resources. On a hardware error it returns ErrTransfer; the
// resources come back in either case, nothing is ever lost to a failed
// transfer. The channel is left disabled with all flags cleared.
func (t *ActiveTransfer[T]) Wait() (Resources[T], error) {
	debug.Assert(!t.finished, "dma: wait on finished transfer")
	t.finished = true

	ch := t.res.Channel
	for {
		f := ch.flags()
		if f&flagError != 0 {
			return t.res, ch.teardown()
		}
		if f&flagComplete != 0 {
			break
		}
		runtime.Gosched()
	}

	// The interrupt enables are masked in the same access as the channel
	// enable: the ISR does its own read-modify-write on cr, and a write
	// that doesn't clear them can revert the ISR's masking when the ISR
	// preempted us between load and store, re-raising the interrupt.
	ch.regs.cr.ClearBits(enable | intrAll)
	ch.clear(flagGlobal | flagComplete | flagHalf)
	cpu.DSB()
	// A failure on the very last word may have raced the completion flag.
	if ch.flags()&flagError != 0 {
		return t.res, ch.teardown()
	}
	return t.res, nil
}

// teardown leaves the channel disabled with clean flags so the next transfer
// starts from a known state. Masking the interrupt enables together with the
// channel enable keeps the read-modify-write from interleaving with the ISR,
// see [ActiveTransfer.Wait].
func (c *Channel) teardown() error {
	c.regs.cr.ClearBits(enable | intrAll)
	c.clear(flagsAll)
	return ErrTransfer
}

// State returns the number of words left in the current cycle and the half
// and complete flags. Intended for circular transfers, where the consumer
// drains the buffer half by half.
func (t *ActiveTransfer[T]) State() (remaining int, half, complete bool) {
	ch := t.res.Channel
	f := ch.flags()
	return int(ch.regs.ndtr.Load()), f&flagHalf != 0, f&flagComplete != 0
}

// ClearFlags resets the half and complete flags without disabling the
// channel. A circular consumer must clear them after each notification to
// see the next one.
func (t *ActiveTransfer[T]) ClearFlags() {
	t.res.Channel.clear(flagGlobal | flagComplete | flagHalf)
}

// Stop disables a circular transfer and returns its resources. Circular
// transfers never complete on their own, this is their only way out. The
// error flag is checked one last time.
func (t *ActiveTransfer[T]) Stop() (Resources[T], error) {
	debug.Assert(!t.finished, "dma: stop on finished transfer")
	t.finished = true

	ch := t.res.Channel
	ch.regs.cr.ClearBits(enable | intrAll)
	cpu.DSB()
	if ch.flags()&flagError != 0 {
		return t.res, ch.teardown()
	}
	ch.clear(flagsAll)
	return t.res, nil
}
