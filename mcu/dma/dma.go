// Package dma drives the two DMA controllers found on STM32L4 parts.
//
// A transfer moves up to 65535 words between a peripheral's data register and
// a buffer in RAM while the core keeps running. The package is built around
// three capabilities that move from owner to owner and must never be
// duplicated: a [Channel], a [Target] and a pinned buffer. [Setup] combines
// them into a [Transfer], [Transfer.Start] arms the hardware and
// [ActiveTransfer.Wait] gives all three back to the caller, whether the
// hardware reported success or not.
//
// Memory-to-memory mode is not supported.
package dma

import (
	"embedded/rtos"
	"sync/atomic"
	"unsafe"

	"github.com/clktmr/stm32l4/debug"
	"github.com/clktmr/stm32l4/mcu/cpu"
	"github.com/clktmr/stm32l4/mcu/rcc"
)

const numChannels = 7

// Controller is the handle to one DMA controller's shared registers. All
// accesses to the controller-wide isr, ifcr and cselr registers go through
// here, keyed by the channel that owns the affected bit field.
type Controller struct {
	regs  *registers
	chs   [numChannels]Channel
	clock rcc.Peripheral
	irqs  [numChannels]rtos.IRQ
	split atomic.Bool
}

var (
	DMA1 = newController(dma1Base, rcc.DMA1, [numChannels]rtos.IRQ{11, 12, 13, 14, 15, 16, 17})
	DMA2 = newController(dma2Base, rcc.DMA2, [numChannels]rtos.IRQ{56, 57, 58, 59, 60, 68, 69})
)

func newController(base uintptr, clock rcc.Peripheral, irqs [numChannels]rtos.IRQ) *Controller {
	d := &Controller{
		regs:  (*registers)(unsafe.Pointer(base)),
		clock: clock,
		irqs:  irqs,
	}
	for i := range d.chs {
		d.chs[i] = Channel{ctl: d, regs: &d.regs.ch[i], num: uint8(i)}
	}
	return d
}

// Channels holds one capability per hardware channel. One field per channel
// instead of a slice: what exists is fixed by the silicon, and so is the
// maximum number of concurrent transfers.
type Channels struct {
	C1, C2, C3, C4, C5, C6, C7 *Channel
}

// Split enables the controller's clock and hands out its channels. Each
// channel must have exactly one owner, so Split panics when called twice.
func (d *Controller) Split() *Channels {
	if d.split.Swap(true) {
		panic("dma: channels already split")
	}
	rcc.EnableClock(d.clock)
	return &Channels{
		&d.chs[0], &d.chs[1], &d.chs[2], &d.chs[3],
		&d.chs[4], &d.chs[5], &d.chs[6],
	}
}

// Channel represents exclusive access to one DMA channel's registers. It is
// obtained from [Controller.Split], moved into [Setup] and returned by
// [ActiveTransfer.Wait] for reuse. Holding the pointer is holding the
// channel; it must not be shared.
type Channel struct {
	regs *channelRegs
	ctl  *Controller
	done rtos.Note
	num  uint8 // 0-based
}

// Is reports whether c is channel num (1-based, as in the reference manual)
// of controller d. Targets use this to look up their request line.
func (c *Channel) Is(d *Controller, num int) bool {
	return c.ctl == d && int(c.num)+1 == num
}

// EnableIRQ unmasks the channel's interrupt line in the NVIC. Required once
// before the interrupt driven completion path can be used, see
// [ActiveTransfer.Note].
func (c *Channel) EnableIRQ() {
	c.ctl.irqs[c.num].Enable(rtos.IntPrioLow, 0)
}

// flags returns the channel's nibble of the shared status register.
func (c *Channel) flags() statusFlags {
	return statusFlags(c.ctl.regs.isr.Load()>>(4*c.num)) & flagsAll
}

// clear resets the given flags. Clearing flagGlobal also clears the other
// three.
func (c *Channel) clear(f statusFlags) {
	c.ctl.regs.ifcr.Store(uint32(f) << (4 * c.num))
}

// selectRequest routes the channel to the peripheral request line r.
func (c *Channel) selectRequest(r Request) {
	shift := 4 * uint32(c.num)
	cselr := c.ctl.regs.cselr.Load()
	c.ctl.regs.cselr.Store(cselr&^(0xf<<shift) | uint32(r)<<shift)
}

// Channel interrupt handler. Masks the channel's interrupt enables instead of
// clearing the flags: the flags carry the result and are consumed by Wait,
// while the cleared enables prevent the interrupt from firing again in the
// meantime. Each new transfer rewrites the control register anyway.
//
//go:nosplit
//go:nowritebarrierrec
func (c *Channel) isr() {
	c.regs.cr.ClearBits(intrAll)
	c.done.Wakeup()
}

func init() {
	debug.Assert(unsafe.Sizeof(registers{}) == 0xac, "dma: register block layout")
}
