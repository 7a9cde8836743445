// Package adc exposes the ADC as a DMA endpoint for continuous capture.
//
// The usual mode here is circular: the ADC free-runs at its sample rate into
// a ring buffer while the consumer drains it half by half, see
// [dma.ActiveTransfer.State].
package adc

import (
	"embedded/mmio"
	"runtime"
	"time"
	"unsafe"

	"github.com/clktmr/stm32l4/mcu/cpu"
	"github.com/clktmr/stm32l4/mcu/dma"
	"github.com/clktmr/stm32l4/mcu/rcc"
)

type registers struct {
	isr   mmio.U32
	ier   mmio.U32
	cr    mmio.U32
	cfgr  mmio.U32
	cfgr2 mmio.U32
	smpr1 mmio.U32
	smpr2 mmio.U32
	_     mmio.U32
	tr1   mmio.U32
	tr2   mmio.U32
	tr3   mmio.U32
	_     mmio.U32
	sqr1  mmio.U32
	sqr2  mmio.U32
	sqr3  mmio.U32
	sqr4  mmio.U32
	dr    mmio.U32
}

// isr
const adrdy = 1 << 0

// cr
const (
	aden     = 1 << 0
	adstart  = 1 << 2
	adstp    = 1 << 4
	advregen = 1 << 28
	deeppwd  = 1 << 29
)

// cfgr
const (
	dmaen  = 1 << 0
	dmacfg = 1 << 1 // circular instead of one-shot requests
	cont   = 1 << 13
)

type Periph struct {
	regs   *registers
	clock  rcc.Peripheral
	routes dma.Routes
}

var ADC1 = &Periph{
	regs:   (*registers)(unsafe.Pointer(uintptr(0x5004_0000))),
	clock:  rcc.ADC,
	routes: dma.Routes{{dma.DMA1, 1, 0}, {dma.DMA2, 3, 0}},
}

// The common register block, shared between converters. Only the internal
// reference enable is used here.
var commonCCR = (*mmio.U32)(unsafe.Pointer(uintptr(0x5004_0308)))

const vrefen = 1 << 22

// Enable clocks the converter, brings it out of deep power down and powers
// it up. Returns once the converter reports ready.
func (p *Periph) Enable() {
	rcc.EnableClock(p.clock)
	p.regs.cr.ClearBits(deeppwd)
	p.regs.cr.SetBits(advregen)
	time.Sleep(20 * time.Microsecond) // regulator startup
	p.regs.cr.SetBits(aden)
	for p.regs.isr.LoadBits(adrdy) == 0 {
		runtime.Gosched()
	}
}

// EnableVref connects the internal reference voltage to input 0.
func EnableVref() {
	commonCCR.SetBits(vrefen)
}

// SetSequence programs a single conversion sequence. Up to four inputs, the
// converter runs them in the given order.
func (p *Periph) SetSequence(inputs ...int) {
	if len(inputs) > 4 {
		panic("adc: sequence too long")
	}
	sqr := uint32(len(inputs) - 1)
	for i, in := range inputs {
		sqr |= uint32(in) << (6 * (i + 1))
	}
	p.regs.sqr1.Store(sqr)
}

// SetSampleTime selects one of the eight sampling durations, 0 (2.5 cycles)
// to 7 (640.5 cycles), for the given input. Slow internal sources like the
// reference voltage need the long end.
func (p *Periph) SetSampleTime(input, sel int) {
	reg, shift := &p.regs.smpr1, 3*input
	if input >= 10 {
		reg, shift = &p.regs.smpr2, 3*(input-10)
	}
	reg.StoreBits(7<<shift, uint32(sel)<<shift)
}

// DMA is the converted-data endpoint capability.
type DMA struct{ p *Periph }

func (p *Periph) DMA() DMA { return DMA{p} }

func (t DMA) Addr() cpu.Addr { return cpu.AddrOf(t.p.regs.dr.Addr()) }

func (t DMA) Request(ch *dma.Channel) (dma.Request, bool) { return t.p.routes.Find(ch) }

// ReadAll sets up a capture of len(buf) samples. The converter free-runs
// while the capture is active, call [Periph.Stop] once the transfer
// completed.
func (p *Periph) ReadAll(ch *dma.Channel, buf *dma.Buf[uint16]) *dma.Transfer[uint16] {
	p.regs.cfgr.SetBits(dmaen | cont)
	return dma.Setup[uint16](p.DMA(), ch, buf, dma.Config{
		Direction: dma.PeriphToMem,
		Priority:  dma.PrioHigh,
	})
}

// ReadCircular sets up continuous capture into the ring buffer buf. The
// returned transfer must be stopped explicitly, it never completes on its
// own.
func (p *Periph) ReadCircular(ch *dma.Channel, buf *dma.Buf[uint16]) *dma.Transfer[uint16] {
	p.regs.cfgr.SetBits(dmaen | dmacfg | cont)
	return dma.Setup[uint16](p.DMA(), ch, buf, dma.Config{
		Direction: dma.PeriphToMem,
		Priority:  dma.PrioHigh,
		Circular:  true,
	})
}

// Start begins conversions.
func (p *Periph) Start() {
	p.regs.cr.SetBits(adstart)
}

// Stop aborts the running conversions. Returns once the converter is idle.
func (p *Periph) Stop() {
	p.regs.cr.SetBits(adstp)
	for p.regs.cr.LoadBits(adstart) != 0 {
		runtime.Gosched()
	}
}
