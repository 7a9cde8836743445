// Package aes exposes the hardware AES engine's input and output streams as
// DMA endpoints. The engine consumes and produces 32 bit words, so the byte
// buffers of the caller are driven through [dma.WordView] instead of being
// copied into word slices.
package aes

import (
	"embedded/mmio"
	"unsafe"

	"github.com/clktmr/stm32l4/mcu/cpu"
	"github.com/clktmr/stm32l4/mcu/dma"
	"github.com/clktmr/stm32l4/mcu/rcc"
)

type registers struct {
	cr    mmio.U32
	sr    mmio.U32
	dinr  mmio.U32
	doutr mmio.U32
	keyr0 mmio.U32
	keyr1 mmio.U32
	keyr2 mmio.U32
	keyr3 mmio.U32
	ivr0  mmio.U32
	ivr1  mmio.U32
	ivr2  mmio.U32
	ivr3  mmio.U32
}

// cr
const (
	en       = 1 << 0
	datatype = 2 << 1 // swap bytes, keys and data are byte streams
	ccfc     = 1 << 7 // clear computation complete
	errc     = 1 << 8 // clear read and write error
	dmaIn    = 1 << 11
	dmaOut   = 1 << 12

	modeMask = 3<<3 | 3<<5
)

// Mode selects the cipher operation. The engine must have it set before the
// first block is fed in.
type Mode uint32

const (
	Encrypt Mode = 0<<3 | 0<<5 // ECB encryption
	Decrypt Mode = 3<<3 | 0<<5 // ECB key derivation plus decryption
)

// The block size in bytes. All DMA driven streams must be a multiple of it.
const BlockSize = 16

type Periph struct {
	regs    *registers
	clock   rcc.Peripheral
	in, out dma.Routes
}

var AES = &Periph{
	regs:  (*registers)(unsafe.Pointer(uintptr(0x5006_0000))),
	clock: rcc.AES,
	in:    dma.Routes{{dma.DMA2, 1, 6}, {dma.DMA2, 5, 6}},
	out:   dma.Routes{{dma.DMA2, 2, 6}, {dma.DMA2, 3, 6}},
}

// Enable clocks the engine. It stays disabled until [Periph.SetMode].
func (p *Periph) Enable() {
	rcc.EnableClock(p.clock)
}

// SetMode disables the engine, selects the operation and enables it again.
// Reprogramming the mode mid-stream is forbidden by the hardware, so the
// stale flags of the previous run are cleared here too.
func (p *Periph) SetMode(m Mode) {
	cr := p.regs.cr.Load() &^ (en | modeMask)
	p.regs.cr.Store(cr | datatype | ccfc | errc)
	p.regs.cr.Store(cr | datatype | uint32(m) | en)
}

// SetKey loads a 128 bit key.
func (p *Periph) SetKey(key *[4]uint32) {
	p.regs.keyr0.Store(key[0])
	p.regs.keyr1.Store(key[1])
	p.regs.keyr2.Store(key[2])
	p.regs.keyr3.Store(key[3])
}

// InDMA feeds plaintext into the engine.
type InDMA struct{ p *Periph }

// OutDMA drains ciphertext from the engine.
type OutDMA struct{ p *Periph }

func (p *Periph) InDMA() InDMA   { return InDMA{p} }
func (p *Periph) OutDMA() OutDMA { return OutDMA{p} }

func (t InDMA) Addr() cpu.Addr  { return cpu.AddrOf(t.p.regs.dinr.Addr()) }
func (t OutDMA) Addr() cpu.Addr { return cpu.AddrOf(t.p.regs.doutr.Addr()) }

func (t InDMA) Request(ch *dma.Channel) (dma.Request, bool)  { return t.p.in.Find(ch) }
func (t OutDMA) Request(ch *dma.Channel) (dma.Request, bool) { return t.p.out.Find(ch) }

// WriteAll sets up the input stream: buf is fed to the engine in 32 bit
// words. buf must stay pinned until the transfer resolved; the returned
// resources carry the word view, not buf itself.
func (p *Periph) WriteAll(ch *dma.Channel, buf *dma.Buf[uint8]) *dma.Transfer[uint32] {
	p.regs.cr.SetBits(dmaIn)
	return dma.Setup[uint32](p.InDMA(), ch, dma.WordView[uint32](buf.Slice()), dma.Config{
		Direction: dma.MemToPeriph,
		Priority:  dma.PrioHigh,
	})
}

// ReadAll sets up the output stream into buf. The output transfer outranks
// the input transfer on the bus: if the engine's result register isn't
// drained in time it overruns, while a starved input merely stalls.
func (p *Periph) ReadAll(ch *dma.Channel, buf *dma.Buf[uint8]) *dma.Transfer[uint32] {
	p.regs.cr.SetBits(dmaOut)
	return dma.Setup[uint32](p.OutDMA(), ch, dma.WordView[uint32](buf.Slice()), dma.Config{
		Direction: dma.PeriphToMem,
		Priority:  dma.PrioVeryHigh,
	})
}
