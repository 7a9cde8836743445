// Package i2c exposes the I2C buses as DMA endpoints.
package i2c

import (
	"embedded/mmio"
	"unsafe"

	"github.com/clktmr/stm32l4/mcu/cpu"
	"github.com/clktmr/stm32l4/mcu/dma"
	"github.com/clktmr/stm32l4/mcu/rcc"
)

type registers struct {
	cr1      mmio.U32
	cr2      mmio.U32
	oar1     mmio.U32
	oar2     mmio.U32
	timingr  mmio.U32
	timeoutr mmio.U32
	isr      mmio.U32
	icr      mmio.U32
	pecr     mmio.U32
	rxdr     mmio.U32
	txdr     mmio.U32
}

// cr1
const (
	pe    = 1 << 0
	dmaTx = 1 << 14
	dmaRx = 1 << 15
)

type Periph struct {
	regs   *registers
	clock  rcc.Peripheral
	tx, rx dma.Routes
}

var (
	I2C1 = &Periph{
		regs:  (*registers)(unsafe.Pointer(cpu.PERIPH | 0x0000_5400)),
		clock: rcc.I2C1,
		tx:    dma.Routes{{dma.DMA1, 6, 3}},
		rx:    dma.Routes{{dma.DMA1, 7, 3}},
	}
	I2C2 = &Periph{
		regs:  (*registers)(unsafe.Pointer(cpu.PERIPH | 0x0000_5800)),
		clock: rcc.I2C2,
		tx:    dma.Routes{{dma.DMA1, 4, 3}},
		rx:    dma.Routes{{dma.DMA1, 5, 3}},
	}
	I2C3 = &Periph{
		regs:  (*registers)(unsafe.Pointer(cpu.PERIPH | 0x0000_5c00)),
		clock: rcc.I2C3,
		tx:    dma.Routes{{dma.DMA1, 2, 3}},
		rx:    dma.Routes{{dma.DMA1, 3, 3}},
	}
)

// Enable clocks and enables the peripheral.
func (p *Periph) Enable() {
	rcc.EnableClock(p.clock)
	p.regs.cr1.SetBits(pe)
}

type TxDMA struct{ p *Periph }
type RxDMA struct{ p *Periph }

func (p *Periph) TxDMA() TxDMA { return TxDMA{p} }
func (p *Periph) RxDMA() RxDMA { return RxDMA{p} }

func (t TxDMA) Addr() cpu.Addr { return cpu.AddrOf(t.p.regs.txdr.Addr()) }
func (t RxDMA) Addr() cpu.Addr { return cpu.AddrOf(t.p.regs.rxdr.Addr()) }

func (t TxDMA) Request(ch *dma.Channel) (dma.Request, bool) { return t.p.tx.Find(ch) }
func (t RxDMA) Request(ch *dma.Channel) (dma.Request, bool) { return t.p.rx.Find(ch) }

// WriteAll sets up a transfer that feeds buf to an ongoing master transmit.
func (p *Periph) WriteAll(ch *dma.Channel, buf *dma.Buf[uint8]) *dma.Transfer[uint8] {
	p.regs.cr1.SetBits(dmaTx)
	return dma.Setup[uint8](p.TxDMA(), ch, buf, dma.Config{
		Direction: dma.MemToPeriph,
		Priority:  dma.PrioLow,
	})
}

// ReadAll sets up a transfer that drains an ongoing master receive into buf.
func (p *Periph) ReadAll(ch *dma.Channel, buf *dma.Buf[uint8]) *dma.Transfer[uint8] {
	p.regs.cr1.SetBits(dmaRx)
	return dma.Setup[uint8](p.RxDMA(), ch, buf, dma.Config{
		Direction: dma.PeriphToMem,
		Priority:  dma.PrioLow,
	})
}
