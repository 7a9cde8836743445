// Package spi exposes the SPI buses as DMA endpoints.
package spi

import (
	"embedded/mmio"
	"unsafe"

	"github.com/clktmr/stm32l4/mcu/cpu"
	"github.com/clktmr/stm32l4/mcu/dma"
	"github.com/clktmr/stm32l4/mcu/rcc"
)

type registers struct {
	cr1    mmio.U32
	cr2    mmio.U32
	sr     mmio.U32
	dr     mmio.U32
	crcpr  mmio.U32
	rxcrcr mmio.U32
	txcrcr mmio.U32
}

// cr1
const (
	mstr = 1 << 2
	spe  = 1 << 6
)

// cr2
const (
	dmaRx = 1 << 0
	dmaTx = 1 << 1
)

type Periph struct {
	regs   *registers
	clock  rcc.Peripheral
	tx, rx dma.Routes
}

var (
	SPI1 = &Periph{
		regs:  (*registers)(unsafe.Pointer(cpu.PERIPH | 0x0001_3000)),
		clock: rcc.SPI1,
		tx:    dma.Routes{{dma.DMA1, 3, 1}, {dma.DMA2, 4, 4}},
		rx:    dma.Routes{{dma.DMA1, 2, 1}, {dma.DMA2, 3, 4}},
	}
	SPI2 = &Periph{
		regs:  (*registers)(unsafe.Pointer(cpu.PERIPH | 0x0000_3800)),
		clock: rcc.SPI2,
		tx:    dma.Routes{{dma.DMA1, 5, 1}},
		rx:    dma.Routes{{dma.DMA1, 4, 1}},
	}
	SPI3 = &Periph{
		regs:  (*registers)(unsafe.Pointer(cpu.PERIPH | 0x0000_3c00)),
		clock: rcc.SPI3,
		tx:    dma.Routes{{dma.DMA2, 2, 3}},
		rx:    dma.Routes{{dma.DMA2, 1, 3}},
	}
)

// Enable clocks the peripheral and enables it as bus master.
func (p *Periph) Enable() {
	rcc.EnableClock(p.clock)
	p.regs.cr1.SetBits(mstr | spe)
}

type TxDMA struct{ p *Periph }
type RxDMA struct{ p *Periph }

func (p *Periph) TxDMA() TxDMA { return TxDMA{p} }
func (p *Periph) RxDMA() RxDMA { return RxDMA{p} }

func (t TxDMA) Addr() cpu.Addr { return cpu.AddrOf(t.p.regs.dr.Addr()) }
func (t RxDMA) Addr() cpu.Addr { return cpu.AddrOf(t.p.regs.dr.Addr()) }

func (t TxDMA) Request(ch *dma.Channel) (dma.Request, bool) { return t.p.tx.Find(ch) }
func (t RxDMA) Request(ch *dma.Channel) (dma.Request, bool) { return t.p.rx.Find(ch) }

// WriteAll sets up a transfer that shifts buf out on the bus.
func (p *Periph) WriteAll(ch *dma.Channel, buf *dma.Buf[uint8]) *dma.Transfer[uint8] {
	p.regs.cr2.SetBits(dmaTx)
	return dma.Setup[uint8](p.TxDMA(), ch, buf, dma.Config{
		Direction: dma.MemToPeriph,
		Priority:  dma.PrioMedium,
	})
}

// ReadAll sets up a transfer that captures incoming bytes into buf. The
// receive side outranks transmit: an overrun drops data, a late feed only
// stretches the exchange.
func (p *Periph) ReadAll(ch *dma.Channel, buf *dma.Buf[uint8]) *dma.Transfer[uint8] {
	p.regs.cr2.SetBits(dmaRx)
	return dma.Setup[uint8](p.RxDMA(), ch, buf, dma.Config{
		Direction: dma.PeriphToMem,
		Priority:  dma.PrioHigh,
	})
}
