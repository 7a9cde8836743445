// Package usart exposes the U(S)ARTs as DMA endpoints. Only the bits needed
// to move data via DMA are programmed here; baudrate, framing and the rest of
// the protocol surface are the caller's business.
package usart

import (
	"embedded/mmio"
	"unsafe"

	"github.com/clktmr/stm32l4/mcu/cpu"
	"github.com/clktmr/stm32l4/mcu/dma"
	"github.com/clktmr/stm32l4/mcu/rcc"
)

type registers struct {
	cr1  mmio.U32
	cr2  mmio.U32
	cr3  mmio.U32
	brr  mmio.U32
	gtpr mmio.U32
	rtor mmio.U32
	rqr  mmio.U32
	isr  mmio.U32
	icr  mmio.U32
	rdr  mmio.U32
	tdr  mmio.U32
}

// cr1
const (
	ue = 1 << 0
	re = 1 << 2
	te = 1 << 3
)

// cr3
const (
	dmaRx = 1 << 6
	dmaTx = 1 << 7
)

type Periph struct {
	regs   *registers
	clock  rcc.Peripheral
	tx, rx dma.Routes
}

var (
	USART1 = &Periph{
		regs:  (*registers)(unsafe.Pointer(cpu.PERIPH | 0x0001_3800)),
		clock: rcc.USART1,
		tx:    dma.Routes{{dma.DMA1, 4, 2}, {dma.DMA2, 6, 2}},
		rx:    dma.Routes{{dma.DMA1, 5, 2}, {dma.DMA2, 7, 2}},
	}
	USART2 = &Periph{
		regs:  (*registers)(unsafe.Pointer(cpu.PERIPH | 0x0000_4400)),
		clock: rcc.USART2,
		tx:    dma.Routes{{dma.DMA1, 7, 2}},
		rx:    dma.Routes{{dma.DMA1, 6, 2}},
	}
	USART3 = &Periph{
		regs:  (*registers)(unsafe.Pointer(cpu.PERIPH | 0x0000_4800)),
		clock: rcc.USART3,
		tx:    dma.Routes{{dma.DMA1, 2, 2}},
		rx:    dma.Routes{{dma.DMA1, 3, 2}},
	}
	UART4 = &Periph{
		regs:  (*registers)(unsafe.Pointer(cpu.PERIPH | 0x0000_4c00)),
		clock: rcc.UART4,
		tx:    dma.Routes{{dma.DMA2, 3, 2}},
		rx:    dma.Routes{{dma.DMA2, 5, 2}},
	}
)

// Enable clocks the peripheral and turns on transmitter and receiver. Must
// be called once before any transfer.
func (p *Periph) Enable() {
	rcc.EnableClock(p.clock)
	p.regs.cr1.SetBits(ue | te | re)
}

// SetBaudrate programs the baudrate generator assuming the peripheral is
// clocked with PCLK at [cpu.ClockSpeed].
func (p *Periph) SetBaudrate(baud int) {
	p.regs.cr1.ClearBits(ue)
	p.regs.brr.Store(uint32(cpu.ClockSpeed) / uint32(baud))
	p.regs.cr1.SetBits(ue)
}

// TxDMA is the transmit side endpoint capability.
type TxDMA struct{ p *Periph }

// RxDMA is the receive side endpoint capability.
type RxDMA struct{ p *Periph }

func (p *Periph) TxDMA() TxDMA { return TxDMA{p} }
func (p *Periph) RxDMA() RxDMA { return RxDMA{p} }

func (t TxDMA) Addr() cpu.Addr { return cpu.AddrOf(t.p.regs.tdr.Addr()) }
func (t RxDMA) Addr() cpu.Addr { return cpu.AddrOf(t.p.regs.rdr.Addr()) }

func (t TxDMA) Request(ch *dma.Channel) (dma.Request, bool) { return t.p.tx.Find(ch) }
func (t RxDMA) Request(ch *dma.Channel) (dma.Request, bool) { return t.p.rx.Find(ch) }

// WriteAll sets up a transfer that feeds buf to the transmitter, one byte
// per transmit request. Serial data is slow, lowest bus priority.
func (p *Periph) WriteAll(ch *dma.Channel, buf *dma.Buf[uint8]) *dma.Transfer[uint8] {
	p.regs.cr3.SetBits(dmaTx)
	return dma.Setup[uint8](p.TxDMA(), ch, buf, dma.Config{
		Direction: dma.MemToPeriph,
		Priority:  dma.PrioLow,
	})
}

// ReadAll sets up a transfer that drains the receiver into buf.
func (p *Periph) ReadAll(ch *dma.Channel, buf *dma.Buf[uint8]) *dma.Transfer[uint8] {
	p.regs.cr3.SetBits(dmaRx)
	return dma.Setup[uint8](p.RxDMA(), ch, buf, dma.Config{
		Direction: dma.PeriphToMem,
		Priority:  dma.PrioLow,
	})
}
