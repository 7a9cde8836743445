package machine

import (
	"embedded/mmio"
	"unsafe" // also for linkname

	"github.com/clktmr/stm32l4/mcu/cpu"
)

// The failsafe console is USART2, which is wired to the ST-Link virtual com
// port on the Nucleo boards. It is driven polled and without interrupts so it
// works in very early boot and inside the panic path.

var conRegs *conRegisters = (*conRegisters)(unsafe.Pointer(conBase))

const conBase uintptr = cpu.PERIPH | 0x0000_4400

const conBaud = 115200

type conRegisters struct {
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

// isr
const (
	txe = 1 << 7
	tc  = 1 << 6
)

// Direct register access instead of the rcc package: this must work with a
// partially initialized runtime.
func enableConsole() {
	apb1Enr1 := (*mmio.U32)(unsafe.Pointer(cpu.PERIPH | 0x0002_1058))
	apb1Enr1.SetBits(1 << 17) // USART2EN
	apb1Enr1.Load()

	conRegs.brr.Store(uint32(cpu.ClockSpeed) / conBaud)
	conRegs.cr1.Store(1<<3 | 1<<0) // TE, UE
}

// DefaultWrite spins the bytes out the console UART one by one. Is rather
// slow, because it avoids using DMA. Only intended as a fail safe logger in
// very early boot and in the panic path.
//
//go:nowritebarrierrec
//go:nosplit
//go:linkname DefaultWrite runtime.defaultWrite
func DefaultWrite(fd int, p []byte) int {
	for _, b := range p {
		for conRegs.isr.LoadBits(txe) == 0 {
			// wait
		}
		conRegs.tdr.Store(uint32(b))
	}
	for conRegs.isr.LoadBits(tc) == 0 {
		// wait
	}
	return len(p)
}

type defaultWriter int

const DefaultWriter defaultWriter = 0

func (v defaultWriter) Write(p []byte) (int, error) {
	return DefaultWrite(int(v), p), nil
}
