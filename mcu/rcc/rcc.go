// Package rcc controls the reset and clock control unit. Peripherals are
// unclocked after reset and must be enabled here once before their registers
// can be accessed.
package rcc

import (
	"embedded/mmio"
	"unsafe"

	"github.com/clktmr/stm32l4/mcu/cpu"
)

var regs *registers = (*registers)(unsafe.Pointer(baseAddr))

const baseAddr uintptr = cpu.PERIPH | 0x0002_1000

type registers struct {
	cr          mmio.U32
	icscr       mmio.U32
	cfgr        mmio.U32
	pllCfgr     mmio.U32
	pllSai1Cfgr mmio.U32
	_           mmio.U32
	cier        mmio.U32
	cifr        mmio.U32
	cicr        mmio.U32
	_           mmio.U32
	ahb1Rstr    mmio.U32
	ahb2Rstr    mmio.U32
	ahb3Rstr    mmio.U32
	_           mmio.U32
	apb1Rstr1   mmio.U32
	apb1Rstr2   mmio.U32
	apb2Rstr    mmio.U32
	_           mmio.U32
	ahb1Enr     mmio.U32
	ahb2Enr     mmio.U32
	ahb3Enr     mmio.U32
	_           mmio.U32
	apb1Enr1    mmio.U32
	apb1Enr2    mmio.U32
	apb2Enr     mmio.U32
	_           mmio.U32
	ahb1Smenr   mmio.U32
	ahb2Smenr   mmio.U32
	ahb3Smenr   mmio.U32
	_           mmio.U32
	apb1Smenr1  mmio.U32
	apb1Smenr2  mmio.U32
	apb2Smenr   mmio.U32
	_           mmio.U32
	ccipr       mmio.U32
	_           mmio.U32
	bdcr        mmio.U32
	csr         mmio.U32
}

// Peripheral identifies a clock gate by bus and enable bit position, see
// RM0394 chapter 6.4.
type Peripheral uint16

const (
	busAHB1 Peripheral = iota << 8
	busAHB2
	busAPB1
	busAPB2
)

const busMask Peripheral = 0xff00

const (
	DMA1   = busAHB1 | 0
	DMA2   = busAHB1 | 1
	CRC    = busAHB1 | 12
	ADC    = busAHB2 | 13
	AES    = busAHB2 | 16
	SPI2   = busAPB1 | 14
	SPI3   = busAPB1 | 15
	USART2 = busAPB1 | 17
	USART3 = busAPB1 | 18
	UART4  = busAPB1 | 19
	I2C1   = busAPB1 | 21
	I2C2   = busAPB1 | 22
	I2C3   = busAPB1 | 23
	PWR    = busAPB1 | 28
	SYSCFG = busAPB2 | 0
	SPI1   = busAPB2 | 12
	USART1 = busAPB2 | 14
)

func enr(p Peripheral) *mmio.U32 {
	switch p & busMask {
	case busAHB1:
		return &regs.ahb1Enr
	case busAHB2:
		return &regs.ahb2Enr
	case busAPB1:
		return &regs.apb1Enr1
	default:
		return &regs.apb2Enr
	}
}

func rstr(p Peripheral) *mmio.U32 {
	switch p & busMask {
	case busAHB1:
		return &regs.ahb1Rstr
	case busAHB2:
		return &regs.ahb2Rstr
	case busAPB1:
		return &regs.apb1Rstr1
	default:
		return &regs.apb2Rstr
	}
}

// EnableClock opens p's clock gate. The readback guarantees the required
// delay between enabling the clock and the first peripheral access.
func EnableClock(p Peripheral) {
	r := enr(p)
	r.SetBits(1 << (p &^ busMask))
	r.Load()
}

// DisableClock closes p's clock gate. Accessing an unclocked peripheral
// stalls the bus.
func DisableClock(p Peripheral) {
	enr(p).ClearBits(1 << (p &^ busMask))
}

// Reset puts p's registers back into their documented reset state.
func Reset(p Peripheral) {
	r := rstr(p)
	r.SetBits(1 << (p &^ busMask))
	r.ClearBits(1 << (p &^ busMask))
}

type ResetCause uint32

// Read access to csr, reset cause flags
const (
	ResetFirewall   ResetCause = 1 << 24
	ResetOptionByte ResetCause = 1 << 25
	ResetPin        ResetCause = 1 << 26
	ResetBrownout   ResetCause = 1 << 27
	ResetSoftware   ResetCause = 1 << 28
	ResetIWDG       ResetCause = 1 << 29
	ResetWWDG       ResetCause = 1 << 30
	ResetLowPower   ResetCause = 1 << 31
)

// Write access to csr
const clearResetFlags = 1 << 23

// LastReset returns the cause flags of the most recent reset and clears them
// in hardware.
func LastReset() ResetCause {
	cause := ResetCause(regs.csr.Load())
	regs.csr.SetBits(clearResetFlags)
	return cause & 0xff00_0000
}
