package dma

import (
	"embedded/mmio"

	"github.com/clktmr/stm32l4/mcu/cpu"
)

const (
	dma1Base uintptr = cpu.PERIPH | 0x0002_0000
	dma2Base uintptr = cpu.PERIPH | 0x0002_0400
)

type statusFlags uint32

// Per-channel flags in isr, shifted by 4*(channel-1). Writing 1 to the same
// position in ifcr clears the flag.
const (
	flagGlobal   statusFlags = 1 << iota // logical OR of the other three
	flagComplete                         // transfer complete
	flagHalf                             // first half of the buffer transferred
	flagError                            // bus error on peripheral or memory side

	flagsAll = flagGlobal | flagComplete | flagHalf | flagError
)

type controlFlags uint32

// Channel control register bits, see RM0394 chapter 11.6.3.
const (
	enable           controlFlags = 1 << iota
	completeIntr                  // interrupt on transfer complete
	halfIntr                      // interrupt on half transfer
	errorIntr                     // interrupt on transfer error
	fromMem                       // read from memory, write to peripheral
	circular                      // reload length and start over on complete
	incrementPeriph               // must stay cleared, see [Target.Addr]
	incrementMem
	mem2mem controlFlags = 1 << 14 // unsupported by this package

	intrAll = completeIntr | halfIntr | errorIntr
)

// Word size fields, identical encoding for peripheral and memory side.
const (
	periphSizeShift = 8
	memSizeShift    = 10
	bits8           = 0b00
	bits16          = 0b01
	bits32          = 0b10
)

const priorityShift = 12

// Each channel owns one block of these registers. The unused word keeps the
// 0x14 byte stride between channels.
type channelRegs struct {
	cr   mmio.R32[controlFlags]
	ndtr mmio.U32 // number of words left, reads back remaining count
	par  mmio.R32[cpu.Addr]
	mar  mmio.R32[cpu.Addr]
	_    mmio.U32
}

// Controller-wide registers. isr, ifcr and cselr are shared between all
// channels and only accessed through [Controller] methods.
type registers struct {
	isr   mmio.U32
	ifcr  mmio.U32
	ch    [numChannels]channelRegs
	_     [5]mmio.U32
	cselr mmio.U32 // request line selector, 4 bit per channel
}
