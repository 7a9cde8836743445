package dma

import (
	_ "unsafe" // for linkname
)

// Every channel has its own NVIC line, so the handlers are trivial: each
// forwards to its channel. See [Channel.isr] for what they do.

//go:linkname dma1Ch1Handler IRQ11_Handler
//go:interrupthandler
func dma1Ch1Handler() { DMA1.chs[0].isr() }

//go:linkname dma1Ch2Handler IRQ12_Handler
//go:interrupthandler
func dma1Ch2Handler() { DMA1.chs[1].isr() }

//go:linkname dma1Ch3Handler IRQ13_Handler
//go:interrupthandler
func dma1Ch3Handler() { DMA1.chs[2].isr() }

//go:linkname dma1Ch4Handler IRQ14_Handler
//go:interrupthandler
func dma1Ch4Handler() { DMA1.chs[3].isr() }

//go:linkname dma1Ch5Handler IRQ15_Handler
//go:interrupthandler
func dma1Ch5Handler() { DMA1.chs[4].isr() }

//go:linkname dma1Ch6Handler IRQ16_Handler
//go:interrupthandler
func dma1Ch6Handler() { DMA1.chs[5].isr() }

//go:linkname dma1Ch7Handler IRQ17_Handler
//go:interrupthandler
func dma1Ch7Handler() { DMA1.chs[6].isr() }

//go:linkname dma2Ch1Handler IRQ56_Handler
//go:interrupthandler
func dma2Ch1Handler() { DMA2.chs[0].isr() }

//go:linkname dma2Ch2Handler IRQ57_Handler
//go:interrupthandler
func dma2Ch2Handler() { DMA2.chs[1].isr() }

//go:linkname dma2Ch3Handler IRQ58_Handler
//go:interrupthandler
func dma2Ch3Handler() { DMA2.chs[2].isr() }

//go:linkname dma2Ch4Handler IRQ59_Handler
//go:interrupthandler
func dma2Ch4Handler() { DMA2.chs[3].isr() }

//go:linkname dma2Ch5Handler IRQ60_Handler
//go:interrupthandler
func dma2Ch5Handler() { DMA2.chs[4].isr() }

//go:linkname dma2Ch6Handler IRQ68_Handler
//go:interrupthandler
func dma2Ch6Handler() { DMA2.chs[5].isr() }

//go:linkname dma2Ch7Handler IRQ69_Handler
//go:interrupthandler
func dma2Ch7Handler() { DMA2.chs[6].isr() }
