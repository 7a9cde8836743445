// Package chans splits both DMA controllers exactly once and hands out the
// channels to the test packages. Splitting twice panics, so all tests that
// need a channel must take it from here.
package chans

import "github.com/clktmr/stm32l4/mcu/dma"

var (
	DMA1 = dma.DMA1.Split()
	DMA2 = dma.DMA2.Split()
)
