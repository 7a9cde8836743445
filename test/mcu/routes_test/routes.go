package routes_test

import (
	"testing"

	"github.com/clktmr/stm32l4/mcu/adc"
	"github.com/clktmr/stm32l4/mcu/aes"
	"github.com/clktmr/stm32l4/mcu/dma"
	"github.com/clktmr/stm32l4/mcu/i2c"
	"github.com/clktmr/stm32l4/mcu/spi"
	"github.com/clktmr/stm32l4/mcu/usart"
	"github.com/clktmr/stm32l4/test/mcu/chans"
)

func all() []*dma.Channel {
	return []*dma.Channel{
		chans.DMA1.C1, chans.DMA1.C2, chans.DMA1.C3, chans.DMA1.C4,
		chans.DMA1.C5, chans.DMA1.C6, chans.DMA1.C7,
		chans.DMA2.C1, chans.DMA2.C2, chans.DMA2.C3, chans.DMA2.C4,
		chans.DMA2.C5, chans.DMA2.C6, chans.DMA2.C7,
	}
}

// TestRequestMap checks every endpoint against every channel of both
// controllers. The expected routes are the rows of RM0394 tables 41 and 42;
// all other pairings must be rejected. Request is a pure lookup, so probing
// rejected pairings is safe.
func TestRequestMap(t *testing.T) {
	d1, d2 := chans.DMA1, chans.DMA2
	tests := []struct {
		name   string
		target dma.Target
		routes map[*dma.Channel]dma.Request
	}{
		{"usart1 tx", usart.USART1.TxDMA(), map[*dma.Channel]dma.Request{d1.C4: 2, d2.C6: 2}},
		{"usart1 rx", usart.USART1.RxDMA(), map[*dma.Channel]dma.Request{d1.C5: 2, d2.C7: 2}},
		{"usart2 tx", usart.USART2.TxDMA(), map[*dma.Channel]dma.Request{d1.C7: 2}},
		{"usart2 rx", usart.USART2.RxDMA(), map[*dma.Channel]dma.Request{d1.C6: 2}},
		{"usart3 tx", usart.USART3.TxDMA(), map[*dma.Channel]dma.Request{d1.C2: 2}},
		{"usart3 rx", usart.USART3.RxDMA(), map[*dma.Channel]dma.Request{d1.C3: 2}},
		{"uart4 tx", usart.UART4.TxDMA(), map[*dma.Channel]dma.Request{d2.C3: 2}},
		{"uart4 rx", usart.UART4.RxDMA(), map[*dma.Channel]dma.Request{d2.C5: 2}},
		{"spi1 tx", spi.SPI1.TxDMA(), map[*dma.Channel]dma.Request{d1.C3: 1, d2.C4: 4}},
		{"spi1 rx", spi.SPI1.RxDMA(), map[*dma.Channel]dma.Request{d1.C2: 1, d2.C3: 4}},
		{"spi2 tx", spi.SPI2.TxDMA(), map[*dma.Channel]dma.Request{d1.C5: 1}},
		{"spi2 rx", spi.SPI2.RxDMA(), map[*dma.Channel]dma.Request{d1.C4: 1}},
		{"spi3 tx", spi.SPI3.TxDMA(), map[*dma.Channel]dma.Request{d2.C2: 3}},
		{"spi3 rx", spi.SPI3.RxDMA(), map[*dma.Channel]dma.Request{d2.C1: 3}},
		{"i2c1 tx", i2c.I2C1.TxDMA(), map[*dma.Channel]dma.Request{d1.C6: 3}},
		{"i2c1 rx", i2c.I2C1.RxDMA(), map[*dma.Channel]dma.Request{d1.C7: 3}},
		{"i2c2 tx", i2c.I2C2.TxDMA(), map[*dma.Channel]dma.Request{d1.C4: 3}},
		{"i2c2 rx", i2c.I2C2.RxDMA(), map[*dma.Channel]dma.Request{d1.C5: 3}},
		{"i2c3 tx", i2c.I2C3.TxDMA(), map[*dma.Channel]dma.Request{d1.C2: 3}},
		{"i2c3 rx", i2c.I2C3.RxDMA(), map[*dma.Channel]dma.Request{d1.C3: 3}},
		{"aes in", aes.AES.InDMA(), map[*dma.Channel]dma.Request{d2.C1: 6, d2.C5: 6}},
		{"aes out", aes.AES.OutDMA(), map[*dma.Channel]dma.Request{d2.C2: 6, d2.C3: 6}},
		{"adc1", adc.ADC1.DMA(), map[*dma.Channel]dma.Request{d1.C1: 0, d2.C3: 0}},
	}

	for _, tc := range tests {
		for i, ch := range all() {
			req, ok := tc.target.Request(ch)
			want, wantOk := tc.routes[ch]
			if ok != wantOk {
				t.Errorf("%s, channel %d: routed=%v, want %v", tc.name, i, ok, wantOk)
			} else if ok && req != want {
				t.Errorf("%s, channel %d: request %d, want %d", tc.name, i, req, want)
			}
		}
	}
}
