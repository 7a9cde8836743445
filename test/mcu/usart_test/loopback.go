package usart_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/clktmr/stm32l4/mcu/dma"
	"github.com/clktmr/stm32l4/mcu/usart"
	"github.com/clktmr/stm32l4/test/mcu/chans"

	"github.com/sigurn/crc8"
)

var crcTable = crc8.MakeTable(crc8.CRC8)

// TestLoopback moves a frame out of USART3 and back in over an external
// TX to RX jumper. The last byte is a checksum over the payload, so a
// partially shifted or repeated frame is caught even if the length matches.
func TestLoopback(t *testing.T) {
	uart := usart.USART3
	uart.Enable()
	uart.SetBaudrate(115200)

	txBuf := dma.MakeBuf[uint8](64)
	rxBuf := dma.MakeBuf[uint8](64)

	p := txBuf.Slice()
	for i := range p[:len(p)-1] {
		p[i] = byte(i) ^ 0xa5
	}
	p[len(p)-1] = crc8.Checksum(p[:len(p)-1], crcTable)

	// Arm the receiver first, the transmitter won't wait for it.
	rx := uart.ReadAll(chans.DMA1.C3, rxBuf).Start()
	tx := uart.WriteAll(chans.DMA1.C2, txBuf).Start()

	rx.EnableInterrupts(dma.Complete | dma.Failed)
	chans.DMA1.C3.EnableIRQ()
	rx.Note().Sleep(100 * time.Millisecond)

	if rx.IsActive() {
		rx.Stop()
		tx.Stop()
		t.Skip("needs USART3 TX wired to RX")
	}

	if _, err := tx.Wait(); err != nil {
		t.Fatal("tx:", err)
	}
	if _, err := rx.Wait(); err != nil {
		t.Fatal("rx:", err)
	}

	got := rxBuf.Slice()
	if crc8.Checksum(got[:len(got)-1], crcTable) != got[len(got)-1] {
		t.Error("checksum mismatch")
	}
	if !bytes.Equal(got, p) {
		t.Errorf("got % x\nwant % x", got, p)
	}

	txBuf.Unpin()
	rxBuf.Unpin()
}

// BenchmarkWriteAll measures setup and completion overhead per transfer, not
// line throughput, by sending the smallest possible frame.
func BenchmarkWriteAll(b *testing.B) {
	uart := usart.USART3
	uart.Enable()
	uart.SetBaudrate(115200)

	buf := dma.MakeBuf[uint8](1)
	ch := chans.DMA1.C2
	for i := 0; i < b.N; i++ {
		res, err := uart.WriteAll(ch, buf).Start().Wait()
		if err != nil {
			b.Fatal(err)
		}
		ch = res.Channel
	}
	buf.Unpin()
}
