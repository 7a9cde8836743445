package adc_test

import (
	"testing"
	"time"

	"github.com/clktmr/stm32l4/mcu/adc"
	"github.com/clktmr/stm32l4/mcu/dma"
	"github.com/clktmr/stm32l4/test/mcu/chans"
)

func setupVref(t *testing.T) {
	t.Helper()
	adc.ADC1.Enable()
	adc.EnableVref()
	adc.ADC1.SetSampleTime(0, 7) // the reference needs the longest sampling
	adc.ADC1.SetSequence(0)
}

func checkSamples(t *testing.T, samples []uint16) {
	t.Helper()
	for i, s := range samples {
		if s == 0 || s > 0xfff {
			t.Fatalf("sample %d: %#x out of range", i, s)
		}
	}
}

// TestReadAll captures a fixed number of reference voltage samples.
func TestReadAll(t *testing.T) {
	setupVref(t)

	buf := dma.MakeBuf[uint16](16)
	defer buf.Unpin()

	capture := adc.ADC1.ReadAll(chans.DMA1.C1, buf).Start()
	adc.ADC1.Start()
	if _, err := capture.Wait(); err != nil {
		t.Fatal(err)
	}
	adc.ADC1.Stop()

	checkSamples(t, buf.Slice())
}

// TestReadCircular lets the converter free-run into a ring buffer and drains
// it half by half for a few cycles.
func TestReadCircular(t *testing.T) {
	setupVref(t)

	buf := dma.MakeBuf[uint16](64)
	defer buf.Unpin()

	capture := adc.ADC1.ReadCircular(chans.DMA1.C1, buf).Start()
	adc.ADC1.Start()

	deadline := time.Now().Add(time.Second)
	for cycles := 0; cycles < 4; {
		if time.Now().After(deadline) {
			t.Fatal("ring buffer never filled")
		}
		_, half, complete := capture.State()
		if !half {
			continue
		}
		checkSamples(t, buf.Slice()[:32])
		if complete {
			checkSamples(t, buf.Slice()[32:])
			cycles++
		}
		capture.ClearFlags()
	}
	adc.ADC1.Stop()

	if _, err := capture.Stop(); err != nil {
		t.Fatal(err)
	}
}
