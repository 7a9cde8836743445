package cpu

import "unsafe"

// The maximum system clock (HCLK) with the PLL sourced from MSI.
const ClockSpeed = 80e6

// Memory regions of the Cortex-M4 bus matrix. There is no MMU, virtual and
// bus addresses are identical.
const (
	FLASH  uintptr = 0x0800_0000 // read through ART cache and prefetch
	SRAM2  uintptr = 0x1000_0000 // also aliased after SRAM1, parity checked
	SRAM1  uintptr = 0x2000_0000
	PERIPH uintptr = 0x4000_0000
)

// Addr represents a bus address as seen by bus masters, e.g. the DMA
// controllers.
type Addr uint32

// MMIO returns a register block of type T at addr.
func MMIO[T any](addr uintptr) *T {
	return (*T)(unsafe.Pointer(addr))
}

// AddrOf returns the bus address of a virtual address.
func AddrOf(addr uintptr) Addr {
	return Addr(addr)
}

// Same as [AddrOf] but for slices.
func AddrOfSlice[T any](s []T) Addr {
	return AddrOf(uintptr(unsafe.Pointer(unsafe.SliceData(s))))
}
