// The CPU's write buffer can delay stores to memory while another bus master
// already gets told to read them. All handover points between core and bus
// masters must therefore be bracketed with barriers.
package cpu

// DMB ensures all explicit memory accesses before it complete before any
// explicit memory access after it. Call this before requesting another bus
// master to read from an address range written by the core.
func DMB()

// DSB is like [DMB] but additionally stalls execution until the write buffer
// is drained. Call this after another bus master signaled completion and
// before the core reads the results.
func DSB()
