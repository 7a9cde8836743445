// Package machine is imported by the runtime and allows the target to
// implement some hooks, most importantly rt0 and early panic output.
package machine

import (
	"github.com/clktmr/stm32l4/mcu/rcc"
)

// Reset holds the cause flags of the reset that started this boot.
var Reset rcc.ResetCause

func init() {
	Reset = rcc.LastReset()
}
