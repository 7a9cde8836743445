//go:build stm32l4

package machine

import (
	"embedded/arch/cortexm/systim"

	"github.com/clktmr/stm32l4/mcu/cpu"
)

func init() {
	systim.Setup(cpu.ClockSpeed)
	enableConsole()
}
