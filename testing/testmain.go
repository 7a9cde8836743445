// Package testing provides utilities for writing stm32l4 specific tests.
package testing

import (
	"embedded/rtos"
	"os"
	"syscall"
	"testing"

	"github.com/clktmr/stm32l4/machine"

	"github.com/embeddedgo/fs/termfs"
)

// TestMain should be used as TestMain for stm32l4 specific tests.
func TestMain(m *testing.M) {
	var err error

	// Redirect stdout and stderr to the console UART. The default
	// syswriter stays in place as a failsafe, which will print panics.
	fs := termfs.NewLight("termfs", nil, machine.DefaultWriter)
	rtos.Mount(fs, "/dev/console")
	os.Stdout, err = os.OpenFile("/dev/console", syscall.O_WRONLY, 0)
	if err != nil {
		panic(err)
	}
	os.Stderr = os.Stdout

	// TODO find a way to pass these from the 'go test' command
	os.Args = append(os.Args, "-test.v")
	os.Args = append(os.Args, "-test.bench=.")
	os.Args = append(os.Args, "-test.benchmem")

	os.Exit(m.Run())
}
