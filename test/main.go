package main

import (
	"embedded/arch/cortexm/systim"
	"embedded/rtos"
	"os"
	"reflect"
	"runtime"
	"syscall"
	"testing"

	"github.com/clktmr/stm32l4/machine"
	"github.com/clktmr/stm32l4/mcu/cpu"

	"github.com/clktmr/stm32l4/test/mcu/adc_test"
	"github.com/clktmr/stm32l4/test/mcu/aes_test"
	"github.com/clktmr/stm32l4/test/mcu/routes_test"
	"github.com/clktmr/stm32l4/test/mcu/usart_test"

	"github.com/embeddedgo/fs/termfs"
)

func init() {
	systim.Setup(cpu.ClockSpeed)

	// Redirect stdout and stderr to the console UART
	console := termfs.NewLight("termfs", nil, machine.DefaultWriter)
	rtos.Mount(console, "/dev/console")
	var err error
	os.Stdout, err = os.OpenFile("/dev/console", syscall.O_WRONLY, 0)
	if err != nil {
		panic(err)
	}
	os.Stderr = os.Stdout
}

func main() {
	os.Args = append(os.Args, "-test.v")
	os.Args = append(os.Args, "-test.bench=.")
	testing.Main(
		matchAll,
		[]testing.InternalTest{
			newInternalTest(routes_test.TestRequestMap),
			newInternalTest(usart_test.TestLoopback),
			newInternalTest(aes_test.TestRoundTrip),
			newInternalTest(adc_test.TestReadAll),
			newInternalTest(adc_test.TestReadCircular),
		},
		[]testing.InternalBenchmark{
			newInternalBenchmark(usart_test.BenchmarkWriteAll),
		}, nil,
	)
}

func matchAll(_ string, _ string) (bool, error) { return true, nil }

func newInternalTest(testFn func(*testing.T)) testing.InternalTest {
	return testing.InternalTest{
		runtime.FuncForPC(reflect.ValueOf(testFn).Pointer()).Name(),
		testFn,
	}
}

func newInternalBenchmark(testFn func(*testing.B)) testing.InternalBenchmark {
	return testing.InternalBenchmark{
		runtime.FuncForPC(reflect.ValueOf(testFn).Pointer()).Name(),
		testFn,
	}
}
