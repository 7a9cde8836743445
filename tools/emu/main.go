package emu

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/aymanbagabas/go-pty"
	"github.com/buildkite/shellwords"
)

const usageString = `Boots an elf in qemu and scans the console for test results.

Usage: %s [flags] <elffile>

`

var (
	flags = flag.NewFlagSet("emu", flag.ExitOnError)

	infile  string
	machine = flags.String("machine", "b-l475e-iot01a", "qemu machine model")
	qemu    = flags.String("qemu", "qemu-system-arm", "qemu command, may carry extra arguments")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "emu")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() == 1 {
		infile = flags.Arg(0)
	} else {
		flags.Usage()
		os.Exit(1)
	}

	cmdline, err := shellwords.Split(*qemu)
	if err != nil {
		log.Fatalln("qemu command:", err)
	}
	cmdline = append(cmdline, "-M", *machine, "-nographic", "-kernel", infile)

	// qemu line buffers and mangles its serial output when stdout isn't a
	// terminal, run it on a pty instead of a pipe.
	ptmx, err := pty.New()
	if err != nil {
		log.Fatalln("open pty:", err)
	}
	defer ptmx.Close()

	cmd := ptmx.Command(cmdline[0], cmdline[1:]...)
	err = cmd.Start()
	if err != nil {
		log.Fatalln("start qemu:", err)
	}

	sigintr := make(chan os.Signal, 1)
	signal.Notify(sigintr, os.Interrupt)
	go func() {
		<-sigintr
		cmd.Process.Kill()
	}()

	scanner := bufio.NewScanner(ptmx)
	exiting := false
	code := 0
	for scanner.Scan() {
		log.Println(scanner.Text())
		if exiting {
			continue
		}
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "fatal error:"), strings.HasPrefix(line, "panic:"):
			fallthrough
		case line == "FAIL":
			code = 1
			fallthrough
		case line == "PASS":
			exiting = true
			go func() {
				// give panic() time to print the stacktrace
				time.Sleep(500 * time.Millisecond)
				cmd.Process.Kill()
			}()
		}
	}
	cmd.Wait()
	os.Exit(code)
}
