package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/clktmr/stm32l4/tools/emu"
	"github.com/clktmr/stm32l4/tools/image"
)

const usageString = `l4go is a tool for development on stm32l4 targets.

Usage:

	%s <command> [arguments]

The commands are:

	image    convert elf to flashable images
	emu      boot an elf in qemu and scan for test results
`

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.Default().SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "image":
		image.Main(flag.Args())
	case "emu":
		emu.Main(flag.Args())
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}
