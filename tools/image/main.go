// Copyright 2024 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"debug/elf"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

const usageString = `ELF to flashable image converter.

Usage: %s [flags] <elffile>

`

// Flash as seen by the bootloader.
const flashBase = 0x0800_0000

var (
	flags = flag.NewFlagSet("image", flag.ExitOnError)

	infile string
	format = flags.String("format", "bin", "bin | uf2")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "image")
	flags.PrintDefaults()
}

func objcopy(dst io.WriterAt, src *elf.File) error {
	for _, s := range src.Sections {
		if s.Type != elf.SHT_PROGBITS || s.Flags&elf.SHF_ALLOC == 0 {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return err
		}

		if s.Addr < flashBase {
			return errors.New("section below flash base")
		}

		_, err = dst.WriteAt(data, int64(s.Addr-flashBase))
		if err != nil {
			return err
		}
	}

	return nil
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

	outfile, _ := strings.CutSuffix(infile, ".elf")
	outfile += "." + *format

	elffile, err := elf.Open(infile)
	if err != nil {
		log.Fatalln(err)
	}
	defer elffile.Close()

	img, err := os.CreateTemp("", "image")
	if err != nil {
		log.Fatalln(err)
	}
	defer os.Remove(img.Name())
	defer img.Close()

	err = objcopy(img, elffile)
	if err != nil {
		log.Fatalln("objcopy:", err)
	}

	switch *format {
	case "bin":
		out, err := os.Create(outfile)
		if err != nil {
			log.Fatalln(err)
		}
		defer out.Close()
		img.Seek(0, io.SeekStart)
		_, err = io.Copy(out, img)
		if err != nil {
			log.Fatalln(err)
		}
	case "uf2":
		raw, err := io.ReadAll(img)
		if err != nil {
			log.Fatalln(err)
		}
		err = writeUF2(outfile, raw)
		if err != nil {
			log.Fatalln(err)
		}
	default:
		log.Fatalf("objcopy: %s format not supported", *format)
	}
}
