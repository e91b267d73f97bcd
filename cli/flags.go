package main

import (
	"flag"
	"fmt"
	"os"
)

func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\nFlags:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}
