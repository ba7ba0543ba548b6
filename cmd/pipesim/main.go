// Package main provides the entry point for pipesim.
// pipesim assembles a MIPS-like program and prints the timing diagram of
// its run through a five stage pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"
)

func main() {
	cmd := newRootCommand(os.Stdin, os.Stdout, os.Stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
