// Package main provides the entry point for pipesim.
// pipesim is a five stage pipeline timing simulator for a MIPS-like ISA,
// built on Akita.
//
// For the full CLI, use: go run ./cmd/pipesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("pipesim - MIPS-like Pipeline Timing Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: pipesim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -i, --input FILE        Source file (default: standard input)")
	fmt.Println("  -o, --output FILE       Output file (default: standard output)")
	fmt.Println("  -f, --forwarding[=MODE] Forwarding: no, alu, full")
	fmt.Println("  -b, --branch POLICY     Branch prediction: no, p, t, nt")
	fmt.Println("  -d, --branch-in-dec     Resolve branches in decode")
	fmt.Println("  -n, --nops              Fill stalls with regular NOPs")
	fmt.Println("  -u, --unlimited         Disable the instruction limit")
	fmt.Println("  -c, --config FILE       Timing configuration JSON file")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/pipesim --help' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/pipesim' instead.")
	}
}
