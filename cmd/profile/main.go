// Package main provides a profiling wrapper for pipesim to identify performance bottlenecks.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pipesim/loader"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/core"
)

type profileOptions struct {
	timing     bool
	cpuProfile string
	memProfile string
	iterations int
	maxInstr   uint64
}

func main() {
	cmd := newProfileCommand(os.Stdout)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func newProfileCommand(out io.Writer) *cobra.Command {
	opts := &profileOptions{}

	cmd := &cobra.Command{
		Use:           "profile [flags] <program.s>",
		Short:         "Run a program repeatedly under pprof",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(args[0], out)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.timing, "timing", false, "enable timing simulation mode")
	f.StringVar(&opts.cpuProfile, "cpuprofile", "", "write cpu profile to file")
	f.StringVar(&opts.memProfile, "memprofile", "", "write memory profile to file")
	f.IntVar(&opts.iterations, "iterations", 1000, "number of runs")
	f.Uint64Var(&opts.maxInstr, "max-instr", 1000000, "max instructions per run (0 = unlimited)")

	return cmd
}

func (o *profileOptions) run(programPath string, out io.Writer) error {
	prog, err := loader.Load(programPath)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	cfg := config.DefaultTimingConfig()
	cfg.InstructionLimit = o.maxInstr
	cfg.Unlimited = o.maxInstr == 0

	simulator, err := core.NewSimulator(prog, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Loaded: %s\n", programPath)
	fmt.Fprintf(out, "Instructions: %d\n", len(prog.Code))

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			return fmt.Errorf("creating CPU profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()

	var slots uint64
	for i := 0; i < o.iterations; i++ {
		n, err := o.runOnce(simulator)
		if err != nil {
			return err
		}
		slots += n
	}

	elapsed := time.Since(start)

	if o.memProfile != "" {
		f, err := os.Create(o.memProfile)
		if err != nil {
			return fmt.Errorf("creating memory profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("writing memory profile: %w", err)
		}
	}

	fmt.Fprintf(out, "\nProfiling Results:\n")
	fmt.Fprintf(out, "Runs: %d\n", o.iterations)
	fmt.Fprintf(out, "Elapsed time: %v\n", elapsed)
	if slots > 0 {
		fmt.Fprintf(out, "Slots simulated: %d\n", slots)
		fmt.Fprintf(out, "Slots/second: %.0f\n", float64(slots)/elapsed.Seconds())
	}

	return nil
}

// runOnce returns the number of trace slots of a timing run. Functional
// runs report no slots.
func (o *profileOptions) runOnce(simulator *core.Simulator) (uint64, error) {
	if !o.timing {
		_, _, err := simulator.RunFunctional()
		return 0, err
	}

	res, err := simulator.Run(nil)
	if err != nil {
		return 0, err
	}
	return res.Stats.Slots, nil
}
