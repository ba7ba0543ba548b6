// Command benchmark runs the pipesim microbenchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	--json     Output a JSON report (default: human-readable)
//	--csv      Output results in CSV format
//	--core     Run only the core subset of benchmarks
//	-v         Print the timing diagram of every run
//
// Example:
//
//	# Run all benchmarks under every configuration
//	go run ./cmd/benchmark
//
//	# Save a report for later comparison
//	go run ./cmd/benchmark --json > results.json
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pipesim/benchmarks"
)

func main() {
	cmd := newBenchmarkCommand(os.Stdout)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func newBenchmarkCommand(out io.Writer) *cobra.Command {
	var jsonOutput, csvOutput, coreOnly, verbose bool

	cmd := &cobra.Command{
		Use:           "benchmark",
		Short:         "Run the pipeline microbenchmarks under every timing configuration",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && csvOutput {
				return errors.New("--json and --csv are mutually exclusive")
			}

			config := benchmarks.DefaultConfig()
			config.Output = out
			config.Verbose = verbose

			harness := benchmarks.NewHarness(config)
			if coreOnly {
				harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
			} else {
				harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
			}

			if !jsonOutput && !csvOutput {
				fmt.Fprintln(out, "pipesim Benchmark Harness")
				fmt.Fprintln(out, "=========================")
				fmt.Fprintf(out, "Configurations: %d\n\n", len(config.Configs))
			}

			results := harness.RunAll()

			switch {
			case jsonOutput:
				if err := harness.PrintJSON(results); err != nil {
					return err
				}
			case csvOutput:
				harness.PrintCSV(results)
			default:
				harness.PrintResults(results)
			}

			if summary := benchmarks.Summarize(results); summary.FailedRuns > 0 {
				return fmt.Errorf("%d of %d runs failed", summary.FailedRuns, summary.TotalRuns)
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&jsonOutput, "json", false, "output a JSON report")
	f.BoolVar(&csvOutput, "csv", false, "output results in CSV format")
	f.BoolVar(&coreOnly, "core", false, "run only the core benchmarks")
	f.BoolVarP(&verbose, "verbose", "v", false, "print the timing diagram of every run")

	return cmd
}
