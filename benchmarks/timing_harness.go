// Package benchmarks provides timing benchmark infrastructure for comparing
// pipeline configurations.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sarchlab/pipesim/loader"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/core"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Config names the timing configuration of the run
	Config string `json:"config"`

	Forwarding       config.Forwarding   `json:"forwarding"`
	BranchPrediction config.BranchPolicy `json:"branch_prediction"`
	BranchInDecode   bool                `json:"branch_in_decode"`

	// SimulatedCycles is the cycle count of the timing diagram
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsIssued is the number of program instructions issued
	InstructionsIssued uint64 `json:"instructions_issued"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallSlots is the number of data hazard stalls
	StallSlots uint64 `json:"stall_slots"`

	// BubbleSlots is the number of branch and jump bubbles
	BubbleSlots uint64 `json:"bubble_slots"`

	// Branch predictor stats
	BranchPredictions     uint64  `json:"branch_predictions,omitempty"`
	BranchCorrect         uint64  `json:"branch_correct,omitempty"`
	BranchMispredictions  uint64  `json:"branch_mispredictions,omitempty"`
	BranchAccuracyPercent float64 `json:"branch_accuracy_percent,omitempty"`

	// Error is set when the run failed or produced wrong register values
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Source is the assembly program
	Source string

	// ExpectedRegs lists register values the program must end with
	ExpectedRegs map[uint8]int32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Configs are the timing configurations every benchmark runs under
	Configs []*config.TimingConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose prints the timing diagram of every run
	Verbose bool
}

// DefaultConfig returns a harness configuration covering every
// combination of forwarding, branch prediction and branch resolution.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Configs: ConfigMatrix(),
		Output:  os.Stdout,
	}
}

// ConfigMatrix returns one timing configuration per combination of
// forwarding policy, branch policy and branch-in-decode.
func ConfigMatrix() []*config.TimingConfig {
	forwarding := []config.Forwarding{
		config.ForwardNone, config.ForwardALU, config.ForwardFull,
	}
	policies := []config.BranchPolicy{
		config.PredictNone, config.PredictPerfect,
		config.PredictTaken, config.PredictNotTaken,
	}

	var configs []*config.TimingConfig
	for _, f := range forwarding {
		for _, bp := range policies {
			for _, inDecode := range []bool{false, true} {
				cfg := config.DefaultTimingConfig()
				cfg.Forwarding = f
				cfg.BranchPrediction = bp
				cfg.BranchInDecode = inDecode
				configs = append(configs, cfg)
			}
		}
	}

	return configs
}

// ConfigName returns a short label for a timing configuration.
func ConfigName(cfg *config.TimingConfig) string {
	resolve := "ex"
	if cfg.BranchInDecode {
		resolve = "id"
	}
	return fmt.Sprintf("fwd=%s/bp=%s/br=%s", cfg.Forwarding, cfg.BranchPrediction, resolve)
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if len(config.Configs) == 0 {
		config.Configs = ConfigMatrix()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes every benchmark under every configuration and returns
// results, grouped by benchmark.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks)*len(h.config.Configs))

	for _, bench := range h.benchmarks {
		prog, err := loader.LoadReader(strings.NewReader(bench.Source))

		for _, cfg := range h.config.Configs {
			if err != nil {
				results = append(results, h.failed(bench, cfg, err))
				continue
			}
			results = append(results, h.runBenchmark(bench, prog, cfg))
		}
	}

	return results
}

func (h *Harness) failed(bench Benchmark, cfg *config.TimingConfig, err error) BenchmarkResult {
	return BenchmarkResult{
		Name:             bench.Name,
		Description:      bench.Description,
		Config:           ConfigName(cfg),
		Forwarding:       cfg.Forwarding,
		BranchPrediction: cfg.BranchPrediction,
		BranchInDecode:   cfg.BranchInDecode,
		Error:            err.Error(),
	}
}

// runBenchmark executes a single benchmark under one configuration.
func (h *Harness) runBenchmark(
	bench Benchmark,
	prog *loader.Program,
	cfg *config.TimingConfig,
) BenchmarkResult {
	simulator, err := core.NewSimulator(prog, cfg)
	if err != nil {
		return h.failed(bench, cfg, err)
	}

	var out io.Writer
	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "--- %s [%s] ---\n", bench.Name, ConfigName(cfg))
		out = h.config.Output
	}

	// Run simulation and measure time
	start := time.Now()
	run, err := simulator.Run(out)
	wallTime := time.Since(start)

	if err != nil {
		return h.failed(bench, cfg, err)
	}

	result := BenchmarkResult{
		Name:                 bench.Name,
		Description:          bench.Description,
		Config:               ConfigName(cfg),
		Forwarding:           cfg.Forwarding,
		BranchPrediction:     cfg.BranchPrediction,
		BranchInDecode:       cfg.BranchInDecode,
		SimulatedCycles:      uint64(run.Cycles),
		InstructionsIssued:   run.Stats.Instructions,
		CPI:                  run.Stats.CPI(run.Cycles),
		StallSlots:           run.Stats.Stalls,
		BubbleSlots:          run.Stats.Bubbles,
		BranchPredictions:    run.Stats.BranchPredictions,
		BranchCorrect:        run.Stats.BranchCorrect,
		BranchMispredictions: run.Stats.BranchMispredictions,
		WallTime:             wallTime,
	}

	if result.BranchPredictions > 0 {
		result.BranchAccuracyPercent =
			float64(result.BranchCorrect) / float64(result.BranchPredictions) * 100
	}

	for reg, want := range bench.ExpectedRegs {
		if got := run.Regs.ReadReg(reg); got != want {
			result.Error = fmt.Sprintf("$%d = %d, expected %d", reg, got, want)
			break
		}
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Pipeline Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	last := ""
	for _, r := range results {
		if r.Name != last {
			_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
			_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
			last = r.Name
		}

		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  %-32s FAILED: %s\n", r.Config, r.Error)
			continue
		}

		_, _ = fmt.Fprintf(h.config.Output,
			"  %-32s cycles=%-4d insts=%-4d CPI=%.3f stalls=%-3d bubbles=%-3d",
			r.Config, r.SimulatedCycles, r.InstructionsIssued, r.CPI,
			r.StallSlots, r.BubbleSlots)
		if r.BranchPredictions > 0 {
			_, _ = fmt.Fprintf(h.config.Output, " accuracy=%.1f%%", r.BranchAccuracyPercent)
		}
		_, _ = fmt.Fprintln(h.config.Output)
	}

	_, _ = fmt.Fprintln(h.config.Output, "")
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,forwarding,branch_prediction,branch_in_decode,cycles,instructions,cpi,stalls,bubbles,mispredictions,error")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%s,%s,%t,%d,%d,%.3f,%d,%d,%d,%q\n",
			r.Name,
			r.Forwarding,
			r.BranchPrediction,
			r.BranchInDecode,
			r.SimulatedCycles,
			r.InstructionsIssued,
			r.CPI,
			r.StallSlots,
			r.BubbleSlots,
			r.BranchMispredictions,
			r.Error,
		)
	}
}

// BenchmarkReport is the complete JSON output format.
type BenchmarkReport struct {
	// Metadata contains information about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results contains all benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains metadata about the benchmark run.
type ReportMetadata struct {
	// Timestamp is when the benchmarks were run
	Timestamp string `json:"timestamp"`

	// Configs is the number of timing configurations per benchmark
	Configs int `json:"configs"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalRuns is the number of benchmark runs
	TotalRuns int `json:"total_runs"`

	// FailedRuns is the number of runs that reported an error
	FailedRuns int `json:"failed_runs"`

	// TotalCycles is the sum of simulated cycles across all runs
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of instructions across all runs
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the overall CPI (total cycles / total instructions)
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all runs
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize computes aggregate statistics of results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalRuns: len(results)}

	for _, r := range results {
		if r.Error != "" {
			summary.FailedRuns++
		}
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsIssued
		summary.TotalWallTime += r.WallTime
	}

	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}

	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Configs:   len(h.config.Configs),
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
