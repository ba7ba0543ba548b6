package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/loader"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/diagram"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

type options struct {
	input       string
	output      string
	configPath  string
	nops        bool
	inDecode    bool
	unlimited   bool
	forwarding  string
	branch      string
	limit       uint64
	jumpBubbles uint64
	stats       bool
	functional  bool
	verbose     bool
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pipesim",
		Short: "Pipeline timing simulator for a MIPS-like ISA",
		Long: `pipesim assembles a program, runs it through a five stage pipeline
and prints the listing followed by the timing diagram of every
issued instruction.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(stderr, opts.verbose)

			cfg, err := opts.timingConfig(cmd)
			if err != nil {
				return err
			}

			return opts.run(cfg, stdin, stdout)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "source file (default: standard input)")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: standard output)")
	f.StringVarP(&opts.configPath, "config", "c", "", "timing configuration JSON file")
	f.BoolVarP(&opts.nops, "nops", "n", false, "fill stalls with regular NOPs and print the plain listing")
	f.BoolVarP(&opts.inDecode, "branch-in-dec", "d", false, "resolve branches in decode")
	f.BoolVarP(&opts.unlimited, "unlimited", "u", false, "disable the instruction limit")
	f.StringVarP(&opts.forwarding, "forwarding", "f", "no",
		"forwarding: no, alu or full; pass a value as -f=alu or --forwarding=alu, a bare -f means full")
	f.Lookup("forwarding").NoOptDefVal = "full"
	f.StringVarP(&opts.branch, "branch", "b", "no", "branch prediction: no, p, t or nt")
	f.Uint64Var(&opts.limit, "limit", config.DefaultInstructionLimit, "maximum number of issued instructions")
	f.Uint64Var(&opts.jumpBubbles, "jump-bubbles", 0, "filler slots after each jump")
	f.BoolVar(&opts.stats, "stats", false, "print run statistics after the diagram")
	f.BoolVar(&opts.functional, "functional", false, "run without the timing model and print the machine state")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log every pipeline slot to standard error")

	return cmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// timingConfig loads the configuration file, if any, and applies the flags
// that were set explicitly on top of it.
func (o *options) timingConfig(cmd *cobra.Command) (*config.TimingConfig, error) {
	cfg := config.DefaultTimingConfig()
	if o.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()

	if f.Changed("forwarding") {
		fwd, err := config.ParseForwarding(o.forwarding)
		if err != nil {
			return nil, err
		}
		cfg.Forwarding = fwd
	}

	if f.Changed("branch") {
		bp, err := config.ParseBranchPolicy(o.branch)
		if err != nil {
			return nil, err
		}
		cfg.BranchPrediction = bp
	}

	if f.Changed("nops") {
		cfg.RegularNOPs = o.nops
	}
	if f.Changed("branch-in-dec") {
		cfg.BranchInDecode = o.inDecode
	}
	if f.Changed("unlimited") {
		cfg.Unlimited = o.unlimited
	}
	if f.Changed("limit") {
		cfg.InstructionLimit = o.limit
	}
	if f.Changed("jump-bubbles") {
		cfg.JumpBubbles = o.jumpBubbles
	}

	return cfg, nil
}

func (o *options) run(cfg *config.TimingConfig, stdin io.Reader, stdout io.Writer) error {
	prog, err := o.load(stdin)
	if err != nil {
		return err
	}

	var simOpts []core.Option
	if o.verbose {
		simOpts = append(simOpts, core.WithHook(pipeline.NewTraceLogger(nil)))
	}

	simulator, err := core.NewSimulator(prog, cfg, simOpts...)
	if err != nil {
		return err
	}

	// Results are buffered so a failed run leaves no partial output.
	var buf bytes.Buffer
	if o.functional {
		err = runFunctional(simulator, &buf)
	} else {
		err = runTiming(simulator, &buf, o.stats)
	}
	if err != nil {
		return err
	}

	if o.output == "" {
		_, err = buf.WriteTo(stdout)
		return err
	}

	file, err := os.Create(o.output)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer file.Close()

	if _, err := buf.WriteTo(file); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return file.Close()
}

func (o *options) load(stdin io.Reader) (*loader.Program, error) {
	if o.input == "" {
		return loader.LoadReader(stdin)
	}
	return loader.Load(o.input)
}

func runTiming(simulator *core.Simulator, w io.Writer, stats bool) error {
	res, err := simulator.Run(w)
	if err != nil {
		return err
	}

	if stats {
		diagram.RenderStats(w, res.Stats, res.Cycles)
	}

	return nil
}

func runFunctional(simulator *core.Simulator, w io.Writer) error {
	regs, memory, err := simulator.RunFunctional()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Registers:")
	for r := uint8(1); r < 32; r++ {
		if v := regs.ReadReg(r); v != 0 {
			fmt.Fprintf(w, "  $%-2d = %d\n", r, v)
		}
	}

	fmt.Fprintf(w, "Memory (%d bytes):\n", memory.Size())
	data := memory.Bytes()
	for i := 0; i < len(data); i += 16 {
		end := min(i+16, len(data))
		fmt.Fprintf(w, "  %04x: % x\n", i, data[i:end])
	}

	return nil
}
