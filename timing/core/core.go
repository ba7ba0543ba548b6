// Package core ties the pieces of the simulator together. It runs an
// assembled program through the emulator and the timing pipeline and
// renders the result.
package core

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/loader"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/diagram"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// Result holds the outcome of a run.
type Result struct {
	Trace  pipeline.Trace
	Stats  pipeline.Statistics
	Cycles int

	// Regs and Memory hold the final machine state.
	Regs   *emu.RegFile
	Memory *emu.Memory
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithHook attaches a hook to the pipeline of every run.
func WithHook(hook sim.Hook) Option {
	return func(s *Simulator) {
		s.hooks = append(s.hooks, hook)
	}
}

// WithFreq sets the pipeline clock.
func WithFreq(freq sim.Freq) Option {
	return func(s *Simulator) {
		s.freq = freq
	}
}

// Simulator runs one program under one timing configuration.
type Simulator struct {
	prog   *loader.Program
	config *config.TimingConfig
	freq   sim.Freq
	hooks  []sim.Hook
}

// NewSimulator creates a simulator. The configuration is validated and
// copied.
func NewSimulator(
	prog *loader.Program,
	cfg *config.TimingConfig,
	opts ...Option,
) (*Simulator, error) {
	if cfg == nil {
		cfg = config.DefaultTimingConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}

	s := &Simulator{
		prog:   prog,
		config: cfg.Clone(),
		freq:   1 * sim.GHz,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Config returns the timing configuration.
func (s *Simulator) Config() *config.TimingConfig {
	return s.config
}

// Run simulates the program and writes the rendered trace to w. A nil
// writer discards the output. Every run starts from the program's initial
// state, so repeated runs give the same result.
func (s *Simulator) Run(w io.Writer) (Result, error) {
	if w == nil {
		w = io.Discard
	}

	regs := s.prog.Regs.Clone()
	memory := s.prog.Data.Clone()
	executor := emu.NewEmulator(regs, memory, s.prog.Labels)

	p := pipeline.MakeBuilder().
		WithEngine(sim.NewSerialEngine()).
		WithFreq(s.freq).
		WithConfig(s.config).
		WithExecutor(executor).
		Build("Pipeline")

	for _, h := range s.hooks {
		p.AcceptHook(h)
	}

	trace, err := p.Run(s.prog.Code)
	if err != nil {
		return Result{}, err
	}

	cycles, err := diagram.Render(w, trace, diagram.Options{
		Forwarding:  s.config.Forwarding,
		RegularNOPs: s.config.RegularNOPs,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Trace:  trace,
		Stats:  p.Stats(),
		Cycles: cycles,
		Regs:   regs,
		Memory: memory,
	}, nil
}

// RunFunctional executes the program without the timing model and returns
// the final machine state. The instruction limit of the configuration
// applies.
func (s *Simulator) RunFunctional() (*emu.RegFile, *emu.Memory, error) {
	regs := s.prog.Regs.Clone()
	memory := s.prog.Data.Clone()

	var opts []emu.EmulatorOption
	if limit, ok := s.config.Limit(); ok {
		opts = append(opts, emu.WithMaxInstructions(limit))
	}

	e := emu.NewEmulator(regs, memory, s.prog.Labels, opts...)
	if err := e.Run(s.prog.Code); err != nil {
		return nil, nil, err
	}

	return regs, memory, nil
}
