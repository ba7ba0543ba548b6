package pipeline

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/pipesim/timing/config"
)

// Builder can create new pipelines.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	config   *config.TimingConfig
	executor Executor
}

// MakeBuilder returns a builder with a 1 GHz clock and the default timing
// configuration.
func MakeBuilder() Builder {
	return Builder{
		freq:   1 * sim.GHz,
		config: config.DefaultTimingConfig(),
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the pipeline.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithConfig sets the timing configuration.
func (b Builder) WithConfig(cfg *config.TimingConfig) Builder {
	b.config = cfg
	return b
}

// WithExecutor sets the unit that executes issued instructions.
func (b Builder) WithExecutor(executor Executor) Builder {
	b.executor = executor
	return b
}

// Build creates a pipeline.
func (b Builder) Build(name string) *Pipeline {
	if b.engine == nil {
		panic("pipeline: engine is not set")
	}
	if b.executor == nil {
		panic("pipeline: executor is not set")
	}

	cfg := b.config
	if cfg == nil {
		cfg = config.DefaultTimingConfig()
	}
	cfg = cfg.Clone()

	freq := b.freq
	if freq == 0 {
		freq = 1 * sim.GHz
	}

	p := &Pipeline{
		engine:    b.engine,
		config:    cfg,
		executor:  b.executor,
		hazards:   NewHazardUnit(cfg.Forwarding),
		predictor: NewBranchPredictor(cfg.BranchPrediction, cfg.BranchInDecode),
		state:     StateDone,
	}
	p.TickingComponent = sim.NewTickingComponent(name, b.engine, freq, p)

	return p
}
