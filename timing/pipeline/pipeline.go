package pipeline

import (
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/config"
)

// ErrInstructionLimitExceeded is returned when a run emits more slots than
// the configured limit, usually because the program does not terminate.
var ErrInstructionLimitExceeded = errors.New("instruction limit reached, check for infinite loops")

// Hook positions. The hook item is the emitted Slot.
var (
	HookPosIssue  = &sim.HookPos{Name: "Pipeline Issue"}
	HookPosStall  = &sim.HookPos{Name: "Pipeline Stall"}
	HookPosBubble = &sim.HookPos{Name: "Pipeline Bubble"}
)

// Executor runs the semantics of an issued instruction and returns the
// index of the next instruction.
type Executor interface {
	Execute(inst *insts.Instruction, pc int) int
}

// State is the state of the issue logic.
type State uint8

// Pipeline states.
const (
	// StateFetching waits to issue the instruction at the program counter.
	StateFetching State = iota
	// StateStalled has just emitted a stall slot.
	StateStalled
	// StateIssued has just issued an instruction.
	StateIssued
	// StateBranchBubble is emitting bubbles after a branch or jump.
	StateBranchBubble
	// StateDone has run past the last instruction or aborted.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateStalled:
		return "stalled"
	case StateIssued:
		return "issued"
	case StateBranchBubble:
		return "branch-bubble"
	default:
		return "done"
	}
}

// Pipeline issues one slot per tick: a program instruction, a stall, or a
// branch bubble.
type Pipeline struct {
	*sim.TickingComponent

	engine    sim.Engine
	config    *config.TimingConfig
	executor  Executor
	hazards   *HazardUnit
	predictor *BranchPredictor

	code      []*insts.Instruction
	pc        int
	state     State
	bubbles   int
	lastStall bool
	trace     Trace
	stats     Statistics
	err       error
}

// Config returns the timing configuration of the pipeline.
func (p *Pipeline) Config() *config.TimingConfig {
	return p.config
}

// State returns the current state of the issue logic.
func (p *Pipeline) State() State {
	return p.state
}

// PC returns the index of the next instruction to issue.
func (p *Pipeline) PC() int {
	return p.pc
}

// Hazards returns the hazard unit.
func (p *Pipeline) Hazards() *HazardUnit {
	return p.hazards
}

// Stats returns the statistics of the last run.
func (p *Pipeline) Stats() Statistics {
	s := p.stats
	bp := p.predictor.Stats()
	s.BranchPredictions = bp.Predictions
	s.BranchCorrect = bp.Correct
	s.BranchMispredictions = bp.Mispredictions
	return s
}

// BranchPredictorStats returns the predictor statistics of the last run.
func (p *Pipeline) BranchPredictorStats() BranchPredictorStats {
	return p.predictor.Stats()
}

// Run issues code from the first instruction until the program counter
// runs past the end. No trace is returned if the run aborts.
func (p *Pipeline) Run(code []*insts.Instruction) (Trace, error) {
	p.reset(code)

	p.TickNow()
	if err := p.engine.Run(); err != nil {
		return nil, fmt.Errorf("engine failed: %w", err)
	}

	if p.err != nil {
		return nil, p.err
	}

	return p.trace, nil
}

func (p *Pipeline) reset(code []*insts.Instruction) {
	p.code = code
	p.pc = 0
	p.state = StateFetching
	p.bubbles = 0
	p.lastStall = false
	p.trace = nil
	p.stats = Statistics{}
	p.err = nil
	p.hazards.Reset()
	p.predictor.Reset()
}

// Tick emits the slot of one cycle.
func (p *Pipeline) Tick() (madeProgress bool) {
	switch p.state {
	case StateDone:
		return false
	case StateBranchBubble:
		return p.bubble()
	default:
		return p.issue()
	}
}

func (p *Pipeline) bubble() bool {
	p.emit(p.filler(), p.pc, SlotBubble)
	p.stats.Bubbles++

	p.bubbles--
	if p.bubbles <= 0 {
		p.state = StateFetching
	}

	return true
}

func (p *Pipeline) issue() bool {
	if p.pc < 0 || p.pc >= len(p.code) {
		p.state = StateDone
		return false
	}

	if limit, ok := p.config.Limit(); ok && uint64(len(p.trace)) > limit {
		p.err = fmt.Errorf("%w (limit %d)", ErrInstructionLimitExceeded, limit)
		p.trace = nil
		p.state = StateDone
		return false
	}

	p.hazards.Age()

	inst := p.code[p.pc]
	profile := ProfileOf(inst, p.config.BranchInDecode)

	if p.hazards.NeedsStall(inst, profile, p.lastStall) {
		p.emit(p.filler(), p.pc, SlotStall)
		p.stats.Stalls++
		p.lastStall = true
		p.state = StateStalled
		return true
	}

	p.lastStall = false

	pc := p.pc
	next := p.executor.Execute(inst, pc)
	p.emit(inst, pc, SlotIssued)
	p.stats.Instructions++
	p.pc = next

	switch {
	case inst.IsBranch():
		taken := next != pc+1
		p.stats.Branches++
		if taken {
			p.stats.BranchesTaken++
		}
		p.enterBubbles(p.predictor.Bubbles(taken))
	case inst.Type == insts.TypeJ:
		p.stats.Jumps++
		p.enterBubbles(int(p.config.JumpBubbles))
	default:
		p.hazards.Record(inst, profile)
		p.state = StateIssued
	}

	return true
}

func (p *Pipeline) enterBubbles(n int) {
	if n <= 0 {
		p.state = StateIssued
		return
	}

	p.bubbles = n
	p.state = StateBranchBubble
}

func (p *Pipeline) filler() *insts.Instruction {
	if p.config.RegularNOPs {
		return insts.NewNOP()
	}
	return insts.NewSNOP()
}

func (p *Pipeline) emit(inst *insts.Instruction, pc int, kind SlotKind) {
	slot := Slot{Inst: inst, PC: pc, Kind: kind}
	p.trace = append(p.trace, slot)
	p.stats.Slots++

	pos := HookPosIssue
	switch kind {
	case SlotStall:
		pos = HookPosStall
	case SlotBubble:
		pos = HookPosBubble
	}

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   slot,
	})
}
