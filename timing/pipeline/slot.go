package pipeline

import "github.com/sarchlab/pipesim/insts"

// SlotKind tells why a slot is in the trace.
type SlotKind uint8

// Slot kinds.
const (
	// SlotIssued holds a program instruction.
	SlotIssued SlotKind = iota
	// SlotStall holds a filler inserted for a data hazard.
	SlotStall
	// SlotBubble holds a filler inserted after a branch or jump.
	SlotBubble
)

func (k SlotKind) String() string {
	switch k {
	case SlotIssued:
		return "issued"
	case SlotStall:
		return "stall"
	case SlotBubble:
		return "bubble"
	default:
		return "unknown"
	}
}

// Slot is one issue cycle of the pipeline.
type Slot struct {
	Inst *insts.Instruction
	// PC is the index of the program instruction that was issued or that
	// was waiting to issue.
	PC   int
	Kind SlotKind
}

// Trace is the sequence of slots of a run, one per cycle.
type Trace []Slot

// Instructions returns the instruction of every slot, fillers included.
func (t Trace) Instructions() []*insts.Instruction {
	out := make([]*insts.Instruction, len(t))
	for i, s := range t {
		out[i] = s.Inst
	}
	return out
}

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Slots is the total number of trace slots, fillers included.
	Slots uint64
	// Instructions is the number of program instructions issued.
	Instructions uint64
	// Stalls is the number of data hazard stall slots.
	Stalls uint64
	// Bubbles is the number of branch and jump bubble slots.
	Bubbles uint64
	// Branches is the number of conditional branches issued.
	Branches uint64
	// BranchesTaken is the number of branches that were taken.
	BranchesTaken uint64
	// Jumps is the number of unconditional jumps issued.
	Jumps uint64
	// BranchPredictions is the total number of branch predictions made.
	BranchPredictions uint64
	// BranchCorrect is the number of correct branch predictions.
	BranchCorrect uint64
	// BranchMispredictions is the number of branch mispredictions.
	BranchMispredictions uint64
}

// CPI returns the cycles per instruction for a run that took cycles cycles.
func (s Statistics) CPI(cycles int) float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(cycles) / float64(s.Instructions)
}
