// Package pipeline models the timing of a classic five stage in-order
// pipeline. It replays a program through an executor and decides, cycle by
// cycle, whether the next instruction can issue or must wait.
package pipeline

import "github.com/sarchlab/pipesim/insts"

// Phase is a pipeline stage. The numeric value is the stage's position, so
// phases can be compared against hazard counters.
type Phase uint8

// Pipeline phases.
const (
	PhaseNone Phase = iota
	PhaseFetch
	PhaseDecode
	PhaseExecute
	PhaseMemory
	PhaseWriteback
)

func (p Phase) String() string {
	switch p {
	case PhaseFetch:
		return "F"
	case PhaseDecode:
		return "D"
	case PhaseExecute:
		return "X"
	case PhaseMemory:
		return "M"
	case PhaseWriteback:
		return "W"
	default:
		return "-"
	}
}

// RegRole names the instruction field that receives a result.
type RegRole uint8

// Register roles.
const (
	RegNone RegRole = iota
	RegRS
	RegRT
	RegRD
)

// Profile is the fixed timing behavior of an instruction: when each source
// operand is first needed, when the result is ready, and where it goes.
type Profile struct {
	RSNeeded   Phase
	RTNeeded   Phase
	ResultDone Phase
	Writes     RegRole
}

// ProfileOf returns the timing profile of inst. Branches need their
// operands in decode when branchInDecode is set.
func ProfileOf(inst *insts.Instruction, branchInDecode bool) Profile {
	branchPhase := PhaseExecute
	if branchInDecode {
		branchPhase = PhaseDecode
	}

	switch inst.Type {
	case insts.TypeR3:
		return Profile{
			RSNeeded:   PhaseExecute,
			RTNeeded:   PhaseExecute,
			ResultDone: PhaseExecute,
			Writes:     RegRD,
		}
	case insts.TypeR2:
		return Profile{
			RSNeeded:   PhaseExecute,
			ResultDone: PhaseExecute,
			Writes:     RegRT,
		}
	case insts.TypeMEM:
		if inst.Op == insts.OpStore {
			return Profile{
				RSNeeded: PhaseExecute,
				RTNeeded: PhaseMemory,
			}
		}
		return Profile{
			RSNeeded:   PhaseExecute,
			ResultDone: PhaseMemory,
			Writes:     RegRT,
		}
	case insts.TypeBRA2:
		return Profile{RSNeeded: branchPhase, RTNeeded: branchPhase}
	case insts.TypeBRA1:
		return Profile{RSNeeded: branchPhase}
	default:
		return Profile{}
	}
}

// Written returns the register the instruction writes, if any.
func (p Profile) Written(inst *insts.Instruction) (uint8, bool) {
	var reg uint8

	switch p.Writes {
	case RegRS:
		reg = inst.RS
	case RegRT:
		reg = inst.RT
	case RegRD:
		reg = inst.RD
	default:
		return 0, false
	}

	if reg >= insts.NumRegs {
		return 0, false
	}

	return reg, true
}
