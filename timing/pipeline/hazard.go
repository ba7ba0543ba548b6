package pipeline

import (
	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/config"
)

// dirtyCycles is the number of phases between issue and write back,
// excluding fetch and write back themselves.
const dirtyCycles = uint8(PhaseWriteback) - 2

// HazardUnit tracks, per register, how many phases remain until a pending
// result is available (busy) and until it is written back (dirty).
type HazardUnit struct {
	forwarding config.Forwarding

	busy  [insts.NumRegs]uint8
	dirty [insts.NumRegs]uint8
}

// NewHazardUnit creates a hazard unit for the given forwarding policy.
func NewHazardUnit(forwarding config.Forwarding) *HazardUnit {
	return &HazardUnit{forwarding: forwarding}
}

// Age advances every counter by one phase.
func (h *HazardUnit) Age() {
	for i := range h.busy {
		if h.busy[i] > 0 {
			h.busy[i]--
		}
		if h.dirty[i] > 0 {
			h.dirty[i]--
		}
	}
}

// NeedsStall reports whether inst cannot issue this cycle. lastWasStall
// tells whether the previous slot was a stall, which breaks ALU forwarding.
func (h *HazardUnit) NeedsStall(
	inst *insts.Instruction,
	profile Profile,
	lastWasStall bool,
) bool {
	return h.operandHazard(inst.RS, profile.RSNeeded, lastWasStall) ||
		h.operandHazard(inst.RT, profile.RTNeeded, lastWasStall)
}

func (h *HazardUnit) operandHazard(reg uint8, needed Phase, lastWasStall bool) bool {
	if needed == PhaseNone || reg == 0 || reg >= insts.NumRegs {
		return false
	}

	switch h.forwarding {
	case config.ForwardFull:
		return h.busy[reg] >= uint8(needed)
	case config.ForwardALU:
		return h.busy[reg] > 2 || (lastWasStall && h.dirty[reg] > 0)
	default:
		return h.dirty[reg] > 0
	}
}

// Record marks the register written by inst as pending.
func (h *HazardUnit) Record(inst *insts.Instruction, profile Profile) {
	reg, ok := profile.Written(inst)
	if !ok {
		return
	}

	h.busy[reg] = uint8(profile.ResultDone)
	h.dirty[reg] = dirtyCycles
}

// Busy returns the busy counter of reg.
func (h *HazardUnit) Busy(reg uint8) uint8 {
	if reg >= insts.NumRegs {
		return 0
	}
	return h.busy[reg]
}

// Dirty returns the dirty counter of reg.
func (h *HazardUnit) Dirty(reg uint8) uint8 {
	if reg >= insts.NumRegs {
		return 0
	}
	return h.dirty[reg]
}

// Reset clears all counters.
func (h *HazardUnit) Reset() {
	h.busy = [insts.NumRegs]uint8{}
	h.dirty = [insts.NumRegs]uint8{}
}
