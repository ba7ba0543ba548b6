// Package emu provides functional emulation of the simulated MIPS-like ISA.
package emu

import "github.com/sarchlab/pipesim/insts"

// BranchUnit evaluates branch conditions.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// CheckCondition evaluates a branch condition. EQ and NE compare rs with rt;
// the zero comparisons only look at rs.
func (b *BranchUnit) CheckCondition(op insts.Op, rs, rt uint8) bool {
	x := b.regFile.ReadReg(rs)

	switch op {
	case insts.OpEQ:
		return x == b.regFile.ReadReg(rt)
	case insts.OpNE:
		return x != b.regFile.ReadReg(rt)
	case insts.OpGEZ:
		return x >= 0
	case insts.OpGTZ:
		return x > 0
	case insts.OpLEZ:
		return x <= 0
	case insts.OpLTZ:
		return x < 0
	default:
		return false
	}
}
