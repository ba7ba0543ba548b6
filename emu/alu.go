// Package emu provides functional emulation of the simulated MIPS-like ISA.
package emu

import "github.com/sarchlab/pipesim/insts"

// ALU implements the arithmetic and logic operations.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Compute applies op to two operands. Unsigned arithmetic is carried out on
// uint32 and reinterpreted as signed.
func (a *ALU) Compute(op insts.Op, x, y int32, unsigned bool) int32 {
	switch op {
	case insts.OpADD:
		if unsigned {
			return int32(uint32(x) + uint32(y))
		}
		return x + y
	case insts.OpSUB:
		if unsigned {
			return int32(uint32(x) - uint32(y))
		}
		return x - y
	case insts.OpAND:
		return x & y
	case insts.OpOR:
		return x | y
	case insts.OpNOR:
		return ^(x | y)
	case insts.OpXOR:
		return x ^ y
	default:
		return 0
	}
}

// Reg performs a register operation: rd = rs op rt
func (a *ALU) Reg(op insts.Op, rd, rs, rt uint8, unsigned bool) {
	x := a.regFile.ReadReg(rs)
	y := a.regFile.ReadReg(rt)
	a.regFile.WriteReg(rd, a.Compute(op, x, y, unsigned))
}

// Imm performs an immediate operation: rt = rs op sign_extend(imm)
func (a *ALU) Imm(op insts.Op, rt, rs uint8, imm int16, unsigned bool) {
	x := a.regFile.ReadReg(rs)
	a.regFile.WriteReg(rt, a.Compute(op, x, int32(imm), unsigned))
}
