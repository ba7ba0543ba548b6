package emu

import "github.com/sarchlab/pipesim/insts"

// RegFile represents the general purpose register file.
// Register 0 is hard-wired to zero.
type RegFile struct {
	// R holds registers $0-$31. R[0] always reads as 0.
	R [insts.NumRegs]int32
}

// ReadReg reads a register value. Register 0 returns 0.
// Registers >= 32 (e.g., the NoReg sentinel of unused slots) return 0.
func (r *RegFile) ReadReg(reg uint8) int32 {
	if reg == 0 || reg >= insts.NumRegs {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to register 0 and
// sentinel registers are ignored.
func (r *RegFile) WriteReg(reg uint8, value int32) {
	if reg == 0 || reg >= insts.NumRegs {
		return
	}
	r.R[reg] = value
}

// Clone returns a copy of the register file.
func (r *RegFile) Clone() *RegFile {
	c := *r
	return &c
}
