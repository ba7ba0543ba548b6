// Package emu provides functional emulation of the simulated MIPS-like ISA.
package emu

import "github.com/sarchlab/pipesim/insts"

// LoadStoreUnit implements load and store operations.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// Address computes the effective address rs + offset.
func (lsu *LoadStoreUnit) Address(rs uint8, offset int16) int64 {
	return int64(lsu.regFile.ReadReg(rs)) + int64(offset)
}

// Load performs rt = sign_extend(mem[rs + offset]). Out of range accesses
// leave rt unchanged.
func (lsu *LoadStoreUnit) Load(size insts.Size, rt, rs uint8, offset int16) {
	value, ok := lsu.memory.Read(lsu.Address(rs, offset), size)
	if !ok {
		return
	}

	switch size {
	case insts.SizeByte:
		lsu.regFile.WriteReg(rt, int32(int8(value)))
	case insts.SizeHalf:
		lsu.regFile.WriteReg(rt, int32(int16(value)))
	default:
		lsu.regFile.WriteReg(rt, int32(value))
	}
}

// Store performs mem[rs + offset] = rt (low bytes). Out of range accesses
// are dropped.
func (lsu *LoadStoreUnit) Store(size insts.Size, rt, rs uint8, offset int16) {
	value := uint32(lsu.regFile.ReadReg(rt))
	lsu.memory.Write(lsu.Address(rs, offset), size, value)
}
