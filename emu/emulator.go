// Package emu provides functional emulation of the simulated MIPS-like ISA.
package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pipesim/insts"
)

// ErrMaxInstructions is returned by Run when the instruction cap is hit.
var ErrMaxInstructions = errors.New("max instructions reached")

// LabelResolver maps a label to the index of the instruction it marks.
type LabelResolver interface {
	Index(label string) (int, bool)
}

// Emulator executes instructions functionally, one at a time.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	labels  LabelResolver

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMaxInstructions sets the maximum number of instructions Run executes.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new emulator operating on the given register file,
// data segment and label table.
func NewEmulator(regFile *RegFile, memory *Memory, labels LabelResolver, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: regFile,
		memory:  memory,
		labels:  labels,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.alu = NewALU(regFile)
	e.lsu = NewLoadStoreUnit(regFile, memory)
	e.branchUnit = NewBranchUnit(regFile)

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's data segment.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Execute runs a single instruction located at index pc and returns the
// index of the next instruction to execute.
func (e *Emulator) Execute(inst *insts.Instruction, pc int) int {
	e.instructionCount++

	switch inst.Type {
	case insts.TypeR3:
		mod := inst.Flags.Modifier()
		e.alu.Reg(inst.Op, inst.RD, inst.RS, inst.RT, mod.Unsigned())

	case insts.TypeR2:
		mod := inst.Flags.Modifier()
		e.alu.Imm(inst.Op, inst.RT, inst.RS, inst.Imm, mod.Unsigned())

	case insts.TypeMEM:
		size := inst.Flags.Size()
		if inst.Op == insts.OpStore {
			e.lsu.Store(size, inst.RT, inst.RS, inst.Imm)
		} else {
			e.lsu.Load(size, inst.RT, inst.RS, inst.Imm)
		}

	case insts.TypeBRA1, insts.TypeBRA2:
		if e.branchUnit.CheckCondition(inst.Op, inst.RS, inst.RT) {
			return e.target(inst)
		}

	case insts.TypeJ:
		return e.target(inst)
	}

	return pc + 1
}

// target resolves the branch or jump target. Labels are checked when the
// program is assembled, so a miss is a programming error.
func (e *Emulator) target(inst *insts.Instruction) int {
	idx, ok := e.labels.Index(inst.Target)
	if !ok {
		panic(fmt.Sprintf("emu: unresolved label %q", inst.Target))
	}
	return idx
}

// Run executes the program without pipelining until control falls off the
// end of the code.
func (e *Emulator) Run(code []*insts.Instruction) error {
	for pc := 0; pc < len(code); {
		if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
			return fmt.Errorf("%w (%d)", ErrMaxInstructions, e.maxInstructions)
		}
		pc = e.Execute(code[pc], pc)
	}

	return nil
}
