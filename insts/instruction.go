// Package insts provides MIPS-like instruction definitions and decoding.
package insts

import (
	"fmt"
	"strings"
)

// NoReg marks an unused register slot.
const NoReg uint8 = 0xFF

// NumRegs is the number of general purpose registers.
const NumRegs = 32

// Type represents an instruction format family.
type Type uint8

// Instruction types.
const (
	TypeUnknown Type = iota
	TypeNOP          // Explicit NOP
	TypeSNOP         // Soft NOP, only used to fill pipeline stalls
	TypeR3           // R-type operation that takes 3 registers
	TypeR2           // R-type operation that takes 2 registers and an immediate
	TypeMEM          // Loads and stores
	TypeBRA2         // Branches that compare 2 registers
	TypeBRA1         // Branches that compare 1 register against zero
	TypeJ            // Unconditional jump
)

var typeNames = [...]string{"UNK", "NOP", "SNOP", "R3", "R2", "MEM", "BRA2", "BRA1", "J"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Op represents the operation an instruction performs.
type Op uint8

// Operations.
const (
	OpNone Op = iota
	OpADD
	OpAND
	OpNOR
	OpOR
	OpSUB
	OpXOR
	OpLoad
	OpStore
	OpEQ  // Equal
	OpNE  // Not equal
	OpGEZ // Greater or equal to zero
	OpGTZ // Greater than zero
	OpLEZ // Less or equal to zero
	OpLTZ // Less than zero
)

var opNames = [...]string{
	"NONE", "ADD", "AND", "NOR", "OR", "SUB", "XOR", "LOAD", "STORE",
	"EQ", "NE", "GEZ", "GTZ", "LEZ", "LTZ",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Size is the width of a memory access or variable element. Its value is
// the width in bytes.
type Size uint8

// Element sizes.
const (
	SizeByte Size = 1
	SizeHalf Size = 2
	SizeWord Size = 4
)

// Bytes returns the width in bytes. The zero value counts as a word.
func (s Size) Bytes() uint32 {
	if s == 0 {
		return uint32(SizeWord)
	}
	return uint32(s)
}

func (s Size) String() string {
	switch s {
	case SizeByte:
		return "BYTE"
	case SizeHalf:
		return "HALF"
	default:
		return "WORD"
	}
}

// Modifier selects the immediate and unsigned variants of ALU operations.
type Modifier uint8

// ALU modifiers.
const (
	ModNone Modifier = iota
	ModImmediate
	ModUnsigned
	ModImmediateUnsigned
)

// Immediate reports whether the operand is an immediate.
func (m Modifier) Immediate() bool {
	return m == ModImmediate || m == ModImmediateUnsigned
}

// Unsigned reports whether the arithmetic is unsigned.
func (m Modifier) Unsigned() bool {
	return m == ModUnsigned || m == ModImmediateUnsigned
}

// Flags holds either the access size of a memory instruction or the modifier
// of an ALU instruction. Which arm is valid depends on the instruction type.
type Flags struct {
	isSize bool
	size   Size
	mod    Modifier
}

// SizeFlags returns flags carrying a memory access size.
func SizeFlags(s Size) Flags {
	return Flags{isSize: true, size: s}
}

// ModFlags returns flags carrying an ALU modifier.
func ModFlags(m Modifier) Flags {
	return Flags{mod: m}
}

// HasSize reports whether the flags carry a size.
func (f Flags) HasSize() bool {
	return f.isSize
}

// Size returns the access size. It panics if the flags carry a modifier.
func (f Flags) Size() Size {
	if !f.isSize {
		panic("insts: flags carry a modifier, not a size")
	}
	return f.size
}

// Modifier returns the ALU modifier. It panics if the flags carry a size.
func (f Flags) Modifier() Modifier {
	if f.isSize {
		panic("insts: flags carry a size, not a modifier")
	}
	return f.mod
}

// Instruction represents a decoded instruction.
type Instruction struct {
	Label       string // Label the instruction is associated to
	DisplayName string // Canonical mnemonic
	Type        Type
	Op          Op

	RS uint8 // Operand 1 (base register for memory operations)
	RT uint8 // Operand 2, or result for R2 and loads
	RD uint8 // Result for R3

	Imm    int16  // Immediate value or memory offset
	Target string // Label used as branch or jump target
	Flags  Flags

	// Line is the 1-based source line the instruction came from.
	Line int
}

// NewNOP returns an explicit NOP that uses no registers.
func NewNOP() *Instruction {
	return &Instruction{
		DisplayName: "NOP",
		Type:        TypeNOP,
		Op:          OpNone,
		RS:          NoReg,
		RT:          NoReg,
		RD:          NoReg,
	}
}

// NewSNOP returns a soft NOP, used to fill time in the pipeline.
func NewSNOP() *Instruction {
	inst := NewNOP()
	inst.Type = TypeSNOP
	return inst
}

// IsBranch reports whether the instruction is a conditional branch.
func (i *Instruction) IsBranch() bool {
	return i.Type == TypeBRA1 || i.Type == TypeBRA2
}

// IsFiller reports whether the instruction only fills a pipeline slot.
func (i *Instruction) IsFiller() bool {
	return i.Type == TypeNOP || i.Type == TypeSNOP
}

// String returns the textual form of the instruction. Soft NOPs render as
// the empty string since they are not part of the program listing.
func (i *Instruction) String() string {
	if i.Type == TypeSNOP {
		return ""
	}

	var sb strings.Builder
	if i.Label != "" {
		sb.WriteString(i.Label)
		sb.WriteString(": ")
	}
	sb.WriteString(i.DisplayName)

	switch i.Type {
	case TypeR3:
		fmt.Fprintf(&sb, " $%d, $%d, $%d", i.RD, i.RS, i.RT)
	case TypeR2:
		fmt.Fprintf(&sb, " $%d, $%d, %d", i.RT, i.RS, i.Imm)
	case TypeMEM:
		fmt.Fprintf(&sb, " $%d, %d($%d)", i.RT, i.Imm, i.RS)
	case TypeBRA2:
		fmt.Fprintf(&sb, " $%d, $%d, %s", i.RS, i.RT, i.Target)
	case TypeBRA1:
		fmt.Fprintf(&sb, " $%d, %s", i.RS, i.Target)
	case TypeJ:
		fmt.Fprintf(&sb, " %s", i.Target)
	}

	return sb.String()
}

// MaxDataSize is the largest data segment, in bytes, a program may declare.
const MaxDataSize = 1 << 24

// VarKind distinguishes scalar variables from arrays.
type VarKind uint8

// Variable kinds.
const (
	VarScalar VarKind = iota
	VarArray
)

// VariableDef is a static data declaration.
type VariableDef struct {
	Label    string
	Register uint8 // Register that receives the variable's address
	Kind     VarKind
	Size     Size
	Value    uint32 // Initial value for scalars, element count for arrays
	Line     int
}

// Bytes returns the number of bytes the variable occupies, without padding.
func (v VariableDef) Bytes() uint64 {
	if v.Kind == VarArray {
		return uint64(v.Size.Bytes()) * uint64(v.Value)
	}
	return uint64(v.Size.Bytes())
}
