package insts

import "fmt"

// OperandKind tags the non-register operand of a raw instruction.
type OperandKind uint8

// Operand kinds.
const (
	OperandNone OperandKind = iota
	OperandLabel
	OperandIndirect
	OperandImmediate
)

func (k OperandKind) String() string {
	switch k {
	case OperandLabel:
		return "label"
	case OperandIndirect:
		return "register indirect"
	case OperandImmediate:
		return "immediate"
	default:
		return "none"
	}
}

// Operand is the optional non-register operand of a source line. Only the
// fields matching Kind are meaningful.
type Operand struct {
	Kind   OperandKind
	Label  string // OperandLabel
	Offset int32  // OperandIndirect
	Base   uint8  // OperandIndirect
	Value  int32  // OperandImmediate
}

// LabelOperand returns a label reference operand.
func LabelOperand(label string) Operand {
	return Operand{Kind: OperandLabel, Label: label}
}

// IndirectOperand returns an offset(base) operand.
func IndirectOperand(offset int32, base uint8) Operand {
	return Operand{Kind: OperandIndirect, Offset: offset, Base: base}
}

// ImmediateOperand returns an immediate operand.
func ImmediateOperand(value int32) Operand {
	return Operand{Kind: OperandImmediate, Value: value}
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandLabel:
		return o.Label
	case OperandIndirect:
		return fmt.Sprintf("%d($%d)", o.Offset, o.Base)
	case OperandImmediate:
		return fmt.Sprintf("%d", o.Value)
	default:
		return ""
	}
}

// RawInstruction is one tokenized source line: an optional label, the
// mnemonic, the register list and at most one other operand.
type RawInstruction struct {
	Line      int
	Label     string
	Mnemonic  string
	Registers []uint8
	Operand   Operand
}
