// Package insts provides MIPS-like instruction definitions and decoding.
package insts

import (
	"math"
	"strconv"
	"strings"
)

// Decoded is the result of decoding one raw instruction. Exactly one of Var
// and Inst is set.
type Decoded struct {
	Var      *VariableDef
	Inst     *Instruction
	Warnings []Warning
}

// Decoder validates raw instructions and translates them into a typed form.
// It keeps no state between calls.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// IsDirective checks if the raw instruction is a variable definition.
func IsDirective(raw RawInstruction) bool {
	name := strings.ToUpper(raw.Mnemonic)
	return len(name) >= 3 && strings.HasPrefix(name, "DE")
}

// Decode decodes a raw instruction into either a variable definition or an
// instruction. Values truncated to fit their field are reported as
// warnings, not errors.
func (d *Decoder) Decode(raw RawInstruction) (Decoded, error) {
	raw.Mnemonic = strings.ToUpper(raw.Mnemonic)
	if raw.Mnemonic == "" {
		return Decoded{}, newError(KindUnknownMnemonic, raw, "missing instruction name")
	}

	if err := checkRegisterRange(raw); err != nil {
		return Decoded{}, err
	}

	if IsDirective(raw) {
		return d.decodeVariable(raw)
	}

	inst := &Instruction{
		Label:       raw.Label,
		DisplayName: raw.Mnemonic,
		RS:          NoReg,
		RT:          NoReg,
		RD:          NoReg,
		Line:        raw.Line,
	}

	var (
		warnings []Warning
		err      *DecodeError
	)

	name := raw.Mnemonic
	switch {
	case name == "NOP" || name == "NOOP":
		err = d.decodeNOP(raw, inst)
	case name == "J":
		err = d.decodeJump(raw, inst)
	case len(name) == 2 && (name[0] == 'L' || name[0] == 'S'):
		warnings, err = d.decodeMemory(raw, inst)
	case name[0] == 'B':
		err = d.decodeBranch(raw, inst)
	default:
		warnings, err = d.decodeRType(raw, inst)
	}

	if err != nil {
		return Decoded{}, err
	}

	return Decoded{Inst: inst, Warnings: warnings}, nil
}

func checkRegisterRange(raw RawInstruction) *DecodeError {
	for _, r := range raw.Registers {
		if r >= NumRegs {
			return newError(KindRegisterOutOfRange, raw,
				"register $%d is out of range (0-%d)", r, NumRegs-1)
		}
	}

	if raw.Operand.Kind == OperandIndirect && raw.Operand.Base >= NumRegs {
		return newError(KindRegisterOutOfRange, raw,
			"base register $%d is out of range (0-%d)", raw.Operand.Base, NumRegs-1)
	}

	return nil
}

// requireOperand checks that the instruction carries an operand of the
// given kind.
func requireOperand(raw RawInstruction, kind OperandKind) *DecodeError {
	if raw.Operand.Kind == kind {
		return nil
	}

	if raw.Operand.Kind == OperandNone {
		return newError(KindMissingOperand, raw,
			"instruction %s requires a %s operand", raw.Mnemonic, kind)
	}

	return newError(KindWrongOperandKind, raw,
		"instruction %s requires a %s operand but found a %s operand",
		raw.Mnemonic, kind, raw.Operand.Kind)
}

// requireNoOperand checks that the instruction only takes registers.
func requireNoOperand(raw RawInstruction) *DecodeError {
	if raw.Operand.Kind == OperandNone {
		return nil
	}

	return newError(KindWrongOperandKind, raw,
		"instruction %s does not take a %s operand", raw.Mnemonic, raw.Operand.Kind)
}

func requireRegisters(raw RawInstruction, count int) *DecodeError {
	if len(raw.Registers) == count {
		return nil
	}

	return newError(KindWrongRegisterCount, raw,
		"instruction %s requires a total of %d registers but found %d",
		raw.Mnemonic, count, len(raw.Registers))
}

// truncate16 narrows a value to a signed 16-bit field.
func truncate16(raw RawInstruction, what string, v int32) (int16, []Warning) {
	if v >= math.MinInt16 && v <= math.MaxInt16 {
		return int16(v), nil
	}

	w := Warning{
		Line:     raw.Line,
		Mnemonic: raw.Mnemonic,
		Msg: "instruction " + raw.Mnemonic + ": " + what +
			" does not fit in 16 bits and was truncated",
	}

	return int16(v), []Warning{w}
}

// decodeVariable decodes DEF/DEV directives.
// Format: DE{F|V}[B|H|W] $reg, value
func (d *Decoder) decodeVariable(raw RawInstruction) (Decoded, error) {
	name := raw.Mnemonic
	if len(name) > 4 {
		return Decoded{}, newError(KindUnknownMnemonic, raw,
			"unknown instruction %s (variable definition?)", name)
	}

	def := &VariableDef{
		Label: raw.Label,
		Size:  SizeWord,
		Line:  raw.Line,
	}

	switch name[2] {
	case 'F':
		def.Kind = VarScalar
	case 'V':
		def.Kind = VarArray
	default:
		return Decoded{}, newError(KindUnknownMnemonic, raw,
			"unknown variable definition directive %s", name)
	}

	if len(name) == 4 {
		switch name[3] {
		case 'B':
			def.Size = SizeByte
		case 'H':
			def.Size = SizeHalf
		case 'W':
			def.Size = SizeWord
		default:
			return Decoded{}, newError(KindUnknownMnemonic, raw,
				"unknown variable data type in %s", name)
		}
	}

	if err := requireOperand(raw, OperandImmediate); err != nil {
		return Decoded{}, err
	}
	if err := requireRegisters(raw, 1); err != nil {
		return Decoded{}, err
	}

	def.Register = raw.Registers[0]
	if def.Register == 0 {
		return Decoded{}, newError(KindWriteToZeroRegister, raw,
			"variable address cannot be stored in register $0")
	}

	value := raw.Operand.Value

	if def.Kind == VarArray {
		if value <= 0 {
			return Decoded{}, newError(KindBadArrayLength, raw,
				"array length must be greater than 0 but found %d", value)
		}
		def.Value = uint32(value)
		if def.Bytes() > MaxDataSize {
			return Decoded{}, newError(KindBadArrayLength, raw,
				"array of %d elements takes %d bytes, more than the %d byte data segment",
				value, def.Bytes(), MaxDataSize)
		}
		return Decoded{Var: def}, nil
	}

	var warnings []Warning

	bits := 8 * def.Size.Bytes()
	if bits < 32 {
		lo := -(int64(1) << (bits - 1))
		hi := int64(1)<<bits - 1
		if int64(value) < lo || int64(value) > hi {
			warnings = append(warnings, Warning{
				Line:     raw.Line,
				Mnemonic: name,
				Msg: "value " + itoa(value) + " does not fit in a " +
					strings.ToLower(def.Size.String()) + " and was truncated",
			})
		}
		value &= int32(1)<<bits - 1
	}

	def.Value = uint32(value)

	return Decoded{Var: def, Warnings: warnings}, nil
}

// decodeNOP decodes NOP and NOOP.
func (d *Decoder) decodeNOP(raw RawInstruction, inst *Instruction) *DecodeError {
	if err := requireNoOperand(raw); err != nil {
		return err
	}
	if err := requireRegisters(raw, 0); err != nil {
		return err
	}

	inst.DisplayName = "NOP"
	inst.Type = TypeNOP
	inst.Op = OpNone

	return nil
}

// decodeJump decodes J.
// Format: J label
func (d *Decoder) decodeJump(raw RawInstruction, inst *Instruction) *DecodeError {
	if err := requireOperand(raw, OperandLabel); err != nil {
		return err
	}
	if err := requireRegisters(raw, 0); err != nil {
		return err
	}

	inst.Type = TypeJ
	inst.Op = OpNone
	inst.Target = raw.Operand.Label

	return nil
}

// decodeMemory decodes loads and stores.
// Format: {L|S}{B|H|W} $rt, offset($rs)
func (d *Decoder) decodeMemory(raw RawInstruction, inst *Instruction) ([]Warning, *DecodeError) {
	name := raw.Mnemonic

	switch name[1] {
	case 'B':
		inst.Flags = SizeFlags(SizeByte)
	case 'H':
		inst.Flags = SizeFlags(SizeHalf)
	case 'W':
		inst.Flags = SizeFlags(SizeWord)
	default:
		return nil, newError(KindUnknownMnemonic, raw,
			"unknown instruction %s (memory instruction?)", name)
	}

	if err := requireOperand(raw, OperandIndirect); err != nil {
		return nil, err
	}
	if err := requireRegisters(raw, 1); err != nil {
		return nil, err
	}

	inst.Type = TypeMEM
	inst.Op = OpLoad
	if name[0] == 'S' {
		inst.Op = OpStore
	}

	inst.RT = raw.Registers[0]
	inst.RS = raw.Operand.Base

	if inst.Op == OpLoad && inst.RT == 0 {
		return nil, newError(KindWriteToZeroRegister, raw,
			"instruction %s cannot load into register $0", name)
	}

	var warnings []Warning
	inst.Imm, warnings = truncate16(raw, "offset", raw.Operand.Offset)

	return warnings, nil
}

var branchOps = map[string]Op{
	"BEQ":  OpEQ,
	"BNE":  OpNE,
	"BGEZ": OpGEZ,
	"BGTZ": OpGTZ,
	"BLEZ": OpLEZ,
	"BLTZ": OpLTZ,
}

// decodeBranch decodes conditional branches.
// Format: B{EQ|NE} $rs, $rt, label or B{GE|GT|LE|LT}Z $rs, label
func (d *Decoder) decodeBranch(raw RawInstruction, inst *Instruction) *DecodeError {
	name := raw.Mnemonic

	op, ok := branchOps[name]
	if !ok {
		return newError(KindUnknownMnemonic, raw,
			"unknown instruction %s (branch instruction?)", name)
	}

	if err := requireOperand(raw, OperandLabel); err != nil {
		return err
	}

	if raw.Label != "" && raw.Operand.Label == raw.Label {
		return newError(KindWrongOperandKind, raw,
			"instruction %s cannot branch to its own label %s", name, raw.Label)
	}

	inst.Op = op
	inst.Target = raw.Operand.Label

	if len(name) == 3 {
		if err := requireRegisters(raw, 2); err != nil {
			return err
		}
		inst.Type = TypeBRA2
		inst.RS = raw.Registers[0]
		inst.RT = raw.Registers[1]
		return nil
	}

	if err := requireRegisters(raw, 1); err != nil {
		return err
	}
	inst.Type = TypeBRA1
	inst.RS = raw.Registers[0]

	return nil
}

// aluOps lists R-type base mnemonics. Only ADD and SUB have unsigned forms.
var aluOps = []struct {
	prefix   string
	op       Op
	unsigned bool
}{
	{"ADD", OpADD, true},
	{"AND", OpAND, false},
	{"NOR", OpNOR, false},
	{"SUB", OpSUB, true},
	{"XOR", OpXOR, false},
	{"OR", OpOR, false},
}

// decodeRType decodes ALU operations.
// Format: OP[U] $rd, $rs, $rt or OPI[U] $rt, $rs, imm
func (d *Decoder) decodeRType(raw RawInstruction, inst *Instruction) ([]Warning, *DecodeError) {
	name := raw.Mnemonic

	found := false
	mod := ModNone
	for _, alu := range aluOps {
		if !strings.HasPrefix(name, alu.prefix) {
			continue
		}

		suffix := name[len(alu.prefix):]
		switch {
		case suffix == "":
			mod = ModNone
		case suffix == "I":
			mod = ModImmediate
		case suffix == "U" && alu.unsigned:
			mod = ModUnsigned
		case suffix == "IU" && alu.unsigned:
			mod = ModImmediateUnsigned
		default:
			continue
		}

		inst.Op = alu.op
		found = true
		break
	}

	if !found {
		return nil, newError(KindUnknownMnemonic, raw, "unknown instruction %s", name)
	}

	inst.Flags = ModFlags(mod)

	if mod.Immediate() {
		if err := requireOperand(raw, OperandImmediate); err != nil {
			return nil, err
		}
		if err := requireRegisters(raw, 2); err != nil {
			return nil, err
		}

		inst.Type = TypeR2
		inst.RT = raw.Registers[0]
		inst.RS = raw.Registers[1]

		if inst.RT == 0 {
			return nil, newError(KindWriteToZeroRegister, raw,
				"instruction %s cannot write to register $0", name)
		}

		var warnings []Warning
		inst.Imm, warnings = truncate16(raw, "immediate", raw.Operand.Value)

		return warnings, nil
	}

	if err := requireNoOperand(raw); err != nil {
		return nil, err
	}
	if err := requireRegisters(raw, 3); err != nil {
		return nil, err
	}

	inst.Type = TypeR3
	inst.RD = raw.Registers[0]
	inst.RS = raw.Registers[1]
	inst.RT = raw.Registers[2]

	if inst.RD == 0 {
		return nil, newError(KindWriteToZeroRegister, raw,
			"instruction %s cannot write to register $0", name)
	}

	return nil, nil
}

func itoa(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
