// Package loader reads assembly source files into programs ready for
// emulation and timing simulation.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/pipesim/insts"
)

// ErrSyntax is returned when a source line cannot be tokenized.
var ErrSyntax = errors.New("syntax error")

// Parse tokenizes assembly source. Each non-empty line yields one raw
// instruction; blank and comment-only lines are skipped but still counted.
func Parse(r io.Reader) ([]insts.RawInstruction, error) {
	var raws []insts.RawInstruction

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		raw, ok, err := ParseLine(scanner.Text(), lineNo)
		if err != nil {
			return nil, err
		}
		if ok {
			raws = append(raws, raw)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	return raws, nil
}

// ParseLine tokenizes a single source line. It returns false if the line
// holds no instruction.
//
// Grammar: [label:] MNEMONIC [operand {, operand}] [# comment]
//
// Registers are written $n, Rn or rn, so labels of the form Rn or rn are
// rejected.
func ParseLine(line string, lineNo int) (insts.RawInstruction, bool, error) {
	raw := insts.RawInstruction{Line: lineNo}

	if c := strings.IndexAny(line, "#;"); c != -1 {
		line = line[:c]
	}
	line = strings.TrimSpace(line)

	if l := strings.Index(line, ":"); l != -1 {
		raw.Label = strings.TrimSpace(line[:l])
		if isRegisterName(raw.Label) {
			return raw, false, syntaxError(lineNo,
				"label %q reads as a register and cannot be referenced", raw.Label)
		}
		if !validLabel(raw.Label) {
			return raw, false, syntaxError(lineNo, "invalid label %q", raw.Label)
		}
		line = strings.TrimSpace(line[l+1:])
	}

	if line == "" {
		if raw.Label != "" {
			return raw, false, syntaxError(lineNo, "label %s is not attached to an instruction", raw.Label)
		}
		return raw, false, nil
	}

	mnemonic, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i != -1 {
		mnemonic, rest = line[:i], strings.TrimSpace(line[i:])
	}
	raw.Mnemonic = strings.ToUpper(mnemonic)

	if rest == "" {
		return raw, true, nil
	}

	for _, tok := range strings.Split(rest, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return raw, false, syntaxError(lineNo, "empty operand")
		}

		if reg, ok, err := parseRegister(tok); ok {
			if err != nil {
				return raw, false, lineError(raw, err)
			}
			raw.Registers = append(raw.Registers, reg)
			continue
		}

		if raw.Operand.Kind != insts.OperandNone {
			return raw, false, syntaxError(lineNo, "more than one non-register operand")
		}

		op, err := parseOperand(tok)
		if err != nil {
			return raw, false, lineError(raw, err)
		}
		raw.Operand = op
	}

	return raw, true, nil
}

// lineError tags a token error with the line it came from. Decode errors
// keep their kind; anything else is a syntax error.
func lineError(raw insts.RawInstruction, err error) error {
	var de *insts.DecodeError
	if errors.As(err, &de) {
		de = de.WithLine(raw.Line)
		de.Mnemonic = raw.Mnemonic
		return de
	}
	return syntaxError(raw.Line, "%v", err)
}

func syntaxError(lineNo int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, lineNo, fmt.Sprintf(format, args...))
}

// parseRegister parses $n, Rn or rn. The second result reports whether the
// token looks like a register at all. Numbers past the register file give a
// RegisterOutOfRange DecodeError without a line.
func parseRegister(tok string) (uint8, bool, error) {
	var digits string
	switch {
	case strings.HasPrefix(tok, "$"):
		digits = tok[1:]
	case isRegisterName(tok):
		digits = tok[1:]
	default:
		return 0, false, nil
	}

	if !isDigits(digits) {
		return 0, true, fmt.Errorf("invalid register %q", tok)
	}

	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || n >= insts.NumRegs {
		return 0, true, &insts.DecodeError{
			Kind: insts.KindRegisterOutOfRange,
			Msg:  fmt.Sprintf("register %s is out of range (0-%d)", tok, insts.NumRegs-1),
		}
	}

	return uint8(n), true, nil
}

// parseOperand parses an immediate, an offset(base) pair or a label.
func parseOperand(tok string) (insts.Operand, error) {
	if open := strings.Index(tok, "("); open != -1 {
		if !strings.HasSuffix(tok, ")") {
			return insts.Operand{}, fmt.Errorf("invalid indirect operand %q", tok)
		}

		base, ok, err := parseRegister(strings.TrimSpace(tok[open+1 : len(tok)-1]))
		var de *insts.DecodeError
		if errors.As(err, &de) {
			return insts.Operand{}, err
		}
		if !ok || err != nil {
			return insts.Operand{}, fmt.Errorf("invalid base register in %q", tok)
		}

		var offset int64
		if s := strings.TrimSpace(tok[:open]); s != "" {
			offset, err = strconv.ParseInt(s, 0, 32)
			if err != nil {
				return insts.Operand{}, fmt.Errorf("invalid offset in %q", tok)
			}
		}

		return insts.IndirectOperand(int32(offset), base), nil
	}

	if c := tok[0]; c == '-' || c == '+' || (c >= '0' && c <= '9') {
		v, err := strconv.ParseInt(tok, 0, 32)
		if err != nil {
			return insts.Operand{}, fmt.Errorf("invalid immediate %q", tok)
		}
		return insts.ImmediateOperand(int32(v)), nil
	}

	if !validLabel(tok) {
		return insts.Operand{}, fmt.Errorf("invalid operand %q", tok)
	}

	return insts.LabelOperand(tok), nil
}

func validLabel(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		switch {
		case c == '_' || c == '.':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}

func isRegisterName(s string) bool {
	return len(s) > 1 && (s[0] == 'R' || s[0] == 'r') && isDigits(s[1:])
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
