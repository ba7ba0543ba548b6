package insts

import "fmt"

// ErrorKind classifies decode failures.
type ErrorKind uint8

// Decode error kinds.
const (
	KindMissingOperand ErrorKind = iota + 1
	KindWrongOperandKind
	KindWrongRegisterCount
	KindUnknownMnemonic
	KindRegisterOutOfRange
	KindWriteToZeroRegister
	KindDuplicateLabel
	KindUndefinedLabel
	KindBadArrayLength
	KindMisplacedDirective
)

var kindNames = map[ErrorKind]string{
	KindMissingOperand:      "missing operand",
	KindWrongOperandKind:    "wrong operand kind",
	KindWrongRegisterCount:  "wrong register count",
	KindUnknownMnemonic:     "unknown mnemonic",
	KindRegisterOutOfRange:  "register out of range",
	KindWriteToZeroRegister: "write to zero register",
	KindDuplicateLabel:      "duplicate label",
	KindUndefinedLabel:      "undefined label",
	KindBadArrayLength:      "bad array length",
	KindMisplacedDirective:  "misplaced directive",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Sentinel errors, one per kind, for use with errors.Is.
var (
	ErrMissingOperand      = &DecodeError{Kind: KindMissingOperand}
	ErrWrongOperandKind    = &DecodeError{Kind: KindWrongOperandKind}
	ErrWrongRegisterCount  = &DecodeError{Kind: KindWrongRegisterCount}
	ErrUnknownMnemonic     = &DecodeError{Kind: KindUnknownMnemonic}
	ErrRegisterOutOfRange  = &DecodeError{Kind: KindRegisterOutOfRange}
	ErrWriteToZeroRegister = &DecodeError{Kind: KindWriteToZeroRegister}
	ErrDuplicateLabel      = &DecodeError{Kind: KindDuplicateLabel}
	ErrUndefinedLabel      = &DecodeError{Kind: KindUndefinedLabel}
	ErrBadArrayLength      = &DecodeError{Kind: KindBadArrayLength}
	ErrMisplacedDirective  = &DecodeError{Kind: KindMisplacedDirective}
)

// DecodeError reports a malformed source line.
type DecodeError struct {
	Kind     ErrorKind
	Line     int
	Mnemonic string
	Msg      string
}

func (e *DecodeError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Is matches any DecodeError of the same kind.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Kind == e.Kind
}

// WithLine returns a copy of the error tagged with a source line.
func (e *DecodeError) WithLine(line int) *DecodeError {
	c := *e
	c.Line = line
	return &c
}

func newError(kind ErrorKind, raw RawInstruction, format string, args ...any) *DecodeError {
	return &DecodeError{
		Kind:     kind,
		Line:     raw.Line,
		Mnemonic: raw.Mnemonic,
		Msg:      fmt.Sprintf(format, args...),
	}
}

// Warning reports a non-fatal problem, such as a value truncated to fit
// its field.
type Warning struct {
	Line     int
	Mnemonic string
	Msg      string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Msg)
	}
	return w.Msg
}
