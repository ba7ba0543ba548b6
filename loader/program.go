package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
)

// Program is an assembled source file: the instruction stream, its labels,
// and the initial machine state built from the variable directives.
type Program struct {
	Code     []*insts.Instruction
	Labels   *LabelTable
	Vars     []insts.VariableDef
	Data     *emu.Memory
	Regs     *emu.RegFile
	Warnings []insts.Warning
}

// Load reads and assembles the source file at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	return LoadReader(f)
}

// LoadReader reads and assembles source from r.
func LoadReader(r io.Reader) (*Program, error) {
	raws, err := Parse(r)
	if err != nil {
		return nil, err
	}

	return Assemble(raws)
}

// Assemble decodes raw records into a program. Variable directives must
// come before the first instruction. Each variable is placed in the data
// segment in source order and its register is preloaded with the
// variable's offset.
func Assemble(raws []insts.RawInstruction) (*Program, error) {
	prog := &Program{
		Labels: NewLabelTable(),
		Data:   emu.NewMemory(),
		Regs:   &emu.RegFile{},
	}

	decoder := insts.NewDecoder()

	i := 0
	for ; i < len(raws) && insts.IsDirective(raws[i]); i++ {
		d, err := decoder.Decode(raws[i])
		if err != nil {
			return nil, err
		}
		prog.warn(d.Warnings)

		def := *d.Var
		offset, err := prog.Data.AddVariable(def)
		if err != nil {
			return nil, &insts.DecodeError{
				Kind:     insts.KindBadArrayLength,
				Line:     raws[i].Line,
				Mnemonic: raws[i].Mnemonic,
				Msg:      err.Error(),
			}
		}
		prog.Regs.WriteReg(def.Register, int32(offset))
		prog.Vars = append(prog.Vars, def)
	}

	prog.Data.Shrink()

	for ; i < len(raws); i++ {
		raw := raws[i]

		if insts.IsDirective(raw) {
			return nil, &insts.DecodeError{
				Kind:     insts.KindMisplacedDirective,
				Line:     raw.Line,
				Mnemonic: raw.Mnemonic,
				Msg:      "variable definitions must precede all instructions",
			}
		}

		d, err := decoder.Decode(raw)
		if err != nil {
			return nil, err
		}
		prog.warn(d.Warnings)

		if d.Inst.Label != "" {
			if err := prog.Labels.Define(d.Inst.Label, len(prog.Code)); err != nil {
				var de *insts.DecodeError
				if errors.As(err, &de) {
					return nil, de.WithLine(raw.Line)
				}
				return nil, err
			}
		}

		prog.Code = append(prog.Code, d.Inst)
	}

	for _, inst := range prog.Code {
		if inst.Target == "" {
			continue
		}
		if _, ok := prog.Labels.Index(inst.Target); !ok {
			return nil, &insts.DecodeError{
				Kind:     insts.KindUndefinedLabel,
				Line:     inst.Line,
				Mnemonic: inst.DisplayName,
				Msg:      "label " + inst.Target + " is not defined",
			}
		}
	}

	return prog, nil
}

func (p *Program) warn(ws []insts.Warning) {
	for _, w := range ws {
		slog.Warn("value truncated",
			"line", w.Line, "instruction", w.Mnemonic, "detail", w.Msg)
	}
	p.Warnings = append(p.Warnings, ws...)
}
