package loader

import (
	"github.com/sarchlab/pipesim/insts"
)

// LabelTable maps code labels to instruction indices.
type LabelTable struct {
	index map[string]int
}

// NewLabelTable creates an empty label table.
func NewLabelTable() *LabelTable {
	return &LabelTable{index: make(map[string]int)}
}

// Index returns the instruction index a label points to.
func (t *LabelTable) Index(label string) (int, bool) {
	idx, ok := t.index[label]
	return idx, ok
}

// Define binds a label to an instruction index. Redefining a label is an
// error.
func (t *LabelTable) Define(label string, idx int) error {
	if _, ok := t.index[label]; ok {
		return &insts.DecodeError{
			Kind: insts.KindDuplicateLabel,
			Msg:  "label " + label + " is already defined",
		}
	}

	t.index[label] = idx

	return nil
}

// Len returns the number of defined labels.
func (t *LabelTable) Len() int {
	return len(t.index)
}
