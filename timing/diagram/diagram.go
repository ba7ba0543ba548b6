// Package diagram renders pipeline traces as text, either as a plain
// listing or as a timing diagram with one row of stage letters per
// instruction.
package diagram

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

const column = "   "

// Options controls the rendering.
type Options struct {
	// Forwarding decides where stall columns go. Without full forwarding
	// an instruction waits before decode, otherwise after it.
	Forwarding config.Forwarding

	// RegularNOPs selects the plain listing.
	RegularNOPs bool
}

// Render writes the trace to w and returns the number of cycles the
// diagram spans. The plain listing reports zero cycles.
func Render(w io.Writer, trace pipeline.Trace, opts Options) (int, error) {
	r := &renderer{
		out:       bufio.NewWriter(w),
		trace:     trace,
		stalls:    make(map[int]bool),
		lasti:     -1,
		stallsDec: opts.Forwarding != config.ForwardFull,
	}

	if opts.RegularNOPs {
		r.listing()
	} else {
		r.diagram()
	}

	if err := r.out.Flush(); err != nil {
		return 0, fmt.Errorf("failed to write diagram: %w", err)
	}

	return r.lastpos, nil
}

type renderer struct {
	out   *bufio.Writer
	trace pipeline.Trace

	// pos is the cursor column, fetchpos the column where the next
	// instruction is fetched, lastpos the column after the last W.
	pos, fetchpos, lastpos int

	// stalls holds the columns already taken by stall cycles.
	stalls     map[int]bool
	lasti      int
	lastBranch bool
	stallsDec  bool
}

func (r *renderer) listing() {
	for _, slot := range r.trace {
		text := slot.Inst.String()
		if text == "" {
			continue
		}

		r.out.WriteString(text)
		r.out.WriteByte('\n')
	}
}

func (r *renderer) diagram() {
	for i, slot := range r.trace {
		text := slot.Inst.String()
		if text == "" {
			continue
		}

		r.out.WriteString(text)
		r.out.WriteString("\t\t")
		r.out.WriteString(strings.Repeat(column, r.pos))

		if !r.lastBranch {
			r.phase('F')
		}

		if !r.stallsDec && !r.lastBranch {
			r.phase('D')
			r.fetchpos = r.pos - 1
		}

		if r.lasti >= 0 {
			for j := r.lasti + 1; j < len(r.trace) && r.trace[j].Inst.Type == insts.TypeSNOP; j++ {
				r.out.WriteString("S  ")
				r.stalls[r.pos] = true
				r.pos++
			}
		}

		if r.lastBranch {
			r.phase('F')
		}

		if r.stallsDec || r.lastBranch {
			r.phase('D')
			r.fetchpos = r.pos - 1
		}

		r.out.WriteString("X  M  W\n")

		r.lastpos = r.pos + 3
		r.pos = r.fetchpos
		r.lasti = i
		r.lastBranch = slot.Inst.IsBranch()
	}

	fmt.Fprintf(r.out, "\nCycles: %d\n", r.lastpos)
}

// phase writes a stage letter at the first column not taken by a stall.
func (r *renderer) phase(ch byte) {
	for {
		taken := r.stalls[r.pos]
		r.pos++
		if !taken {
			break
		}
		r.out.WriteString(column)
	}

	r.out.WriteByte(ch)
	r.out.WriteString("  ")
}
