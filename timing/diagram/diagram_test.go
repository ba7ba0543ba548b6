package diagram_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/diagram"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

func add(rd, rs, rt uint8) *insts.Instruction {
	return &insts.Instruction{
		DisplayName: "ADD",
		Type:        insts.TypeR3,
		Op:          insts.OpADD,
		RD:          rd,
		RS:          rs,
		RT:          rt,
		Flags:       insts.ModFlags(insts.ModNone),
	}
}

func beq(rs, rt uint8, target string) *insts.Instruction {
	return &insts.Instruction{
		DisplayName: "BEQ",
		Type:        insts.TypeBRA2,
		Op:          insts.OpEQ,
		RD:          insts.NoReg,
		RS:          rs,
		RT:          rt,
		Target:      target,
	}
}

func issued(inst *insts.Instruction) pipeline.Slot {
	return pipeline.Slot{Inst: inst, Kind: pipeline.SlotIssued}
}

func stall() pipeline.Slot {
	return pipeline.Slot{Inst: insts.NewSNOP(), Kind: pipeline.SlotStall}
}

func bubble() pipeline.Slot {
	return pipeline.Slot{Inst: insts.NewSNOP(), Kind: pipeline.SlotBubble}
}

func render(trace pipeline.Trace, opts diagram.Options) (string, int) {
	var buf bytes.Buffer
	cycles, err := diagram.Render(&buf, trace, opts)
	Expect(err).NotTo(HaveOccurred())
	return buf.String(), cycles
}

var _ = Describe("Render", func() {
	It("should take five cycles for a single instruction", func() {
		out, cycles := render(pipeline.Trace{issued(add(1, 2, 3))}, diagram.Options{})

		Expect(out).To(Equal("ADD $1, $2, $3\t\tF  D  X  M  W\n\nCycles: 5\n"))
		Expect(cycles).To(Equal(5))
	})

	It("should overlap independent instructions by one column", func() {
		trace := pipeline.Trace{issued(add(1, 2, 3)), issued(add(4, 5, 6))}

		out, cycles := render(trace, diagram.Options{})

		Expect(out).To(Equal(
			"ADD $1, $2, $3\t\tF  D  X  M  W\n" +
				"ADD $4, $5, $6\t\t   F  D  X  M  W\n" +
				"\nCycles: 6\n"))
		Expect(cycles).To(Equal(6))
	})

	It("should place stalls before decode without full forwarding", func() {
		trace := pipeline.Trace{
			issued(add(1, 2, 3)),
			stall(),
			stall(),
			issued(add(4, 1, 1)),
		}

		out, cycles := render(trace, diagram.Options{Forwarding: config.ForwardNone})

		Expect(out).To(Equal(
			"ADD $1, $2, $3\t\tF  D  X  M  W\n" +
				"ADD $4, $1, $1\t\t   F  S  S  D  X  M  W\n" +
				"\nCycles: 8\n"))
		Expect(cycles).To(Equal(8))
	})

	It("should place stalls after decode with full forwarding", func() {
		trace := pipeline.Trace{
			issued(add(1, 2, 3)),
			stall(),
			issued(add(4, 1, 1)),
		}

		out, cycles := render(trace, diagram.Options{Forwarding: config.ForwardFull})

		Expect(out).To(Equal(
			"ADD $1, $2, $3\t\tF  D  X  M  W\n" +
				"ADD $4, $1, $1\t\t   F  D  S  X  M  W\n" +
				"\nCycles: 7\n"))
		Expect(cycles).To(Equal(7))
	})

	It("should align later rows with the previous decode column", func() {
		trace := pipeline.Trace{
			issued(add(1, 2, 3)),
			stall(),
			stall(),
			issued(add(4, 1, 1)),
			issued(add(5, 6, 7)),
		}

		out, cycles := render(trace, diagram.Options{})

		lines := strings.Split(out, "\n")
		Expect(lines[2]).To(Equal("ADD $5, $6, $7\t\t" + strings.Repeat(" ", 12) + "F  D  X  M  W"))
		Expect(cycles).To(Equal(9))
	})

	It("should skip stall columns in later rows", func() {
		trace := pipeline.Trace{
			issued(add(1, 2, 3)),
			stall(),
			issued(add(4, 1, 1)),
			issued(add(5, 6, 7)),
		}

		out, cycles := render(trace, diagram.Options{Forwarding: config.ForwardFull})

		lines := strings.Split(out, "\n")
		Expect(lines[2]).To(Equal("ADD $5, $6, $7\t\t" + strings.Repeat(" ", 6) + "F     D  X  M  W"))
		Expect(cycles).To(Equal(8))
	})

	It("should fetch after the bubbles that follow a branch", func() {
		trace := pipeline.Trace{
			issued(beq(0, 0, "next")),
			bubble(),
			bubble(),
			issued(add(3, 4, 5)),
		}

		out, cycles := render(trace, diagram.Options{Forwarding: config.ForwardFull})

		Expect(out).To(Equal(
			"BEQ $0, $0, next\t\tF  D  X  M  W\n" +
				"ADD $3, $4, $5\t\t   S  S  F  D  X  M  W\n" +
				"\nCycles: 8\n"))
		Expect(cycles).To(Equal(8))
	})

	It("should print labels with the instruction", func() {
		inst := add(1, 2, 3)
		inst.Label = "loop"

		out, _ := render(pipeline.Trace{issued(inst)}, diagram.Options{})

		Expect(out).To(HavePrefix("loop: ADD $1, $2, $3\t\t"))
	})

	It("should report zero cycles for an empty trace", func() {
		out, cycles := render(nil, diagram.Options{})

		Expect(out).To(Equal("\nCycles: 0\n"))
		Expect(cycles).To(BeZero())
	})

	Context("plain listing", func() {
		It("should print one instruction per line with explicit NOPs", func() {
			trace := pipeline.Trace{
				issued(add(1, 2, 3)),
				{Inst: insts.NewNOP(), Kind: pipeline.SlotStall},
				{Inst: insts.NewNOP(), Kind: pipeline.SlotStall},
				issued(add(4, 1, 1)),
			}

			out, cycles := render(trace, diagram.Options{RegularNOPs: true})

			Expect(out).To(Equal("ADD $1, $2, $3\nNOP\nNOP\nADD $4, $1, $1\n"))
			Expect(cycles).To(BeZero())
		})
	})
})

var _ = Describe("RenderStats", func() {
	It("should print a summary table", func() {
		var buf bytes.Buffer

		diagram.RenderStats(&buf, pipeline.Statistics{
			Instructions:         4,
			Stalls:               2,
			Bubbles:              2,
			Branches:             1,
			BranchPredictions:    1,
			BranchMispredictions: 1,
		}, 12)

		out := buf.String()
		Expect(out).To(ContainSubstring("Pipeline Statistics"))
		Expect(out).To(ContainSubstring("Instructions"))
		Expect(out).To(ContainSubstring("3.000"))
		Expect(out).To(ContainSubstring("Accuracy"))
		Expect(out).To(ContainSubstring("0.00%"))
	})

	It("should leave out prediction rows without a predictor", func() {
		var buf bytes.Buffer

		diagram.RenderStats(&buf, pipeline.Statistics{Instructions: 1}, 5)

		Expect(buf.String()).NotTo(ContainSubstring("Accuracy"))
	})
})
