package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

var _ = Describe("HazardUnit", func() {
	record := func(h *pipeline.HazardUnit, inst *insts.Instruction) {
		h.Record(inst, pipeline.ProfileOf(inst, false))
	}

	needsStall := func(h *pipeline.HazardUnit, inst *insts.Instruction, lastStall bool) bool {
		return h.NeedsStall(inst, pipeline.ProfileOf(inst, false), lastStall)
	}

	It("should set busy to the result phase and dirty to the commit distance", func() {
		h := pipeline.NewHazardUnit(config.ForwardNone)

		record(h, add(1, 2, 3))
		record(h, lw(4, 2, 0))

		Expect(h.Busy(1)).To(Equal(uint8(3)))
		Expect(h.Dirty(1)).To(Equal(uint8(3)))
		Expect(h.Busy(4)).To(Equal(uint8(4)))
		Expect(h.Dirty(4)).To(Equal(uint8(3)))
	})

	It("should floor counters at zero when aging", func() {
		h := pipeline.NewHazardUnit(config.ForwardNone)
		record(h, add(1, 2, 3))

		for i := 0; i < 5; i++ {
			h.Age()
		}

		Expect(h.Busy(1)).To(BeZero())
		Expect(h.Dirty(1)).To(BeZero())
	})

	It("should not record writes for stores and branches", func() {
		h := pipeline.NewHazardUnit(config.ForwardNone)

		record(h, sw(1, 2, 0))
		record(h, beq(1, 2, "x"))

		Expect(h.Busy(1)).To(BeZero())
		Expect(h.Dirty(1)).To(BeZero())
	})

	It("should ignore out of range registers", func() {
		h := pipeline.NewHazardUnit(config.ForwardNone)

		Expect(h.Busy(insts.NoReg)).To(BeZero())
		Expect(h.Dirty(insts.NoReg)).To(BeZero())
	})

	Context("without forwarding", func() {
		It("should stall while the register is dirty", func() {
			h := pipeline.NewHazardUnit(config.ForwardNone)
			record(h, add(1, 2, 3))

			h.Age()
			Expect(needsStall(h, add(4, 1, 0), false)).To(BeTrue())
			h.Age()
			Expect(needsStall(h, add(4, 1, 0), true)).To(BeTrue())
			h.Age()
			Expect(needsStall(h, add(4, 1, 0), true)).To(BeFalse())
		})

		It("should never stall on register zero", func() {
			h := pipeline.NewHazardUnit(config.ForwardNone)

			Expect(needsStall(h, add(4, 0, 0), false)).To(BeFalse())
		})
	})

	Context("with ALU forwarding", func() {
		It("should forward between adjacent ALU operations", func() {
			h := pipeline.NewHazardUnit(config.ForwardALU)
			record(h, add(1, 2, 3))

			h.Age()
			Expect(needsStall(h, add(4, 1, 1), false)).To(BeFalse())
		})

		It("should not forward across a stall", func() {
			h := pipeline.NewHazardUnit(config.ForwardALU)
			record(h, add(1, 2, 3))

			h.Age()
			Expect(needsStall(h, add(4, 1, 1), true)).To(BeTrue())
		})

		It("should stall on a load result", func() {
			h := pipeline.NewHazardUnit(config.ForwardALU)
			record(h, lw(1, 2, 0))

			h.Age()
			Expect(needsStall(h, add(4, 1, 1), false)).To(BeTrue())
		})
	})

	Context("with full forwarding", func() {
		It("should stall only while the result is not ready", func() {
			h := pipeline.NewHazardUnit(config.ForwardFull)
			record(h, lw(1, 2, 0))

			h.Age()
			Expect(needsStall(h, add(4, 1, 1), false)).To(BeTrue())
			h.Age()
			Expect(needsStall(h, add(4, 1, 1), true)).To(BeFalse())
		})

		It("should let a store take its data at the memory phase", func() {
			h := pipeline.NewHazardUnit(config.ForwardFull)
			record(h, lw(1, 2, 0))

			h.Age()
			Expect(needsStall(h, sw(1, 3, 0), false)).To(BeFalse())
		})
	})

	It("should clear all counters on reset", func() {
		h := pipeline.NewHazardUnit(config.ForwardNone)
		record(h, add(1, 2, 3))

		h.Reset()

		Expect(h.Busy(1)).To(BeZero())
		Expect(h.Dirty(1)).To(BeZero())
	})
})
