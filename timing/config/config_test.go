package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/timing/config"
)

var _ = Describe("Policies", func() {
	DescribeTable("ParseForwarding",
		func(in string, expected config.Forwarding) {
			f, err := config.ParseForwarding(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(Equal(expected))
		},
		Entry("no", "no", config.ForwardNone),
		Entry("none", "none", config.ForwardNone),
		Entry("alu", "ALU", config.ForwardALU),
		Entry("full", "full", config.ForwardFull),
		Entry("bare flag", "", config.ForwardFull),
	)

	DescribeTable("ParseBranchPolicy",
		func(in string, expected config.BranchPolicy) {
			b, err := config.ParseBranchPolicy(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(Equal(expected))
		},
		Entry("no", "no", config.PredictNone),
		Entry("p", "p", config.PredictPerfect),
		Entry("perfect", "perfect", config.PredictPerfect),
		Entry("t", "t", config.PredictTaken),
		Entry("nt", "NT", config.PredictNotTaken),
		Entry("not-taken", "not-taken", config.PredictNotTaken),
	)

	It("should reject unknown policy names", func() {
		_, err := config.ParseForwarding("sideways")
		Expect(err).To(HaveOccurred())

		_, err = config.ParseBranchPolicy("")
		Expect(err).To(HaveOccurred())
	})

	It("should encode policies by name in JSON", func() {
		cfg := config.DefaultTimingConfig()
		cfg.Forwarding = config.ForwardALU
		cfg.BranchPrediction = config.PredictNotTaken

		data, err := json.Marshal(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"forwarding":"alu"`))
		Expect(string(data)).To(ContainSubstring(`"branch_prediction":"not-taken"`))
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			cfg := config.DefaultTimingConfig()
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should use the baseline model", func() {
			cfg := config.DefaultTimingConfig()
			Expect(cfg.Forwarding).To(Equal(config.ForwardNone))
			Expect(cfg.BranchPrediction).To(Equal(config.PredictNone))
			Expect(cfg.BranchInDecode).To(BeFalse())
			Expect(cfg.RegularNOPs).To(BeFalse())
			Expect(cfg.JumpBubbles).To(BeZero())
		})

		It("should limit runs to 256 slots", func() {
			limit, ok := config.DefaultTimingConfig().Limit()
			Expect(ok).To(BeTrue())
			Expect(limit).To(Equal(uint64(256)))
		})
	})

	Describe("Limit", func() {
		It("should not apply when unlimited", func() {
			cfg := config.DefaultTimingConfig()
			cfg.Unlimited = true

			_, ok := cfg.Limit()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Validation", func() {
		It("should reject a zero limit", func() {
			cfg := config.DefaultTimingConfig()
			cfg.InstructionLimit = 0
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should accept a zero limit when unlimited", func() {
			cfg := config.DefaultTimingConfig()
			cfg.InstructionLimit = 0
			cfg.Unlimited = true
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject unknown policies", func() {
			cfg := config.DefaultTimingConfig()
			cfg.Forwarding = config.Forwarding(9)
			Expect(cfg.Validate()).To(HaveOccurred())

			cfg = config.DefaultTimingConfig()
			cfg.BranchPrediction = config.BranchPolicy(9)
			Expect(cfg.Validate()).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := config.DefaultTimingConfig()
			clone := original.Clone()

			clone.Forwarding = config.ForwardFull

			Expect(original.Forwarding).To(Equal(config.ForwardNone))
			Expect(clone.Forwarding).To(Equal(config.ForwardFull))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "config-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := config.DefaultTimingConfig()
			original.Forwarding = config.ForwardALU
			original.BranchPrediction = config.PredictTaken
			original.BranchInDecode = true
			original.InstructionLimit = 1000

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"forwarding":"full"}`), 0644)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Forwarding).To(Equal(config.ForwardFull))
			Expect(loaded.InstructionLimit).To(Equal(uint64(256)))
		})

		It("should return error for non-existent file", func() {
			_, err := config.LoadConfig("/nonexistent/path/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for unknown policy names", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte(`{"branch_prediction":"maybe"}`), 0644)).To(Succeed())

			_, err := config.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = config.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
