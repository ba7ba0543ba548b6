package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/timing/pipeline"
)

const rawProgram = "ADD $1, $2, $3\nADD $4, $1, $1\n"

var _ = Describe("Root command", func() {
	var (
		stdout *bytes.Buffer
		stderr *bytes.Buffer
		dir    string
	)

	BeforeEach(func() {
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		dir = GinkgoT().TempDir()
	})

	execute := func(src string, args ...string) error {
		cmd := newRootCommand(strings.NewReader(src), stdout, stderr)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	It("should read standard input and print the diagram", func() {
		Expect(execute("ADD $1, $2, $3\n")).To(Succeed())

		Expect(stdout.String()).To(Equal(
			"ADD $1, $2, $3\t\tF  D  X  M  W\n\nCycles: 5\n"))
	})

	It("should stall without forwarding by default", func() {
		Expect(execute(rawProgram)).To(Succeed())

		Expect(stdout.String()).To(Equal(
			"ADD $1, $2, $3\t\tF  D  X  M  W\n" +
				"ADD $4, $1, $1\t\t   F  S  S  D  X  M  W\n" +
				"\nCycles: 8\n"))
	})

	It("should enable full forwarding for a bare -f", func() {
		Expect(execute(rawProgram, "-f")).To(Succeed())

		Expect(stdout.String()).To(HaveSuffix("\nCycles: 6\n"))
	})

	It("should accept a forwarding value", func() {
		Expect(execute(rawProgram, "--forwarding=alu")).To(Succeed())

		Expect(stdout.String()).To(HaveSuffix("\nCycles: 6\n"))
	})

	It("should document the attached forwarding value form", func() {
		cmd := newRootCommand(strings.NewReader(""), stdout, stderr)
		cmd.SetArgs([]string{"--help"})

		Expect(cmd.Execute()).To(Succeed())

		Expect(stdout.String()).To(ContainSubstring("-f=alu or --forwarding=alu"))
		Expect(stdout.String()).To(ContainSubstring("a bare -f means full"))
	})

	It("should treat a separated forwarding value as a stray argument", func() {
		Expect(execute(rawProgram, "-f", "alu")).NotTo(Succeed())
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should accept an attached short forwarding value", func() {
		Expect(execute(rawProgram, "-f=alu")).To(Succeed())

		Expect(stdout.String()).To(HaveSuffix("\nCycles: 6\n"))
	})

	It("should reject an unknown forwarding value", func() {
		Expect(execute(rawProgram, "--forwarding=sometimes")).NotTo(Succeed())
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should reject an unknown branch policy", func() {
		Expect(execute(rawProgram, "-b", "maybe")).NotTo(Succeed())
	})

	It("should read the input file and write the output file", func() {
		in := writeFile("prog.s", rawProgram)
		out := filepath.Join(dir, "out.txt")

		Expect(execute("", "-i", in, "-o", out, "-f")).To(Succeed())

		data, err := os.ReadFile(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(HaveSuffix("\nCycles: 6\n"))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should let explicit flags override the config file", func() {
		cfg := writeFile("cfg.json", `{"forwarding": "alu"}`)

		Expect(execute(rawProgram, "-c", cfg)).To(Succeed())
		Expect(stdout.String()).To(HaveSuffix("\nCycles: 6\n"))

		stdout.Reset()
		Expect(execute(rawProgram, "-c", cfg, "--forwarding=no")).To(Succeed())
		Expect(stdout.String()).To(HaveSuffix("\nCycles: 8\n"))
	})

	It("should print the plain listing with regular NOPs", func() {
		Expect(execute(rawProgram, "-n")).To(Succeed())

		Expect(stdout.String()).To(Equal(
			"ADD $1, $2, $3\nNOP\nNOP\nADD $4, $1, $1\n"))
	})

	It("should fail without output when the limit is exceeded", func() {
		err := execute("top: J top\n", "--limit", "4")

		Expect(errors.Is(err, pipeline.ErrInstructionLimitExceeded)).To(BeTrue())
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should report assembly errors", func() {
		err := execute("FOO $1, $2\n")

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("line 1"))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should append statistics", func() {
		Expect(execute(rawProgram, "--stats")).To(Succeed())

		Expect(stdout.String()).To(ContainSubstring("Pipeline Statistics"))
		Expect(stdout.String()).To(ContainSubstring("Stall slots"))
	})

	It("should print the final state in functional mode", func() {
		Expect(execute("ADDI $1, $0, 5\nDEFW $2, 9\n", "--functional")).NotTo(Succeed())

		stdout.Reset()
		Expect(execute("DEFW $2, 9\nADDI $1, $0, 5\n", "--functional")).To(Succeed())

		Expect(stdout.String()).To(ContainSubstring("$1  = 5"))
		Expect(stdout.String()).To(ContainSubstring("0000: 09 00 00 00"))
	})

	It("should log pipeline slots when verbose", func() {
		Expect(execute(rawProgram, "-v")).To(Succeed())

		Expect(stderr.String()).To(ContainSubstring("pipeline slot"))
		Expect(stderr.String()).To(ContainSubstring("kind=stall"))
	})
})
