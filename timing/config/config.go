package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultInstructionLimit caps the number of trace slots a run may emit.
const DefaultInstructionLimit = 256

// TimingConfig holds the settings of the pipeline timing model.
type TimingConfig struct {
	// Forwarding is the result forwarding policy. Default: none.
	Forwarding Forwarding `json:"forwarding"`

	// BranchPrediction is the static branch predictor. Default: none.
	BranchPrediction BranchPolicy `json:"branch_prediction"`

	// BranchInDecode resolves branches in decode instead of execute, which
	// costs one bubble instead of two but needs branch operands earlier.
	BranchInDecode bool `json:"branch_in_decode"`

	// RegularNOPs fills stalls with explicit NOPs and switches the output to
	// a plain listing.
	RegularNOPs bool `json:"regular_nops"`

	// InstructionLimit is the maximum number of trace slots.
	// Default: 256.
	InstructionLimit uint64 `json:"instruction_limit"`

	// Unlimited disables InstructionLimit.
	Unlimited bool `json:"unlimited"`

	// JumpBubbles is the number of filler slots after an unconditional
	// jump. Default: 0.
	JumpBubbles uint64 `json:"jump_bubbles"`
}

// DefaultTimingConfig returns the baseline configuration: no forwarding,
// no branch prediction, branches resolved in execute.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		Forwarding:       ForwardNone,
		BranchPrediction: PredictNone,
		InstructionLimit: DefaultInstructionLimit,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from
// the file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the policies are known and the limit is usable.
func (c *TimingConfig) Validate() error {
	if c.Forwarding > ForwardFull {
		return fmt.Errorf("unknown forwarding policy %d", uint8(c.Forwarding))
	}
	if c.BranchPrediction > PredictNotTaken {
		return fmt.Errorf("unknown branch policy %d", uint8(c.BranchPrediction))
	}
	if !c.Unlimited && c.InstructionLimit == 0 {
		return fmt.Errorf("instruction_limit must be > 0 unless unlimited is set")
	}
	return nil
}

// Clone returns a copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}

// Limit returns the slot limit and whether it applies.
func (c *TimingConfig) Limit() (uint64, bool) {
	if c.Unlimited {
		return 0, false
	}
	return c.InstructionLimit, true
}
