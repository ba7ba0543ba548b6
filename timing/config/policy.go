// Package config holds the knobs of the pipeline timing model.
package config

import (
	"fmt"
	"strings"
)

// Forwarding selects how results are passed to dependent instructions.
type Forwarding uint8

// Forwarding policies.
const (
	// ForwardNone makes dependents wait until the register file is written.
	ForwardNone Forwarding = iota
	// ForwardALU forwards ALU results but not loads.
	ForwardALU
	// ForwardFull forwards every result as soon as it is produced.
	ForwardFull
)

func (f Forwarding) String() string {
	switch f {
	case ForwardNone:
		return "none"
	case ForwardALU:
		return "alu"
	case ForwardFull:
		return "full"
	default:
		return fmt.Sprintf("Forwarding(%d)", uint8(f))
	}
}

// MarshalText encodes the policy by name.
func (f Forwarding) MarshalText() ([]byte, error) {
	if f > ForwardFull {
		return nil, fmt.Errorf("unknown forwarding policy %d", uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText accepts any name ParseForwarding accepts.
func (f *Forwarding) UnmarshalText(text []byte) error {
	v, err := ParseForwarding(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseForwarding parses a forwarding policy. An empty string selects full
// forwarding so that a bare command line flag enables it.
func ParseForwarding(s string) (Forwarding, error) {
	switch strings.ToLower(s) {
	case "no", "none":
		return ForwardNone, nil
	case "alu":
		return ForwardALU, nil
	case "", "full":
		return ForwardFull, nil
	default:
		return ForwardNone, fmt.Errorf("unknown forwarding policy %q", s)
	}
}

// BranchPolicy selects the static branch prediction strategy.
type BranchPolicy uint8

// Branch prediction policies.
const (
	// PredictNone stalls fetch after every branch.
	PredictNone BranchPolicy = iota
	// PredictPerfect never pays a branch penalty.
	PredictPerfect
	// PredictTaken pays a penalty when the branch falls through.
	PredictTaken
	// PredictNotTaken pays a penalty when the branch is taken.
	PredictNotTaken
)

func (b BranchPolicy) String() string {
	switch b {
	case PredictNone:
		return "none"
	case PredictPerfect:
		return "perfect"
	case PredictTaken:
		return "taken"
	case PredictNotTaken:
		return "not-taken"
	default:
		return fmt.Sprintf("BranchPolicy(%d)", uint8(b))
	}
}

// MarshalText encodes the policy by name.
func (b BranchPolicy) MarshalText() ([]byte, error) {
	if b > PredictNotTaken {
		return nil, fmt.Errorf("unknown branch policy %d", uint8(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText accepts any name ParseBranchPolicy accepts.
func (b *BranchPolicy) UnmarshalText(text []byte) error {
	v, err := ParseBranchPolicy(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ParseBranchPolicy parses a branch prediction policy by name or by its
// short command line alias.
func ParseBranchPolicy(s string) (BranchPolicy, error) {
	switch strings.ToLower(s) {
	case "no", "none":
		return PredictNone, nil
	case "p", "perfect":
		return PredictPerfect, nil
	case "t", "taken":
		return PredictTaken, nil
	case "nt", "not-taken":
		return PredictNotTaken, nil
	default:
		return PredictNone, fmt.Errorf("unknown branch policy %q", s)
	}
}
