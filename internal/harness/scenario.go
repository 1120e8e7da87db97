package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/threadboard/internal/syncmon"
)

// Scenario is a scripted run of several board contexts over one store.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description"`

	// Contexts names the board contexts, in opening order.
	Contexts []string `yaml:"contexts"`

	// IDs are handed out to new comments in order.
	// If empty, ids are c1, c2, ...
	IDs []string `yaml:"ids,omitempty"`

	// Staleness selects the reconcile strategy: "count" (default) or "digest".
	Staleness string `yaml:"staleness,omitempty"`

	// Quota limits the stored value size in bytes; 0 means unlimited.
	Quota int `yaml:"quota,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation, usually on one context.
type Step struct {
	Context  string `yaml:"context,omitempty"`
	Op       string `yaml:"op"`
	Author   string `yaml:"author,omitempty"`
	Text     string `yaml:"text,omitempty"`
	Parent   string `yaml:"parent,omitempty"`
	Duration string `yaml:"duration,omitempty"`

	// Expect is the required outcome. Empty means any outcome.
	Expect string `yaml:"expect,omitempty"`
}

// Step operations.
const (
	OpPost          = "post"
	OpReply         = "reply"
	OpClear         = "clear"
	OpRefresh       = "refresh"
	OpDeliver       = "deliver"
	OpReconcile     = "reconcile"
	OpAdvance       = "advance"
	OpFailWrites    = "fail_writes"
	OpRestoreWrites = "restore_writes"
)

// Step outcomes other than board error codes.
const (
	OutcomeOK        = "ok"
	OutcomeReplaced  = "replaced"
	OutcomeNone      = "none"
	OutcomeUnchanged = "unchanged"
)

// Assertion checks the final state of the store or of a context.
type Assertion struct {
	// Type specifies the assertion type:
	// - "stored_count": total nodes in the store equal Count
	// - "local_count": total nodes in Context equal Count
	// - "stored_contains" / "stored_missing": id present in / absent from the store
	// - "local_contains" / "local_missing": id present in / absent from Context
	// - "in_sync": Context's forest equals the store
	// - "events": Context emitted exactly Kinds, in order
	Type string `yaml:"type"`

	Context string   `yaml:"context,omitempty"`
	ID      string   `yaml:"id,omitempty"`
	Count   int      `yaml:"count,omitempty"`
	Kinds   []string `yaml:"kinds,omitempty"`
}

// Assertion type constants.
const (
	AssertStoredCount    = "stored_count"
	AssertLocalCount     = "local_count"
	AssertStoredContains = "stored_contains"
	AssertStoredMissing  = "stored_missing"
	AssertLocalContains  = "local_contains"
	AssertLocalMissing   = "local_missing"
	AssertInSync         = "in_sync"
	AssertEvents         = "events"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is invalid.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Contexts) == 0 {
		return fmt.Errorf("contexts list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if _, err := syncmon.ParseStaleness(s.Staleness); err != nil {
		return err
	}
	if s.Quota < 0 {
		return fmt.Errorf("quota must be non-negative")
	}

	known := make(map[string]bool, len(s.Contexts))
	for _, name := range s.Contexts {
		if name == "" {
			return fmt.Errorf("context names must be non-empty")
		}
		if known[name] {
			return fmt.Errorf("duplicate context %q", name)
		}
		known[name] = true
	}

	submits := 0
	for i, step := range s.Steps {
		if err := validateStep(i, &step, known); err != nil {
			return err
		}
		if step.Op == OpPost || step.Op == OpReply {
			submits++
		}
	}
	if len(s.IDs) > 0 && len(s.IDs) < submits {
		return fmt.Errorf("ids: %d ids for %d post/reply steps", len(s.IDs), submits)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, known); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step, contexts map[string]bool) error {
	switch step.Op {
	case OpPost, OpReply, OpClear, OpRefresh, OpDeliver, OpReconcile:
		if !contexts[step.Context] {
			return fmt.Errorf("steps[%d]: unknown context %q for %s", index, step.Context, step.Op)
		}
	case OpAdvance:
		if _, err := time.ParseDuration(step.Duration); err != nil {
			return fmt.Errorf("steps[%d]: advance needs a duration: %w", index, err)
		}
	case OpFailWrites, OpRestoreWrites:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if step.Op == OpReply && step.Parent == "" {
		return fmt.Errorf("steps[%d]: reply needs a parent", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, contexts map[string]bool) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertStoredCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
		return nil
	case AssertStoredContains, AssertStoredMissing:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
		return nil
	case AssertLocalCount, AssertInSync, AssertEvents:
	case AssertLocalContains, AssertLocalMissing:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if !contexts[a.Context] {
		return fmt.Errorf("assertions[%d]: unknown context %q for %s", index, a.Context, a.Type)
	}
	return nil
}
