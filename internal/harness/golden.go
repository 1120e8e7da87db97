package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/threadboard/internal/comment"
)

// Snapshot is the golden-file form of a scenario run.
type Snapshot struct {
	Scenario     string         `json:"scenario"`
	Trace        []TraceEvent   `json:"trace"`
	Stored       comment.Forest `json:"stored"`
	StoredDigest string         `json:"stored_digest"`
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(name string, r *Result) (*Snapshot, error) {
	digest, err := comment.Digest(r.Stored)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Scenario:     name,
		Trace:        r.Trace,
		Stored:       r.Stored,
		StoredDigest: digest,
	}, nil
}

// MarshalSnapshot renders s as two-space indented JSON with a final newline.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snap, err := NewSnapshot(name, result)
	if err != nil {
		return err
	}
	data, err := MarshalSnapshot(snap)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
