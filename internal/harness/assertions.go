package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/threadboard/internal/comment"
	"github.com/roach88/threadboard/internal/tree"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s -> %s (local=%d stored=%d)\n",
			ev.Seq, ev.Context, ev.Op, ev.Outcome, ev.Local, ev.Stored)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(r *Result, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: r.Trace}
	}

	switch a.Type {
	case AssertStoredCount:
		if n := tree.CountForest(r.Stored); n != a.Count {
			return fail(fmt.Sprintf("%d comments stored", a.Count), fmt.Sprintf("%d", n))
		}

	case AssertLocalCount:
		if n := tree.CountForest(r.Local[a.Context]); n != a.Count {
			return fail(fmt.Sprintf("%d comments in %s", a.Count, a.Context), fmt.Sprintf("%d", n))
		}

	case AssertStoredContains:
		if !contains(r.Stored, a.ID) {
			return fail(fmt.Sprintf("%s stored", a.ID), "missing")
		}

	case AssertStoredMissing:
		if contains(r.Stored, a.ID) {
			return fail(fmt.Sprintf("%s not stored", a.ID), "present")
		}

	case AssertLocalContains:
		if !contains(r.Local[a.Context], a.ID) {
			return fail(fmt.Sprintf("%s in %s", a.ID, a.Context), "missing")
		}

	case AssertLocalMissing:
		if contains(r.Local[a.Context], a.ID) {
			return fail(fmt.Sprintf("%s not in %s", a.ID, a.Context), "present")
		}

	case AssertInSync:
		local, err := comment.Digest(r.Local[a.Context])
		if err != nil {
			return err
		}
		stored, err := comment.Digest(r.Stored)
		if err != nil {
			return err
		}
		if local != stored {
			return fail(fmt.Sprintf("%s matches the store", a.Context),
				fmt.Sprintf("digest %.12s, store %.12s", local, stored))
		}

	case AssertEvents:
		var got []string
		for _, ev := range r.Events[a.Context] {
			got = append(got, string(ev.Kind))
		}
		if strings.Join(got, ",") != strings.Join(a.Kinds, ",") {
			return fail(fmt.Sprintf("events %v", a.Kinds), fmt.Sprintf("%v", got))
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func contains(f comment.Forest, id string) bool {
	found := false
	tree.Walk(f, func(c comment.Comment, _ int) bool {
		found = c.ID == id
		return !found
	})
	return found
}
