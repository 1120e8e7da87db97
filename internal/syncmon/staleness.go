package syncmon

import (
	"fmt"

	"github.com/roach88/threadboard/internal/comment"
	"github.com/roach88/threadboard/internal/tree"
)

// Staleness decides whether the stored forest should replace the local one
// during periodic reconciliation.
type Staleness interface {
	Name() string
	Stale(local, stored comment.Forest) bool
}

// CountStaleness reports staleness when total node counts differ.
// Same-count edits go unnoticed.
type CountStaleness struct{}

// Name implements Staleness.
func (CountStaleness) Name() string { return "count" }

// Stale implements Staleness.
func (CountStaleness) Stale(local, stored comment.Forest) bool {
	return tree.CountForest(local) != tree.CountForest(stored)
}

// DigestStaleness reports staleness when content digests differ.
type DigestStaleness struct{}

// Name implements Staleness.
func (DigestStaleness) Name() string { return "digest" }

// Stale implements Staleness. A forest that cannot be digested is treated
// as stale so the stored copy wins.
func (DigestStaleness) Stale(local, stored comment.Forest) bool {
	a, err := comment.Digest(local)
	if err != nil {
		return true
	}
	b, err := comment.Digest(stored)
	if err != nil {
		return true
	}
	return a != b
}

// ParseStaleness maps a configuration name to a strategy.
func ParseStaleness(name string) (Staleness, error) {
	switch name {
	case "", "count":
		return CountStaleness{}, nil
	case "digest":
		return DigestStaleness{}, nil
	default:
		return nil, fmt.Errorf("unknown staleness strategy %q: must be count or digest", name)
	}
}
