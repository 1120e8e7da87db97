package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/threadboard/internal/comment"
)

var testTime = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

// createTestStore creates a new SQLite store in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends returns every Slots implementation under a name, for table tests.
func backends(t *testing.T, opts ...Option) map[string]Slots {
	t.Helper()
	return map[string]Slots{
		"sqlite": createTestStore(t, opts...),
		"memory": NewMemory(opts...),
	}
}

// nestedForest builds a -> b -> c plus a second top-level d.
func nestedForest() comment.Forest {
	a := comment.New("a", "Alice", "root", testTime, "")
	b := comment.New("b", "Bob", "reply", testTime.Add(time.Minute), "a")
	c := comment.New("c", "Carol", "<deep> & \"quoted\"", testTime.Add(2*time.Minute), "b")
	b.Replies = append(b.Replies, c)
	a.Replies = append(a.Replies, b)
	d := comment.New("d", "alice", "second", testTime.Add(3*time.Minute), "")
	return comment.Forest{a, d}
}
