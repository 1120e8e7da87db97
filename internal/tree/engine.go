package tree

import (
	"strings"
	"time"

	"github.com/roach88/threadboard/internal/comment"
)

// MaxOptionText is the number of characters of a comment's text shown in a
// parent option label before it is cut with "...".
const MaxOptionText = 50

// Engine owns an in-memory forest.
//
// INVARIANTS:
//   - every mutation inserts exactly one node or changes nothing
//   - reply order is insertion order
//   - Forest() never exposes internal storage
type Engine struct {
	forest comment.Forest
}

// New creates an engine over a deep copy of f.
func New(f comment.Forest) *Engine {
	return &Engine{forest: f.Clone()}
}

// AddTopLevel appends c to the end of the top-level sequence.
func (e *Engine) AddTopLevel(c comment.Comment) {
	e.forest = append(e.forest, c.Clone())
}

// AddReply appends reply to the replies of the first node, in pre-order,
// whose id is parentID. It returns false and changes nothing when no node
// at any depth has that id; there is no fallback to top level.
func (e *Engine) AddReply(parentID string, reply comment.Comment) bool {
	inserted := false
	walk(e.forest, func(n *comment.Comment, _ int) bool {
		if n.ID != parentID {
			return true
		}
		n.Replies = append(n.Replies, reply.Clone())
		inserted = true
		return false
	})
	return inserted
}

// CountAll returns the total number of nodes at every depth.
func (e *Engine) CountAll() int {
	return CountForest(e.forest)
}

// CountReplies returns the number of nodes that are not top-level.
// CountAll() == Len() + CountReplies() always holds.
func (e *Engine) CountReplies() int {
	return CountRepliesIn(e.forest)
}

// CountUniqueAuthors returns the number of distinct authors, case-insensitively.
func (e *Engine) CountUniqueAuthors() int {
	return UniqueAuthors(e.forest)
}

// LatestActivity returns the greatest timestamp across all nodes.
// ok is false for an empty forest, which callers render as "Never".
func (e *Engine) LatestActivity() (time.Time, bool) {
	return Latest(e.forest)
}

// Clear empties the forest. Irreversible; confirming intent is the caller's job.
func (e *Engine) Clear() {
	e.forest = comment.Forest{}
}

// Len returns the number of top-level comments.
func (e *Engine) Len() int {
	return len(e.forest)
}

// Forest returns a deep copy of the forest.
func (e *Engine) Forest() comment.Forest {
	return e.forest.Clone()
}

// Replace swaps the whole forest for a deep copy of f.
func (e *Engine) Replace(f comment.Forest) {
	e.forest = comment.Normalize(f.Clone())
}

// Find returns a copy of the first node with the given id.
func (e *Engine) Find(id string) (comment.Comment, bool) {
	var (
		found comment.Comment
		ok    bool
	)
	walk(e.forest, func(n *comment.Comment, _ int) bool {
		if n.ID == id {
			found, ok = n.Clone(), true
			return false
		}
		return true
	})
	return found, ok
}

// Walk visits every node in pre-order with its depth. fn receives copies.
func (e *Engine) Walk(fn func(c comment.Comment, depth int) bool) {
	Walk(e.forest, fn)
}

// Option is one entry of the reply-target list shown next to the post form.
type Option struct {
	ID    string
	Depth int
	Label string
}

// ParentOptions lists every node as a reply target, in pre-order. Labels
// read "Reply to <author>: <text>", indented two spaces per depth, with
// text cut to MaxOptionText characters.
func (e *Engine) ParentOptions() []Option {
	opts := []Option{}
	walk(e.forest, func(n *comment.Comment, depth int) bool {
		opts = append(opts, Option{
			ID:    n.ID,
			Depth: depth,
			Label: strings.Repeat("  ", depth) + "Reply to " + n.Author + ": " + truncate(n.Text, MaxOptionText),
		})
		return true
	})
	return opts
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
