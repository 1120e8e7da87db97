package tree

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/threadboard/internal/comment"
)

// frame is one pending node of a pre-order traversal.
type frame struct {
	node  *comment.Comment
	depth int
}

// walk visits every node of f in pre-order. fn returns false to stop.
// Nodes are visited through pointers into f, so fn may append replies to
// the visited node as long as it stops the walk right after.
func walk(f comment.Forest, fn func(n *comment.Comment, depth int) bool) {
	stack := make([]frame, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: &f[i]})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.node, top.depth) {
			return
		}
		replies := top.node.Replies
		for i := len(replies) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: &replies[i], depth: top.depth + 1})
		}
	}
}

// Walk visits every comment of f in pre-order with its depth (0 for
// top-level). fn returns false to stop early. fn receives copies.
func Walk(f comment.Forest, fn func(c comment.Comment, depth int) bool) {
	walk(f, func(n *comment.Comment, depth int) bool {
		return fn(*n, depth)
	})
}

// CountForest returns the number of nodes at every depth of f.
func CountForest(f comment.Forest) int {
	n := 0
	walk(f, func(*comment.Comment, int) bool {
		n++
		return true
	})
	return n
}

// CountRepliesIn returns the number of nodes of f that are not top-level:
// the sum of every node's direct reply count.
func CountRepliesIn(f comment.Forest) int {
	n := 0
	walk(f, func(c *comment.Comment, _ int) bool {
		n += len(c.Replies)
		return true
	})
	return n
}

// UniqueAuthors returns the number of distinct authors of f, compared
// after lower-casing.
func UniqueAuthors(f comment.Forest) int {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{})
	walk(f, func(c *comment.Comment, _ int) bool {
		seen[lower.String(c.Author)] = struct{}{}
		return true
	})
	return len(seen)
}

// Latest returns the greatest timestamp of f. ok is false when f is empty
// or holds no parseable timestamp.
func Latest(f comment.Forest) (latest time.Time, ok bool) {
	walk(f, func(c *comment.Comment, _ int) bool {
		t, err := c.Time()
		if err != nil {
			return true
		}
		if !ok || t.After(latest) {
			latest, ok = t, true
		}
		return true
	})
	return latest, ok
}
