// Package tree implements the in-memory comment forest: insertion,
// traversal and aggregate statistics.
//
// All traversals are pre-order (a node, then its replies in order) and use
// an explicit node stack, so thread depth does not grow the goroutine stack.
//
// An Engine is not safe for concurrent use. The board service serializes
// every call; callers that share an Engine must do the same.
package tree
