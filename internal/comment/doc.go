// Package comment defines the board's data model: the Comment node, the
// Forest of top-level comments and the Draft of an in-progress post.
//
// This package contains types and pure functions only. It imports nothing
// internal, so every other package can depend on it.
//
// Key constraints:
//   - Ids are opaque and unique across every depth of a forest
//   - Replies keep insertion order; that order is the canonical render order
//   - ParentID is routing information recorded at creation, never re-derived
//   - JSON field names match the persisted layout (camelCase, replies never null)
package comment
