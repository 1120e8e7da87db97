// Package syncmon keeps one board context's in-memory forest eventually
// consistent with the shared comment store, without a coordinator.
//
// Two triggers reload the store:
//   - a change notification for the comments key replaces the local forest
//     unconditionally (last writer wins, no merge)
//   - a periodic tick replaces it only when a Staleness check says the
//     stored forest differs from the local one
//
// The default CountStaleness compares total node counts. It is a coarse
// heuristic: an edit that keeps the count (one reply swapped for another)
// is not detected by polling. DigestStaleness compares content digests
// instead and catches those edits.
//
// Each reload reads the store and replaces the forest inside the
// context's own lock (Target.Reload), so a post made in this context is
// never overwritten by a snapshot read before it.
//
// Nothing is merged. A local edit that was not saved before another
// context's save is replaced and lost.
package syncmon
