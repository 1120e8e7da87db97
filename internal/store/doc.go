// Package store provides durable key/value slots and the comment and draft
// stores built on them.
//
// A slot holds one serialized blob under a well-known key. Every write
// replaces the whole blob; there are no partial writes and no transactions
// spanning slots. Each slot carries a revision, a per-key logical counter
// incremented on every write.
//
// # Backends
//
//   - Store: SQLite database shared by every process on the machine
//   - Memory: mutex-guarded map for tests and single-process use
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// There is no locking across contexts: two contexts may read-modify-write
// the comments slot in either order and the later Save wins entirely.
package store
