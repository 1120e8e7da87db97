// Package notify carries store-changed notifications between board contexts.
//
// A Change names the slot that was overwritten and carries its new value.
// Delivery is best effort: notifications to a slow subscriber coalesce, and
// a subscriber must treat any Change as "reload the slot", never as a diff.
// The periodic reconciliation in syncmon covers whatever delivery misses.
//
// Implementations:
//   - Hub: in-process pub/sub between contexts sharing one process
//   - FileWatcher: feeds a Hub from writes to a SQLite file made by other processes
package notify
