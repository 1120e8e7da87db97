// Package harness runs multi-context board scenarios.
//
// A scenario opens several board contexts (think browser tabs) over one
// shared slot store and drives them step by step. Change notifications are
// queued per context and only handled on an explicit deliver step, and the
// periodic check only runs on a reconcile step, so interleavings such as a
// lost update are reproducible.
//
// # Scenario Format
//
//	name: lost_update
//	description: "Two contexts post before either hears from the other"
//	contexts: [A, B]
//	ids: [a1, b1]
//	steps:
//	  - context: A
//	    op: post
//	    author: Ann
//	    text: "from A"
//	    expect: ok
//	  - context: B
//	    op: deliver
//	    expect: replaced
//	  - op: advance
//	    duration: 1m
//	assertions:
//	  - type: stored_count
//	    count: 1
//	  - type: local_contains
//	    context: A
//	    id: a1
//
// # Operations
//
//   - post, reply: submit a comment; outcome "ok" or a board error code
//   - clear: clear all comments; outcome "ok" or a board error code
//   - refresh: reload from the store; outcome "ok"
//   - deliver: handle queued change notifications; "replaced" or "none"
//   - reconcile: one periodic check; "replaced" or "unchanged"
//   - advance: move the clock by duration; "ok"
//   - fail_writes, restore_writes: make the shared store fail or recover
//
// # Determinism
//
// Comment ids come from the scenario's ids list (or c1, c2, ... when
// absent) and the clock starts at Epoch and only moves on advance steps,
// so traces can be compared against golden files.
package harness
