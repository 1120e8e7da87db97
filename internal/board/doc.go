// Package board is the application core of one board context.
//
// A Service owns the context's in-memory forest, validates and routes
// submissions into it, persists every change through the shared comment
// store and reports outcomes as Events for an adapter to display. It never
// renders anything itself.
//
// Service implements syncmon.Target, so a sync monitor can replace its
// forest when another context writes the store.
package board
