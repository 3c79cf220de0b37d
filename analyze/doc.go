// Package analyze is the pass's main driver: a single reverse-postorder
// walk over a core.Graph that tracks candidate allocations, propagates
// shadow facts, merges state at block entry, and queues every rewrite
// (package transform) and deopt side-table entry (package deopt) the rest
// of the pass needs to apply. It never mutates the graph directly — Run
// only ever produces a Plan and a Bookkeeper for a caller to apply (or
// discard, on BackEdge).
package analyze
