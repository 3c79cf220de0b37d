// Package bigint provides the decomposed big-integer representation used
// by the big-integer decomposition rewrites (spec.md §4.4): a fixed-width
// Handle that stands in for an unboxed big-integer register, and a small
// LRU-backed cache modeling the VM's shared small-integer cache consulted
// when a decomposed value escapes and must be re-boxed.
package bigint
