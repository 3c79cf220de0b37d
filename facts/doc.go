// Package facts holds the pass's own speculative bookkeeping: shadow facts
// (type/concreteness information that holds only if replacement actually
// proceeds) and the tracked-register table (which concrete SSA registers
// currently alias a tracked allocation).
//
// Both collections are kept separate from the host compiler's canonical
// core.FactStore and are regenerated from scratch on every analysis run —
// they are never written back, and a bailout simply discards them
// (spec.md §9, "two-timeline state").
package facts
