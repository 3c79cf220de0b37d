package facts

import "github.com/vmkit/pea/core"

// TrackedRegisters maps a concrete SSA register currently known to hold (an
// alias of) a tracked allocation to that allocation, i.e. the "Tracked
// register" collection from spec.md §3: "(operand, allocation) pairs".
type TrackedRegisters struct {
	byOperand map[core.Operand]*core.Allocation
}

// NewTrackedRegisters returns an empty tracked-register table.
func NewTrackedRegisters() *TrackedRegisters {
	return &TrackedRegisters{byOperand: make(map[core.Operand]*core.Allocation)}
}

// Track records that op currently aliases a.
func (r *TrackedRegisters) Track(op core.Operand, a *core.Allocation) {
	r.byOperand[op] = a
}

// Lookup returns the allocation op currently aliases, if any.
func (r *TrackedRegisters) Lookup(op core.Operand) (*core.Allocation, bool) {
	a, ok := r.byOperand[op]
	return a, ok
}

// Untrack removes any tracked-register entry for op, used when a register
// is reassigned to something that is no longer a tracked alias.
func (r *TrackedRegisters) Untrack(op core.Operand) {
	delete(r.byOperand, op)
}
