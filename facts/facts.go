package facts

import "github.com/vmkit/pea/core"

// ShadowFact is a speculative type/concreteness fact, valid only as long as
// DependsOn (the allocation it was derived from) stays replaceable. AliasOf
// is set when the fact additionally identifies the register as an alias of
// another tracked allocation's identity (spec.md §3, "Shadow facts").
type ShadowFact struct {
	KnownType     uint32
	KnownConcrete bool
	DependsOn     *core.Allocation
	AliasOf       *core.Allocation
}

// Valid reports whether the fact's backing allocation (if any) is still
// replaceable. An invalid fact must be treated as absent by callers.
func (f ShadowFact) Valid() bool {
	return f.DependsOn == nil || !f.DependsOn.Irreplaceable
}

// Table holds shadow facts keyed either by hypothetical register or by a
// concrete (original, version) operand, per spec.md §3. It is created
// fresh for each analysis run and discarded at pass end — never mutated in
// place across runs, and never consulted by later passes.
type Table struct {
	byHyp     map[core.HypReg]ShadowFact
	byOperand map[core.Operand]ShadowFact
}

// NewTable returns an empty shadow-fact table.
func NewTable() *Table {
	return &Table{
		byHyp:     make(map[core.HypReg]ShadowFact),
		byOperand: make(map[core.Operand]ShadowFact),
	}
}

// SetHyp records a fact about a hypothetical register.
func (t *Table) SetHyp(h core.HypReg, f ShadowFact) { t.byHyp[h] = f }

// GetHyp returns the fact recorded for h, if any and still valid.
func (t *Table) GetHyp(h core.HypReg) (ShadowFact, bool) {
	f, ok := t.byHyp[h]
	if !ok || !f.Valid() {
		return ShadowFact{}, false
	}
	return f, true
}

// SetOperand records a fact about a concrete (original, version) operand.
func (t *Table) SetOperand(op core.Operand, f ShadowFact) { t.byOperand[op] = f }

// GetOperand returns the fact recorded for op, if any and still valid.
func (t *Table) GetOperand(op core.Operand) (ShadowFact, bool) {
	f, ok := t.byOperand[op]
	if !ok || !f.Valid() {
		return ShadowFact{}, false
	}
	return f, true
}

// CopyOperand propagates whatever fact src carries (if any) to dst — used
// when a move or phi aliases one concrete register to another.
func (t *Table) CopyOperand(dst, src core.Operand) {
	if f, ok := t.byOperand[src]; ok {
		t.byOperand[dst] = f
	}
}

// CopyHypToOperand propagates a hypothetical-register fact onto a concrete
// operand — used when an attribute read yields a value that was itself
// known through a shadow fact on its backing hypothetical register.
func (t *Table) CopyHypToOperand(dst core.Operand, h core.HypReg) {
	if f, ok := t.byHyp[h]; ok {
		t.byOperand[dst] = f
	}
}
