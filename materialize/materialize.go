package materialize

import "github.com/vmkit/pea/core"

// WorthMaterializing reports whether a is worth reconstructing at a given
// consumer at all, rather than simply marking a Irreplaceable and leaving
// its original allocating instruction untouched. Three conditions make
// reconstruction worthwhile: the allocation's value was actually read back
// somewhere (Read), it carries a big-integer payload (which always needs a
// real boxed value the moment it leaves the unboxed domain), or the
// consumer sits in the same straight-line branch as the allocating
// instruction, with no intervening fork the allocation might not have
// reached.
func WorthMaterializing(a *core.Allocation, allocatorBlock, consumerBlock *core.BasicBlock) bool {
	if a.Read || a.BigInt {
		return true
	}
	return InSameBranch(allocatorBlock, consumerBlock)
}

// InSameBranch walks forward from "from" along single-successor edges,
// reporting whether "to" is reached before any branch point. It is
// deliberately approximate — a real dominance computation would answer the
// same question exactly, but this pass only needs a cheap, conservative
// signal for "worth it", not a proof; any fork before reaching "to" answers
// false, even if every fork's arm actually leads there.
func InSameBranch(from, to *core.BasicBlock) bool {
	if from == nil || to == nil {
		return false
	}
	if from.ID == to.ID {
		return true
	}
	visited := map[core.BlockID]bool{from.ID: true}
	cur := from
	for {
		if len(cur.Succs) != 1 {
			return false
		}
		next := cur.Succs[0]
		if next.ID == to.ID {
			return true
		}
		if visited[next.ID] {
			return false
		}
		visited[next.ID] = true
		cur = next
	}
}

// InsertionPoint returns the instruction a materialization must be inserted
// before, given a desired anchor. Per spec.md §4.5, a materialization must
// never land inside a call-argument sequence, so this walks backward past
// every contiguous arg_*/argconst_* instruction (including the anchor
// itself, if it is one) until it finds the start of that sequence.
func InsertionPoint(b *core.BasicBlock, anchor *core.Instruction) *core.Instruction {
	idx := indexOf(b, anchor)
	if idx < 0 {
		return anchor
	}
	for idx > 0 && core.IsArgOpcode(b.Instrs[idx-1].Op) {
		idx--
	}
	return b.Instrs[idx]
}

func indexOf(b *core.BasicBlock, ins *core.Instruction) int {
	for i, existing := range b.Instrs {
		if existing == ins {
			return i
		}
	}
	return -1
}

// RealObjectRequired marks a (and, transitively, every allocation in its
// EscapeDeps) Irreplaceable: the use the analyzer just
// reached needs a's identity or backing storage in a way no materialization
// at a single point could satisfy — an unknown call receiving a itself, for
// instance, rather than merely one of its attribute values.
func RealObjectRequired(g *core.Graph, a *core.Allocation) {
	g.MarkIrreplaceable(a)
}

// HandleMaterializedUsages records that target needs a real object for a at
// anchor, joining an already-queued materialization at the same insertion
// point if one is active in bb, or creating a fresh one (at the
// arg-sequence-respecting insertion point) otherwise.
func HandleMaterializedUsages(bb *core.BasicBlock, a *core.Allocation, anchor *core.Instruction, target core.Operand) *core.MaterializationHandle {
	insertBefore := InsertionPoint(bb, anchor)

	state := bb.StateFor(a)
	for _, m := range state.Materializations {
		if m.InsertBefore == insertBefore {
			m.AddTarget(target)
			return m
		}
	}

	m := &core.MaterializationHandle{Alloc: a, InsertBefore: insertBefore}
	m.AddTarget(target)
	state.AddMaterialization(m)
	return m
}
