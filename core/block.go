package core

// BlockID identifies a basic block within its graph.
type BlockID uint32

// BasicBlock is one node of the control-flow graph: a straight-line
// sequence of Instructions with explicit predecessor and successor edges.
// Preds/Succs order is significant — it is the order the merge engine
// (package merge) folds predecessor state in, and the order phi operands
// are matched against.
type BasicBlock struct {
	ID     BlockID
	Instrs []*Instruction
	Preds  []*BasicBlock
	Succs  []*BasicBlock

	// rpo is this block's position in the graph's cached reverse-postorder
	// sequence. It is valid only after Graph.ComputeRPO succeeds; -1
	// otherwise. The analyzer's back-edge test is exactly "does a
	// predecessor have rpo >= this block's rpo".
	rpo int

	// AllocStates is this block's per-allocation state, keyed by
	// Allocation.Index. It is populated by the merge engine at block entry
	// and mutated by the analyzer as it walks the block's instructions.
	AllocStates map[int]*BlockAllocState
}

// StateFor returns the per-allocation state for alloc at this block,
// creating an empty one (not seen, nothing written) if absent.
func (b *BasicBlock) StateFor(a *Allocation) *BlockAllocState {
	if b.AllocStates == nil {
		b.AllocStates = make(map[int]*BlockAllocState)
	}
	st, ok := b.AllocStates[a.Index]
	if !ok {
		st = NewBlockAllocState(a.AttrCount())
		b.AllocStates[a.Index] = st
	}
	return st
}

// RPOIndex returns the block's reverse-postorder position, or -1 if RPO has
// not been computed (or computation aborted on a back-edge).
func (b *BasicBlock) RPOIndex() int { return b.rpo }

// AddInstr appends ins to the block and sets ins.Block.
func (b *BasicBlock) AddInstr(ins *Instruction) {
	ins.Block = b
	b.Instrs = append(b.Instrs, ins)
}

// AddEdge links b -> succ and succ's predecessor list back to b.
func AddEdge(b, succ *BasicBlock) {
	b.Succs = append(b.Succs, succ)
	succ.Preds = append(succ.Preds, b)
}

// InsertBefore splices ins into the block immediately before anchor. It
// panics if anchor is not found in b.Instrs — a design-violation per
// spec.md §7, since it means the planner computed an insertion point in
// the wrong block.
func (b *BasicBlock) InsertBefore(anchor, ins *Instruction) {
	for i, existing := range b.Instrs {
		if existing == anchor {
			b.Instrs = append(b.Instrs, nil)
			copy(b.Instrs[i+1:], b.Instrs[i:])
			b.Instrs[i] = ins
			ins.Block = b
			return
		}
	}
	panic("core: InsertBefore: anchor not found in block")
}

// InsertAfter splices ins into the block immediately after anchor. It
// panics if anchor is not found in b.Instrs, for the same reason
// InsertBefore does.
func (b *BasicBlock) InsertAfter(anchor, ins *Instruction) {
	for i, existing := range b.Instrs {
		if existing == anchor {
			b.Instrs = append(b.Instrs, nil)
			copy(b.Instrs[i+2:], b.Instrs[i+1:])
			b.Instrs[i+1] = ins
			ins.Block = b
			return
		}
	}
	panic("core: InsertAfter: anchor not found in block")
}

// MarkDeleted flags ins as removed without compacting the slice; Compact
// drops every deleted instruction afterwards. Deferring compaction lets the
// transformer delete while iterating without invalidating indices.
func (b *BasicBlock) MarkDeleted(ins *Instruction) { ins.deleted = true }

// Compact drops every instruction marked deleted from b.Instrs.
func (b *BasicBlock) Compact() {
	kept := b.Instrs[:0]
	for _, ins := range b.Instrs {
		if !ins.deleted {
			kept = append(kept, ins)
		}
	}
	b.Instrs = kept
}
