package core

// Allocation is a candidate heap allocation the pass may scalar-replace.
// Its Index is its identity everywhere in the pass: escape dependencies,
// per-block state maps and deopt materialize-info are all keyed by it
// rather than by pointer, so that the escape-dependency DAG (package
// alloc) can be modeled as plain integer edges (spec.md §9).
type Allocation struct {
	Index int

	Instr *Instruction
	Block *BasicBlock

	StableType uint32

	// AttrRegs holds one hypothetical register per attribute, assigned
	// monotonically when the allocation is tracked. AttrKinds holds each
	// attribute's storage kind, parallel to AttrRegs. AttrConcrete is
	// filled in lazily, only for allocations that actually survive to the
	// transform phase, by the delete-fastcreate (or unmaterialize-bigint)
	// transform.
	AttrRegs     []HypReg
	AttrKinds    []RegKind
	AttrConcrete []Operand

	// BigInt is set if one attribute is a big-integer box.
	BigInt bool
	// BigIntAttrIndex is the attribute index of the big-integer payload,
	// meaningful only if BigInt is true.
	BigIntAttrIndex int

	// Read records that some consumer actually needed the value —
	// governs "worth materializing?" in package materialize.
	Read bool

	// Irreplaceable is sticky: once set, it never clears (spec.md §3
	// invariant), and every transformation planned on behalf of this
	// allocation becomes a no-op when applied.
	Irreplaceable bool

	// EscapeDeps lists the indices of other allocations that are forced
	// Irreplaceable whenever this one is (e.g. because this object holds a
	// reference to them, or a decomposed big-integer op reused their
	// backing value).
	EscapeDeps []int

	// DeoptInfoIndex is the lazily-allocated index into the graph's
	// materialize-info table (package deopt), or -1 if none has been
	// requested yet.
	DeoptInfoIndex int
}

// AttrCount reports how many attributes this allocation tracks.
func (a *Allocation) AttrCount() int { return len(a.AttrRegs) }

// AddEscapeDep records that a must remain replaceable for dep to remain
// replaceable, deduplicating repeated edges.
func (a *Allocation) AddEscapeDep(depIndex int) {
	for _, d := range a.EscapeDeps {
		if d == depIndex {
			return
		}
	}
	a.EscapeDeps = append(a.EscapeDeps, depIndex)
}

// MaterializationHandle is a planned reconstruction of a real heap object
// for one allocation, bound to an insertion point. Its Targets/HypTargets
// lists are the "materialization target" linked structure from spec.md §3:
// small, append-only, deduplicated on insert. An empty target pair means
// "no one needs it" and the transformer emits nothing for it (a logged
// no-op), per spec.md §4.6.
type MaterializationHandle struct {
	Alloc        *Allocation
	InsertBefore *Instruction

	Targets    []Operand
	HypTargets []HypReg
}

// AddTarget appends a concrete consumer register, deduplicated.
func (m *MaterializationHandle) AddTarget(op Operand) {
	for _, t := range m.Targets {
		if t == op {
			return
		}
	}
	m.Targets = append(m.Targets, op)
}

// AddHypTarget appends a hypothetical consumer register, deduplicated.
func (m *MaterializationHandle) AddHypTarget(h HypReg) {
	for _, t := range m.HypTargets {
		if t == h {
			return
		}
	}
	m.HypTargets = append(m.HypTargets, h)
}

// Empty reports whether nothing consumes this materialization, i.e. it can
// be skipped entirely at apply time.
func (m *MaterializationHandle) Empty() bool {
	return len(m.Targets) == 0 && len(m.HypTargets) == 0
}

// BlockAllocState is the per-allocation state tracked at one basic block:
// whether the allocation was definitely visible by the time this block was
// reached, which attributes have been written on every path reaching here,
// and which materializations are active here.
type BlockAllocState struct {
	Seen             bool
	Used             []bool
	Materializations []*MaterializationHandle
}

// NewBlockAllocState allocates per-block state for an allocation with
// attrCount attributes, all attributes initially unwritten.
func NewBlockAllocState(attrCount int) *BlockAllocState {
	return &BlockAllocState{Used: make([]bool, attrCount)}
}

// Clone makes an independent copy, since per-block state must not be
// shared between blocks even when propagated unchanged across a single
// predecessor.
func (s *BlockAllocState) Clone() *BlockAllocState {
	if s == nil {
		return nil
	}
	cp := &BlockAllocState{
		Seen: s.Seen,
		Used: append([]bool(nil), s.Used...),
	}
	cp.Materializations = append([]*MaterializationHandle(nil), s.Materializations...)
	return cp
}

// HasMaterialization reports whether m is already recorded as active here.
func (s *BlockAllocState) HasMaterialization(m *MaterializationHandle) bool {
	for _, existing := range s.Materializations {
		if existing == m {
			return true
		}
	}
	return false
}

// AddMaterialization records m as active at this block, deduplicated by
// pointer identity.
func (s *BlockAllocState) AddMaterialization(m *MaterializationHandle) {
	if !s.HasMaterialization(m) {
		s.Materializations = append(s.Materializations, m)
	}
}
