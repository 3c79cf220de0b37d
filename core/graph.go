package core

// Graph is the per-frame workspace the pass owns for its entire run:
// basic blocks, the tracked-allocation vector, the hypothetical register
// counter, and the external service interfaces consumed from the host
// compiler. It is built once per frame being specialized and discarded
// (along with its Arena) when the pass finishes, win or bail.
type Graph struct {
	Blocks []*BasicBlock
	Entry  *BasicBlock

	ObjectModel ObjectModel
	RegAlloc    RegisterAllocator
	Facts       FactStore
	DeoptUsages DeoptUsageSink
	Interner    SlotInterner

	Arena *Arena

	// Allocations is the dense, append-only vector of tracked allocations;
	// Allocation.Index is always its position here.
	Allocations []*Allocation

	nextHyp HypReg

	hypOwner map[HypReg]*Allocation
	hypIndex map[HypReg]int

	rpoComputed bool
	rpo         []*BasicBlock
}

// NewGraph constructs an empty graph wired to the given external services.
// om and regAlloc must be non-nil; facts, deoptUsages and interner may be
// nil if the host compiler does not need those integrations for a given
// test or tool invocation.
func NewGraph(om ObjectModel, regAlloc RegisterAllocator, facts FactStore, deoptUsages DeoptUsageSink, interner SlotInterner) *Graph {
	return &Graph{
		ObjectModel: om,
		RegAlloc:    regAlloc,
		Facts:       facts,
		DeoptUsages: deoptUsages,
		Interner:    interner,
		Arena:       NewArena(),
	}
}

// AddBlock appends a new, empty basic block to the graph and returns it.
func (g *Graph) AddBlock() *BasicBlock {
	b := &BasicBlock{ID: BlockID(len(g.Blocks)), rpo: -1}
	g.Blocks = append(g.Blocks, b)
	if g.Entry == nil {
		g.Entry = b
	}
	return b
}

// NewHypReg mints the next hypothetical register index. Hypothetical
// registers are allocated monotonically during analysis and only ever
// resolved to concrete registers if the owning allocation survives to the
// transform phase (spec.md §3).
func (g *Graph) NewHypReg() HypReg {
	h := g.nextHyp
	g.nextHyp++
	return h
}

// RegisterHyp records that hypothetical register h is attribute attrIdx of
// a, so that ConcreteForHyp can resolve it once a's attributes are given
// concrete registers at transform time.
func (g *Graph) RegisterHyp(h HypReg, a *Allocation, attrIdx int) {
	if g.hypOwner == nil {
		g.hypOwner = make(map[HypReg]*Allocation)
		g.hypIndex = make(map[HypReg]int)
	}
	g.hypOwner[h] = a
	g.hypIndex[h] = attrIdx
}

// ConcreteForHyp resolves a hypothetical register to the concrete operand
// its owning allocation was given at transform time. It returns false if h
// is unknown or its owner has not yet had concrete registers allocated.
func (g *Graph) ConcreteForHyp(h HypReg) (Operand, bool) {
	a, ok := g.hypOwner[h]
	if !ok || a.AttrConcrete == nil {
		return Operand{}, false
	}
	idx := g.hypIndex[h]
	if idx < 0 || idx >= len(a.AttrConcrete) {
		return Operand{}, false
	}
	return a.AttrConcrete[idx], true
}

// TrackAllocation appends a new Allocation to the graph's tracked vector,
// assigning it its dense Index, and returns it. Callers (package alloc)
// are expected to have already populated every other field.
func (g *Graph) TrackAllocation(a *Allocation) *Allocation {
	a.Index = len(g.Allocations)
	a.DeoptInfoIndex = -1
	g.Allocations = append(g.Allocations, a)
	return a
}

// Allocation looks up a tracked allocation by its dense index.
func (g *Graph) Allocation(idx int) *Allocation {
	if idx < 0 || idx >= len(g.Allocations) {
		return nil
	}
	return g.Allocations[idx]
}

// MarkIrreplaceable is the single place that sets Allocation.Irreplaceable,
// flooding the flag across the escape-dependency DAG (spec.md §3 invariant,
// §9 design note). See package alloc for the exported entry point; this
// method exists on Graph because the flood fill needs to resolve
// EscapeDeps indices back to Allocation pointers via g.Allocation.
func (g *Graph) MarkIrreplaceable(start *Allocation) {
	if start == nil || start.Irreplaceable {
		return
	}
	stack := []*Allocation{start}
	for len(stack) > 0 {
		n := len(stack) - 1
		a := stack[n]
		stack = stack[:n]
		if a.Irreplaceable {
			continue
		}
		a.Irreplaceable = true
		for _, depIdx := range a.EscapeDeps {
			if dep := g.Allocation(depIdx); dep != nil && !dep.Irreplaceable {
				stack = append(stack, dep)
			}
		}
	}
}

// Arena is the pass's workspace counter. Go's garbage collector makes a
// real bump allocator unnecessary for correctness; Arena only keeps the
// count that callers report through Note, and nothing in the pass itself
// calls Note. See DESIGN.md for why this is a counter, not a true arena.
type Arena struct {
	allocated int
}

// NewArena returns a fresh, empty Arena.
func NewArena() *Arena { return &Arena{} }

// Note records that n analysis-scoped objects were allocated; used by
// callers that want Arena to reflect real pressure in dumps/metrics.
func (a *Arena) Note(n int) { a.allocated += n }

// Allocated reports the running count passed to Note since construction.
func (a *Arena) Allocated() int { return a.allocated }

// Reset zeroes the arena's counters, as if a fresh pass were starting.
func (a *Arena) Reset() { a.allocated = 0 }
