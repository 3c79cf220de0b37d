package analyze

import (
	"github.com/vmkit/pea/alloc"
	"github.com/vmkit/pea/bigint"
	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/deopt"
	"github.com/vmkit/pea/facts"
	"github.com/vmkit/pea/materialize"
	"github.com/vmkit/pea/merge"
	"github.com/vmkit/pea/transform"
)

// Diagnostic is one notable event recorded during analysis short of a
// whole-pass bailout: an allocation turning Irreplaceable because of an
// inconsistent merge, a missing object-model answer, or an unrecognized
// attribute storage kind. Kept for
// observability, never consulted for control flow.
type Diagnostic struct {
	Reason string
	Alloc  *core.Allocation
	Block  core.BlockID
}

// Result is everything one analysis run produced.
type Result struct {
	Plan        *transform.Plan
	Deopt       *deopt.Bookkeeper
	Diagnostics []Diagnostic

	// BackEdge is set if the graph has a back edge (or self-loop): the
	// whole-pass bailout from spec.md §4, detected before any allocation
	// is ever tracked. Plan and Deopt are still non-nil but empty.
	BackEdge bool
}

// Analyzer drives one top-to-bottom analysis of a graph.
type Analyzer struct {
	Graph   *core.Graph
	Tracked *facts.TrackedRegisters
	Shadow  *facts.Table
	Cache   *bigint.Cache

	// queuedMaterializations remembers which MaterializationHandles
	// already have a KindMaterialize transform queued, since a single
	// handle can gain several targets (package materialize dedupes by
	// insertion point) but must be applied exactly once.
	queuedMaterializations map[*core.MaterializationHandle]bool
}

// NewAnalyzer returns an Analyzer ready to run over g. cache may be nil if
// the host integration has no shared small-integer cache to consult.
func NewAnalyzer(g *core.Graph, cache *bigint.Cache) *Analyzer {
	return &Analyzer{
		Graph:                  g,
		Tracked:                facts.NewTrackedRegisters(),
		Shadow:                 facts.NewTable(),
		Cache:                  cache,
		queuedMaterializations: make(map[*core.MaterializationHandle]bool),
	}
}

// Run performs the analysis and returns its queued rewrites and deopt
// bookkeeping. It never panics on ordinary input; design-violations (an
// instruction shaped in a way the dispatch table does not expect at all)
// still panic, per spec.md §7.
func (an *Analyzer) Run() *Result {
	res := &Result{Plan: transform.NewPlan(), Deopt: deopt.NewBookkeeper()}

	if !an.Graph.ComputeRPO() {
		res.BackEdge = true
		return res
	}

	for _, bb := range an.Graph.RPO() {
		an.mergeEntry(bb, res)
		an.walkBlock(bb, res)
	}

	return res
}

func (an *Analyzer) mergeEntry(bb *core.BasicBlock, res *Result) {
	if len(bb.Preds) == 0 {
		return
	}
	for _, a := range an.Graph.Allocations {
		if a.Block == bb {
			continue
		}
		wasIrreplaceable := a.Irreplaceable
		merged, reason := merge.Engine{}.Merge(an.Graph, bb, a)
		if bb.AllocStates == nil {
			bb.AllocStates = make(map[int]*core.BlockAllocState)
		}
		bb.AllocStates[a.Index] = merged
		if a.Irreplaceable && !wasIrreplaceable {
			if reason == "" {
				reason = "inconsistent-write"
			}
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Reason: reason, Alloc: a, Block: bb.ID})
		}
	}
}

func (an *Analyzer) walkBlock(bb *core.BasicBlock, res *Result) {
	for _, ins := range bb.Instrs {
		an.dispatch(bb, ins, res)
	}
}

// dispatch implements the per-opcode analysis table from spec.md §4.2. Deopt
// points are handled uniformly up front for every MayDeopt instruction,
// independent of which opcode it is: one KindAddDeoptPoint per allocation
// still replaceable. No KindAddDeoptUsage transforms are planned here.
// Everything below is opcode-specific.
func (an *Analyzer) dispatch(bb *core.BasicBlock, ins *core.Instruction, res *Result) {
	if ins.Op == core.OpGuardConc && an.guardEliminated(ins) {
		an.dispatchGuard(ins, res)
		return
	}

	if ins.MayDeopt {
		for _, a := range an.Graph.Allocations {
			if !a.Irreplaceable {
				res.Plan.Add(&transform.Transform{Kind: transform.KindAddDeoptPoint, Instr: ins, Alloc: a, DeoptIndex: ins.Deopt})
			}
		}
	}

	if _, ok := core.IsBindAttrOp(ins.Op); ok {
		an.dispatchBindAttr(bb, ins, res)
		return
	}
	if _, ok := core.IsGetAttrOp(ins.Op); ok {
		an.dispatchGetAttr(bb, ins, res)
		return
	}

	switch {
	case ins.Op == core.OpFastCreate:
		an.dispatchFastCreate(bb, ins, res)
		return

	case ins.Op == core.OpBigIntMaterialize:
		an.dispatchBigIntMaterialize(bb, ins, res)
		return

	case ins.Op == core.OpSet:
		an.dispatchSet(ins)
		return

	case ins.Op == core.OpGetAttrVivifyType:
		an.dispatchVivify(bb, ins, res, transform.KindVivifyType)
		return

	case ins.Op == core.OpGetAttrVivifyConcrete:
		an.dispatchVivify(bb, ins, res, transform.KindVivifyConcrete)
		return

	case ins.Op == core.OpDecontInt:
		an.dispatchDecontInt(ins, res)
		return

	case core.IsBigIntBinaryOp(ins.Op), core.IsBigIntUnaryOp(ins.Op), core.IsBigIntRelationalOp(ins.Op):
		an.dispatchBigIntArith(ins, res)
		return

	case ins.Op == core.OpGuardConc:
		an.dispatchGuard(ins, res)
		return

	case ins.Op == core.OpProfAllocated:
		an.dispatchProfAllocated(bb, ins, res)
		return

	case ins.Op == core.OpPhi:
		an.dispatchPhi(ins)
		return

	default:
		an.dispatchFallthrough(bb, ins, res)
	}
}

func (an *Analyzer) dispatchFastCreate(bb *core.BasicBlock, ins *core.Instruction, res *Result) {
	a, ok := alloc.TryTrack(an.Graph, an.Tracked, bb, ins, ins.StableType)
	if !ok {
		an.diagnoseUntrackable(bb, ins, res)
		return
	}
	if ins.Result.IsValid() {
		an.Shadow.SetOperand(ins.Result, facts.ShadowFact{KnownType: ins.StableType, KnownConcrete: true, DependsOn: a})
	}
	res.Plan.Add(&transform.Transform{Kind: transform.KindDeleteFastCreate, Instr: ins, Alloc: a})
}

// diagnoseUntrackable re-derives why a fastcreate of ins.StableType was
// refused by alloc.TryTrack, purely for observability: TryTrack itself
// collapses every refusal to a bool since none of them change what the pass
// does next (the allocation is simply never tracked), but a human reading a
// dump still wants to know whether the object model had no layout at all
// for this type or whether it had one naming a storage kind the pass
// doesn't scalar-replace.
func (an *Analyzer) diagnoseUntrackable(bb *core.BasicBlock, ins *core.Instruction, res *Result) {
	om := an.Graph.ObjectModel
	if om == nil || !om.IsOpaqueRecord(ins.StableType) {
		return
	}
	n, err := om.AttributeCount(ins.StableType)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Reason: "missing-type-info", Block: bb.ID})
		return
	}
	for i := 0; i < n; i++ {
		kind, kerr := om.AttributeKind(ins.StableType, i)
		if kerr != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Reason: "missing-type-info", Block: bb.ID})
			return
		}
		switch kind {
		case core.RegKindObj, core.RegKindInt, core.RegKindFloat, core.RegKindStr, core.RegKindBigInt:
		default:
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Reason: "unrecognized-storage-kind", Block: bb.ID})
			return
		}
	}
}

func (an *Analyzer) dispatchBigIntMaterialize(bb *core.BasicBlock, ins *core.Instruction, res *Result) {
	a, ok := alloc.TryTrack(an.Graph, an.Tracked, bb, ins, ins.StableType)
	if !ok || !a.BigInt {
		return
	}
	res.Plan.Add(&transform.Transform{Kind: transform.KindUnmaterializeBigInt, Instr: ins, Alloc: a})
}

func (an *Analyzer) dispatchSet(ins *core.Instruction) {
	an.Tracked.Untrack(ins.Result)
	if a, ok := an.Tracked.Lookup(ins.Operands[0]); ok && !a.Irreplaceable {
		an.Tracked.Track(ins.Result, a)
	}
	an.Shadow.CopyOperand(ins.Result, ins.Operands[0])
}

func (an *Analyzer) dispatchBindAttr(bb *core.BasicBlock, ins *core.Instruction, res *Result) {
	obj := ins.Operands[0]
	value := ins.Operands[len(ins.Operands)-1]

	a, ok := an.Tracked.Lookup(obj)
	if !ok {
		// The container itself is an ordinary, already-real object. A
		// reference-kind bind still stores whatever value lives in the
		// source register into it, so a still-replaceable source must be
		// forced to a real object before its fastcreate can be deleted.
		if kind, isBind := core.IsBindAttrOp(ins.Op); isBind && kind == core.RegKindObj {
			if held, ok := an.Tracked.Lookup(value); ok {
				materialize.RealObjectRequired(an.Graph, held)
			}
		}
		return
	}
	if a.Irreplaceable {
		return
	}
	if ins.AttrIndex < 0 || ins.AttrIndex >= a.AttrCount() {
		an.Graph.MarkIrreplaceable(a)
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Reason: "unrecognized-storage-kind", Alloc: a, Block: bb.ID})
		return
	}

	bb.StateFor(a).Used[ins.AttrIndex] = true
	res.Plan.Add(&transform.Transform{Kind: transform.KindBindAttrToSet, Instr: ins, Alloc: a, AttrIndex: ins.AttrIndex})

	if a.AttrKinds[ins.AttrIndex] == core.RegKindObj {
		if held, ok := an.Tracked.Lookup(value); ok {
			a.AddEscapeDep(held.Index)
		}
	}
}

func (an *Analyzer) dispatchGetAttr(bb *core.BasicBlock, ins *core.Instruction, res *Result) {
	obj := ins.Operands[0]
	a, ok := an.Tracked.Lookup(obj)
	if !ok || a.Irreplaceable {
		return
	}
	a.Read = true
	res.Plan.Add(&transform.Transform{Kind: transform.KindGetAttrToSet, Instr: ins, Alloc: a, AttrIndex: ins.AttrIndex})
}

// dispatchVivify implements spec.md §4.2's auto-vivifying-read row: if the
// attribute was already written on every path reaching here, vivification
// can never trigger and the read behaves exactly like a plain get; only a
// genuinely unwritten attribute needs an actual vivify transform, and that
// transform marks the attribute written so a later read in the same or a
// successor block takes the plain-get path instead.
func (an *Analyzer) dispatchVivify(bb *core.BasicBlock, ins *core.Instruction, res *Result, kind transform.Kind) {
	obj := ins.Operands[0]
	a, ok := an.Tracked.Lookup(obj)
	if !ok || a.Irreplaceable {
		return
	}
	a.Read = true

	if bb.StateFor(a).Used[ins.AttrIndex] {
		res.Plan.Add(&transform.Transform{Kind: transform.KindGetAttrToSet, Instr: ins, Alloc: a, AttrIndex: ins.AttrIndex})
		return
	}

	bb.StateFor(a).Used[ins.AttrIndex] = true
	res.Plan.Add(&transform.Transform{Kind: kind, Instr: ins, Alloc: a, AttrIndex: ins.AttrIndex})
}

func (an *Analyzer) dispatchDecontInt(ins *core.Instruction, res *Result) {
	obj := ins.Operands[0]
	a, ok := an.Tracked.Lookup(obj)
	if !ok || a.Irreplaceable || !a.BigInt {
		return
	}
	res.Plan.Add(&transform.Transform{Kind: transform.KindUnboxBigInt, Instr: ins, Alloc: a, AttrIndex: a.BigIntAttrIndex})
}

// resolveBigIntSource reports whether op traces back to a still-tracked
// allocation's big-integer attribute, for decomposition's concrete-vs-fallback
// choice in package transform.
func (an *Analyzer) resolveBigIntSource(op core.Operand) (core.HypReg, *core.Allocation, int) {
	a, ok := an.Tracked.Lookup(op)
	if !ok || !a.BigInt {
		return 0, nil, 0
	}
	idx := a.BigIntAttrIndex
	return a.AttrRegs[idx], a, idx
}

func (an *Analyzer) dispatchBigIntArith(ins *core.Instruction, res *Result) {
	unboxed, ok := core.UnboxedBigIntForm(ins.Op)
	if !ok {
		return
	}

	leftHyp, leftAlloc, leftIdx := an.resolveBigIntSource(ins.Operands[0])

	t := &transform.Transform{
		Instr:         ins,
		BigIntOp:      unboxed,
		LeftOperand:   ins.Operands[0],
		LeftHyp:       leftHyp,
		LeftFromAlloc: leftAlloc,
		LeftAttrIndex: leftIdx,
	}

	relational := core.IsBigIntRelationalOp(ins.Op)
	var rightAlloc *core.Allocation
	if core.IsBigIntBinaryOp(ins.Op) || relational {
		rightHyp, ra, rightIdx := an.resolveBigIntSource(ins.Operands[1])
		rightAlloc = ra
		t.RightOperand = ins.Operands[1]
		t.RightHyp = rightHyp
		t.RightFromAlloc = ra
		t.RightAttrIndex = rightIdx
		if relational {
			t.Kind = transform.KindDecomposeBigIntRelational
		} else {
			t.Kind = transform.KindDecomposeBigIntBinary
		}
	} else {
		t.Kind = transform.KindDecomposeBigIntUnary
	}

	// Relational ops produce a plain int, not another big-integer value, so
	// there is nothing for a later instruction to chain off of. Binary and
	// unary producing ops try_track a result allocation (spec.md §4.4) so a
	// second arithmetic op consuming this one's result — or any other
	// consumer — resolves it through the allocation/hyp-register mechanism
	// instead of the original boxed operand, which this rewrite discards.
	if !relational && ins.Result.IsValid() {
		t.ResultAlloc = an.trackBigIntArithResult(ins, leftAlloc, rightAlloc)
	}

	res.Plan.Add(t)
}

// trackBigIntArithResult try_tracks a synthetic, single-attribute
// allocation standing in for a decomposed arithmetic op's boxed result,
// reusing the boxed-result type of whichever input traced back to a
// tracked big-integer allocation (arithmetic on a big integer reboxes to
// the same box type). If neither input did, there is no type to reconstruct
// a box from, so the result is left untracked and later consumers fall back
// to treating it as an ordinary opaque value.
func (an *Analyzer) trackBigIntArithResult(ins *core.Instruction, inputs ...*core.Allocation) *core.Allocation {
	var stableType uint32
	var haveType bool
	for _, in := range inputs {
		if in != nil {
			stableType = in.StableType
			haveType = true
			break
		}
	}
	if !haveType {
		return nil
	}

	hyp := an.Graph.NewHypReg()
	result := an.Graph.TrackAllocation(&core.Allocation{
		Instr:           ins,
		Block:           ins.Block,
		StableType:      stableType,
		AttrRegs:        []core.HypReg{hyp},
		AttrKinds:       []core.RegKind{core.RegKindBigInt},
		BigInt:          true,
		BigIntAttrIndex: 0,
	})
	an.Graph.RegisterHyp(hyp, result, 0)
	for _, in := range inputs {
		if in != nil {
			result.AddEscapeDep(in.Index)
		}
	}

	an.Tracked.Track(ins.Result, result)
	ins.Block.StateFor(result).Used[0] = true
	return result
}

// guardEliminated reports whether ins, a guardconc, checks a register whose
// type is already known concrete and matching — the guard can never fail
// and its deopt bookkeeping is therefore never needed at all.
func (an *Analyzer) guardEliminated(ins *core.Instruction) bool {
	fact, ok := an.Shadow.GetOperand(ins.Operands[0])
	return ok && fact.KnownConcrete && fact.KnownType == ins.StableType
}

func (an *Analyzer) dispatchGuard(ins *core.Instruction, res *Result) {
	if !an.guardEliminated(ins) {
		return
	}
	res.Plan.Add(&transform.Transform{Kind: transform.KindGuardToSet, Instr: ins})
}

func (an *Analyzer) dispatchProfAllocated(bb *core.BasicBlock, ins *core.Instruction, res *Result) {
	obj := ins.Result
	a, ok := an.Tracked.Lookup(obj)
	if !ok || a.Irreplaceable {
		return
	}
	res.Plan.Add(&transform.Transform{Kind: transform.KindProfAllocated, Instr: ins})
}

// dispatchPhi handles value confluence: a phi with exactly one live input is
// a pass-through (spec.md §4.2) and tracks the same way OpSet does; a phi
// with two or more inputs merges values that may have arrived along
// different control-flow paths, so every input is forced to a real object
// unconditionally — there is no "same allocation on every path" special
// case, since the phi itself is never rewritten and would otherwise be left
// reading a register nothing defines anymore.
func (an *Analyzer) dispatchPhi(ins *core.Instruction) {
	if len(ins.Operands) == 0 {
		return
	}
	if len(ins.Operands) == 1 {
		an.dispatchSet(ins)
		return
	}

	an.Tracked.Untrack(ins.Result)
	for _, op := range ins.Operands {
		if a, ok := an.Tracked.Lookup(op); ok {
			materialize.RealObjectRequired(an.Graph, a)
		}
	}
}

// dispatchFallthrough is reached for every opcode not otherwise handled:
// per spec.md §4.2, any instruction consuming a tracked register in a way
// this pass does not specifically understand needs a real object, so every
// tracked operand it touches is queued for materialization when
// materialize.WorthMaterializing reports true, and marked Irreplaceable
// through materialize.RealObjectRequired otherwise.
func (an *Analyzer) dispatchFallthrough(bb *core.BasicBlock, ins *core.Instruction, res *Result) {
	for _, op := range ins.Operands {
		a, ok := an.Tracked.Lookup(op)
		if !ok || a.Irreplaceable {
			continue
		}
		if materialize.WorthMaterializing(a, a.Block, bb) {
			handle := materialize.HandleMaterializedUsages(bb, a, ins, op)
			if !an.queuedMaterializations[handle] {
				an.queuedMaterializations[handle] = true
				res.Plan.Add(&transform.Transform{Kind: transform.KindMaterialize, Handle: handle})
			}
		} else {
			materialize.RealObjectRequired(an.Graph, a)
		}
	}
}
