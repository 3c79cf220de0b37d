package transform

import "github.com/vmkit/pea/core"

// DeoptRecorder is the subset of package deopt's bookkeeping that Apply
// needs: recording that a deopt point requires materialize-info for an
// allocation, and that a concrete register must be kept live at a deopt
// point. Apply depends on this narrow interface rather than importing
// package deopt directly so that deopt can in turn depend on transform's
// Transform/Plan types without an import cycle.
type DeoptRecorder interface {
	RecordPoint(idx core.DeoptIndex, alloc *core.Allocation)
	RecordUsage(idx core.DeoptIndex, op core.Operand)
}

// Transformer applies a finished Plan to a Graph.
type Transformer struct{}

// Apply performs every Transform in plan, in two ordered sweeps: first every
// KindDeleteFastCreate/KindUnmaterializeBigInt (which mint the concrete
// registers later transforms resolve hypothetical registers to), then every
// remaining transform, block by block in the graph's own block order, then
// compacts each touched block. An allocation that turned Irreplaceable
// after its transforms were planned is detected here and its transforms
// become no-ops, per spec.md §3's sticky-irreplaceable invariant.
func (Transformer) Apply(g *core.Graph, plan *Plan, recorder DeoptRecorder) {
	for _, b := range g.Blocks {
		for _, t := range plan.ByBlock[b.ID] {
			switch t.Kind {
			case KindDeleteFastCreate, KindUnmaterializeBigInt:
				applyAllocateConcrete(g, t)
			}
		}
	}

	touched := make(map[core.BlockID]bool)
	for _, b := range g.Blocks {
		ts := plan.ByBlock[b.ID]
		if len(ts) == 0 {
			continue
		}
		touched[b.ID] = true
		for _, t := range ts {
			applyOne(g, b, t, recorder)
		}
	}
	for id := range touched {
		g.Blocks[id].Compact()
	}
}

func applyAllocateConcrete(g *core.Graph, t *Transform) {
	a := t.Alloc
	if a.Irreplaceable {
		return
	}
	if a.AttrConcrete != nil {
		return
	}
	concrete := make([]core.Operand, a.AttrCount())
	for i, kind := range a.AttrKinds {
		concrete[i] = g.RegAlloc.NewRegister(kind)
	}
	a.AttrConcrete = concrete
}

func applyOne(g *core.Graph, b *core.BasicBlock, t *Transform, recorder DeoptRecorder) {
	switch t.Kind {
	case KindDeleteFastCreate, KindUnmaterializeBigInt:
		if t.Alloc.Irreplaceable {
			return
		}
		b.MarkDeleted(t.Instr)

	case KindGetAttrToSet:
		if t.Alloc.Irreplaceable {
			return
		}
		src, ok := g.ConcreteForHyp(t.Alloc.AttrRegs[t.AttrIndex])
		if !ok {
			return
		}
		t.Instr.Op = core.OpSet
		t.Instr.Operands = []core.Operand{src}

	case KindBindAttrToSet:
		if t.Alloc.Irreplaceable {
			return
		}
		dst, ok := g.ConcreteForHyp(t.Alloc.AttrRegs[t.AttrIndex])
		if !ok {
			return
		}
		value := t.Instr.Operands[len(t.Instr.Operands)-1]
		t.Instr.Op = core.OpSet
		t.Instr.Operands = []core.Operand{value}
		t.Instr.Result = dst

	case KindDeleteSet:
		b.MarkDeleted(t.Instr)

	case KindGuardToSet:
		t.Instr.Op = core.OpSet
		t.Instr.MayDeopt = false
		t.Instr.Deopt = core.DeoptIndex{}

	case KindAddDeoptPoint:
		if recorder != nil {
			recorder.RecordPoint(t.DeoptIndex, t.Alloc)
		}

	case KindAddDeoptUsage:
		if recorder != nil {
			recorder.RecordUsage(t.DeoptIndex, t.DeoptOp)
		}

	case KindProfAllocated:
		t.Instr.Op = core.OpProfReplaced

	case KindDecomposeBigIntBinary, KindDecomposeBigIntUnary:
		applyDecomposeArith(g, b, t)

	case KindDecomposeBigIntRelational:
		applyDecomposeRelational(g, b, t)

	case KindUnboxBigInt:
		if t.Alloc.Irreplaceable {
			return
		}
		src, ok := g.ConcreteForHyp(t.Alloc.AttrRegs[t.AttrIndex])
		if !ok {
			return
		}
		t.Instr.Op = core.OpUnboxBigInt
		t.Instr.Operands = []core.Operand{src}

	case KindMaterialize:
		applyMaterialize(g, t)

	case KindVivifyType, KindVivifyConcrete:
		applyVivify(g, b, t)
	}
}

// resolveBigIntOperand returns the unboxed big-integer register to feed a
// decomposed arithmetic op: the concrete register of a still-replaceable
// allocation's attribute, or a freshly inserted OpGetBigInt load from the
// original boxed operand otherwise.
func resolveBigIntOperand(g *core.Graph, b *core.BasicBlock, insertBefore *core.Instruction, hyp core.HypReg, fromAlloc *core.Allocation, attrIdx int, boxed core.Operand) core.Operand {
	if fromAlloc != nil && !fromAlloc.Irreplaceable {
		if concrete, ok := g.ConcreteForHyp(hyp); ok {
			return concrete
		}
	}
	result := g.RegAlloc.NewRegister(core.RegKindBigInt)
	load := &core.Instruction{
		Op:        core.OpGetBigInt,
		Operands:  []core.Operand{boxed},
		Result:    result,
		AttrIndex: attrIdx,
	}
	b.InsertBefore(insertBefore, load)
	return result
}

// applyDecomposeArith rewrites a boxed binary/unary big-integer op into its
// unboxed form. If the result's try_tracked allocation already turned
// Irreplaceable by the time Apply runs (something needed it as a real
// boxed value this pass can't satisfy from a single rewrite), decomposition
// is skipped outright and the original boxed op is left untouched — the
// same "planned transform becomes a no-op once its allocation escapes"
// invariant every other Kind in this switch already honors.
func applyDecomposeArith(g *core.Graph, b *core.BasicBlock, t *Transform) {
	if t.ResultAlloc != nil && t.ResultAlloc.Irreplaceable {
		return
	}

	left := resolveBigIntOperand(g, b, t.Instr, t.LeftHyp, t.LeftFromAlloc, t.LeftAttrIndex, t.LeftOperand)
	operands := []core.Operand{left}
	if t.Kind == KindDecomposeBigIntBinary {
		right := resolveBigIntOperand(g, b, t.Instr, t.RightHyp, t.RightFromAlloc, t.RightAttrIndex, t.RightOperand)
		operands = append(operands, right)
	}
	t.Instr.Op = t.BigIntOp
	t.Instr.Operands = operands

	// A new SSA version of the original result register, not an unrelated
	// one, per the set-with-new-version contract (spec.md §6).
	result := g.RegAlloc.NewVersion(t.Instr.Result.Reg, core.RegKindBigInt)
	t.Instr.Result = result

	if t.ResultAlloc != nil {
		t.ResultAlloc.AttrConcrete = []core.Operand{result}
	}
}

func applyDecomposeRelational(g *core.Graph, b *core.BasicBlock, t *Transform) {
	left := resolveBigIntOperand(g, b, t.Instr, t.LeftHyp, t.LeftFromAlloc, t.LeftAttrIndex, t.LeftOperand)
	right := resolveBigIntOperand(g, b, t.Instr, t.RightHyp, t.RightFromAlloc, t.RightAttrIndex, t.RightOperand)
	t.Instr.Op = t.BigIntOp
	t.Instr.Operands = []core.Operand{left, right}
	t.Instr.Result = g.RegAlloc.NewVersion(t.Instr.Result.Reg, core.RegKindInt)
}

// applyVivify rewrites a first-touch auto-vivifying read: the attribute was
// never written on any path reaching it, so the vivify op itself is the
// thing that must produce the attribute's concrete value, not just consume
// it. The original instruction is repointed to write directly into the
// attribute's concrete register (its Op is left as the real vivify op,
// since deciding the default/prototype value is still genuine runtime work
// this pass cannot fold away); a trailing OpSet re-aliases the original
// result register for whatever already consumes it.
func applyVivify(g *core.Graph, b *core.BasicBlock, t *Transform) {
	if t.Alloc.Irreplaceable {
		return
	}
	concrete, ok := g.ConcreteForHyp(t.Alloc.AttrRegs[t.AttrIndex])
	if !ok {
		return
	}
	if t.Kind == KindVivifyType {
		t.Instr.Op = core.OpGetAttrVivifyType
	} else {
		t.Instr.Op = core.OpGetAttrVivifyConcrete
	}

	original := t.Instr.Result
	t.Instr.Result = concrete
	alias := &core.Instruction{Op: core.OpSet, Operands: []core.Operand{concrete}, Result: original}
	b.InsertAfter(t.Instr, alias)
}

// applyMaterialize emits the fastcreate+bindattr*+set sequence that
// reconstructs a real object for h.Alloc, immediately before h.InsertBefore,
// then feeds the reconstructed object to every queued target. An empty
// handle (nothing ever consumed it) is a documented no-op: spec.md §4.6
// treats "nobody needed the materialization after all" as a planner
// over-approximation, not an error.
func applyMaterialize(g *core.Graph, t *Transform) {
	h := t.Handle
	if h.Empty() {
		return
	}
	a := h.Alloc
	block := h.InsertBefore.Block

	obj := g.RegAlloc.NewRegister(core.RegKindObj)
	create := &core.Instruction{
		Op:         core.OpFastCreate,
		Result:     obj,
		StableType: a.StableType,
	}
	block.InsertBefore(h.InsertBefore, create)

	for i, kind := range a.AttrKinds {
		concrete := a.AttrConcrete[i]
		bind := &core.Instruction{
			Op:        bindOpForKind(kind),
			Operands:  []core.Operand{obj, concrete},
			AttrIndex: i,
		}
		block.InsertBefore(h.InsertBefore, bind)
	}

	for _, target := range h.Targets {
		set := &core.Instruction{
			Op:       core.OpSet,
			Operands: []core.Operand{obj},
			Result:   target,
		}
		block.InsertBefore(h.InsertBefore, set)
	}
}

func bindOpForKind(k core.RegKind) core.Opcode {
	switch k {
	case core.RegKindObj:
		return core.OpBindAttrRef
	case core.RegKindInt:
		return core.OpBindAttrInt
	case core.RegKindFloat:
		return core.OpBindAttrFloat
	case core.RegKindStr:
		return core.OpBindAttrStr
	case core.RegKindBigInt:
		return core.OpBindAttrBigInt
	default:
		panic("transform: materialize: unrecognized attribute storage kind")
	}
}
