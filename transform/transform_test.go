package transform_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmkit/pea/alloc"
	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/facts"
	"github.com/vmkit/pea/transform"
)

func pointModel() *core.MemObjectModel {
	return core.NewMemObjectModel().RegisterType(1, &core.MemStableType{
		Opaque:          true,
		BigIntAttrIndex: -1,
		Attrs: []core.AttrLayout{
			{Kind: core.RegKindInt, Offset: 0},
			{Kind: core.RegKindInt, Offset: 8},
		},
	})
}

func newGraph() (*core.Graph, *core.MemRegisterAllocator) {
	regs := core.NewMemRegisterAllocator(100)
	g := core.NewGraph(pointModel(), regs, core.NewMemFactStore(), core.NewMemDeoptUsageSink(), core.NewMemSlotInterner())
	return g, regs
}

func TestApply_DeleteFastCreateAndGetAttrToSet(t *testing.T) {
	g, regs := newGraph()
	bb := g.AddBlock()
	tracked := facts.NewTrackedRegisters()

	objReg := regs.NewRegister(core.RegKindObj)
	create := &core.Instruction{Op: core.OpFastCreate, Result: objReg, StableType: 1}
	bb.AddInstr(create)

	a, ok := alloc.TryTrack(g, tracked, bb, create, 1)
	require.True(t, ok)

	xReg := regs.NewRegister(core.RegKindInt)
	bind := &core.Instruction{Op: core.OpBindAttrInt, Operands: []core.Operand{objReg, xReg}, AttrIndex: 0}
	bb.AddInstr(bind)

	destReg := regs.NewRegister(core.RegKindInt)
	get := &core.Instruction{Op: core.OpGetAttrInt, Operands: []core.Operand{objReg}, Result: destReg, AttrIndex: 0}
	bb.AddInstr(get)

	plan := transform.NewPlan()
	plan.Add(&transform.Transform{Kind: transform.KindDeleteFastCreate, Instr: create, Alloc: a})
	plan.Add(&transform.Transform{Kind: transform.KindBindAttrToSet, Instr: bind, Alloc: a, AttrIndex: 0})
	plan.Add(&transform.Transform{Kind: transform.KindGetAttrToSet, Instr: get, Alloc: a, AttrIndex: 0})

	transform.Transformer{}.Apply(g, plan, nil)

	require.NotNil(t, a.AttrConcrete)
	require.Len(t, bb.Instrs, 2)
	require.Equal(t, core.OpSet, bb.Instrs[0].Op)
	require.Equal(t, a.AttrConcrete[0], bb.Instrs[0].Result)
	require.Equal(t, core.OpSet, bb.Instrs[1].Op)
	require.Equal(t, []core.Operand{a.AttrConcrete[0]}, bb.Instrs[1].Operands)
}

func TestApply_IrreplaceableAllocationSkipsTransforms(t *testing.T) {
	g, regs := newGraph()
	bb := g.AddBlock()
	tracked := facts.NewTrackedRegisters()

	objReg := regs.NewRegister(core.RegKindObj)
	create := &core.Instruction{Op: core.OpFastCreate, Result: objReg, StableType: 1}
	bb.AddInstr(create)

	a, ok := alloc.TryTrack(g, tracked, bb, create, 1)
	require.True(t, ok)
	alloc.MarkIrreplaceable(g, a)

	plan := transform.NewPlan()
	plan.Add(&transform.Transform{Kind: transform.KindDeleteFastCreate, Instr: create, Alloc: a})

	transform.Transformer{}.Apply(g, plan, nil)

	require.Len(t, bb.Instrs, 1)
	require.False(t, bb.Instrs[0].Deleted())
	require.Nil(t, a.AttrConcrete)
}

func TestApply_GuardToSet(t *testing.T) {
	g, _ := newGraph()
	bb := g.AddBlock()

	guard := &core.Instruction{
		Op:       core.OpGuardConc,
		MayDeopt: true,
		Deopt:    core.DeoptIndex{Index: 3},
	}
	bb.AddInstr(guard)

	plan := transform.NewPlan()
	plan.Add(&transform.Transform{Kind: transform.KindGuardToSet, Instr: guard})
	transform.Transformer{}.Apply(g, plan, nil)

	require.Equal(t, core.OpSet, guard.Op)
	require.False(t, guard.MayDeopt)
	require.True(t, guard.Deopt.IsZero())
}

type recordingRecorder struct {
	points []core.DeoptIndex
	usages []core.Operand
}

func (r *recordingRecorder) RecordPoint(idx core.DeoptIndex, _ *core.Allocation) {
	r.points = append(r.points, idx)
}
func (r *recordingRecorder) RecordUsage(idx core.DeoptIndex, op core.Operand) {
	r.usages = append(r.usages, op)
}

func TestApply_DeoptBookkeeping(t *testing.T) {
	g, regs := newGraph()
	bb := g.AddBlock()
	tracked := facts.NewTrackedRegisters()

	objReg := regs.NewRegister(core.RegKindObj)
	create := &core.Instruction{Op: core.OpFastCreate, Result: objReg, StableType: 1}
	bb.AddInstr(create)
	a, ok := alloc.TryTrack(g, tracked, bb, create, 1)
	require.True(t, ok)

	idx := core.DeoptIndex{Index: 7}
	op := regs.NewRegister(core.RegKindInt)

	rec := &recordingRecorder{}
	plan := transform.NewPlan()
	guard := &core.Instruction{Op: core.OpGuardConc, MayDeopt: true, Deopt: idx}
	bb.AddInstr(guard)
	plan.Add(&transform.Transform{Kind: transform.KindAddDeoptPoint, Instr: guard, Alloc: a, DeoptIndex: idx})
	plan.Add(&transform.Transform{Kind: transform.KindAddDeoptUsage, Instr: guard, DeoptIndex: idx, DeoptOp: op})

	transform.Transformer{}.Apply(g, plan, rec)

	require.Equal(t, []core.DeoptIndex{idx}, rec.points)
	require.Equal(t, []core.Operand{op}, rec.usages)
}

func TestApply_DecomposeBigIntBinary_FallsBackToGetBigInt(t *testing.T) {
	g, regs := newGraph()
	bb := g.AddBlock()

	leftBoxed := regs.NewRegister(core.RegKindObj)
	rightBoxed := regs.NewRegister(core.RegKindObj)
	add := &core.Instruction{Op: core.OpAddBigInt, Operands: []core.Operand{leftBoxed, rightBoxed}}
	bb.AddInstr(add)

	plan := transform.NewPlan()
	plan.Add(&transform.Transform{
		Kind:           transform.KindDecomposeBigIntBinary,
		Instr:          add,
		BigIntOp:       core.OpAddUnboxedBigInt,
		LeftOperand:    leftBoxed,
		LeftAttrIndex:  0,
		RightOperand:   rightBoxed,
		RightAttrIndex: 0,
	})

	transform.Transformer{}.Apply(g, plan, nil)

	require.Len(t, bb.Instrs, 3)
	require.Equal(t, core.OpGetBigInt, bb.Instrs[0].Op)
	require.Equal(t, core.OpGetBigInt, bb.Instrs[1].Op)
	require.Equal(t, core.OpAddUnboxedBigInt, bb.Instrs[2].Op)
	require.Equal(t, bb.Instrs[0].Result, bb.Instrs[2].Operands[0])
	require.Equal(t, bb.Instrs[1].Result, bb.Instrs[2].Operands[1])
}

func TestApply_Materialize(t *testing.T) {
	g, regs := newGraph()
	bb := g.AddBlock()
	tracked := facts.NewTrackedRegisters()

	objReg := regs.NewRegister(core.RegKindObj)
	create := &core.Instruction{Op: core.OpFastCreate, Result: objReg, StableType: 1}
	bb.AddInstr(create)
	a, ok := alloc.TryTrack(g, tracked, bb, create, 1)
	require.True(t, ok)

	anchor := &core.Instruction{Op: core.OpReturnObj, Operands: []core.Operand{objReg}}
	bb.AddInstr(anchor)

	target := regs.NewRegister(core.RegKindObj)
	handle := &core.MaterializationHandle{Alloc: a, InsertBefore: anchor}
	handle.AddTarget(target)

	plan := transform.NewPlan()
	plan.Add(&transform.Transform{Kind: transform.KindDeleteFastCreate, Instr: create, Alloc: a})
	plan.Add(&transform.Transform{Kind: transform.KindMaterialize, Handle: handle})

	transform.Transformer{}.Apply(g, plan, nil)

	require.NotNil(t, a.AttrConcrete)
	// fastcreate deleted, then: fastcreate(new obj) + 2 binds + set + return
	require.Len(t, bb.Instrs, 5)
	require.Equal(t, core.OpFastCreate, bb.Instrs[0].Op)
	require.Equal(t, core.OpBindAttrInt, bb.Instrs[1].Op)
	require.Equal(t, core.OpBindAttrInt, bb.Instrs[2].Op)
	require.Equal(t, core.OpSet, bb.Instrs[3].Op)
	require.Equal(t, target, bb.Instrs[3].Result)
	require.Equal(t, core.OpReturnObj, bb.Instrs[4].Op)
}

func TestApply_MaterializeEmptyHandleIsNoop(t *testing.T) {
	g, regs := newGraph()
	bb := g.AddBlock()
	tracked := facts.NewTrackedRegisters()

	objReg := regs.NewRegister(core.RegKindObj)
	create := &core.Instruction{Op: core.OpFastCreate, Result: objReg, StableType: 1}
	bb.AddInstr(create)
	a, ok := alloc.TryTrack(g, tracked, bb, create, 1)
	require.True(t, ok)

	anchor := &core.Instruction{Op: core.OpReturnInt}
	bb.AddInstr(anchor)

	handle := &core.MaterializationHandle{Alloc: a, InsertBefore: anchor}
	plan := transform.NewPlan()
	plan.Add(&transform.Transform{Kind: transform.KindDeleteFastCreate, Instr: create, Alloc: a})
	plan.Add(&transform.Transform{Kind: transform.KindMaterialize, Handle: handle})

	transform.Transformer{}.Apply(g, plan, nil)

	require.Len(t, bb.Instrs, 1)
	require.Equal(t, core.OpReturnInt, bb.Instrs[0].Op)
}
