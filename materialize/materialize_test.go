package materialize_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/materialize"
)

func TestInSameBranch_StraightLine(t *testing.T) {
	g := core.NewGraph(core.NewMemObjectModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	a := g.AddBlock()
	b := g.AddBlock()
	c := g.AddBlock()
	core.AddEdge(a, b)
	core.AddEdge(b, c)

	require.True(t, materialize.InSameBranch(a, c))
}

func TestInSameBranch_StopsAtFork(t *testing.T) {
	g := core.NewGraph(core.NewMemObjectModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	a := g.AddBlock()
	left := g.AddBlock()
	right := g.AddBlock()
	target := g.AddBlock()
	core.AddEdge(a, left)
	core.AddEdge(a, right)
	core.AddEdge(left, target)

	require.False(t, materialize.InSameBranch(a, target))
}

func TestWorthMaterializing_ReadAlwaysTrue(t *testing.T) {
	a := &core.Allocation{Read: true}
	require.True(t, materialize.WorthMaterializing(a, nil, nil))
}

func TestWorthMaterializing_BigIntAlwaysTrue(t *testing.T) {
	a := &core.Allocation{BigInt: true}
	require.True(t, materialize.WorthMaterializing(a, nil, nil))
}

func TestWorthMaterializing_FalseAcrossFork(t *testing.T) {
	g := core.NewGraph(core.NewMemObjectModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	entry := g.AddBlock()
	left := g.AddBlock()
	right := g.AddBlock()
	target := g.AddBlock()
	core.AddEdge(entry, left)
	core.AddEdge(entry, right)
	core.AddEdge(left, target)

	a := &core.Allocation{}
	require.False(t, materialize.WorthMaterializing(a, entry, target))
}

func TestInsertionPoint_WalksPastArgSequence(t *testing.T) {
	g := core.NewGraph(core.NewMemObjectModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	bb := g.AddBlock()

	before := &core.Instruction{Op: core.OpSet}
	arg1 := &core.Instruction{Op: core.OpArgInt}
	arg2 := &core.Instruction{Op: core.OpArgConstObj}
	call := &core.Instruction{Op: core.OpReturnObj}
	bb.AddInstr(before)
	bb.AddInstr(arg1)
	bb.AddInstr(arg2)
	bb.AddInstr(call)

	require.Equal(t, arg1, materialize.InsertionPoint(bb, call))
	require.Equal(t, arg1, materialize.InsertionPoint(bb, arg2))
	require.Equal(t, before, materialize.InsertionPoint(bb, before))
}

func TestHandleMaterializedUsages_JoinsExistingHandle(t *testing.T) {
	g := core.NewGraph(core.NewMemObjectModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	bb := g.AddBlock()
	anchor := &core.Instruction{Op: core.OpReturnObj}
	bb.AddInstr(anchor)

	a := &core.Allocation{Index: 0}
	t1 := core.Operand{Reg: 1}
	t2 := core.Operand{Reg: 2}

	h1 := materialize.HandleMaterializedUsages(bb, a, anchor, t1)
	h2 := materialize.HandleMaterializedUsages(bb, a, anchor, t2)

	require.Same(t, h1, h2)
	require.Equal(t, []core.Operand{t1, t2}, h1.Targets)
}
