package core_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vmkit/pea/core"
)

func TestMarkIrreplaceable_Transitive(t *testing.T) {
	g := core.NewGraph(newOM(), core.NewMemRegisterAllocator(100), nil, nil, nil)
	a := g.TrackAllocation(&core.Allocation{AttrRegs: []core.HypReg{0}})
	b := g.TrackAllocation(&core.Allocation{AttrRegs: []core.HypReg{1}})
	c := g.TrackAllocation(&core.Allocation{AttrRegs: []core.HypReg{2}})

	// c depends on b, b depends on a: c -> b -> a.
	c.AddEscapeDep(b.Index)
	b.AddEscapeDep(a.Index)

	g.MarkIrreplaceable(c)

	require.True(t, c.Irreplaceable)
	require.True(t, b.Irreplaceable)
	require.True(t, a.Irreplaceable)
}

func TestMarkIrreplaceable_NoOverreach(t *testing.T) {
	g := core.NewGraph(newOM(), core.NewMemRegisterAllocator(100), nil, nil, nil)
	a := g.TrackAllocation(&core.Allocation{})
	unrelated := g.TrackAllocation(&core.Allocation{})

	g.MarkIrreplaceable(a)

	require.True(t, a.Irreplaceable)
	require.False(t, unrelated.Irreplaceable)
}

func TestMaterializationHandle_DedupTargets(t *testing.T) {
	m := &core.MaterializationHandle{}
	op := core.Operand{Reg: 5, Version: 1}
	m.AddTarget(op)
	m.AddTarget(op)
	require.Len(t, m.Targets, 1)

	h := core.HypReg(3)
	m.AddHypTarget(h)
	m.AddHypTarget(h)
	require.Len(t, m.HypTargets, 1)

	require.False(t, m.Empty())
}

func TestBlockAllocState_Clone(t *testing.T) {
	st := core.NewBlockAllocState(2)
	st.Seen = true
	st.Used[0] = true
	m := &core.MaterializationHandle{}
	st.AddMaterialization(m)

	clone := st.Clone()

	// A fresh clone must be structurally identical to its source,
	// including which MaterializationHandle pointers it carries.
	if diff := cmp.Diff(st, clone); diff != "" {
		t.Fatalf("clone diverged from source before any mutation (-want +got):\n%s", diff)
	}

	clone.Used[1] = true
	clone.AddMaterialization(&core.MaterializationHandle{})

	require.True(t, st.Seen)
	require.False(t, st.Used[1], "mutating the clone must not affect the original")
	require.True(t, clone.Used[0])
	require.Len(t, st.Materializations, 1, "mutating the clone must not append to the original's materializations")
}
