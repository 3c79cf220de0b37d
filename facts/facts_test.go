package facts_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/facts"
)

func TestShadowFact_InvalidatesWithAllocation(t *testing.T) {
	tbl := facts.NewTable()
	a := &core.Allocation{}
	h := core.HypReg(1)

	tbl.SetHyp(h, facts.ShadowFact{KnownType: 7, KnownConcrete: true, DependsOn: a})

	got, ok := tbl.GetHyp(h)
	require.True(t, ok)
	require.Equal(t, uint32(7), got.KnownType)

	a.Irreplaceable = true

	_, ok = tbl.GetHyp(h)
	require.False(t, ok, "fact must be treated as absent once its backing allocation is irreplaceable")
}

func TestTable_CopyOperand(t *testing.T) {
	tbl := facts.NewTable()
	src := core.Operand{Reg: 1, Version: 0}
	dst := core.Operand{Reg: 2, Version: 0}

	tbl.SetOperand(src, facts.ShadowFact{KnownType: 3, KnownConcrete: true})
	tbl.CopyOperand(dst, src)

	got, ok := tbl.GetOperand(dst)
	require.True(t, ok)
	require.Equal(t, uint32(3), got.KnownType)
}

func TestTrackedRegisters(t *testing.T) {
	tr := facts.NewTrackedRegisters()
	a := &core.Allocation{Index: 0}
	op := core.Operand{Reg: 10, Version: 0}

	_, ok := tr.Lookup(op)
	require.False(t, ok)

	tr.Track(op, a)
	got, ok := tr.Lookup(op)
	require.True(t, ok)
	require.Same(t, a, got)

	tr.Untrack(op)
	_, ok = tr.Lookup(op)
	require.False(t, ok)
}
