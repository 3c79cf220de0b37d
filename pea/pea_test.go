package pea_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/pea"
	"github.com/vmkit/pea/peaconf"
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

func newGraph(om *core.MemObjectModel) (*core.Graph, *core.MemRegisterAllocator) {
	regs := core.NewMemRegisterAllocator(100)
	g := core.NewGraph(om, regs, core.NewMemFactStore(), core.NewMemDeoptUsageSink(), core.NewMemSlotInterner())
	return g, regs
}

// Scenario: a fully non-escaping allocation disappears from the program
// entirely and the fastcreate instruction is deleted.
func TestRun_NonEscapingAllocationFullyReplaced(t *testing.T) {
	g, regs := newGraph(pointModel())
	bb := g.AddBlock()

	objReg := regs.NewRegister(core.RegKindObj)
	create := &core.Instruction{Op: core.OpFastCreate, Result: objReg, StableType: 1}
	bb.AddInstr(create)

	xReg := regs.NewRegister(core.RegKindInt)
	bind := &core.Instruction{Op: core.OpBindAttrInt, Operands: []core.Operand{objReg, xReg}, AttrIndex: 0}
	bb.AddInstr(bind)

	destReg := regs.NewRegister(core.RegKindInt)
	get := &core.Instruction{Op: core.OpGetAttrInt, Operands: []core.Operand{objReg}, Result: destReg, AttrIndex: 0}
	bb.AddInstr(get)

	result, err := pea.Run(g)
	require.NoError(t, err)
	require.Equal(t, pea.BailoutNone, result.Bailout)
	require.Equal(t, 1, result.Tracked)
	require.Equal(t, 1, result.Replaced)
	require.Equal(t, 0, result.Irreplaceable)

	for _, ins := range bb.Instrs {
		require.NotEqual(t, core.OpFastCreate, ins.Op)
	}
}

// Scenario: a back edge bails the whole run out before any allocation is
// ever touched.
func TestRun_BackEdgeReportsBailout(t *testing.T) {
	g, regs := newGraph(pointModel())
	entry := g.AddBlock()
	loop := g.AddBlock()
	core.AddEdge(entry, loop)
	core.AddEdge(loop, loop)

	objReg := regs.NewRegister(core.RegKindObj)
	create := &core.Instruction{Op: core.OpFastCreate, Result: objReg, StableType: 1}
	loop.AddInstr(create)

	result, err := pea.Run(g)
	require.NoError(t, err)
	require.Equal(t, pea.BailoutBackEdge, result.Bailout)
	require.Equal(t, 0, result.Tracked)
}

// Scenario: a merge inconsistency marks the allocation Irreplaceable and is
// surfaced through Result.Bailout.
func TestRun_MergeInconsistencyReportsBailout(t *testing.T) {
	g, regs := newGraph(pointModel())
	entry := g.AddBlock()
	left := g.AddBlock()
	right := g.AddBlock()
	join := g.AddBlock()
	core.AddEdge(entry, left)
	core.AddEdge(entry, right)
	core.AddEdge(left, join)
	core.AddEdge(right, join)

	objReg := regs.NewRegister(core.RegKindObj)
	create := &core.Instruction{Op: core.OpFastCreate, Result: objReg, StableType: 1}
	entry.AddInstr(create)

	xReg := regs.NewRegister(core.RegKindInt)
	bind := &core.Instruction{Op: core.OpBindAttrInt, Operands: []core.Operand{objReg, xReg}, AttrIndex: 0}
	left.AddInstr(bind)

	result, err := pea.Run(g)
	require.NoError(t, err)
	require.Equal(t, pea.BailoutInconsistentWrite, result.Bailout)
	require.Equal(t, 1, result.Irreplaceable)
	require.Equal(t, 0, result.Replaced)
}

// Scenario: metrics are only registered and populated when a registerer is
// supplied.
func TestRun_MetricsOptIn(t *testing.T) {
	g, regs := newGraph(pointModel())
	bb := g.AddBlock()
	objReg := regs.NewRegister(core.RegKindObj)
	create := &core.Instruction{Op: core.OpFastCreate, Result: objReg, StableType: 1}
	bb.AddInstr(create)

	reg := prometheus.NewRegistry()
	result, err := pea.Run(g, peaconf.WithMetrics(reg))
	require.NoError(t, err)
	require.Equal(t, 1, result.Replaced)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

// Scenario: a deopt point queues materialize-info for every allocation
// still replaceable at the time it is reached.
func TestRun_DeoptBookkeepingPopulated(t *testing.T) {
	g, regs := newGraph(pointModel())
	bb := g.AddBlock()

	objReg := regs.NewRegister(core.RegKindObj)
	create := &core.Instruction{Op: core.OpFastCreate, Result: objReg, StableType: 1}
	bb.AddInstr(create)

	guard := &core.Instruction{Op: core.OpGuardConc, Operands: []core.Operand{regs.NewRegister(core.RegKindObj)}, StableType: 99, MayDeopt: true, Deopt: core.DeoptIndex{Index: 1}}
	bb.AddInstr(guard)

	result, err := pea.Run(g)
	require.NoError(t, err)
	require.NotNil(t, result.Deopt)
	require.Len(t, result.Deopt.Infos(), 1)
}
