package graphbuilder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmkit/pea/analyze"
	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/testutil/graphbuilder"
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

func TestBuildGraph_SingleBlockStraightLine(t *testing.T) {
	om := pointModel()
	g, err := graphbuilder.BuildGraph(om, core.NewMemRegisterAllocator(0), nil,
		graphbuilder.Block("bb0", nil, graphbuilder.Seq(
			graphbuilder.FastCreate("obj", 1),
			graphbuilder.BindAttr(core.RegKindInt, "obj", "x", 0),
			graphbuilder.GetAttr(core.RegKindInt, "y", "obj", 0),
			graphbuilder.Return(core.RegKindInt, "y"),
		)),
	)
	require.NoError(t, err)
	require.Len(t, g.Blocks, 1)
	require.Len(t, g.Blocks[0].Instrs, 4)

	res := analyze.NewAnalyzer(g, nil).Run()
	require.False(t, res.BackEdge)
	require.Len(t, g.Allocations, 1)
	require.False(t, g.Allocations[0].Irreplaceable)
}

func TestBuildGraph_EscapeMarksIrreplaceable(t *testing.T) {
	om := pointModel()
	g, err := graphbuilder.BuildGraph(om, core.NewMemRegisterAllocator(0), nil,
		graphbuilder.Block("bb0", nil, graphbuilder.Seq(
			graphbuilder.FastCreate("obj", 1),
			graphbuilder.Escape("call_unknown", "obj"),
		)),
	)
	require.NoError(t, err)

	res := analyze.NewAnalyzer(g, nil).Run()
	require.False(t, res.BackEdge)
	require.True(t, g.Allocations[0].Irreplaceable)
}

func TestBuildGraph_MultiBlockExplicitEdges(t *testing.T) {
	om := pointModel()
	g, err := graphbuilder.BuildGraph(om, core.NewMemRegisterAllocator(0), nil,
		graphbuilder.Block("entry", []string{"left", "right"}, graphbuilder.Seq(
			graphbuilder.FastCreate("obj", 1),
		)),
		graphbuilder.Block("left", []string{"join"}, graphbuilder.Seq(
			graphbuilder.GetAttr(core.RegKindInt, "v", "obj", 0),
		)),
		graphbuilder.Block("right", []string{"join"}, nil),
		graphbuilder.Block("join", nil, graphbuilder.Seq(
			graphbuilder.Return(core.RegKindInt, "v"),
		)),
	)
	require.NoError(t, err)
	require.Len(t, g.Blocks, 4)
	require.Len(t, g.Blocks[0].Succs, 2)
	require.Len(t, g.Blocks[3].Preds, 2)
}

func TestBuildGraph_DuplicateBlockNameErrors(t *testing.T) {
	om := pointModel()
	_, err := graphbuilder.BuildGraph(om, core.NewMemRegisterAllocator(0), nil,
		graphbuilder.Block("bb0", nil, nil),
		graphbuilder.Block("bb0", nil, nil),
	)
	require.ErrorIs(t, err, graphbuilder.ErrDuplicateBlock)
}

func TestBuildGraph_UnknownSuccessorErrors(t *testing.T) {
	om := pointModel()
	_, err := graphbuilder.BuildGraph(om, core.NewMemRegisterAllocator(0), nil,
		graphbuilder.Block("bb0", []string{"nope"}, nil),
	)
	require.ErrorIs(t, err, graphbuilder.ErrUnknownBlock)
}

func TestBuildGraph_UndefinedRegisterUseErrors(t *testing.T) {
	om := pointModel()
	_, err := graphbuilder.BuildGraph(om, core.NewMemRegisterAllocator(0), nil,
		graphbuilder.Block("bb0", nil, graphbuilder.Seq(
			graphbuilder.Return(core.RegKindInt, "never-defined"),
		)),
	)
	require.ErrorIs(t, err, graphbuilder.ErrUnknownRegister)
}

func TestBuildGraph_NilObjectModelErrors(t *testing.T) {
	_, err := graphbuilder.BuildGraph(nil, core.NewMemRegisterAllocator(0), nil)
	require.ErrorIs(t, err, graphbuilder.ErrNilObjectModel)
}

func TestFallthrough_WiresBlocksInOrder(t *testing.T) {
	om := pointModel()
	g, err := graphbuilder.BuildGraph(om, core.NewMemRegisterAllocator(0), nil,
		graphbuilder.Block("bb0", nil, graphbuilder.Seq(graphbuilder.FastCreate("obj", 1))),
		graphbuilder.Block("bb1", nil, graphbuilder.Seq(graphbuilder.Return(core.RegKindObj, "obj"))),
		graphbuilder.Fallthrough("bb0", "bb1"),
	)
	require.NoError(t, err)
	require.Len(t, g.Blocks[0].Succs, 1)
	require.Same(t, g.Blocks[1], g.Blocks[0].Succs[0])
}
