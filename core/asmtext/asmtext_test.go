package asmtext_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/core/asmtext"
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

const program = `
block bb0
  %r1:obj = fastcreate type=1
  bindattr_i %r1, %r2:int attr=0
  %r3:int = getattr_i %r1 attr=0
  return_i %r3
`

func TestParse_SingleBlockStraightLine(t *testing.T) {
	g, err := asmtext.Parse(strings.NewReader(program), pointModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, g.Blocks, 1)
	require.Len(t, g.Blocks[0].Instrs, 4)

	create := g.Blocks[0].Instrs[0]
	require.Equal(t, core.OpFastCreate, create.Op)
	require.Equal(t, uint32(1), create.StableType)
	require.True(t, create.Result.IsValid())

	bind := g.Blocks[0].Instrs[1]
	require.Equal(t, core.OpBindAttrInt, bind.Op)
	require.Len(t, bind.Operands, 2)
	require.Equal(t, 0, bind.AttrIndex)
}

func TestParse_MultiBlockExplicitEdges(t *testing.T) {
	text := `
block entry -> left right
  %r1:obj = fastcreate type=1
block left -> join
  %r2:int = getattr_i %r1 attr=0
block right -> join
block join
  return_i %r2
`
	g, err := asmtext.Parse(strings.NewReader(text), pointModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, g.Blocks, 4)

	entry := g.Blocks[0]
	require.Len(t, entry.Succs, 2)
	join := g.Blocks[3]
	require.Len(t, join.Preds, 2)
}

func TestParse_FallthroughEdgesWhenNoArrow(t *testing.T) {
	text := `
block bb0
  %r1:obj = fastcreate type=1
block bb1
  return_i %r1
`
	g, err := asmtext.Parse(strings.NewReader(text), pointModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, g.Blocks[0].Succs, 1)
	require.Same(t, g.Blocks[1], g.Blocks[0].Succs[0])
}

func TestParse_UndefinedRegisterIsSyntaxError(t *testing.T) {
	text := "block bb0\n  return_i %r99\n"
	_, err := asmtext.Parse(strings.NewReader(text), pointModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	require.ErrorIs(t, err, asmtext.ErrSyntax)
}

func TestParse_UnknownSuccessorIsSyntaxError(t *testing.T) {
	text := "block bb0 -> nope\n  return_i %r1:int\n"
	_, err := asmtext.Parse(strings.NewReader(text), pointModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	require.ErrorIs(t, err, asmtext.ErrSyntax)
}

func TestPrint_RoundTripsOpcodeAndAttrs(t *testing.T) {
	g, err := asmtext.Parse(strings.NewReader(program), pointModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, asmtext.Print(&buf, g))

	out := buf.String()
	require.Contains(t, out, "fastcreate")
	require.Contains(t, out, "type=1")
	require.Contains(t, out, "bindattr_i")
	require.Contains(t, out, "attr=")
}

func TestParse_TypeDeclarationRegistersAgainstMemObjectModel(t *testing.T) {
	text := `
type 7 opaque attrs=int,bigint bigint=1
block bb0
  %r1:obj = fastcreate type=7
`
	om := core.NewMemObjectModel()
	g, err := asmtext.Parse(strings.NewReader(text), om, core.NewMemRegisterAllocator(0), nil, nil, nil)
	require.NoError(t, err)
	require.True(t, om.IsOpaqueRecord(7))
	n, err := om.AttributeCount(7)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	idx, ok := om.BigIntAttrIndex(7)
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.Len(t, g.Blocks, 1)
}

func TestPrint_SkipsDeletedInstructions(t *testing.T) {
	g, err := asmtext.Parse(strings.NewReader(program), pointModel(), core.NewMemRegisterAllocator(0), nil, nil, nil)
	require.NoError(t, err)
	g.Blocks[0].MarkDeleted(g.Blocks[0].Instrs[0])

	var buf bytes.Buffer
	require.NoError(t, asmtext.Print(&buf, g))
	require.NotContains(t, buf.String(), "fastcreate")
}
