package alloc

import (
	"github.com/vmkit/pea/core"
	"github.com/vmkit/pea/facts"
)

// TryTrack implements the Allocation Tracker contract from spec.md §4.1. It
// returns a fresh Allocation iff stable is a transparent opaque record and
// every one of its attributes has a storage kind the pass can scalar
// replace (reference, 64-bit int, 64-bit float, string, big-integer).
//
// On success it assigns one hypothetical register per attribute, records
// the originating instruction and block, pushes the allocation onto the
// graph's tracked vector, registers ins.Result in tracked so later reads of
// that register resolve back to this allocation, and marks the allocation
// seen in bb.
func TryTrack(g *core.Graph, tracked *facts.TrackedRegisters, bb *core.BasicBlock, ins *core.Instruction, stable uint32) (*core.Allocation, bool) {
	om := g.ObjectModel
	if om == nil || !om.IsOpaqueRecord(stable) {
		return nil, false
	}

	n, err := om.AttributeCount(stable)
	if err != nil {
		return nil, false
	}

	attrRegs := make([]core.HypReg, n)
	attrKinds := make([]core.RegKind, n)
	bigInt := false
	bigIntIdx := -1
	for i := 0; i < n; i++ {
		kind, kerr := om.AttributeKind(stable, i)
		if kerr != nil || !isHandledKind(kind) {
			return nil, false
		}
		attrRegs[i] = g.NewHypReg()
		attrKinds[i] = kind
		if kind == core.RegKindBigInt {
			bigInt = true
			bigIntIdx = i
		}
	}

	a := g.TrackAllocation(&core.Allocation{
		Instr:           ins,
		Block:           bb,
		StableType:      stable,
		AttrRegs:        attrRegs,
		AttrKinds:       attrKinds,
		BigInt:          bigInt,
		BigIntAttrIndex: bigIntIdx,
	})
	for i, h := range attrRegs {
		g.RegisterHyp(h, a, i)
	}

	if tracked != nil && ins.Result.IsValid() {
		tracked.Track(ins.Result, a)
	}
	bb.StateFor(a).Seen = true

	return a, true
}

func isHandledKind(k core.RegKind) bool {
	switch k {
	case core.RegKindObj, core.RegKindInt, core.RegKindFloat, core.RegKindStr, core.RegKindBigInt:
		return true
	default:
		return false
	}
}

// MarkIrreplaceable sets a.Irreplaceable and transitively floods the flag
// across every allocation a depends on to remain replaceable, per the
// sticky invariant in spec.md §3. It is a thin, documented entry point over
// Graph.MarkIrreplaceable, which needs direct access to the graph's
// allocation vector to resolve escape-dependency indices.
func MarkIrreplaceable(g *core.Graph, a *core.Allocation) {
	g.MarkIrreplaceable(a)
}
