package merge

import "github.com/vmkit/pea/core"

// Engine runs the merge procedure at basic-block entry.
type Engine struct{}

// Merge computes the BlockAllocState b starts with for allocation a, folding
// in whichever of b's predecessors have already seen a. It also performs
// the consistency checks that can force a Irreplaceable on the spot:
//
//  1. Union every predecessor's active materializations into the merged
//     state — more reconstruction instructions queued costs nothing extra
//     in the worst case, so this direction is always safe.
//  2. Per attribute, count how many of the predecessors that have seen a at
//     all wrote it. Written on every one of them: carry the write forward.
//     Written on some but not all: an inconsistent write, and a cannot be
//     read here without risking an unwritten attribute — mark Irreplaceable.
//  3. If a is visible (Seen) on some incoming edges but not others, the
//     allocation's own existence is inconsistent at this merge point —
//     mark Irreplaceable.
//  4. If a was materialized on some incoming paths but not all of them, a
//     consumer reached through the paths that skipped materialization
//     would see a reconstructed object that was never actually built —
//     mark Irreplaceable.
//
// Merge never returns a nil state: if no predecessor has seen a at all, it
// returns a fresh, empty state (a simply does not exist on any incoming
// path yet).
//
// The second return value names which check (if any) forced a onto
// Irreplaceable this call: "inconsistent-write", "partial-visibility", or
// "partial-materialization-across-merge". It is "" when a stayed
// replaceable, and callers that don't care about the distinction (most
// don't — the graph is already marked) are free to discard it.
func (Engine) Merge(g *core.Graph, b *core.BasicBlock, a *core.Allocation) (*core.BlockAllocState, string) {
	var seenStates []*core.BlockAllocState
	allSeen := len(b.Preds) > 0
	for _, p := range b.Preds {
		st, ok := p.AllocStates[a.Index]
		if ok && st.Seen {
			seenStates = append(seenStates, st)
		} else {
			allSeen = false
		}
	}

	if len(seenStates) == 0 {
		return core.NewBlockAllocState(a.AttrCount()), ""
	}

	merged := core.NewBlockAllocState(a.AttrCount())
	merged.Seen = true

	materializedCount := 0
	for _, st := range seenStates {
		if len(st.Materializations) > 0 {
			materializedCount++
		}
		for _, m := range st.Materializations {
			merged.AddMaterialization(m)
		}
	}

	reason := ""
	for i := range merged.Used {
		written := 0
		for _, st := range seenStates {
			if st.Used[i] {
				written++
			}
		}
		switch {
		case written == len(seenStates):
			merged.Used[i] = true
		case written > 0:
			g.MarkIrreplaceable(a)
			reason = "inconsistent-write"
		}
	}

	if !allSeen {
		g.MarkIrreplaceable(a)
		if reason == "" {
			reason = "partial-visibility"
		}
	}
	if materializedCount > 0 && materializedCount != len(seenStates) {
		g.MarkIrreplaceable(a)
		if reason == "" {
			reason = "partial-materialization-across-merge"
		}
	}

	return merged, reason
}
