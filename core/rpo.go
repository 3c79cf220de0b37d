package core

// ComputeRPO computes the graph's reverse-postorder block sequence and
// detects back-edges in the same pass. It returns false the moment it
// finds a block whose predecessor was not yet visited in RPO order, i.e.
// a back-edge (spec.md §4.2, scenario 6), after resetting every reachable
// block's RPOIndex to -1: loops are unsupported, and the analyzer aborts
// immediately rather than attempt a fixed-point.
//
// On success, every reachable block's RPOIndex is set and RPO returns the
// cached sequence. Unreachable blocks (dead code from an earlier pass) are
// left with RPOIndex -1 and excluded from the sequence.
func (g *Graph) ComputeRPO() bool {
	if g.Entry == nil {
		g.rpoComputed = true
		g.rpo = nil
		return true
	}

	visited := make(map[BlockID]bool, len(g.Blocks))
	post := make([]*BasicBlock, 0, len(g.Blocks))

	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		if visited[b.ID] {
			return
		}
		visited[b.ID] = true
		for _, s := range b.Succs {
			visit(s)
		}
		post = append(post, b)
	}
	visit(g.Entry)

	n := len(post)
	rpo := make([]*BasicBlock, n)
	for i, b := range post {
		rpo[n-1-i] = b
	}
	for i, b := range rpo {
		b.rpo = i
	}

	// A back-edge is any predecessor whose RPO index is not strictly
	// smaller than its successor's — including a self-loop, where the
	// "predecessor" and block are the same node.
	for _, b := range rpo {
		for _, p := range b.Preds {
			if !visited[p.ID] {
				continue // unreachable predecessor; not a back-edge, just dead code
			}
			if p.rpo >= b.rpo {
				g.rpoComputed = false
				g.rpo = nil
				for _, reset := range rpo {
					reset.rpo = -1
				}
				return false
			}
		}
	}

	g.rpo = rpo
	g.rpoComputed = true
	return true
}

// RPO returns the cached reverse-postorder sequence, or nil if
// ComputeRPO has not been called or returned false.
func (g *Graph) RPO() []*BasicBlock {
	if !g.rpoComputed {
		return nil
	}
	return g.rpo
}
