package transform

import "github.com/vmkit/pea/core"

// Plan collects every Transform the analyzer decided on, grouped by the
// block Apply must visit to perform them. Grouping by block lets Apply
// process one block's instruction list at a time without rescanning the
// whole graph per transform.
type Plan struct {
	ByBlock map[core.BlockID][]*Transform
}

// NewPlan returns an empty Plan.
func NewPlan() *Plan {
	return &Plan{ByBlock: make(map[core.BlockID][]*Transform)}
}

// Add appends t to the block it targets. Most Kinds target Instr.Block;
// KindDeleteFastCreate and KindUnmaterializeBigInt target Alloc.Block
// (their instruction and their allocation's originating block are the
// same); KindMaterialize targets the block of its insertion point.
func (p *Plan) Add(t *Transform) {
	blk := p.blockFor(t)
	p.ByBlock[blk.ID] = append(p.ByBlock[blk.ID], t)
}

func (p *Plan) blockFor(t *Transform) *core.BasicBlock {
	switch {
	case t.Kind == KindMaterialize:
		return t.Handle.InsertBefore.Block
	case t.Instr != nil:
		return t.Instr.Block
	case t.Alloc != nil:
		return t.Alloc.Block
	default:
		panic("transform: Transform has no block to target")
	}
}

// Count returns the total number of queued transforms across every block.
func (p *Plan) Count() int {
	n := 0
	for _, ts := range p.ByBlock {
		n += len(ts)
	}
	return n
}
