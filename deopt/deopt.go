package deopt

import (
	"github.com/google/btree"

	"github.com/vmkit/pea/core"
)

// MaterializeInfo is everything the deopt trampoline needs to rebuild one
// allocation's real object at one deopt point: which allocation, and which
// concrete registers hold its current attribute values.
type MaterializeInfo struct {
	Alloc *core.Allocation
	Point core.DeoptIndex
}

type pointAllocKey struct {
	point core.DeoptIndex
	alloc int
}

func (k pointAllocKey) less(other pointAllocKey) bool {
	if pi, oi := deoptIndexKey(k.point), deoptIndexKey(other.point); pi != oi {
		return pi < oi
	}
	return k.alloc < other.alloc
}

func deoptIndexKey(idx core.DeoptIndex) uint64 {
	k := uint64(idx.Index)
	if idx.Synthetic {
		k |= 1 << 32
	}
	return k
}

// Bookkeeper is the per-pass deopt side table. Its ordering index is kept
// in a btree rather than a plain slice or map so that dumps and tests see
// deopt points and their materialize-info in a stable, deterministic order
// even though points are discovered in whatever order the analyzer walks
// the graph.
type Bookkeeper struct {
	infos map[pointAllocKey]*MaterializeInfo
	order *btree.BTreeG[pointAllocKey]
	usage map[core.DeoptIndex][]core.Operand
}

// NewBookkeeper returns an empty Bookkeeper.
func NewBookkeeper() *Bookkeeper {
	return &Bookkeeper{
		infos: make(map[pointAllocKey]*MaterializeInfo),
		order: btree.NewG(32, pointAllocKey.less),
		usage: make(map[core.DeoptIndex][]core.Operand),
	}
}

// RecordPoint is package transform's DeoptRecorder.RecordPoint: it memoizes
// a MaterializeInfo for (idx, alloc), creating one the first time this pair
// is reached and returning the same one on every later call.
func (bk *Bookkeeper) RecordPoint(idx core.DeoptIndex, alloc *core.Allocation) {
	bk.GetDeoptMaterializationInfo(idx, alloc)
}

// GetDeoptMaterializationInfo returns the memoized MaterializeInfo for
// (idx, alloc), creating it on first access.
func (bk *Bookkeeper) GetDeoptMaterializationInfo(idx core.DeoptIndex, alloc *core.Allocation) *MaterializeInfo {
	key := pointAllocKey{point: idx, alloc: alloc.Index}
	if info, ok := bk.infos[key]; ok {
		return info
	}
	info := &MaterializeInfo{Alloc: alloc, Point: idx}
	bk.infos[key] = info
	bk.order.ReplaceOrInsert(key)
	return info
}

// RecordUsage is package transform's DeoptRecorder.RecordUsage: it records
// that op must be kept live at idx, regardless of which (if any)
// allocation's materialize-info also lives there.
func (bk *Bookkeeper) RecordUsage(idx core.DeoptIndex, op core.Operand) {
	for _, existing := range bk.usage[idx] {
		if existing == op {
			return
		}
	}
	bk.usage[idx] = append(bk.usage[idx], op)
}

// Usages returns every register recorded live at idx.
func (bk *Bookkeeper) Usages(idx core.DeoptIndex) []core.Operand {
	return bk.usage[idx]
}

// Infos returns every recorded MaterializeInfo in deterministic
// (point, allocation) order, for dumps and tests.
func (bk *Bookkeeper) Infos() []*MaterializeInfo {
	out := make([]*MaterializeInfo, 0, bk.order.Len())
	bk.order.Ascend(func(key pointAllocKey) bool {
		out = append(out, bk.infos[key])
		return true
	})
	return out
}
