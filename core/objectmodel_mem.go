package core

// This file provides a minimal in-memory implementation of every interface
// in interfaces.go, sufficient to drive the test suite and the cmd/peaopt
// CLI without a real host VM. Production integrations replace all of this.

// AttrLayout describes one attribute slot of a MemStableType.
type AttrLayout struct {
	Kind   RegKind
	Offset int64
}

// MemStableType is one opaque record type definition.
type MemStableType struct {
	Attrs           []AttrLayout
	BigIntAttrIndex int // -1 if this type has no big-integer attribute
	Opaque          bool
	BoxingPrimitive bool
}

// MemObjectModel is a map-backed ObjectModel.
type MemObjectModel struct {
	Types    map[uint32]*MemStableType
	IntCache map[int64]int
}

// NewMemObjectModel returns an empty object model; use RegisterType to
// populate it.
func NewMemObjectModel() *MemObjectModel {
	return &MemObjectModel{Types: make(map[uint32]*MemStableType)}
}

// RegisterType installs t under stable, returning the model for chaining.
func (m *MemObjectModel) RegisterType(stable uint32, t *MemStableType) *MemObjectModel {
	if t.BigIntAttrIndex == 0 && !hasBigIntAttr(t) {
		t.BigIntAttrIndex = -1
	}
	m.Types[stable] = t
	return m
}

func hasBigIntAttr(t *MemStableType) bool {
	if len(t.Attrs) == 0 {
		return false
	}
	return t.Attrs[0].Kind == RegKindBigInt
}

func (m *MemObjectModel) IsOpaqueRecord(stable uint32) bool {
	t, ok := m.Types[stable]
	return ok && t.Opaque
}

func (m *MemObjectModel) AttributeCount(stable uint32) (int, error) {
	t, ok := m.Types[stable]
	if !ok {
		return 0, ErrUnknownOpaqueType
	}
	return len(t.Attrs), nil
}

func (m *MemObjectModel) AttributeKind(stable uint32, idx int) (RegKind, error) {
	t, ok := m.Types[stable]
	if !ok || idx < 0 || idx >= len(t.Attrs) {
		return RegKindInvalid, ErrUnknownOpaqueType
	}
	return t.Attrs[idx].Kind, nil
}

func (m *MemObjectModel) AttributeOffset(stable uint32, idx int) (int64, error) {
	t, ok := m.Types[stable]
	if !ok || idx < 0 || idx >= len(t.Attrs) {
		return 0, ErrUnknownOpaqueType
	}
	return t.Attrs[idx].Offset, nil
}

func (m *MemObjectModel) BigIntAttrIndex(stable uint32) (int, bool) {
	t, ok := m.Types[stable]
	if !ok || t.BigIntAttrIndex < 0 {
		return 0, false
	}
	return t.BigIntAttrIndex, true
}

func (m *MemObjectModel) IsBoxingPrimitive(stable uint32) bool {
	t, ok := m.Types[stable]
	return ok && t.BoxingPrimitive
}

func (m *MemObjectModel) IntCacheIndex(v int64) (int, bool) {
	if m.IntCache == nil {
		if v >= -255 && v <= 255 {
			return int(v + 255), true
		}
		return 0, false
	}
	idx, ok := m.IntCache[v]
	return idx, ok
}

// MemRegisterAllocator mints RegIDs above Base, so test/tool programs that
// hand-number their own registers starting at 1 never collide with
// registers the pass allocates.
type MemRegisterAllocator struct {
	Base     RegID
	next     RegID
	versions map[RegID]uint32
}

// NewMemRegisterAllocator returns an allocator whose minted registers all
// have RegID > base.
func NewMemRegisterAllocator(base RegID) *MemRegisterAllocator {
	return &MemRegisterAllocator{Base: base, next: base, versions: make(map[RegID]uint32)}
}

func (r *MemRegisterAllocator) NewRegister(kind RegKind) Operand {
	r.next++
	return Operand{Reg: r.next, Version: 0, Kind: kind}
}

func (r *MemRegisterAllocator) NewVersion(reg RegID, kind RegKind) Operand {
	r.versions[reg]++
	return Operand{Reg: reg, Version: r.versions[reg], Kind: kind}
}

func (r *MemRegisterAllocator) CurrentVersion(reg RegID) (Operand, bool) {
	v, ok := r.versions[reg]
	if !ok {
		return Operand{}, false
	}
	return Operand{Reg: reg, Version: v}, true
}

// MemFactStore is a map-backed canonical FactStore.
type MemFactStore struct {
	facts map[Operand]TypeFact
}

// NewMemFactStore returns an empty canonical fact store.
func NewMemFactStore() *MemFactStore { return &MemFactStore{facts: make(map[Operand]TypeFact)} }

func (f *MemFactStore) Get(op Operand) (TypeFact, bool) {
	fact, ok := f.facts[op]
	return fact, ok
}

func (f *MemFactStore) Set(op Operand, fact TypeFact) { f.facts[op] = fact }

func (f *MemFactStore) Copy(dst, src Operand) {
	if fact, ok := f.facts[src]; ok {
		f.facts[dst] = fact
	}
}

// DeoptUsage is one recorded (deopt point, register) liveness pair.
type DeoptUsage struct {
	Index DeoptIndex
	Op    Operand
}

// MemDeoptUsageSink records every usage it is given, for test assertions.
type MemDeoptUsageSink struct {
	Usages []DeoptUsage
}

// NewMemDeoptUsageSink returns an empty usage sink.
func NewMemDeoptUsageSink() *MemDeoptUsageSink { return &MemDeoptUsageSink{} }

func (s *MemDeoptUsageSink) AddUsage(idx DeoptIndex, op Operand) {
	s.Usages = append(s.Usages, DeoptUsage{Index: idx, Op: op})
}

// MemSlotInterner appends every value it is given and returns its index;
// it does not attempt to dedupe non-comparable values.
type MemSlotInterner struct {
	Slots []any
}

// NewMemSlotInterner returns an empty interner.
func NewMemSlotInterner() *MemSlotInterner { return &MemSlotInterner{} }

func (s *MemSlotInterner) InternSlot(value any) int {
	s.Slots = append(s.Slots, value)
	return len(s.Slots) - 1
}
