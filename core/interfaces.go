package core

// This file declares the external interfaces PEA consumes (spec.md §6).
// Production VMs supply real implementations backed by the bytecode
// loader's type tables and the JIT back-end's register file; package core
// ships an in-memory reference implementation (objectmodel_mem.go) good
// enough to drive tests and the cmd/peaopt CLI.

// TypeFact is a type/concreteness fact about a register, as recorded by
// either the canonical FactStore or the speculative shadow-fact table
// (package facts).
type TypeFact struct {
	KnownType     uint32
	KnownConcrete bool
}

// ObjectModel answers the static-type queries the allocation tracker and
// analyzer need about opaque record types: attribute count, per-attribute
// storage kind and byte offset, the byte offset of the big-integer
// attribute (if any), and classification helpers used by the big-integer
// decomposition and materialization paths.
type ObjectModel interface {
	// IsOpaqueRecord reports whether stable is a transparent opaque record
	// — the well-known flat attribute layout this pass can track. Array
	// and other custom representations answer false (spec.md Non-goals).
	IsOpaqueRecord(stable uint32) bool

	// AttributeCount returns the number of attributes of stable, or an
	// error if stable is not a known opaque record.
	AttributeCount(stable uint32) (int, error)

	// AttributeKind returns the storage kind of attribute idx of stable.
	AttributeKind(stable uint32, idx int) (RegKind, error)

	// AttributeOffset returns the byte offset of attribute idx of stable,
	// used to emit a fallback load when an operand did not come from a
	// still-replaceable allocation.
	AttributeOffset(stable uint32, idx int) (int64, error)

	// BigIntAttrIndex returns the attribute index holding stable's
	// big-integer payload, if stable has one.
	BigIntAttrIndex(stable uint32) (int, bool)

	// IsBoxingPrimitive reports whether stable is one of the VM's built-in
	// boxing types (Int, Num, Str) rather than a user-defined opaque
	// record — relevant to OpBigIntMaterialize's type check.
	IsBoxingPrimitive(stable uint32) bool

	// IntCacheIndex returns the integer-cache slot for small boxed
	// integers, used by the big-integer re-boxing path at escape time.
	IntCacheIndex(v int64) (int, bool)
}

// RegisterAllocator mints concrete SSA registers. Implementations must
// guarantee monotonically unique RegIDs for NewRegister and a correctly
// incrementing Version for NewVersion, mirroring the host compiler's SSA
// renaming scheme.
type RegisterAllocator interface {
	// NewRegister allocates a brand-new concrete register of the given
	// kind (used by delete-fastcreate to materialize hypothetical
	// registers into concrete ones).
	NewRegister(kind RegKind) Operand

	// NewVersion allocates a new SSA version of an existing original
	// register (used by set-with-new-version rewrites).
	NewVersion(reg RegID, kind RegKind) Operand

	// CurrentVersion returns the most recently allocated version of reg.
	CurrentVersion(reg RegID) (Operand, bool)
}

// FactStore is the canonical (non-speculative) SSA fact table maintained
// by the rest of the compiler. PEA only ever reads it (to seed a shadow
// fact from a concrete guard already proven upstream) and writes it when a
// rewrite changes what is known about a concrete register; it never
// mutates it speculatively — see package facts for PEA's own shadow facts.
type FactStore interface {
	Get(op Operand) (TypeFact, bool)
	Set(op Operand, f TypeFact)
	Copy(dst, src Operand)
}

// DeoptUsageSink records that a register must be kept live at a deopt
// point, i.e. "deopt-usage addition by register" from spec.md §6.
type DeoptUsageSink interface {
	AddUsage(idx DeoptIndex, op Operand)
}

// SlotInterner interns a reference to an object so that a later pass (or
// the deopt trampoline) can look it up by a small integer slot —
// "spesh-slot interning for referenced objects" in spec.md §6.
type SlotInterner interface {
	InternSlot(value any) int
}
