package core

// InstrID identifies an instruction within its graph for debugging and
// deopt bookkeeping; it is not reused across instructions, even ones that
// the transformer later deletes.
type InstrID uint32

// DeoptIndex names a point in the frame's deopt table. A zero value means
// "no deopt point". Per spec.md §4.7 an index may be either a concrete
// deopt index (materialized by the interpreter on bail-out) or a synthetic
// index used only to look up which synthetic registers must be kept live;
// Synthetic distinguishes the two without needing a second field at every
// call site.
type DeoptIndex struct {
	Index     uint32
	Synthetic bool
}

// IsZero reports whether d names no deopt point at all.
func (d DeoptIndex) IsZero() bool { return d.Index == 0 && !d.Synthetic }

// Instruction is one SSA operation in a basic block. Fields not relevant to
// an opcode are left zero; which fields matter for a given Op is documented
// on the Op constants in opcode.go.
type Instruction struct {
	ID    InstrID
	Op    Opcode
	Block *BasicBlock

	// Operands are the instruction's SSA inputs, in opcode-defined order.
	Operands []Operand
	// Result is the SSA register this instruction defines, if any.
	Result Operand

	// StableType is the opaque type index relevant to this opcode: the
	// type to allocate (OpFastCreate), the guarded type (OpGuardConc), or
	// the type whose stable slot is reported (OpProfAllocated).
	StableType uint32

	// AttrIndex is the attribute position within StableType's layout,
	// relevant to bind/getattr opcodes and to OpDecontInt/OpUnboxBigInt
	// when resolving the big-integer attribute.
	AttrIndex int

	// MayDeopt marks an instruction that can abandon specialization and
	// fall back to the interpreter (guards, calls, anything that can
	// throw). The analyzer plans deopt-point bookkeeping for every such
	// instruction, per spec.md §4.2 step 1.
	MayDeopt bool
	// Deopt is meaningful only when MayDeopt is true.
	Deopt DeoptIndex

	// Comment is attached by earlier passes or by this one (e.g. a
	// materialize-no-op note); purely for dumps.
	Comment string

	deleted bool
}

// Deleted reports whether the transformer has removed this instruction. A
// deleted instruction remains reachable from its former Block's slice only
// until the block is compacted.
func (ins *Instruction) Deleted() bool { return ins != nil && ins.deleted }

// UsesReg reports whether any operand of ins names reg.
func (ins *Instruction) UsesReg(reg RegID) bool {
	for _, o := range ins.Operands {
		if o.Reg == reg {
			return true
		}
	}
	return false
}
