package core

// Opcode names an SSA instruction's operation. Opcodes are plain strings
// (rather than a dense int enum) so that the textual assembly reader in
// core/asmtext and the CLI in cmd/peaopt can round-trip a program without a
// separate mnemonic table; the dispatch table in package analyze switches
// on these constants.
type Opcode string

// Allocation-introducing opcodes.
const (
	// OpFastCreate allocates and zero-initializes an opaque object of a
	// given stable type in one shot.
	OpFastCreate Opcode = "fastcreate"

	// OpBigIntMaterialize is produced by an earlier pass: it boxes an
	// already-unboxed big-integer value (held in Operands[4] of the
	// instruction, per spec.md §4.2) into a fresh opaque object.
	OpBigIntMaterialize Opcode = "materialize_bi"
)

// Aliasing / attribute opcodes.
const (
	// OpSet is a plain register move.
	OpSet Opcode = "set"

	// OpBindAttrRef, OpBindAttrInt, OpBindAttrFloat, OpBindAttrStr and
	// OpBindAttrBigInt bind one attribute of an opaque object. They share a
	// dispatch path ("attribute bind, all kinds") that differs only in
	// which RegKind the bound value must carry.
	OpBindAttrRef    Opcode = "bindattr_o"
	OpBindAttrInt    Opcode = "bindattr_i"
	OpBindAttrFloat  Opcode = "bindattr_n"
	OpBindAttrStr    Opcode = "bindattr_s"
	OpBindAttrBigInt Opcode = "bindattr_bi"

	// OpGetAttrRef, OpGetAttrInt, OpGetAttrFloat, OpGetAttrStr and
	// OpGetAttrBigInt are plain (non-auto-vivifying) attribute reads.
	OpGetAttrRef    Opcode = "getattr_o"
	OpGetAttrInt    Opcode = "getattr_i"
	OpGetAttrFloat  Opcode = "getattr_n"
	OpGetAttrStr    Opcode = "getattr_s"
	OpGetAttrBigInt Opcode = "getattr_bi"

	// OpGetAttrVivifyType and OpGetAttrVivifyConcrete are auto-vivifying
	// attribute reads: if the attribute was never written, they
	// materialize a default value (a type object, or a cloned prototype)
	// on first read instead of yielding null.
	OpGetAttrVivifyType     Opcode = "getattr_vt"
	OpGetAttrVivifyConcrete Opcode = "getattr_vc"

	// OpDecontInt decontainerizes a boxed int-like value; on a tracked
	// opaque with a big-integer attribute it can be rewritten to unbox the
	// synthetic register directly.
	OpDecontInt Opcode = "decont_i"
)

// Big-integer arithmetic opcodes (boxed forms). Package analyze plans the
// rewrite of each one to the matching _bi form below without checking its
// operands' types; package transform reloads an operand that does not come
// from a tracked allocation with OpGetBigInt.
const (
	OpAddBigInt Opcode = "add_I"
	OpSubBigInt Opcode = "sub_I"
	OpMulBigInt Opcode = "mul_I"
	OpGCDBigInt Opcode = "gcd_I"
	OpNegBigInt Opcode = "neg_I"
	OpAbsBigInt Opcode = "abs_I"

	OpCmpBigInt Opcode = "cmp_I"
	OpEqBigInt  Opcode = "eq_I"
	OpNeBigInt  Opcode = "ne_I"
	OpLtBigInt  Opcode = "lt_I"
	OpLeBigInt  Opcode = "le_I"
	OpGtBigInt  Opcode = "gt_I"
	OpGeBigInt  Opcode = "ge_I"
)

// Unboxed big-integer opcodes emitted by decomposition.
const (
	OpAddUnboxedBigInt Opcode = "add_bi"
	OpSubUnboxedBigInt Opcode = "sub_bi"
	OpMulUnboxedBigInt Opcode = "mul_bi"
	OpGCDUnboxedBigInt Opcode = "gcd_bi"
	OpNegUnboxedBigInt Opcode = "neg_bi"
	OpAbsUnboxedBigInt Opcode = "abs_bi"

	// OpCmpUnboxedBigInt and friends are the unboxed forms of the boxed
	// relational ops above, produced by the same decomposition.
	OpCmpUnboxedBigInt Opcode = "cmp_bi"
	OpEqUnboxedBigInt  Opcode = "eq_bi"
	OpNeUnboxedBigInt  Opcode = "ne_bi"
	OpLtUnboxedBigInt  Opcode = "lt_bi"
	OpLeUnboxedBigInt  Opcode = "le_bi"
	OpGtUnboxedBigInt  Opcode = "gt_bi"
	OpGeUnboxedBigInt  Opcode = "ge_bi"

	// OpGetBigInt loads the big-integer payload out of an opaque object at
	// a known byte offset, used as a fallback when an operand of a
	// decomposed arithmetic op did not come from a still-replaceable
	// allocation.
	OpGetBigInt Opcode = "get_bigint"

	// OpUnboxBigInt replaces a decont_i on a tracked opaque with a direct
	// unbox of its synthetic big-integer register.
	OpUnboxBigInt Opcode = "unbox_bigint"
)

// Guards, profiling, control flow.
const (
	// OpGuardConc asserts a register holds a concrete object of a specific
	// type, deoptimizing if not.
	OpGuardConc Opcode = "guardconc"

	// OpProfAllocated records an allocation-profiling event; rewritten to
	// OpProfReplaced when its object is scalar-replaced.
	OpProfAllocated Opcode = "prof_allocated"
	OpProfReplaced  Opcode = "prof_replaced"

	// OpPhi merges values from multiple predecessors.
	OpPhi Opcode = "phi"

	// OpReturnInt, OpReturnObj and similar terminate a frame, always
	// requiring a real object for any Obj-kind operand.
	OpReturnInt Opcode = "return_i"
	OpReturnObj Opcode = "return_o"
)

// Call-argument opcodes. An instruction carrying one of these may never be
// used as a materialization insertion anchor (spec.md §4.5); the planner
// walks backward past them to find a safe insertion point.
const (
	OpArgInt       Opcode = "arg_i"
	OpArgNum       Opcode = "arg_n"
	OpArgStr       Opcode = "arg_s"
	OpArgObj       Opcode = "arg_o"
	OpArgConstInt  Opcode = "argconst_i"
	OpArgConstNum  Opcode = "argconst_n"
	OpArgConstStr  Opcode = "argconst_s"
	OpArgConstObj  Opcode = "argconst_o"
)

// IsArgOpcode reports whether op is one of the call-argument-sequence
// opcodes that a materialization must never be inserted inside of.
func IsArgOpcode(op Opcode) bool {
	switch op {
	case OpArgInt, OpArgNum, OpArgStr, OpArgObj,
		OpArgConstInt, OpArgConstNum, OpArgConstStr, OpArgConstObj:
		return true
	default:
		return false
	}
}

// IsBigIntBinaryOp reports whether op is a producing binary big-integer op.
func IsBigIntBinaryOp(op Opcode) bool {
	switch op {
	case OpAddBigInt, OpSubBigInt, OpMulBigInt, OpGCDBigInt:
		return true
	default:
		return false
	}
}

// IsBigIntUnaryOp reports whether op is a producing unary big-integer op.
func IsBigIntUnaryOp(op Opcode) bool {
	switch op {
	case OpNegBigInt, OpAbsBigInt:
		return true
	default:
		return false
	}
}

// IsBigIntRelationalOp reports whether op is a big-integer relational op.
func IsBigIntRelationalOp(op Opcode) bool {
	switch op {
	case OpCmpBigInt, OpEqBigInt, OpNeBigInt, OpLtBigInt, OpLeBigInt, OpGtBigInt, OpGeBigInt:
		return true
	default:
		return false
	}
}

// IsBindAttrOp reports whether op binds an attribute, and if so which
// RegKind the bound value must carry.
func IsBindAttrOp(op Opcode) (RegKind, bool) {
	switch op {
	case OpBindAttrRef:
		return RegKindObj, true
	case OpBindAttrInt:
		return RegKindInt, true
	case OpBindAttrFloat:
		return RegKindFloat, true
	case OpBindAttrStr:
		return RegKindStr, true
	case OpBindAttrBigInt:
		return RegKindBigInt, true
	default:
		return RegKindInvalid, false
	}
}

// UnboxedBigIntForm returns the unboxed opcode a boxed big-integer op
// decomposes to, and whether op is a recognized boxed big-integer op at
// all.
func UnboxedBigIntForm(op Opcode) (Opcode, bool) {
	switch op {
	case OpAddBigInt:
		return OpAddUnboxedBigInt, true
	case OpSubBigInt:
		return OpSubUnboxedBigInt, true
	case OpMulBigInt:
		return OpMulUnboxedBigInt, true
	case OpGCDBigInt:
		return OpGCDUnboxedBigInt, true
	case OpNegBigInt:
		return OpNegUnboxedBigInt, true
	case OpAbsBigInt:
		return OpAbsUnboxedBigInt, true
	case OpCmpBigInt:
		return OpCmpUnboxedBigInt, true
	case OpEqBigInt:
		return OpEqUnboxedBigInt, true
	case OpNeBigInt:
		return OpNeUnboxedBigInt, true
	case OpLtBigInt:
		return OpLtUnboxedBigInt, true
	case OpLeBigInt:
		return OpLeUnboxedBigInt, true
	case OpGtBigInt:
		return OpGtUnboxedBigInt, true
	case OpGeBigInt:
		return OpGeUnboxedBigInt, true
	default:
		return "", false
	}
}

// IsGetAttrOp reports whether op is a plain (non-vivifying) attribute read,
// and if so which RegKind it yields.
func IsGetAttrOp(op Opcode) (RegKind, bool) {
	switch op {
	case OpGetAttrRef:
		return RegKindObj, true
	case OpGetAttrInt:
		return RegKindInt, true
	case OpGetAttrFloat:
		return RegKindFloat, true
	case OpGetAttrStr:
		return RegKindStr, true
	case OpGetAttrBigInt:
		return RegKindBigInt, true
	default:
		return RegKindInvalid, false
	}
}
