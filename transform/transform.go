package transform

import "github.com/vmkit/pea/core"

// Kind tags which rewrite a Transform performs. A flat struct with a Kind
// enum and a single apply-site switch is used instead of per-rewrite types
// behind an interface: every Transform is a small, comparable value the
// planner can build without allocating a closure or a vtable, and the
// apply-site switch is the one place a reviewer needs to read to see every
// mutation the pass can make to a graph.
type Kind uint8

const (
	// KindDeleteFastCreate removes an OpFastCreate instruction whose
	// allocation was fully scalar-replaced: every attribute it ever needed
	// now lives in a concrete register instead of on a real heap object.
	KindDeleteFastCreate Kind = iota

	// KindGetAttrToSet rewrites a plain attribute read into a register
	// move from the attribute's concrete register.
	KindGetAttrToSet

	// KindBindAttrToSet rewrites an attribute write into a register move
	// into the attribute's concrete register.
	KindBindAttrToSet

	// KindDeleteSet removes a register move made redundant by an earlier
	// rewrite (e.g. a bindattr-to-set whose source already is the target).
	KindDeleteSet

	// KindGuardToSet rewrites a guard that can no longer fail (its operand
	// is statically known concrete) into a plain move, dropping its deopt
	// bookkeeping.
	KindGuardToSet

	// KindAddDeoptPoint registers that Instr's deopt point needs
	// materialize-info for Alloc, computed lazily the first time it is
	// actually reached.
	KindAddDeoptPoint

	// KindAddDeoptUsage records that DeoptOp must be kept live at
	// DeoptIndex.
	KindAddDeoptUsage

	// KindProfAllocated rewrites an allocation-profiling event to record
	// that its object was replaced rather than allocated.
	KindProfAllocated

	// KindDecomposeBigIntBinary rewrites a boxed binary big-integer op
	// (add_I/sub_I/mul_I/gcd_I) into its unboxed form.
	KindDecomposeBigIntBinary

	// KindDecomposeBigIntUnary rewrites a boxed unary big-integer op
	// (neg_I/abs_I) into its unboxed form.
	KindDecomposeBigIntUnary

	// KindDecomposeBigIntRelational rewrites a boxed big-integer
	// comparison into its unboxed form; the result stays a plain int.
	KindDecomposeBigIntRelational

	// KindUnboxBigInt rewrites a decont_i on a tracked big-integer
	// attribute into a direct unbox of its synthetic register.
	KindUnboxBigInt

	// KindMaterialize emits the instruction sequence that reconstructs a
	// real heap object for Handle.Alloc at Handle.InsertBefore.
	KindMaterialize

	// KindVivifyType rewrites an auto-vivifying type-object read whose
	// backing allocation was replaced into an explicit vivification op.
	KindVivifyType

	// KindVivifyConcrete is KindVivifyType's counterpart for
	// concrete-prototype vivification.
	KindVivifyConcrete

	// KindUnmaterializeBigInt removes an OpBigIntMaterialize box whose
	// payload was itself scalar-replaced, leaving the unboxed value live
	// in its synthetic register instead.
	KindUnmaterializeBigInt
)

// String renders a Kind for dumps and test failure messages.
func (k Kind) String() string {
	switch k {
	case KindDeleteFastCreate:
		return "delete-fastcreate"
	case KindGetAttrToSet:
		return "getattr-to-set"
	case KindBindAttrToSet:
		return "bindattr-to-set"
	case KindDeleteSet:
		return "delete-set"
	case KindGuardToSet:
		return "guard-to-set"
	case KindAddDeoptPoint:
		return "add-deopt-point"
	case KindAddDeoptUsage:
		return "add-deopt-usage"
	case KindProfAllocated:
		return "prof-allocated"
	case KindDecomposeBigIntBinary:
		return "decompose-bigint-binary"
	case KindDecomposeBigIntUnary:
		return "decompose-bigint-unary"
	case KindDecomposeBigIntRelational:
		return "decompose-bigint-relational"
	case KindUnboxBigInt:
		return "unbox-bigint"
	case KindMaterialize:
		return "materialize"
	case KindVivifyType:
		return "vivify-type"
	case KindVivifyConcrete:
		return "vivify-concrete"
	case KindUnmaterializeBigInt:
		return "unmaterialize-bigint"
	default:
		return "unknown"
	}
}

// Transform is one planned rewrite. Only the fields relevant to Kind are
// populated; which ones matter is documented on each Kind constant above
// and implemented in the apply-site switch in apply.go.
type Transform struct {
	Kind Kind

	Instr *core.Instruction
	Alloc *core.Allocation
	Other *core.Allocation

	AttrIndex int
	HypReg    core.HypReg

	DeoptIndex core.DeoptIndex
	DeoptOp    core.Operand

	BigIntOp core.Opcode

	// LeftOperand/RightOperand are the original boxed big-integer operands
	// of the arithmetic instruction being decomposed. LeftHyp/RightHyp and
	// LeftFromAlloc/RightFromAlloc identify the still-tracked allocation
	// (if any) each operand traces back to; LeftAttrIndex/RightAttrIndex
	// is that allocation's big-integer attribute index, used to build a
	// fallback OpGetBigInt load when the allocation is no longer
	// replaceable by the time Apply runs.
	LeftOperand    core.Operand
	LeftHyp        core.HypReg
	LeftFromAlloc  *core.Allocation
	LeftAttrIndex  int
	RightOperand   core.Operand
	RightHyp       core.HypReg
	RightFromAlloc *core.Allocation
	RightAttrIndex int

	// ResultAlloc is the synthetic allocation try_tracked for a binary or
	// unary (non-relational) decomposition's result, so a later instruction
	// that still references the original boxed result operand resolves it
	// through the allocation/hyp-register mechanism instead of a dangling
	// SSA reference. Nil for relational decompositions, which produce a
	// plain int rather than another big-integer value.
	ResultAlloc *core.Allocation

	Handle *core.MaterializationHandle
}
