package graphbuilder

import (
	"fmt"

	"github.com/vmkit/pea/core"
)

// Instr builds one *core.Instruction, resolving its destination and operand
// register names against a block's Scope when appended. Chain the setter
// methods, then pass the result straight to a Block's fill function via
// Append — the same shape as asmtext's per-line parse, just built from Go
// instead of text.
type Instr struct {
	op         core.Opcode
	destName   string
	destKind   core.RegKind
	hasDest    bool
	uses       []string
	stableType uint32
	attrIndex  int
	mayDeopt   bool
	deoptIdx   uint32
	synthetic  bool
	comment    string
}

// NewInstr starts building an instruction with the given opcode.
func NewInstr(op core.Opcode) *Instr { return &Instr{op: op} }

// Dest names the register this instruction defines, minted with kind the
// first time it is seen.
func (i *Instr) Dest(name string, kind core.RegKind) *Instr {
	i.destName, i.destKind, i.hasDest = name, kind, true
	return i
}

// Use appends an already-defined register as an operand, in order.
func (i *Instr) Use(name string) *Instr {
	i.uses = append(i.uses, name)
	return i
}

// Type sets the opaque stable-type index (fastcreate, guardconc, prof_allocated).
func (i *Instr) Type(stable uint32) *Instr {
	i.stableType = stable
	return i
}

// AttrIdx sets the attribute position (bind/getattr, decont_i, unbox_bigint).
func (i *Instr) AttrIdx(idx int) *Instr {
	i.attrIndex = idx
	return i
}

// Deopt marks this instruction as able to bail to the interpreter at point
// idx. synthetic mirrors core.DeoptIndex.Synthetic.
func (i *Instr) Deopt(idx uint32, synthetic bool) *Instr {
	i.mayDeopt, i.deoptIdx, i.synthetic = true, idx, synthetic
	return i
}

// Comment attaches a dump-only note.
func (i *Instr) Comment(c string) *Instr {
	i.comment = c
	return i
}

// Append resolves every named operand against s, builds the instruction and
// appends it to b. It fails if any Use names a register not yet defined.
func (i *Instr) Append(b *core.BasicBlock, s *Scope) error {
	ins := &core.Instruction{
		Op:         i.op,
		StableType: i.stableType,
		AttrIndex:  i.attrIndex,
		Comment:    i.comment,
	}
	if i.hasDest {
		ins.Result = s.Reg(i.destName, i.destKind)
	}
	for _, name := range i.uses {
		op, err := s.Use(name)
		if err != nil {
			return fmt.Errorf("instr %s: %w", i.op, err)
		}
		ins.Operands = append(ins.Operands, op)
	}
	if i.mayDeopt {
		ins.MayDeopt = true
		ins.Deopt = core.DeoptIndex{Index: i.deoptIdx, Synthetic: i.synthetic}
	}
	b.AddInstr(ins)
	return nil
}

// Seq appends every instruction in order, stopping at the first error —
// the usual way a Block's fill builds a straight-line sequence.
func Seq(instrs ...*Instr) func(b *core.BasicBlock, s *Scope) error {
	return func(b *core.BasicBlock, s *Scope) error {
		for _, ins := range instrs {
			if err := ins.Append(b, s); err != nil {
				return err
			}
		}
		return nil
	}
}

// FastCreate builds a "dest:obj = fastcreate type=stable" instruction.
func FastCreate(dest string, stable uint32) *Instr {
	return NewInstr(core.OpFastCreate).Dest(dest, core.RegKindObj).Type(stable)
}

// BindAttr builds the bindattr_* instruction matching kind, binding value
// into obj's attribute attrIdx.
func BindAttr(kind core.RegKind, obj, value string, attrIdx int) *Instr {
	return NewInstr(bindAttrOpcode(kind)).Use(obj).Use(value).AttrIdx(attrIdx)
}

// GetAttr builds the getattr_* instruction matching kind, reading obj's
// attribute attrIdx into dest.
func GetAttr(kind core.RegKind, dest, obj string, attrIdx int) *Instr {
	return NewInstr(getAttrOpcode(kind)).Dest(dest, kind).Use(obj).AttrIdx(attrIdx)
}

// Return builds a return_* instruction for the given RegKind.
func Return(kind core.RegKind, value string) *Instr {
	var op core.Opcode
	switch kind {
	case core.RegKindObj:
		op = core.OpReturnObj
	default:
		op = core.OpReturnInt
	}
	return NewInstr(op).Use(value)
}

// Guard builds an OpGuardConc guarding value against stable, deoptimizing
// to deoptIdx on mismatch.
func Guard(value string, stable uint32, deoptIdx uint32) *Instr {
	return NewInstr(core.OpGuardConc).Use(value).Type(stable).Deopt(deoptIdx, false)
}

// Escape builds an arbitrary opcode taking value as its sole operand, for
// fixtures that need an instruction the analyzer does not special-case —
// the standard way these tests force an allocation to escape.
func Escape(op core.Opcode, value string) *Instr {
	return NewInstr(op).Use(value)
}

// bindAttrOpcode and getAttrOpcode return "" for a kind with no
// bindattr_*/getattr_* form (RegKindInvalid); BindAttr/GetAttr are only
// ever called with one of the five handled kinds in practice, so Append
// building an instruction with an empty Op is a fixture bug to fix at the
// call site, not a runtime condition to guard against.
func bindAttrOpcode(kind core.RegKind) core.Opcode {
	switch kind {
	case core.RegKindObj:
		return core.OpBindAttrRef
	case core.RegKindInt:
		return core.OpBindAttrInt
	case core.RegKindFloat:
		return core.OpBindAttrFloat
	case core.RegKindStr:
		return core.OpBindAttrStr
	case core.RegKindBigInt:
		return core.OpBindAttrBigInt
	default:
		return ""
	}
}

func getAttrOpcode(kind core.RegKind) core.Opcode {
	switch kind {
	case core.RegKindObj:
		return core.OpGetAttrRef
	case core.RegKindInt:
		return core.OpGetAttrInt
	case core.RegKindFloat:
		return core.OpGetAttrFloat
	case core.RegKindStr:
		return core.OpGetAttrStr
	case core.RegKindBigInt:
		return core.OpGetAttrBigInt
	default:
		return ""
	}
}
