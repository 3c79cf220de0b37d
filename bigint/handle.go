package bigint

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Handle is the decomposed, unboxed representation of a big-integer value:
// a 256-bit magnitude plus sign. It is what a synthetic big-integer
// register (core.RegKindBigInt) holds once an allocation's big-integer
// attribute has been scalar-replaced.
//
// 256 bits comfortably covers the fast-path range a tracing JIT's
// big-integer decomposition is meant to shortcut; a value that would not
// fit is expected to have already been left boxed by the host compiler's
// earlier specialization stage, so Handle never needs to represent
// arbitrary precision itself.
type Handle struct {
	mag uint256.Int
	neg bool
}

// Zero is the additive identity.
var Zero = Handle{}

// FromInt64 builds a Handle from a machine int64.
func FromInt64(v int64) Handle {
	neg := v < 0
	u := uint64(v)
	if neg {
		u = uint64(-v)
	}
	var m uint256.Int
	m.SetUint64(u)
	return Handle{mag: m, neg: neg && !m.IsZero()}
}

// FromBig builds a Handle from a math/big.Int, used at the boundary with
// the host compiler's boxed representation.
func FromBig(b *big.Int) Handle {
	if b == nil || b.Sign() == 0 {
		return Zero
	}
	abs := new(big.Int).Abs(b)
	var m uint256.Int
	m.SetFromBig(abs)
	return Handle{mag: m, neg: b.Sign() < 0}
}

// ToBig converts h back to a math/big.Int, used when re-boxing at
// materialization or escape.
func (h Handle) ToBig() *big.Int {
	r := h.mag.ToBig()
	if h.neg {
		r.Neg(r)
	}
	return r
}

// IsZero reports whether h is the zero value.
func (h Handle) IsZero() bool { return h.mag.IsZero() }

// Sign returns -1, 0 or 1.
func (h Handle) Sign() int {
	if h.mag.IsZero() {
		return 0
	}
	if h.neg {
		return -1
	}
	return 1
}

// Add, Sub, Mul and GCD round-trip through math/big since uint256 is an
// unsigned fixed-width type with no native support for signed magnitude
// arithmetic or GCD; this mirrors how the host VM's own boxed big-integer
// path is implemented, and keeps Handle's semantics unambiguous even near
// its 256-bit ceiling.
func (h Handle) Add(o Handle) Handle { return FromBig(new(big.Int).Add(h.ToBig(), o.ToBig())) }
func (h Handle) Sub(o Handle) Handle { return FromBig(new(big.Int).Sub(h.ToBig(), o.ToBig())) }
func (h Handle) Mul(o Handle) Handle { return FromBig(new(big.Int).Mul(h.ToBig(), o.ToBig())) }

// GCD returns the non-negative greatest common divisor of h and o.
func (h Handle) GCD(o Handle) Handle {
	a := new(big.Int).Abs(h.ToBig())
	b := new(big.Int).Abs(o.ToBig())
	return FromBig(new(big.Int).GCD(nil, nil, a, b))
}

// Neg returns -h.
func (h Handle) Neg() Handle {
	if h.mag.IsZero() {
		return h
	}
	return Handle{mag: h.mag, neg: !h.neg}
}

// Abs returns |h|.
func (h Handle) Abs() Handle { return Handle{mag: h.mag} }

// Cmp returns -1, 0 or 1 comparing h to o.
func (h Handle) Cmp(o Handle) int { return h.ToBig().Cmp(o.ToBig()) }

func (h Handle) Eq(o Handle) bool { return h.Cmp(o) == 0 }
func (h Handle) Ne(o Handle) bool { return h.Cmp(o) != 0 }
func (h Handle) Lt(o Handle) bool { return h.Cmp(o) < 0 }
func (h Handle) Le(o Handle) bool { return h.Cmp(o) <= 0 }
func (h Handle) Gt(o Handle) bool { return h.Cmp(o) > 0 }
func (h Handle) Ge(o Handle) bool { return h.Cmp(o) >= 0 }

// FitsInt64 reports whether h's value round-trips through an int64.
func (h Handle) FitsInt64() bool { return h.ToBig().IsInt64() }

// Int64 returns h as an int64. Callers must check FitsInt64 first; a value
// that does not fit is truncated per math/big.Int.Int64's own contract.
func (h Handle) Int64() int64 { return h.ToBig().Int64() }

// String renders h in decimal, for dumps and error messages.
func (h Handle) String() string { return h.ToBig().String() }
