// Package ir implements the producer-facing intermediate representation:
// Function, Block, Statement, Value, ValueInfo/ReadAllocation, the
// dominator-tree-directed register allocator, and the independent
// verifier. It is grounded on the teacher's register_allocator.go
// (LiveInterval/spill-slot vocabulary) and calling_convention.go (argument
// and callee-saved register sets, now sourced from package reg), adapted
// from the teacher's string-keyed, linear-scan model to the CFG-aware,
// dominator-tree-walking allocator spec.md requires.
package ir

import "github.com/xyproto/rv64ssa/reg"

// Value is a reference to an SSA value: either a compile-time constant, or
// the result of a specific statement in a specific block of a specific
// function. The zero register x0 is modeled entirely at the Value level:
// ReadRegister(x0) always yields Constant(0), and no Value is ever produced
// that targets x0 as an allocation (spec.md §3).
type Value struct {
	constant  uint64
	isConst   bool
	funcID    uint64
	blockID   int
	stmtIndex int
}

// ConstantValue returns a Value holding the compile-time constant v.
func ConstantValue(v uint64) Value {
	return Value{constant: v, isConst: true}
}

// resultValue returns a Value referring to the result of statement index
// within block blockID of function funcID. Unexported: only the IR
// producer (via Block.append*) may mint result values, so every Result
// Value in existence was created against a real, still-live statement.
func resultValue(funcID uint64, blockID, stmtIndex int) Value {
	return Value{funcID: funcID, blockID: blockID, stmtIndex: stmtIndex, isConst: false}
}

// IsConstant reports whether v is a compile-time constant.
func (v Value) IsConstant() bool {
	return v.isConst
}

// Constant returns the constant and true if v is a compile-time constant,
// or (0, false) otherwise.
func (v Value) Constant() (uint64, bool) {
	if !v.isConst {
		return 0, false
	}
	return v.constant, true
}

// Result returns the (function, block, statement index) a non-constant
// Value refers to, and true; or false if v is a constant.
func (v Value) Result() (funcID uint64, blockID, stmtIndex int, ok bool) {
	if v.isConst {
		return 0, 0, 0, false
	}
	return v.funcID, v.blockID, v.stmtIndex, true
}

// belongsTo reports whether a non-constant Value was produced by function
// funcID. Constants belong to every function.
func (v Value) belongsTo(funcID uint64) bool {
	return v.isConst || v.funcID == funcID
}

// id is a stable identity for tracking a Value through the allocator's
// live-location maps: constants never need tracking (they never occupy a
// register slot across statements), so only Results carry one.
type valueID struct {
	blockID   int
	stmtIndex int
}

func (v Value) id() (valueID, bool) {
	if v.isConst {
		return valueID{}, false
	}
	return valueID{blockID: v.blockID, stmtIndex: v.stmtIndex}, true
}

// ImmediateKind classifies how a constant operand may be folded into an
// instruction's immediate field.
type ImmediateKind int

const (
	// ImmediateNone means the operand must always be materialized into a
	// register, even if it is a compile-time constant.
	ImmediateNone ImmediateKind = iota
	// ImmediateUnlimited means any constant, of any magnitude, may bypass a
	// register entirely: the consumer (e.g. WriteRegister, whose materializer
	// lowers a constant value_info via a free-standing li sequence) has no
	// field-width limit of its own.
	ImmediateUnlimited
	// ImmediateSized means a constant may be folded only if it fits in the
	// given bit width, signed or unsigned as specified.
	ImmediateSized
)

// ImmediatePolicy describes whether a constant operand may be folded into
// an instruction's immediate field or must be materialized into a register.
type ImmediatePolicy struct {
	Kind   ImmediateKind
	Bits   int
	Signed bool
}

// NoImmediate is the policy for an operand that must always occupy a
// register (e.g. Add's first operand).
var NoImmediate = ImmediatePolicy{Kind: ImmediateNone}

// UnlimitedImmediate is the policy for an operand whose constant value is
// always materialized by the consumer itself (e.g. WriteRegister's value),
// so it never needs a register of its own.
var UnlimitedImmediate = ImmediatePolicy{Kind: ImmediateUnlimited}

// SizedImmediate returns the policy for an operand whose constant value may
// be folded into the instruction only if it fits in the given signed or
// unsigned bit width.
func SizedImmediate(bits int, signed bool) ImmediatePolicy {
	return ImmediatePolicy{Kind: ImmediateSized, Bits: bits, Signed: signed}
}

// NeedsRegister reports whether v must be materialized into a register
// under this policy. A non-constant Value always needs a register: only a
// constant's immediate-folding eligibility depends on the policy.
func (p ImmediatePolicy) NeedsRegister(v Value) bool {
	c, ok := v.Constant()
	if !ok {
		return true
	}
	switch p.Kind {
	case ImmediateUnlimited:
		return false
	case ImmediateSized:
		return !fitsWidth(c, p.Bits, p.Signed)
	default:
		return true
	}
}

func fitsWidth(c uint64, bits int, signed bool) bool {
	if bits <= 0 || bits >= 64 {
		return true
	}
	if signed {
		lo := -(int64(1) << (bits - 1))
		hi := int64(1)<<(bits-1) - 1
		v := int64(c)
		return v >= lo && v <= hi
	}
	hi := uint64(1)<<bits - 1
	return c <= hi
}

// FitsSigned12 reports whether c, interpreted as a signed 64-bit value,
// fits the signed 12-bit range RV64I I-type immediates use.
func FitsSigned12(c uint64) bool {
	return fitsWidth(c, 12, true)
}

// This blank reference to reg.Zero is unused outside documentation; kept to
// show the pairing between ir.Value and reg.Register without introducing an
// import cycle (reg never imports ir).
var _ = reg.Zero
