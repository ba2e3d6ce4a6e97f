package ir

import "fmt"

// AllocationErrorKind classifies why register allocation failed.
type AllocationErrorKind int

const (
	// InvalidMerge means two predecessor blocks' register-file snapshots
	// disagree about which value occupies some register.
	InvalidMerge AllocationErrorKind = iota
	// InvalidConstraint means a WriteRegister targeted fp, the frame
	// pointer the allocator reserves for its own spill bookkeeping and
	// never hands out: a producer writing there would silently corrupt the
	// materializer's fp-relative spill offsets, so the allocator rejects it
	// instead. Writing to x0, by contrast, is legal: spec.md §3 defines it
	// as a silently discarded no-op, not an error.
	InvalidConstraint
	// InvalidAllocationValue means Allocate or Verify was called on a
	// Function whose Finish has not run, so there is no control-flow graph
	// to walk.
	InvalidAllocationValue
)

func (k AllocationErrorKind) String() string {
	switch k {
	case InvalidMerge:
		return "invalid_merge"
	case InvalidConstraint:
		return "invalid_constraint"
	case InvalidAllocationValue:
		return "invalid_value"
	default:
		return "unknown"
	}
}

// AllocationError reports why Allocate could not complete.
type AllocationError struct {
	Kind    AllocationErrorKind
	BlockID int
	Detail  string
}

func (e *AllocationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("ir: allocation error in block %d: %s", e.BlockID, e.Kind)
	}
	return fmt.Sprintf("ir: allocation error in block %d: %s: %s", e.BlockID, e.Kind, e.Detail)
}
