package ir

import "github.com/xyproto/rv64ssa/reg"

// RegisterFile is a snapshot of which SSA value, if any, each physical
// register holds at a particular point in the program — used as a block's
// live-in boundary, computed by the allocator (which combines successors'
// snapshots with Merge) and compared by Verify against its own simulated
// state, which it keeps in plain maps rather than in a RegisterFile.
type RegisterFile struct {
	occupant map[reg.Register]valueID
}

// NewRegisterFile returns an empty RegisterFile: no register holds any
// live value.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{occupant: make(map[reg.Register]valueID)}
}

// Get returns the value occupying r, and true, or the zero valueID and
// false if r is free.
func (rf *RegisterFile) Get(r reg.Register) (valueID, bool) {
	v, ok := rf.occupant[r]
	return v, ok
}

// Set records that r now holds v.
func (rf *RegisterFile) Set(r reg.Register, v valueID) {
	rf.occupant[r] = v
}

// Clear removes any occupant from r.
func (rf *RegisterFile) Clear(r reg.Register) {
	delete(rf.occupant, r)
}

// Occupants returns every (register, value) pair currently recorded,
// order unspecified.
func (rf *RegisterFile) Occupants() map[reg.Register]valueID {
	out := make(map[reg.Register]valueID, len(rf.occupant))
	for r, v := range rf.occupant {
		out[r] = v
	}
	return out
}

// Clone returns an independent copy of rf.
func (rf *RegisterFile) Clone() *RegisterFile {
	c := NewRegisterFile()
	for r, v := range rf.occupant {
		c.occupant[r] = v
	}
	return c
}

// Merge combines files, used by the allocator when a block has more than
// one successor and their register-file snapshots must agree. A register
// named by both sides must
// name the same value in both, or Merge fails with InvalidMerge; a register
// named by only one side carries over unchanged.
func Merge(blockID int, files ...*RegisterFile) (*RegisterFile, error) {
	merged := NewRegisterFile()
	for _, rf := range files {
		if rf == nil {
			continue
		}
		for r, v := range rf.occupant {
			if existing, ok := merged.occupant[r]; ok && existing != v {
				return nil, &AllocationError{
					Kind:    InvalidMerge,
					BlockID: blockID,
					Detail:  "conflicting occupants for register " + r.String(),
				}
			}
			merged.occupant[r] = v
		}
	}
	return merged, nil
}
