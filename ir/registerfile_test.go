package ir

import (
	"errors"
	"testing"

	"github.com/xyproto/rv64ssa/reg"
)

func TestRegisterFileSetGetClear(t *testing.T) {
	rf := NewRegisterFile()
	vid := valueID{blockID: 1, stmtIndex: 2}
	rf.Set(reg.A0, vid)
	got, ok := rf.Get(reg.A0)
	if !ok || got != vid {
		t.Fatalf("Get(a0) = (%v, %v), want (%v, true)", got, ok, vid)
	}
	rf.Clear(reg.A0)
	if _, ok := rf.Get(reg.A0); ok {
		t.Errorf("Get(a0) after Clear should report false")
	}
}

func TestRegisterFileCloneIsIndependent(t *testing.T) {
	rf := NewRegisterFile()
	vid := valueID{blockID: 1, stmtIndex: 0}
	rf.Set(reg.A0, vid)
	clone := rf.Clone()
	clone.Set(reg.A1, vid)
	if _, ok := rf.Get(reg.A1); ok {
		t.Errorf("mutating clone affected the original")
	}
}

func TestMergeAgreeingFiles(t *testing.T) {
	vid := valueID{blockID: 1, stmtIndex: 0}
	a := NewRegisterFile()
	a.Set(reg.A0, vid)
	b := NewRegisterFile()
	b.Set(reg.A0, vid)
	b.Set(reg.A1, valueID{blockID: 2, stmtIndex: 0})

	merged, err := Merge(0, a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got, ok := merged.Get(reg.A0); !ok || got != vid {
		t.Errorf("merged a0 = (%v, %v), want (%v, true)", got, ok, vid)
	}
	if _, ok := merged.Get(reg.A1); !ok {
		t.Errorf("merged should carry a1 from b")
	}
}

func TestMergeConflictingFilesFails(t *testing.T) {
	a := NewRegisterFile()
	a.Set(reg.A0, valueID{blockID: 1, stmtIndex: 0})
	b := NewRegisterFile()
	b.Set(reg.A0, valueID{blockID: 2, stmtIndex: 0})

	_, err := Merge(0, a, b)
	var aerr *AllocationError
	if !errors.As(err, &aerr) || aerr.Kind != InvalidMerge {
		t.Errorf("Merge conflicting files: err = %v, want AllocationError{InvalidMerge}", err)
	}
}

func TestMergeToleratesNilFiles(t *testing.T) {
	a := NewRegisterFile()
	a.Set(reg.A0, valueID{blockID: 1, stmtIndex: 0})
	merged, err := Merge(0, nil, a, nil)
	if err != nil {
		t.Fatalf("Merge with nils: %v", err)
	}
	if _, ok := merged.Get(reg.A0); !ok {
		t.Errorf("Merge with nils should still carry the non-nil file's content")
	}
}

func TestSpillPutDeleteReusesLowestSlot(t *testing.T) {
	s := NewSpill()
	s0 := s.Put()
	s1 := s.Put()
	s2 := s.Put()
	if s0 != 0 || s1 != 1 || s2 != 2 {
		t.Fatalf("Put() sequence = %d, %d, %d, want 0, 1, 2", s0, s1, s2)
	}
	// Free slots 0 and 2, in that order: a LIFO free list would hand back 2
	// (the most recently freed) next, but Put returns the lowest free index,
	// 0.
	s.Delete(s0)
	s.Delete(s2)
	s3 := s.Put()
	if s3 != 0 {
		t.Errorf("Put() after Delete(0), Delete(2) = %d, want 0 (the lowest free slot, not %d, the most recently freed)", s3, s2)
	}
	s4 := s.Put()
	if s4 != 2 {
		t.Errorf("Put() after the previous Put() = %d, want 2 (the remaining free slot)", s4)
	}
}

func TestSpillHighWaterMark(t *testing.T) {
	s := NewSpill()
	a := s.Put()
	b := s.Put()
	c := s.Put()
	if s.HighWaterMark() != 3 {
		t.Errorf("HighWaterMark() = %d, want 3", s.HighWaterMark())
	}
	s.Delete(a)
	s.Delete(b)
	s.Put()
	if s.HighWaterMark() != 3 {
		t.Errorf("HighWaterMark() should stay at the historical peak, got %d", s.HighWaterMark())
	}
	_ = c
}
