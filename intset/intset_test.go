package intset

import "testing"

func TestAddAndContains(t *testing.T) {
	s := New()
	s.Add(5)
	s.Add(1)
	s.Add(3)
	s.Add(1) // duplicate, ignored

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	for _, v := range []int{1, 3, 5} {
		if !s.Contains(v) {
			t.Errorf("Contains(%d) = false, want true", v)
		}
	}
	if s.Contains(2) {
		t.Errorf("Contains(2) = true, want false")
	}
}

func TestValuesSorted(t *testing.T) {
	s := Of(9, 2, 5, 2, 0)
	got := s.Values()
	want := []int{0, 2, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := Of(1, 2, 3)
	c := s.Clone()
	c.Add(4)
	if s.Contains(4) {
		t.Errorf("mutating clone affected original")
	}
	if !c.Contains(4) {
		t.Errorf("clone did not retain its own addition")
	}
}

func TestIntersectWith(t *testing.T) {
	a := Of(1, 2, 3, 4, 5)
	b := Of(2, 4, 6)
	a.IntersectWith(b)
	want := []int{2, 4}
	got := a.Values()
	if len(got) != len(want) {
		t.Fatalf("IntersectWith result = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IntersectWith result = %v, want %v", got, want)
		}
	}
}

func TestIntersectWithEmpty(t *testing.T) {
	a := Of(1, 2, 3)
	a.IntersectWith(New())
	if a.Len() != 0 {
		t.Errorf("IntersectWith(empty) left %d elements, want 0", a.Len())
	}
}

func TestEqual(t *testing.T) {
	a := Of(1, 2, 3)
	b := Of(3, 2, 1)
	c := Of(1, 2)
	if !a.Equal(b) {
		t.Errorf("Equal: expected %v == %v", a.Values(), b.Values())
	}
	if a.Equal(c) {
		t.Errorf("Equal: expected %v != %v", a.Values(), c.Values())
	}
}
