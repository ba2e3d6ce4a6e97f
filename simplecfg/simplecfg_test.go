package simplecfg

import "testing"

func TestDominatorsLinearChain(t *testing.T) {
	dom := Dominators(4, [][]int{{1}, {2}, {3}, {}})
	want := [][]int{{0}, {0, 1}, {0, 1, 2}, {0, 1, 2, 3}}
	for v, w := range want {
		got := dom[v].Values()
		if !sameInts(got, w) {
			t.Errorf("Dominators()[%d] = %v, want %v", v, got, w)
		}
	}
}

func TestDominatorsDiamond(t *testing.T) {
	dom := Dominators(4, [][]int{{1, 2}, {3}, {3}, {}})
	// node 3 is dominated only by the root and itself: neither 1 nor 2
	// individually dominates it, since the other side bypasses them.
	got := dom[3].Values()
	want := []int{0, 3}
	if !sameInts(got, want) {
		t.Errorf("Dominators()[3] = %v, want %v", got, want)
	}
}

func TestDominatorsUnreachable(t *testing.T) {
	dom := Dominators(3, [][]int{{1}, {}, {}})
	if dom[2].Len() != 0 {
		t.Errorf("unreachable node should have an empty dominator set, got %v", dom[2].Values())
	}
}

func TestDominatorsLoop(t *testing.T) {
	// 0 -> 1 -> 2 -> 1 (loop), 1 -> 3
	dom := Dominators(4, [][]int{{1}, {2, 3}, {1}, {}})
	if got := dom[2].Values(); !sameInts(got, []int{0, 1, 2}) {
		t.Errorf("Dominators()[2] = %v, want [0 1 2]", got)
	}
	if got := dom[3].Values(); !sameInts(got, []int{0, 1, 3}) {
		t.Errorf("Dominators()[3] = %v, want [0 1 3]", got)
	}
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
