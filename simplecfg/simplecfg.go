// Package simplecfg implements the classic Allen–Cocke dominator-set
// dataflow algorithm directly on intset.IntSet, independent of and far
// simpler than package cfg's Cooper–Harvey–Kennedy idiom computation.
// spec.md treats it strictly as a test oracle: it computes the full set of
// dominators of every reachable node, against which package cfg's
// idom-chain can be certified ("for every reachable v, the dominator-chain
// iterator yields a prefix of the IntSet-oracle's dominator set").
package simplecfg

import "github.com/xyproto/rv64ssa/intset"

// SimpleCfg is a minimal control-flow graph used only to compute reference
// dominator sets for testing package cfg.
type SimpleCfg struct {
	n     int
	succs [][]int
	preds [][]int
}

// New builds a SimpleCfg for n nodes from a per-node successor list,
// identical in shape to cfg.New's input.
func New(n int, successors [][]int) *SimpleCfg {
	succs := make([][]int, n)
	for i := 0; i < n; i++ {
		if i < len(successors) {
			succs[i] = append([]int(nil), successors[i]...)
		}
	}
	return &SimpleCfg{n: n, succs: succs}
}

// Dominators computes, for every node, the full set of its dominators
// (including itself), via the classic Allen–Cocke iterative fixpoint:
// Dom(root) = {root}; Dom(v) = {v} ∪ ⋂_{p ∈ preds(v)} Dom(p), iterated to a
// fixpoint. It returns one IntSet per node, indexed by node id; unreachable
// nodes get an empty set.
func Dominators(n int, successors [][]int) []*intset.IntSet {
	g := New(n, successors)
	return g.dominators()
}

func (g *SimpleCfg) dominators() []*intset.IntSet {
	reachable := g.computeReachable()
	g.preds = g.computePreds(reachable)

	dom := make([]*intset.IntSet, g.n)
	known := make([]bool, g.n)
	if g.n == 0 {
		return dom
	}
	dom[0] = intset.Of(0)
	known[0] = true

	changed := true
	for changed {
		changed = false
		for v := 1; v < g.n; v++ {
			if !reachable[v] {
				continue
			}
			var merged *intset.IntSet
			for _, p := range g.preds[v] {
				if !known[p] {
					continue
				}
				pd := dom[p].Clone()
				if merged == nil {
					merged = pd
				} else {
					merged.IntersectWith(pd)
				}
			}
			if merged == nil {
				continue
			}
			merged.Add(v)
			if !known[v] || !merged.Equal(dom[v]) {
				dom[v] = merged
				known[v] = true
				changed = true
			}
		}
	}
	for v := 0; v < g.n; v++ {
		if dom[v] == nil {
			dom[v] = intset.New()
		}
	}
	return dom
}

func (g *SimpleCfg) computeReachable() []bool {
	reachable := make([]bool, g.n)
	if g.n == 0 {
		return reachable
	}
	stack := []int{0}
	reachable[0] = true
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range g.succs[top] {
			if !reachable[s] {
				reachable[s] = true
				stack = append(stack, s)
			}
		}
	}
	return reachable
}

func (g *SimpleCfg) computePreds(reachable []bool) [][]int {
	preds := make([][]int, g.n)
	for v := 0; v < g.n; v++ {
		if !reachable[v] {
			continue
		}
		for _, s := range g.succs[v] {
			if reachable[s] {
				preds[s] = append(preds[s], v)
			}
		}
	}
	return preds
}
