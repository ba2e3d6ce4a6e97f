// Package cfg implements control-flow graph analysis: breadth-first block
// numbering, post-order traversal, predecessor lists, immediate dominators
// via the iterative Cooper–Harvey–Kennedy dataflow algorithm, and
// dominator-tree depths. It is grounded on the teacher pack's
// tetratelabs/wazero ssa.calculateDominators/intersect pair (the only
// dominator computation present anywhere in the retrieval pack), adapted
// from reverse-postorder numbering to the breadth-first numbering spec.md
// requires, and generalized from a single-successor-chasing builder to an
// explicit, producer-supplied successor graph.
package cfg

import (
	"math"

	"github.com/xyproto/rv64ssa/internal/rtrace"
)

// NoDominator is returned by ImmediateDominator and DominatorTreeDepth for
// a node that BFS never reached from node 0.
const NoDominator = -1

// unreachedBFS is the sentinel BFS number for a node BFS never reached,
// per spec.md §4.1 ("Unreachable nodes retain the sentinel BFS number MAX").
const unreachedBFS = math.MaxInt

// CFG is a control-flow graph over n nodes numbered 0..n-1, rooted at node
// 0, where each node carries zero, one, or two successor edges.
type CFG struct {
	n         int
	succs     [][]int
	preds     [][]int
	bfsNumber []int
	bfsOrder  []int
	postOrder []int
	idom      []int
	domDepth  []int
	analyzed  bool
}

// New builds a CFG for n nodes from a per-node successor list. successors
// must have length n; each entry holds 0, 1, or 2 target node indices.
// Analyze must be called before any query method.
func New(n int, successors [][]int) *CFG {
	succs := make([][]int, n)
	for i := 0; i < n; i++ {
		if i < len(successors) {
			succs[i] = append([]int(nil), successors[i]...)
		}
	}
	return &CFG{n: n, succs: succs}
}

// Analyze computes, in order: the BFS spanning-tree numbering rooted at
// node 0, a post-order traversal, predecessor lists restricted to reachable
// nodes, immediate dominators (Cooper–Harvey–Kennedy), and dominator-tree
// depths. It signals no errors: per spec.md §4.1, CFG analysis failures are
// not part of this module's contract.
func (c *CFG) Analyze() {
	c.computeBFS()
	c.computePostOrder()
	c.computePredecessors()
	c.computeImmediateDominators()
	c.computeDominatorDepths()
	c.analyzed = true
}

func (c *CFG) computeBFS() {
	c.bfsNumber = make([]int, c.n)
	for i := range c.bfsNumber {
		c.bfsNumber[i] = unreachedBFS
	}
	if c.n == 0 {
		return
	}
	queue := make([]int, 0, c.n)
	queue = append(queue, 0)
	c.bfsNumber[0] = 0
	order := make([]int, 0, c.n)
	for head := 0; head < len(queue); head++ {
		node := queue[head]
		order = append(order, node)
		for _, s := range c.succs[node] {
			if c.bfsNumber[s] == unreachedBFS {
				c.bfsNumber[s] = len(queue)
				queue = append(queue, s)
			}
		}
	}
	c.bfsOrder = order
	rtrace.Tracef("cfg: bfs reached %d/%d nodes", len(order), c.n)
}

// computePostOrder walks the reachable graph depth-first from node 0,
// emitting a node only after every successor has been emitted (except a
// successor reached through a back edge, which is still being expanded),
// using an explicit stack so cyclic CFGs (loops) terminate correctly.
func (c *CFG) computePostOrder() {
	if c.n == 0 {
		return
	}
	const unseen, seen, expanded, emitted = 0, 1, 2, 3
	state := make([]int, c.n)
	stack := make([]int, 0, c.n)
	stack = append(stack, 0)
	state[0] = seen
	post := make([]int, 0, c.n)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		switch state[top] {
		case seen:
			state[top] = expanded // successors pushed; emitted below on next pop
			for _, s := range c.succs[top] {
				if c.bfsNumber[s] == unreachedBFS {
					continue
				}
				// A successor already pushed but not yet expanded is pushed
				// again so it is expanded, and emitted, before top.
				if state[s] == unseen || state[s] == seen {
					state[s] = seen
					stack = append(stack, s)
				}
			}
		case expanded:
			stack = stack[:len(stack)-1]
			state[top] = emitted
			post = append(post, top)
		case emitted:
			stack = stack[:len(stack)-1]
		}
	}
	c.postOrder = post
}

func (c *CFG) computePredecessors() {
	preds := make([][]int, c.n)
	for node := 0; node < c.n; node++ {
		if c.bfsNumber[node] == unreachedBFS {
			continue
		}
		for _, s := range c.succs[node] {
			if c.bfsNumber[s] == unreachedBFS {
				continue
			}
			preds[s] = append(preds[s], node)
		}
	}
	c.preds = preds
}

// computeImmediateDominators is the iterative Cooper–Harvey–Kennedy
// dataflow fixpoint described in spec.md §4.1, processed in BFS order.
func (c *CFG) computeImmediateDominators() {
	idom := make([]int, c.n)
	for i := range idom {
		idom[i] = NoDominator
	}
	if c.n == 0 {
		return
	}
	idom[0] = 0

	changed := true
	for pass := 0; changed; pass++ {
		changed = false
		for _, b := range c.bfsOrder {
			if b == 0 {
				continue
			}
			newIdom := NoDominator
			for _, p := range c.preds[b] {
				if idom[p] == NoDominator {
					continue
				}
				if newIdom == NoDominator {
					newIdom = p
					continue
				}
				newIdom = c.intersect(idom, newIdom, p)
			}
			if newIdom != idom[b] {
				idom[b] = newIdom
				changed = true
			}
		}
		rtrace.Tracef("cfg: idom fixpoint pass %d changed=%v", pass, changed)
	}
	c.idom = idom
}

// intersect returns the nearest common dominator of a and b by walking both
// fingers up the dominator chain, always advancing whichever finger is
// currently farther from the root (the larger BFS number), until they
// coincide. This is the standard Cooper–Harvey–Kennedy intersect; spec.md's
// design notes flag the finger direction as an explicit open question and
// certify either direction against the IntSet oracle, so this resolves it
// the same way the teacher pack's only dominator implementation
// (tetratelabs/wazero ssa.intersect) resolves the analogous reverse-postorder
// case: advance the deeper finger.
func (c *CFG) intersect(idom []int, a, b int) int {
	for a != b {
		for c.bfsNumber[a] > c.bfsNumber[b] {
			a = idom[a]
		}
		for c.bfsNumber[b] > c.bfsNumber[a] {
			b = idom[b]
		}
	}
	return a
}

func (c *CFG) computeDominatorDepths() {
	depth := make([]int, c.n)
	for i := range depth {
		depth[i] = NoDominator
	}
	if c.n == 0 {
		return
	}
	depth[0] = 0
	for _, v := range c.bfsOrder {
		if v == 0 {
			continue
		}
		depth[v] = depth[c.idom[v]] + 1
	}
	c.domDepth = depth
}

// ImmediateDominator returns the current immediate dominator of v, with
// idom(0) == 0 as the root sentinel, or NoDominator if v was never reached
// by BFS from node 0.
func (c *CFG) ImmediateDominator(v int) int {
	if v < 0 || v >= c.n {
		return NoDominator
	}
	return c.idom[v]
}

// DominatorTreeDepth returns the number of strict dominators above v, or
// NoDominator if v is unreachable.
func (c *CFG) DominatorTreeDepth(v int) int {
	if v < 0 || v >= c.n {
		return NoDominator
	}
	return c.domDepth[v]
}

// DominatorChain returns v, idom(v), idom(idom(v)), ... ending with the root
// (node 0), produced exactly once. It returns nil for an unreachable v.
func (c *CFG) DominatorChain(v int) []int {
	if v < 0 || v >= c.n || c.bfsNumber[v] == unreachedBFS {
		return nil
	}
	chain := []int{v}
	for v != 0 {
		v = c.idom[v]
		chain = append(chain, v)
	}
	return chain
}

// DominatorIter returns a restartable iterator over the dominator chain
// starting at v, per spec.md's design note that the chain should be a
// finite, restartable lazy sequence rather than a pre-built slice.
func (c *CFG) DominatorIter(v int) *ChainIter {
	return &ChainIter{c: c, cur: v, started: false, done: v < 0 || v >= c.n || c.bfsNumber[v] == unreachedBFS}
}

// ChainIter lazily walks a dominator chain one node at a time.
type ChainIter struct {
	c       *CFG
	cur     int
	started bool
	done    bool
}

// Next returns the next node in the chain and true, or (0, false) once the
// root has already been produced.
func (it *ChainIter) Next() (int, bool) {
	if it.done {
		return 0, false
	}
	if !it.started {
		it.started = true
		if it.cur == 0 {
			it.done = true
		}
		return it.cur, true
	}
	if it.cur == 0 {
		it.done = true
		return 0, false
	}
	it.cur = it.c.idom[it.cur]
	if it.cur == 0 {
		it.done = true
	}
	return it.cur, true
}

// Reset restarts the iterator at v.
func (it *ChainIter) Reset(v int) {
	it.cur = v
	it.started = false
	it.done = v < 0 || v >= it.c.n || it.c.bfsNumber[v] == unreachedBFS
}

// NumNodes returns the node count the CFG was built with.
func (c *CFG) NumNodes() int { return c.n }

// PostOrder returns the reachable nodes in post-order.
func (c *CFG) PostOrder() []int {
	out := make([]int, len(c.postOrder))
	copy(out, c.postOrder)
	return out
}

// BFSOrder returns the reachable nodes in BFS enqueue order.
func (c *CFG) BFSOrder() []int {
	out := make([]int, len(c.bfsOrder))
	copy(out, c.bfsOrder)
	return out
}

// Predecessors returns the predecessors of v, restricted to reachable
// nodes, in the order their edges were discovered.
func (c *CFG) Predecessors(v int) []int {
	if v < 0 || v >= c.n {
		return nil
	}
	out := make([]int, len(c.preds[v]))
	copy(out, c.preds[v])
	return out
}

// Successors returns the (0, 1, or 2) successors of v.
func (c *CFG) Successors(v int) []int {
	if v < 0 || v >= c.n {
		return nil
	}
	out := make([]int, len(c.succs[v]))
	copy(out, c.succs[v])
	return out
}

// Reachable reports whether BFS from node 0 reached v.
func (c *CFG) Reachable(v int) bool {
	return v >= 0 && v < c.n && c.bfsNumber[v] != unreachedBFS
}

// Unreachable returns every node BFS from node 0 never reached.
func (c *CFG) Unreachable() []int {
	var out []int
	for i := 0; i < c.n; i++ {
		if c.bfsNumber[i] == unreachedBFS {
			out = append(out, i)
		}
	}
	return out
}
