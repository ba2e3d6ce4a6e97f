package ir

import "github.com/xyproto/rv64ssa/reg"

// Allocate runs the dominator-tree-directed register allocator over f,
// walking blocks in an order where every successor is fully allocated
// before its predecessors (the CFG's post-order, which for a single-entry,
// acyclic region is exactly the bottom-up dominator-tree order spec.md
// §4.3 describes), and within each block walking statements from last to
// first so that a value's eviction pressure is driven by its actual
// lifetime rather than by the order it was produced in.
//
// It is implemented as a free function taking *Function rather than a
// Function method, and lives in package ir rather than a separate
// regalloc package, because Function, Block, and Statement need to expose
// the allocation results (RegisterAllocation, ValueInfo.Register) as part
// of their own public surface; a separate package importing ir to operate
// on *ir.Function, while ir also needed to call back into it, would be an
// import cycle. Verify, below, is structured the same way for the same
// reason.
func Allocate(f *Function) error {
	if f.g == nil {
		return &AllocationError{Kind: InvalidAllocationValue, Detail: "function has not been finished"}
	}
	spillPool := NewSpill()
	pendingSpillOf := make(map[valueID]int)

	for _, blockID := range f.g.PostOrder() {
		b := f.blocks[blockID]
		if err := allocateBlock(f, b, spillPool, pendingSpillOf); err != nil {
			return err
		}
	}
	f.spillHighWaterMark = spillPool.HighWaterMark()
	return nil
}

// SpillFrameSize returns the number of spill slots the allocator used
// across the whole function, after Allocate has run.
func (f *Function) SpillFrameSize() int {
	return f.spillHighWaterMark
}

type allocState struct {
	f              *Function
	b              *Block
	liveReg        map[valueID]reg.Register
	regOccupant    map[reg.Register]valueID
	liveSpill      map[valueID]int
	spillPool      *Spill
	pendingSpillOf map[valueID]int
}

func allocateBlock(f *Function, b *Block, spillPool *Spill, pendingSpillOf map[valueID]int) error {
	merged, err := mergeSuccessorFiles(f, b)
	if err != nil {
		return err
	}

	st := &allocState{
		f:              f,
		b:              b,
		liveReg:        make(map[valueID]reg.Register),
		regOccupant:    make(map[reg.Register]valueID),
		liveSpill:      make(map[valueID]int),
		spillPool:      spillPool,
		pendingSpillOf: pendingSpillOf,
	}
	for r, v := range merged.Occupants() {
		st.liveReg[v] = r
		st.regOccupant[r] = v
	}

	for i := len(b.stmts) - 1; i >= 0; i-- {
		s := b.stmts[i]
		if err := st.freeProducer(s); err != nil {
			return err
		}
		if err := st.resolveStatementOperands(s); err != nil {
			return err
		}
	}

	rf := NewRegisterFile()
	for v, r := range st.liveReg {
		rf.Set(r, v)
	}
	b.registerFile = rf
	return nil
}

func mergeSuccessorFiles(f *Function, b *Block) (*RegisterFile, error) {
	var files []*RegisterFile
	for _, s := range b.Successors() {
		succ := f.blocks[s]
		if succ.registerFile != nil {
			files = append(files, succ.registerFile)
		}
	}
	merged, err := Merge(b.id, files...)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// freeProducer handles a value-producing statement's own half of the
// backward walk: if some later (already-visited) statement consumed its
// value, that consumption already pinned it to a register, which is now
// released for reuse by statements earlier in the block. If nothing ever
// consumed it, the ISA still requires a concrete destination register, so
// one is allocated now.
func (st *allocState) freeProducer(s *Statement) error {
	val, ok := s.Value()
	if !ok {
		return nil
	}
	vid, _ := val.id()
	if r, live := st.liveReg[vid]; live {
		alloc := &RegisterAllocation{Register: r}
		if slot, spilled := st.pendingSpillOf[vid]; spilled {
			alloc.HasSpillSlot = true
			alloc.SpillSlot = slot
		}
		s.alloc = alloc
		delete(st.liveReg, vid)
		delete(st.regOccupant, r)
		return nil
	}
	var hint *reg.Register
	if pref, ok := s.PreferredRegister(); ok {
		hint = &pref
	}
	r := st.allocateRegister(hint)
	s.alloc = &RegisterAllocation{Register: r}
	return nil
}

func (st *allocState) resolveStatementOperands(s *Statement) error {
	switch s.kind {
	case WriteRegisterKind:
		target, vi, _ := s.WriteRegister()
		return st.resolveWriteOperand(vi, target)
	case AddKind:
		a, b, _ := s.AddOperands()
		if err := st.resolveOperand(a, nil); err != nil {
			return err
		}
		return st.resolveOperand(b, nil)
	default:
		return nil
	}
}

// resolveOperand assigns a register (or, for a foldable constant, no
// register at all) to a single operand's ValueInfo, per spec.md §4.3.
func (st *allocState) resolveOperand(vi *ValueInfo, hint *reg.Register) error {
	if !vi.NeedsRegister() {
		return nil
	}
	val := vi.Value
	vid, isResult := val.id()
	if !isResult {
		c, _ := val.Constant()
		r := st.allocateRegister(hint)
		vi.allocated = true
		vi.Register = r
		vi.Before = MemoryAction{Kind: LoadImmediate, Immediate: c}
		return nil
	}
	if r, live := st.liveReg[vid]; live {
		vi.allocated = true
		vi.Register = r
		return nil
	}
	if slot, spilled := st.liveSpill[vid]; spilled {
		r := st.allocateRegister(hint)
		vi.allocated = true
		vi.Register = r
		vi.Before = MemoryAction{Kind: LoadFromSpill, Slot: slot}
		st.liveReg[vid] = r
		st.regOccupant[r] = vid
		delete(st.liveSpill, vid)
		st.spillPool.Delete(slot)
		return nil
	}
	r := st.allocateRegister(hint)
	vi.allocated = true
	vi.Register = r
	st.liveReg[vid] = r
	st.regOccupant[r] = vid
	return nil
}

// resolveWriteOperand resolves a WriteRegister's own value operand. The
// target register is about to be physically overwritten by the write, so
// any different live value currently occupying it is displaced to a
// freshly found register first (recorded as vi.Restore, for the
// materializer to relocate before emitting the write). The operand value
// itself is then resolved exactly like any other operand, with target
// offered only as a soft preference: a value already live in some other
// register keeps that register, and the materializer bridges the
// difference with an ordinary move (or nothing, if they already coincide).
func (st *allocState) resolveWriteOperand(vi *ValueInfo, target reg.Register) error {
	if target == reg.Fp {
		return &AllocationError{Kind: InvalidConstraint, BlockID: st.b.id, Detail: "write_register cannot target fp, reserved by the allocator"}
	}
	if target != reg.Zero {
		vid, isResult := vi.Value.id()
		if occupant, occupied := st.regOccupant[target]; occupied && (!isResult || occupant != vid) {
			newReg := st.allocateRegister(nil)
			st.liveReg[occupant] = newReg
			st.regOccupant[newReg] = occupant
			delete(st.regOccupant, target)
			vi.Restore = &newReg
		}
	}
	return st.resolveOperand(vi, &target)
}

// allocateRegister returns a register free for immediate use, preferring
// hint when it is set, real, and currently free; otherwise scanning
// reg.AllocatableRegisters from its highest-indexed entry down; and, only
// when every allocatable register is occupied, evicting the live value
// whose (dominator-tree depth, statement index) is smallest — the value
// defined closest to the function's root and earliest within its own
// block, on the theory that such a value has already survived the longest
// and is cheapest to push to the stack.
func (st *allocState) allocateRegister(hint *reg.Register) reg.Register {
	if hint != nil && *hint != reg.Zero && *hint != reg.Fp {
		if _, occupied := st.regOccupant[*hint]; !occupied {
			return *hint
		}
	}
	for i := len(reg.AllocatableRegisters) - 1; i >= 0; i-- {
		r := reg.AllocatableRegisters[i]
		if _, occupied := st.regOccupant[r]; !occupied {
			return r
		}
	}
	victim, victimReg := st.pickEvictionVictim()
	slot := st.spillPool.Put()
	st.liveSpill[victim] = slot
	st.pendingSpillOf[victim] = slot
	delete(st.liveReg, victim)
	delete(st.regOccupant, victimReg)
	return victimReg
}

func (st *allocState) pickEvictionVictim() (valueID, reg.Register) {
	var bestVid valueID
	var bestReg reg.Register
	bestDepth := -1
	bestIndex := -1
	first := true
	for r, vid := range st.regOccupant {
		depth := st.f.g.DominatorTreeDepth(vid.blockID)
		if first || depth < bestDepth || (depth == bestDepth && vid.stmtIndex < bestIndex) {
			bestVid, bestReg, bestDepth, bestIndex = vid, r, depth, vid.stmtIndex
			first = false
		}
	}
	return bestVid, bestReg
}
