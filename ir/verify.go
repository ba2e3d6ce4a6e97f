package ir

import "github.com/xyproto/rv64ssa/reg"

// Verify independently re-simulates the allocated program and checks that
// every operand's register actually holds, at the moment it is read, the
// value the allocator claims it does — catching allocator bugs (and bugs
// in the materializer's assumptions about the allocator) that would
// otherwise only surface as silently wrong machine code. It never shares
// state or helper logic with Allocate: a bug that fools the allocator into
// miscomputing a ValueInfo should not also fool an identical verification
// routine into agreeing with it.
func Verify(f *Function) error {
	if f.g == nil {
		return &AllocationError{Kind: InvalidAllocationValue, Detail: "function has not been finished"}
	}
	exitRegs := make(map[int]map[reg.Register]valueID)
	spillContents := make(map[int]valueID)

	for _, blockID := range f.g.BFSOrder() {
		b := f.blocks[blockID]
		preds := f.g.Predecessors(blockID)
		entry, err := mergePredecessorExits(blockID, preds, exitRegs)
		if err != nil {
			return err
		}
		if err := checkEntryMatchesAllocation(blockID, b, preds, entry, exitRegs); err != nil {
			return err
		}
		exit, err := simulateBlock(b, entry, spillContents)
		if err != nil {
			return err
		}
		exitRegs[blockID] = exit
	}
	return nil
}

func mergePredecessorExits(blockID int, preds []int, exitRegs map[int]map[reg.Register]valueID) (map[reg.Register]valueID, error) {
	entry := make(map[reg.Register]valueID)
	for _, p := range preds {
		pe, ok := exitRegs[p]
		if !ok {
			continue // predecessor not yet simulated: a loop back-edge, tolerated
		}
		for r, v := range pe {
			if existing, ok := entry[r]; ok {
				if existing != v {
					return nil, &VerificationError{Kind: InvalidRegisterFile, BlockID: blockID, Detail: "predecessors disagree about register " + r.String()}
				}
				continue
			}
			entry[r] = v
		}
	}
	return entry, nil
}

func checkEntryMatchesAllocation(blockID int, b *Block, preds []int, entry map[reg.Register]valueID, exitRegs map[int]map[reg.Register]valueID) error {
	rf, hasRF := b.RegisterFile()
	if !hasRF {
		return nil
	}
	allPredsReady := true
	for _, p := range preds {
		if _, ok := exitRegs[p]; !ok {
			allPredsReady = false
		}
	}
	for r, v := range rf.Occupants() {
		ev, ok := entry[r]
		if !ok {
			if allPredsReady {
				return &VerificationError{Kind: MissingPhiAt, BlockID: blockID, Detail: "no predecessor supplies register " + r.String()}
			}
			continue
		}
		if ev != v {
			return &VerificationError{Kind: InvalidRegisterFile, BlockID: blockID, Detail: "simulated value disagrees with allocation for register " + r.String()}
		}
	}
	return nil
}

func simulateBlock(b *Block, entry map[reg.Register]valueID, spillContents map[int]valueID) (map[reg.Register]valueID, error) {
	regs := make(map[reg.Register]valueID, len(entry))
	for r, v := range entry {
		regs[r] = v
	}

	for _, s := range b.stmts {
		switch s.kind {
		case ReadRegisterKind:
			if err := writeResult(b, s, regs, spillContents); err != nil {
				return nil, err
			}
		case AddKind:
			a, bOperand, _ := s.AddOperands()
			if err := checkOperand(b, s, a, regs, spillContents); err != nil {
				return nil, err
			}
			if err := checkOperand(b, s, bOperand, regs, spillContents); err != nil {
				return nil, err
			}
			if err := writeResult(b, s, regs, spillContents); err != nil {
				return nil, err
			}
		case WriteRegisterKind:
			if err := simulateWrite(b, s, regs, spillContents); err != nil {
				return nil, err
			}
		}
	}
	return regs, nil
}

// checkOperand applies vi's before action and asserts the resulting
// register content matches the value vi claims to read.
func checkOperand(b *Block, s *Statement, vi *ValueInfo, regs map[reg.Register]valueID, spillContents map[int]valueID) error {
	if !vi.Allocated() {
		if !vi.Value.IsConstant() {
			return &VerificationError{Kind: MissingAllocation, BlockID: b.id, StmtIndex: s.index, Detail: "unallocated non-constant operand"}
		}
		return nil
	}
	if vi.Register == reg.Zero || int(vi.Register) >= reg.NumRegisters {
		return &VerificationError{Kind: InvalidRegister, BlockID: b.id, StmtIndex: s.index}
	}
	switch vi.Before.Kind {
	case LoadImmediate:
		delete(regs, vi.Register) // ephemeral content, not tracked against any identity
		return nil
	case LoadFromSpill:
		stored, ok := spillContents[vi.Before.Slot]
		if !ok {
			return &VerificationError{Kind: InvalidMemoryAction, BlockID: b.id, StmtIndex: s.index, Detail: "reload from empty spill slot"}
		}
		vid, _ := vi.Value.id()
		if stored != vid {
			return &VerificationError{Kind: InvalidMemoryAction, BlockID: b.id, StmtIndex: s.index, Detail: "spill slot holds a different value"}
		}
		regs[vi.Register] = vid
		return nil
	default:
		vid, isResult := vi.Value.id()
		if !isResult {
			return &VerificationError{Kind: MissingAllocation, BlockID: b.id, StmtIndex: s.index, Detail: "constant operand with no load action"}
		}
		if got, ok := regs[vi.Register]; !ok || got != vid {
			return &VerificationError{Kind: RegisterHoldsDifferentValue, BlockID: b.id, StmtIndex: s.index, Detail: "register " + vi.Register.String() + " does not hold the expected value"}
		}
		return nil
	}
}

// writeResult records a value-producing statement's result into the
// register its RegisterAllocation names, and, if the allocation also
// carries a spill slot, mirrors it into simulated spill memory too.
func writeResult(b *Block, s *Statement, regs map[reg.Register]valueID, spillContents map[int]valueID) error {
	val, ok := s.Value()
	if !ok {
		if _, hasAlloc := s.Allocation(); hasAlloc {
			return &VerificationError{Kind: AllocationForNonValue, BlockID: b.id, StmtIndex: s.index}
		}
		return nil
	}
	alloc, ok := s.Allocation()
	if !ok {
		return &VerificationError{Kind: MissingAllocation, BlockID: b.id, StmtIndex: s.index}
	}
	if alloc.Register == reg.Zero || int(alloc.Register) >= reg.NumRegisters {
		return &VerificationError{Kind: InvalidRegister, BlockID: b.id, StmtIndex: s.index}
	}
	vid, _ := val.id()
	regs[alloc.Register] = vid
	if alloc.HasSpillSlot {
		spillContents[alloc.SpillSlot] = vid
	}
	return nil
}

func simulateWrite(b *Block, s *Statement, regs map[reg.Register]valueID, spillContents map[int]valueID) error {
	target, vi, _ := s.WriteRegister()
	if vi.Restore != nil {
		displaced, hadDisplaced := regs[target]
		if !hadDisplaced {
			return &VerificationError{Kind: InvalidRestore, BlockID: b.id, StmtIndex: s.index, Detail: "restore recorded but target register was empty"}
		}
		regs[*vi.Restore] = displaced
		delete(regs, target)
	}
	if target == reg.Zero {
		return nil // discarded: x0 is never simulated as a real register
	}
	if !vi.NeedsRegister() {
		// Materialized directly via an immediate load into target; the
		// content is real but has no tracked SSA identity afterward.
		delete(regs, target)
		return nil
	}
	if err := checkOperand(b, s, vi, regs, spillContents); err != nil {
		return err
	}
	vid, isResult := vi.Value.id()
	if isResult {
		regs[target] = vid
	} else {
		delete(regs, target)
	}
	return nil
}
