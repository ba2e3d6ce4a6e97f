package ir

import "github.com/xyproto/rv64ssa/reg"

// ExitKind classifies how control leaves a Block.
type ExitKind int

const (
	// ExitUnset means the block's producer has not yet called Jump or
	// SetFunctionExit. A Function with any reachable block left in this
	// state is incomplete.
	ExitUnset ExitKind = iota
	ExitJump
	ExitFunctionExit
)

// Exit describes how control leaves a Block: either an unconditional jump
// to another block (Target), or the function's single designated exit.
type Exit struct {
	Kind   ExitKind
	Target int
}

// Block is a single-entry, single-exit sequence of Statements within a
// Function. spec.md §3 fixes every Function to contain at least three
// blocks — prologue (id 0), epilogue (id 1), and entry (id 2) — with
// additional blocks, if any, appended starting at id 3.
type Block struct {
	id      int
	funcID  uint64
	name    string
	stmts   []*Statement
	exit    Exit
	succs   []int

	// registerFile is the live-in snapshot computed by the allocator,
	// consumed when merging this block's predecessors during the
	// dominator-tree-directed walk. Nil until allocation runs.
	registerFile *RegisterFile
}

// ID returns the block's id.
func (b *Block) ID() int { return b.id }

// Name returns the block's optional display name.
func (b *Block) Name() string { return b.name }

// Statements returns the block's statements in program order. The returned
// slice is owned by the Block; callers must not mutate it.
func (b *Block) Statements() []*Statement { return b.stmts }

// Exit returns how control leaves this block.
func (b *Block) Exit() Exit { return b.exit }

// Successors returns the block ids this block may transfer control to: zero
// for a FunctionExit, one for a Jump.
func (b *Block) Successors() []int { return b.succs }

// RegisterFile returns the block's live-in register-file snapshot, computed
// by Allocate, and true; or (nil, false) before allocation has run.
func (b *Block) RegisterFile() (*RegisterFile, bool) {
	if b.registerFile == nil {
		return nil, false
	}
	return b.registerFile, true
}

func (b *Block) nextIndex() int { return len(b.stmts) }

func (b *Block) append(s *Statement) *Statement {
	s.blockID = b.id
	s.funcID = b.funcID
	s.index = b.nextIndex()
	b.stmts = append(b.stmts, s)
	return s
}

// AppendReadRegister appends a statement that reads the current content of
// physical register r, returning the Value it produces. Per spec.md §3,
// reading x0 always yields Constant(0), and no statement is appended for it.
func (b *Block) AppendReadRegister(r reg.Register, name ...string) Value {
	if r == reg.Zero {
		return ConstantValue(0)
	}
	s := &Statement{kind: ReadRegisterKind, readReg: r}
	if len(name) > 0 {
		s.name = name[0]
	}
	b.append(s)
	v, _ := s.Value()
	return v
}

// AppendWriteRegister appends a statement that writes value into physical
// register r. Writing to x0 is accepted and recorded, but is a no-op at
// materialization time: spec.md models x0 writes as discarded, not as an
// error, since a producer may legitimately write a value it intends to
// discard (e.g. a side-effecting call's unused result convention).
func (b *Block) AppendWriteRegister(r reg.Register, value Value) error {
	if !value.belongsTo(b.funcID) {
		return &ValueError{Kind: InvalidValue, Detail: "write_register operand belongs to a different function"}
	}
	b.append(&Statement{
		kind:     WriteRegisterKind,
		writeReg: r,
		writeValue: &ValueInfo{
			Value:  value,
			Policy: UnlimitedImmediate,
		},
	})
	return nil
}

// AppendAdd appends a statement computing a + b and returns the Value it
// produces, optionally naming the statement for disassembly (spec.md §6:
// "append_add(a, b, name?)"). When both a and b are constants, AppendAdd
// folds the addition at IR-construction time and returns a Constant Value
// directly, appending no statement at all. Otherwise, since add is
// commutative, AppendAdd swaps the operands when exactly one is a constant
// so that the constant always lands in the immediate-eligible position:
// the first operand is always materialized into a register (NoImmediate),
// the second may be folded into the instruction's immediate field when it
// is a constant fitting the signed 12-bit range RV64I addi uses
// (SizedImmediate(12, true)), otherwise it too is materialized.
func (b *Block) AppendAdd(a, bOperand Value, name ...string) (Value, error) {
	if !a.belongsTo(b.funcID) || !bOperand.belongsTo(b.funcID) {
		return Value{}, &ValueError{Kind: InvalidValue, Detail: "add operand belongs to a different function"}
	}
	ac, aok := a.Constant()
	bc, bok := bOperand.Constant()
	if aok && bok {
		return ConstantValue(ac + bc), nil
	}
	if aok && !bok {
		a, bOperand = bOperand, a
	}
	s := &Statement{
		kind: AddKind,
		addA: &ValueInfo{Value: a, Policy: NoImmediate},
		addB: &ValueInfo{Value: bOperand, Policy: SizedImmediate(12, true)},
	}
	if len(name) > 0 {
		s.name = name[0]
	}
	b.append(s)
	v, _ := s.Value()
	return v, nil
}

// Jump sets this block's exit to an unconditional transfer to target.
func (b *Block) Jump(target int) {
	b.exit = Exit{Kind: ExitJump, Target: target}
	b.succs = []int{target}
}

// setFunctionExit sets this block's exit to the function's single exit.
func (b *Block) setFunctionExit() {
	b.exit = Exit{Kind: ExitFunctionExit}
	b.succs = nil
}
