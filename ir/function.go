package ir

import (
	"sync/atomic"

	"github.com/xyproto/rv64ssa/cfg"
	"github.com/xyproto/rv64ssa/reg"
)

var nextFunctionID atomic.Uint64

// Prologue, Epilogue, and Entry are the three block ids every Function is
// seeded with at construction, per spec.md §3.
const (
	Prologue = 0
	Epilogue = 1
	Entry    = 2
)

// SavedRegister pairs one callee-saved physical register with the SSA value
// the prologue read from it, so the epilogue can restore it before return.
// spec.md §3 ("Function... a SavedRegisters record pairing each
// callee-saved register with the SSA value read at the prologue").
type SavedRegister struct {
	Register reg.Register
	Value    Value
}

// Function is a single compilation unit: an ordered set of Blocks forming a
// control-flow graph, always seeded with a prologue, epilogue, and entry
// block. Function ids are assigned from a process-wide monotonic counter so
// that a Value can be checked, cheaply and without a pointer comparison,
// against the function that produced it.
type Function struct {
	id          uint64
	name        string
	blocks      []*Block
	numParams   int
	exitSet     bool
	saved       []SavedRegister
	g           *cfg.CFG

	spillHighWaterMark int
}

// NewFunction creates a Function named name, already containing the three
// fixed blocks prologue (0), epilogue (1), and entry (2), with the
// prologue jumping to entry and the epilogue set as the function's exit.
// Additional blocks, added by AddBlock, receive ids starting at 3.
func NewFunction(name string) *Function {
	f := &Function{id: nextFunctionID.Add(1), name: name}
	for _, name := range []string{"prologue", "epilogue", "entry"} {
		f.blocks = append(f.blocks, f.newBlock(name))
	}
	f.blocks[Prologue].Jump(Entry)
	f.blocks[Epilogue].setFunctionExit()
	return f
}

func (f *Function) newBlock(name string) *Block {
	return &Block{id: len(f.blocks), funcID: f.id, name: name}
}

// ID returns the function's process-wide unique id.
func (f *Function) ID() uint64 { return f.id }

// Name returns the function's display name.
func (f *Function) Name() string { return f.name }

// AddBlock appends a new, initially exit-less block and returns its id.
func (f *Function) AddBlock(name string) int {
	b := f.newBlock(name)
	f.blocks = append(f.blocks, b)
	return b.id
}

// Block returns the block with the given id, or nil if none exists.
func (f *Function) Block(id int) *Block {
	if id < 0 || id >= len(f.blocks) {
		return nil
	}
	return f.blocks[id]
}

// Blocks returns every block in id order. The returned slice is owned by
// the Function; callers must not mutate it.
func (f *Function) Blocks() []*Block { return f.blocks }

// AddParameter reserves the next integer argument register (a0, a1, ...)
// for one of the function's parameters and returns a ReadRegister of it
// appended to the prologue block, per spec.md §4.2 ("add_parameter(name?)
// reads the next ABI argument register into the prologue block"), or a
// ValueError if more than eight parameters have already been added: this
// backend models only register-passed integer arguments, per spec.md's
// Non-goals.
func (f *Function) AddParameter(name ...string) (Value, error) {
	r, ok := reg.ArgRegister(f.numParams)
	if !ok {
		return Value{}, &ValueError{Kind: InvalidValue, Detail: "more than eight integer parameters is out of scope"}
	}
	f.numParams++
	return f.blocks[Prologue].AppendReadRegister(r, name...), nil
}

// NumParameters returns how many parameters AddParameter has reserved.
func (f *Function) NumParameters() int { return f.numParams }

// SetFunctionExit marks blockID as done computing and ready to return
// returnValue, per spec.md §4.2: legal exactly once per function. It sets
// blockID's exit to an unconditional jump to the epilogue and appends a
// WriteRegister(a0, returnValue) to the epilogue, so every path through the
// function funnels its result through the same a0 write regardless of which
// block actually produced it.
func (f *Function) SetFunctionExit(blockID int, returnValue Value) error {
	if f.exitSet {
		return &FunctionError{Kind: MultipleExits}
	}
	b := f.Block(blockID)
	if b == nil {
		return &FunctionError{Kind: UnknownBlock}
	}
	if !returnValue.belongsTo(f.id) {
		return &ValueError{Kind: InvalidValue, Detail: "return value belongs to a different function"}
	}
	b.Jump(Epilogue)
	if err := f.blocks[Epilogue].AppendWriteRegister(reg.A0, returnValue); err != nil {
		return err
	}
	f.exitSet = true
	return nil
}

// AddPseudoInstructions appends the standard prologue/epilogue bookkeeping
// every Function needs regardless of what its entry block computes: the
// prologue reads every callee-saved register's incoming content — ra, sp,
// gp, tp, and s1..s11, per the glossary's callee-saved list, every one of
// which reg.AllocatableRegisters leaves available to the allocator as
// ordinary scratch — and the epilogue writes each one back unchanged before
// the function returns, populating Function.SavedRegisters. fp is excluded:
// it is never in reg.AllocatableRegisters, so the allocator never disturbs
// it, and its own save/restore is the materializer's stack-frame push/pop
// (spec.md §4.5's "sd fp, -8(sp); mv fp, sp" / "ld fp, -8(fp)"), which
// operates on the physical register directly rather than through an SSA
// value; giving it a second, SSA-level restore here would race the first.
// Producers call this once after building the entry block's real
// computation and before Finish.
func (f *Function) AddPseudoInstructions() {
	f.saved = f.saved[:0]
	for r := reg.Register(1); r < reg.NumRegisters; r++ {
		if r == reg.Fp || !reg.IsCalleeSaved(r) {
			continue
		}
		v := f.blocks[Prologue].AppendReadRegister(r)
		f.saved = append(f.saved, SavedRegister{Register: r, Value: v})
	}
	for _, sr := range f.saved {
		f.blocks[Epilogue].AppendWriteRegister(sr.Register, sr.Value)
	}
}

// SavedRegisters returns the callee-saved register/value pairs captured by
// AddPseudoInstructions, in prologue read order.
func (f *Function) SavedRegisters() []SavedRegister {
	out := make([]SavedRegister, len(f.saved))
	copy(out, f.saved)
	return out
}

// Finish validates that every block has a set exit, building the
// function's control-flow graph for later use by the allocator, verifier,
// and materializer. It returns a FunctionError{NoExit} if any block was
// left without one.
func (f *Function) Finish() error {
	for _, b := range f.blocks {
		if b.exit.Kind == ExitUnset {
			return &FunctionError{Kind: NoExit, Detail: b.name}
		}
	}
	succs := make([][]int, len(f.blocks))
	for i, b := range f.blocks {
		succs[i] = b.Successors()
	}
	g := cfg.New(len(f.blocks), succs)
	g.Analyze()
	f.g = g
	return nil
}

// CFG returns the function's control-flow graph, built by Finish.
func (f *Function) CFG() *cfg.CFG { return f.g }
