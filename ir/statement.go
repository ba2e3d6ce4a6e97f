package ir

import "github.com/xyproto/rv64ssa/reg"

// StatementKind identifies which of the three IR operations a Statement
// performs. spec.md §3 fixes this set at exactly three: reading a physical
// register's current content, writing a value into a physical register, and
// adding two values.
type StatementKind int

const (
	ReadRegisterKind StatementKind = iota
	WriteRegisterKind
	AddKind
)

func (k StatementKind) String() string {
	switch k {
	case ReadRegisterKind:
		return "read_register"
	case WriteRegisterKind:
		return "write_register"
	case AddKind:
		return "add"
	default:
		return "unknown"
	}
}

// MemoryActionKind classifies a load the allocator inserts before a register
// read: an immediate load, or a reload of a spilled value from the stack
// frame.
type MemoryActionKind int

const (
	NoAction MemoryActionKind = iota
	LoadImmediate
	LoadFromSpill
)

func (k MemoryActionKind) String() string {
	switch k {
	case LoadImmediate:
		return "load_immediate"
	case LoadFromSpill:
		return "load_from_spill"
	default:
		return "none"
	}
}

// MemoryAction describes one load the materializer emits before an
// operand's ordinary instruction, to move a value from an immediate or a
// spill slot into the register it is about to be read from. A
// value-producing statement's own store to its spill slot, if any, is
// driven directly by its RegisterAllocation rather than by a MemoryAction,
// since it belongs to the statement that defines the value, not to any one
// of its (possibly many) later readers.
type MemoryAction struct {
	Kind      MemoryActionKind
	Immediate uint64 // valid for LoadImmediate
	Slot      int    // valid for LoadFromSpill
}

// ValueInfo wraps a Value as it is consumed by a statement: an immediate
// policy fixed at IR-construction time, plus a register assignment and a
// Before memory action filled in later by the allocator. There is no
// after-use memory action: nothing reloads a value into a register after
// the consuming instruction. The same
// struct plays two roles depending on when it is inspected: before
// allocation it is the producer's operand declaration; after allocation,
// the algorithm and verifier sections of spec.md call it a ReadAllocation.
type ValueInfo struct {
	Value  Value
	Policy ImmediatePolicy

	allocated bool
	Register  reg.Register
	Before    MemoryAction
	// Restore names the register a WriteRegister's displaced prior occupant
	// was relocated to, so the materializer can emit the relocating move
	// before the write itself. Nil unless this ValueInfo is the operand of a
	// WriteRegister whose target register was occupied by a different live
	// value at allocation time.
	Restore *reg.Register
}

// NeedsRegister reports whether this operand must occupy a register under
// its own immediate policy.
func (vi *ValueInfo) NeedsRegister() bool {
	return vi.Policy.NeedsRegister(vi.Value)
}

// Allocated reports whether the allocator has assigned this operand a
// register. False for a constant folded directly into an immediate field.
func (vi *ValueInfo) Allocated() bool {
	return vi.allocated
}

// RegisterAllocation records where a value-producing statement's result
// lives: always a physical register (the ISA requires one — no instruction
// in this model writes its result directly to memory), plus an optional
// spill slot if the allocator ever had to evict the value from that
// register to free it for something else. When SpillSlot is set, the
// materializer additionally stores the register to the slot immediately
// after the defining statement, so every later reload can recover it.
type RegisterAllocation struct {
	Register     reg.Register
	HasSpillSlot bool
	SpillSlot    int
}

// Statement is one IR operation: ReadRegister, WriteRegister, or Add. Its
// zero-based position within its Block, and its Block's id, together form
// its identity as an SSA value producer.
type Statement struct {
	kind      StatementKind
	blockID   int
	funcID    uint64
	index     int
	name      string

	// ReadRegister
	readReg reg.Register

	// WriteRegister
	writeReg   reg.Register
	writeValue *ValueInfo

	// Add
	addA, addB *ValueInfo

	// Present iff this statement produces a value (ReadRegister or Add).
	alloc *RegisterAllocation
}

// Kind returns which operation this statement performs.
func (s *Statement) Kind() StatementKind { return s.kind }

// BlockID returns the id of the block this statement belongs to.
func (s *Statement) BlockID() int { return s.blockID }

// Index returns this statement's zero-based position within its block.
func (s *Statement) Index() int { return s.index }

// Name returns the statement's optional display name, used only in
// disassembly and error messages.
func (s *Statement) Name() string { return s.name }

// Value returns the SSA Value this statement produces, if it produces one.
func (s *Statement) Value() (Value, bool) {
	switch s.kind {
	case ReadRegisterKind, AddKind:
		return resultValue(s.funcID, s.blockID, s.index), true
	default:
		return Value{}, false
	}
}

// ReadRegister returns the physical register a ReadRegisterKind statement
// reads, and true; or (0, false) for any other kind.
func (s *Statement) ReadRegister() (reg.Register, bool) {
	if s.kind != ReadRegisterKind {
		return 0, false
	}
	return s.readReg, true
}

// WriteRegister returns the target register and the ValueInfo written into
// it, and true, for a WriteRegisterKind statement; or (0, nil, false)
// otherwise.
func (s *Statement) WriteRegister() (reg.Register, *ValueInfo, bool) {
	if s.kind != WriteRegisterKind {
		return 0, nil, false
	}
	return s.writeReg, s.writeValue, true
}

// AddOperands returns the two operands of an AddKind statement, and true;
// or (nil, nil, false) otherwise.
func (s *Statement) AddOperands() (a, b *ValueInfo, ok bool) {
	if s.kind != AddKind {
		return nil, nil, false
	}
	return s.addA, s.addB, true
}

// Allocation returns this statement's RegisterAllocation and true if it
// produces a value and has been allocated; (nil, false) otherwise.
func (s *Statement) Allocation() (*RegisterAllocation, bool) {
	if s.alloc == nil {
		return nil, false
	}
	return s.alloc, true
}

// PreferredRegister returns the register a statement's own result would
// most like to land in, consulted by the allocator before falling back to a
// free-register scan. Only ReadRegister expresses a preference: reading
// register r is cheapest when its result also lives in r, eliding a move.
func (s *Statement) PreferredRegister() (reg.Register, bool) {
	if s.kind == ReadRegisterKind {
		return s.readReg, true
	}
	return 0, false
}

// Operands returns every ValueInfo this statement consumes, in evaluation
// order, for algorithms (allocation, verification, materialization) that
// walk operands uniformly regardless of statement kind.
func (s *Statement) Operands() []*ValueInfo {
	switch s.kind {
	case WriteRegisterKind:
		return []*ValueInfo{s.writeValue}
	case AddKind:
		return []*ValueInfo{s.addA, s.addB}
	default:
		return nil
	}
}
