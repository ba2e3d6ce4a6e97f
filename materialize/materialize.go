// Package materialize lowers an allocated, verified ir.Function into a
// sequence of RV64I machine instructions, following spec.md §4.5. It is
// grounded on the teacher's riscv64_instructions.go encoders and
// riscv64_codegen.go's block-walking emission loop, adapted from the
// teacher's string-keyed register operands and single-pass code generator
// to this backend's allocated-IR input and fp-relative spill model.
package materialize

import (
	"github.com/xyproto/rv64ssa/internal/rtrace"
	"github.com/xyproto/rv64ssa/ir"
	"github.com/xyproto/rv64ssa/reg"
)

// stackFrameSize is the fixed 8-byte region the prologue reserves below the
// incoming stack pointer to save the caller's frame pointer, per spec.md
// §4.5 ("a non-zero spill count allocates an 8-byte stack frame"). Spill
// slots live further down, at offsets computed by spillOffset.
const stackFrameSize = 8

// Materialize lowers f, which must already have had ir.Allocate (and,
// conventionally, ir.Verify) run over it, into the RV64I instruction
// sequence the ELF writer's .text section will hold. It follows the unique
// Jump chain from the prologue to the epilogue, per spec.md §5's ordering
// guarantee that materialization order follows that chain rather than the
// block array's index order.
func Materialize(f *ir.Function) ([]Instruction, error) {
	if f.CFG() == nil {
		return nil, &MaterializationError{Kind: NoRegisterAllocation, Detail: "function has not been finished"}
	}
	spillSize := f.SpillFrameSize()
	if spillSize > 0 {
		rtrace.Tracef("materialize %s: spill_size=%d, establishing stack frame", f.Name(), spillSize)
	}

	var out []Instruction
	blockID := ir.Prologue
	for {
		b := f.Block(blockID)
		if b == nil {
			return nil, &MaterializationError{Kind: NoRegisterAllocation, Detail: "jump chain reached an unknown block"}
		}
		insns, err := materializeBlock(b)
		if err != nil {
			return nil, err
		}
		out = append(out, insns...)

		if blockID == ir.Prologue && spillSize > 0 {
			out = append(out, sd(reg.Fp, reg.Sp, -int32(stackFrameSize)), mv(reg.Fp, reg.Sp))
		}

		exit := b.Exit()
		if exit.Kind == ir.ExitFunctionExit {
			if spillSize > 0 {
				out = append(out, ld(reg.Fp, reg.Fp, -int32(stackFrameSize)))
			}
			out = append(out, ret())
			return out, nil
		}
		blockID = exit.Target
	}
}

func materializeBlock(b *ir.Block) ([]Instruction, error) {
	var out []Instruction
	for _, s := range b.Statements() {
		insns, err := materializeStatement(s)
		if err != nil {
			return nil, err
		}
		out = append(out, insns...)
	}
	return out, nil
}

func materializeStatement(s *ir.Statement) ([]Instruction, error) {
	switch s.Kind() {
	case ir.ReadRegisterKind:
		return materializeReadRegister(s)
	case ir.AddKind:
		return materializeAdd(s)
	case ir.WriteRegisterKind:
		return materializeWriteRegister(s)
	default:
		return nil, nil
	}
}

// materializeReadRegister emits nothing when the value's home register is
// the register it was already read from, per spec.md §4.5 ("mv only if the
// allocation differs from r"); otherwise a single mv. A spilled result is
// stored to its slot immediately afterward.
func materializeReadRegister(s *ir.Statement) ([]Instruction, error) {
	r, _ := s.ReadRegister()
	alloc, ok := s.Allocation()
	if !ok {
		return nil, &MaterializationError{Kind: NoRegisterAllocation, Detail: "read_register statement has no allocation"}
	}
	var out []Instruction
	if alloc.Register != r {
		out = append(out, mv(alloc.Register, r))
	}
	if alloc.HasSpillSlot {
		out = append(out, sd(alloc.Register, reg.Fp, spillOffset(alloc.SpillSlot)))
	}
	return out, nil
}

func materializeAdd(s *ir.Statement) ([]Instruction, error) {
	a, b, _ := s.AddOperands()
	alloc, ok := s.Allocation()
	if !ok {
		return nil, &MaterializationError{Kind: NoRegisterAllocation, Detail: "add statement has no allocation"}
	}
	var out []Instruction
	beforeA, err := materializeBeforeAction(a)
	if err != nil {
		return nil, err
	}
	out = append(out, beforeA...)

	if b.NeedsRegister() {
		beforeB, err := materializeBeforeAction(b)
		if err != nil {
			return nil, err
		}
		out = append(out, beforeB...)
		out = append(out, add(alloc.Register, a.Register, b.Register))
	} else {
		c, _ := b.Value.Constant()
		out = append(out, addi(alloc.Register, a.Register, int32(int64(c))))
	}
	if alloc.HasSpillSlot {
		out = append(out, sd(alloc.Register, reg.Fp, spillOffset(alloc.SpillSlot)))
	}
	return out, nil
}

// materializeWriteRegister relocates any value the target register held
// before the write (vi.Restore), then either materializes vi's constant
// directly into the target via an li sequence (when vi never needed a
// register of its own), or bridges vi's actual home register to the
// target with an ordinary mv, eliding it when they already coincide.
// Writes to x0 emit nothing beyond the restore, per spec.md §3: the write
// itself is discarded.
func materializeWriteRegister(s *ir.Statement) ([]Instruction, error) {
	target, vi, _ := s.WriteRegister()
	var out []Instruction
	if vi.Restore != nil {
		out = append(out, mv(*vi.Restore, target))
	}
	if target == reg.Zero {
		return out, nil
	}
	if !vi.NeedsRegister() {
		c, _ := vi.Value.Constant()
		insns, err := loadImmediate(target, c)
		if err != nil {
			return nil, err
		}
		return append(out, insns...), nil
	}
	before, err := materializeBeforeAction(vi)
	if err != nil {
		return nil, err
	}
	out = append(out, before...)
	if vi.Register != target {
		out = append(out, mv(target, vi.Register))
	}
	return out, nil
}

// materializeBeforeAction lowers a ValueInfo's allocator-assigned Before
// memory action, if any, into the load that must run before the operand's
// consuming instruction. A ValueInfo with no Before action (its value was
// already live in its assigned register) contributes no instructions.
func materializeBeforeAction(vi *ir.ValueInfo) ([]Instruction, error) {
	if !vi.Allocated() {
		return nil, nil
	}
	switch vi.Before.Kind {
	case ir.LoadImmediate:
		return loadImmediate(vi.Register, vi.Before.Immediate)
	case ir.LoadFromSpill:
		return []Instruction{ld(vi.Register, reg.Fp, spillOffset(vi.Before.Slot))}, nil
	default:
		return nil, nil
	}
}

// spillOffset computes the fp-relative byte offset of spill slot, per
// spec.md §4.5: "-8·slot − stack_frame_size − 8". stack_frame_size is the
// fixed 8-byte saved-fp region established by the prologue; slot 0 lands
// immediately below it.
func spillOffset(slot int) int32 {
	return -int32(8*slot + stackFrameSize + 8)
}
