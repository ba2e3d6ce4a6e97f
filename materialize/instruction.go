package materialize

import (
	"fmt"

	"github.com/xyproto/rv64ssa/reg"
)

// Instruction is one emitted 32-bit RV64I instruction word, paired with the
// mnemonic and operands that produced it. The ELF writer only ever consumes
// Word; Mnemonic/Operands exist purely for disassembly, grounded in the
// teacher's own text-assembly emission in riscv64_codegen.go, and are used
// by tests, never by the object-file path itself.
type Instruction struct {
	Word     uint32
	Mnemonic string
	Operands []string
}

// String renders the instruction as a line of RISC-V assembly text, e.g.
// "add a0, a0, a1".
func (i Instruction) String() string {
	if len(i.Operands) == 0 {
		return i.Mnemonic
	}
	s := i.Mnemonic
	for j, op := range i.Operands {
		if j == 0 {
			s += " " + op
		} else {
			s += ", " + op
		}
	}
	return s
}

func add(rd, rs1, rs2 reg.Register) Instruction {
	return Instruction{
		Word:     encodeAdd(uint32(rd), uint32(rs1), uint32(rs2)),
		Mnemonic: "add",
		Operands: []string{rd.String(), rs1.String(), rs2.String()},
	}
}

func addi(rd, rs1 reg.Register, imm int32) Instruction {
	return Instruction{
		Word:     encodeAddi(uint32(rd), uint32(rs1), imm),
		Mnemonic: "addi",
		Operands: []string{rd.String(), rs1.String(), fmt.Sprintf("%d", imm)},
	}
}

func addiw(rd, rs1 reg.Register, imm int32) Instruction {
	return Instruction{
		Word:     encodeAddiw(uint32(rd), uint32(rs1), imm),
		Mnemonic: "addiw",
		Operands: []string{rd.String(), rs1.String(), fmt.Sprintf("%d", imm)},
	}
}

func mv(rd, rs reg.Register) Instruction {
	return addi(rd, rs, 0)
}

func ld(rd, base reg.Register, offset int32) Instruction {
	return Instruction{
		Word:     encodeLd(uint32(rd), uint32(base), offset),
		Mnemonic: "ld",
		Operands: []string{rd.String(), fmt.Sprintf("%d(%s)", offset, base)},
	}
}

func sd(src, base reg.Register, offset int32) Instruction {
	return Instruction{
		Word:     encodeSd(uint32(base), uint32(src), offset),
		Mnemonic: "sd",
		Operands: []string{src.String(), fmt.Sprintf("%d(%s)", offset, base)},
	}
}

func lui(rd reg.Register, imm20 uint32) Instruction {
	return Instruction{
		Word:     encodeLui(uint32(rd), imm20<<12),
		Mnemonic: "lui",
		Operands: []string{rd.String(), fmt.Sprintf("0x%x", imm20)},
	}
}

func jalr(rd, rs1 reg.Register, offset int32) Instruction {
	return Instruction{
		Word:     encodeJalr(uint32(rd), uint32(rs1), offset),
		Mnemonic: "jalr",
		Operands: []string{rd.String(), rs1.String(), fmt.Sprintf("%d", offset)},
	}
}

// ret is jalr x0, ra, 0, the RV64I return pseudo-instruction.
func ret() Instruction {
	return jalr(reg.Zero, reg.Ra, 0)
}
