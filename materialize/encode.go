package materialize

// Bit-packing encoders for five RV64I instruction formats, ported
// field-for-field from the teacher's encodeRType/encodeIType/
// encodeSType/encodeUType/encodeJType (riscv64_instructions.go), generalized
// from the teacher's string-keyed register operands to reg.Register. The
// backend emits R, I, S and U formats; encodeJType has no caller.

func encodeRType(opcode, funct3, funct7 uint32, rd, rs1, rs2 uint32) uint32 {
	return opcode | (rd << 7) | (funct3 << 12) | (rs1 << 15) | (rs2 << 20) | (funct7 << 25)
}

func encodeIType(opcode, funct3 uint32, rd, rs1 uint32, imm int32) uint32 {
	return opcode | (rd << 7) | (funct3 << 12) | (rs1 << 15) | (uint32(imm&0xfff) << 20)
}

func encodeSType(opcode, funct3 uint32, rs1, rs2 uint32, imm int32) uint32 {
	imm40 := uint32(imm & 0x1f)
	imm115 := uint32((imm >> 5) & 0x7f)
	return opcode | (imm40 << 7) | (funct3 << 12) | (rs1 << 15) | (rs2 << 20) | (imm115 << 25)
}

func encodeUType(opcode, rd, imm uint32) uint32 {
	return opcode | (rd << 7) | (imm & 0xfffff000)
}

func encodeJType(opcode, rd uint32, imm int32) uint32 {
	imm1912 := uint32((imm >> 12) & 0xff)
	imm11 := uint32((imm >> 11) & 0x1)
	imm101 := uint32((imm >> 1) & 0x3ff)
	imm20 := uint32((imm >> 20) & 0x1)
	return opcode | (rd << 7) | (imm1912 << 12) | (imm11 << 20) | (imm101 << 21) | (imm20 << 31)
}

// RV64I opcodes and funct fields this backend's instruction set needs, per
// spec.md §6's consumed-encodings list.
const (
	opAdd   = 0x33 // R-type: add, funct3=0x0, funct7=0x00
	opAddi  = 0x13 // I-type: addi, funct3=0x0
	opAddiw = 0x1b // I-type: addiw, funct3=0x0
	opLd    = 0x03 // I-type: ld, funct3=0x3
	opJalr  = 0x67 // I-type: jalr, funct3=0x0
	opLui   = 0x37 // U-type: lui
	opSd    = 0x23 // S-type: sd, funct3=0x3
)

func encodeAdd(rd, rs1, rs2 uint32) uint32 {
	return encodeRType(opAdd, 0x0, 0x00, rd, rs1, rs2)
}

func encodeAddi(rd, rs1 uint32, imm int32) uint32 {
	return encodeIType(opAddi, 0x0, rd, rs1, imm)
}

func encodeAddiw(rd, rs1 uint32, imm int32) uint32 {
	return encodeIType(opAddiw, 0x0, rd, rs1, imm)
}

func encodeLd(rd, rs1 uint32, offset int32) uint32 {
	return encodeIType(opLd, 0x3, rd, rs1, offset)
}

func encodeSd(rs1, rs2 uint32, offset int32) uint32 {
	return encodeSType(opSd, 0x3, rs1, rs2, offset)
}

func encodeLui(rd, imm uint32) uint32 {
	return encodeUType(opLui, rd, imm)
}

func encodeJalr(rd, rs1 uint32, offset int32) uint32 {
	return encodeIType(opJalr, 0x0, rd, rs1, offset)
}
