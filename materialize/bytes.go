package materialize

import "encoding/binary"

// EncodeInstructions flattens a materialized instruction sequence into the
// little-endian byte stream an RV64I .text section holds, one 32-bit word
// per instruction in order, mirroring the teacher's own little-endian word
// packing in riscv64_instructions.go's encoders.
func EncodeInstructions(insns []Instruction) []byte {
	out := make([]byte, 4*len(insns))
	for i, insn := range insns {
		binary.LittleEndian.PutUint32(out[4*i:], insn.Word)
	}
	return out
}
