package materialize

import "testing"

// Known-good encodings cross-checked against the RV64I reference manual's
// worked examples, not merely against this package's own helpers.
func TestEncodeAddKnownEncoding(t *testing.T) {
	// add a0, a1, a2 -> rd=10, rs1=11, rs2=12
	got := encodeAdd(10, 11, 12)
	want := uint32(0x00c58533)
	if got != want {
		t.Errorf("encodeAdd(10, 11, 12) = 0x%08x, want 0x%08x", got, want)
	}
}

func TestEncodeAddiKnownEncoding(t *testing.T) {
	// addi a0, a0, 21 -> rd=10, rs1=10, imm=21
	got := encodeAddi(10, 10, 21)
	want := uint32(0x01550513)
	if got != want {
		t.Errorf("encodeAddi(10, 10, 21) = 0x%08x, want 0x%08x", got, want)
	}
}

func TestEncodeAddiNegativeImmediate(t *testing.T) {
	got := encodeAddi(10, 10, -1)
	// imm field is all ones for -1, masked to 12 bits.
	want := uint32(0xfff50513)
	if got != want {
		t.Errorf("encodeAddi(10, 10, -1) = 0x%08x, want 0x%08x", got, want)
	}
}

func TestEncodeLuiKnownEncoding(t *testing.T) {
	// lui a0, 0x13880 -> rd=10, upper bits already shifted into place.
	got := encodeLui(10, 0x13880<<12)
	want := uint32(0x13880537)
	if got != want {
		t.Errorf("encodeLui(10, 0x13880<<12) = 0x%08x, want 0x%08x", got, want)
	}
}

func TestEncodeLdKnownEncoding(t *testing.T) {
	// ld a0, -8(fp) -> rd=10, rs1=fp(8), offset=-8
	got := encodeLd(10, 8, -8)
	want := uint32(0xff843503)
	if got != want {
		t.Errorf("encodeLd(10, 8, -8) = 0x%08x, want 0x%08x", got, want)
	}
}

func TestEncodeSdKnownEncoding(t *testing.T) {
	// sd ra, -8(sp) -> rs1=sp(2), rs2=ra(1), offset=-8
	got := encodeSd(2, 1, -8)
	want := uint32(0xfe113c23)
	if got != want {
		t.Errorf("encodeSd(2, 1, -8) = 0x%08x, want 0x%08x", got, want)
	}
}

func TestEncodeJalrKnownEncoding(t *testing.T) {
	// ret = jalr x0, ra, 0 -> rd=0, rs1=ra(1), offset=0
	got := encodeJalr(0, 1, 0)
	want := uint32(0x00008067)
	if got != want {
		t.Errorf("encodeJalr(0, 1, 0) = 0x%08x, want 0x%08x", got, want)
	}
}

func TestEncodeITypeFieldPlacement(t *testing.T) {
	word := encodeIType(0x13, 0x0, 5, 6, 100)
	if got := word & 0x7f; got != 0x13 {
		t.Errorf("opcode field = 0x%x, want 0x13", got)
	}
	if got := (word >> 7) & 0x1f; got != 5 {
		t.Errorf("rd field = %d, want 5", got)
	}
	if got := (word >> 12) & 0x7; got != 0x0 {
		t.Errorf("funct3 field = %d, want 0", got)
	}
	if got := (word >> 15) & 0x1f; got != 6 {
		t.Errorf("rs1 field = %d, want 6", got)
	}
	if got := int32(word) >> 20; got != 100 {
		t.Errorf("imm field = %d, want 100", got)
	}
}

func TestEncodeSTypeSplitsImmediateAcrossTwoFields(t *testing.T) {
	// offset -8 = 0b...11111000, low 5 bits = 11000(0x18), high 7 bits = 1111111(0x7f)
	word := encodeSType(0x23, 0x3, 2, 1, -8)
	imm40 := (word >> 7) & 0x1f
	imm115 := (word >> 25) & 0x7f
	if imm40 != 0x18 {
		t.Errorf("imm[4:0] = 0x%x, want 0x18", imm40)
	}
	if imm115 != 0x7f {
		t.Errorf("imm[11:5] = 0x%x, want 0x7f", imm115)
	}
}

func TestEncodeUTypeMasksImmediateToUpper20Bits(t *testing.T) {
	word := encodeUType(0x37, 10, 0xabcde123)
	if got := word & 0xfffff000; got != 0xabcde000 {
		t.Errorf("upper 20 immediate bits = 0x%x, want 0xabcde000", got)
	}
	if got := word & 0x7f; got != 0x37 {
		t.Errorf("opcode field = 0x%x, want 0x37", got)
	}
	if got := (word >> 7) & 0x1f; got != 10 {
		t.Errorf("rd field = %d, want 10", got)
	}
}
