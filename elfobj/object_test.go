package elfobj

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestBytesProducesWellFormedELFHeader(t *testing.T) {
	o := NewObject()
	b, err := o.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(b) < elfHeaderSize {
		t.Fatalf("output too short: %d bytes", len(b))
	}
	if !bytes.Equal(b[0:4], []byte{0x7f, 'E', 'L', 'F'}) {
		t.Errorf("e_ident magic = %v, want 0x7f 'E' 'L' 'F'", b[0:4])
	}
	if b[4] != 2 {
		t.Errorf("EI_CLASS = %d, want 2 (ELFCLASS64)", b[4])
	}
	if b[5] != 1 {
		t.Errorf("EI_DATA = %d, want 1 (little-endian)", b[5])
	}
	eType := binary.LittleEndian.Uint16(b[16:18])
	if eType != etRel {
		t.Errorf("e_type = %d, want %d (ET_REL)", eType, etRel)
	}
	eMachine := binary.LittleEndian.Uint16(b[18:20])
	if eMachine != emRISCV {
		t.Errorf("e_machine = %d, want %d (EM_RISCV)", eMachine, emRISCV)
	}
	eFlags := binary.LittleEndian.Uint32(b[48:52])
	if eFlags != 0x04 {
		t.Errorf("e_flags = 0x%x, want 0x04", eFlags)
	}
	eShnum := binary.LittleEndian.Uint16(b[60:62])
	if int(eShnum) != numSections {
		t.Errorf("e_shnum = %d, want %d", eShnum, numSections)
	}
	eShstrndx := binary.LittleEndian.Uint16(b[62:64])
	if int(eShstrndx) != shStrtab {
		t.Errorf("e_shstrndx = %d, want %d", eShstrndx, shStrtab)
	}
}

func TestBytesOrdersSectionHeadersAsSpecified(t *testing.T) {
	o := NewObject()
	b, err := o.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	wantTypes := []uint32{shtNull, shtStrtab, shtProgbits, shtRela, shtProgbits, shtSymtab}
	for i, want := range wantTypes {
		off := elfHeaderSize + i*sectionHeaderSize
		got := binary.LittleEndian.Uint32(b[off+4 : off+8])
		if got != want {
			t.Errorf("section[%d] sh_type = %d, want %d", i, got, want)
		}
	}
}

func TestAppendTextReturnsSequentialOffsets(t *testing.T) {
	o := NewObject()
	off1 := o.AppendText([]byte{1, 2, 3, 4})
	off2 := o.AppendText([]byte{5, 6, 7, 8})
	if off1 != 0 {
		t.Errorf("first AppendText offset = %d, want 0", off1)
	}
	if off2 != 4 {
		t.Errorf("second AppendText offset = %d, want 4", off2)
	}
}

func TestAddSymbolAtEndUsesCurrentTextLength(t *testing.T) {
	o := NewObject()
	o.AppendText([]byte{0, 0, 0, 0})
	o.AddSymbolAtEnd("f", 8)
	o.AppendText([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	if len(o.symbols) != 1 {
		t.Fatalf("len(symbols) = %d, want 1", len(o.symbols))
	}
	if o.symbols[0].Value != 4 {
		t.Errorf("symbol value = %d, want 4 (the text length at AddSymbolAtEnd time)", o.symbols[0].Value)
	}
}

func TestBytesEmbedsTextAndSymbolName(t *testing.T) {
	o := NewObject()
	o.AppendText([]byte{0x13, 0x05, 0x00, 0x00}) // arbitrary instruction bytes
	o.AddSymbol(NewGlobalFunctionSymbol("main", 0, 4))

	b, err := o.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Contains(b, []byte("main\x00")) {
		t.Errorf("serialized object should embed the NUL-terminated symbol name \"main\"")
	}
	if !bytes.Contains(b, []byte{0x13, 0x05, 0x00, 0x00}) {
		t.Errorf("serialized object should embed the .text bytes")
	}
}

func TestBytesWithRelocationEncodesSymbolAddend(t *testing.T) {
	o := NewObject()
	o.AppendText(make([]byte, 4))
	o.AddSymbol(NewGlobalObjectSymbol("g", 0, 8))
	o.AddRelocation(Relocation{Offset: 0, Symbol: 0, Type: 1, Addend: 42})

	b, err := o.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	relaOff := elfHeaderSize + shRelaText*sectionHeaderSize
	sectOffset := binary.LittleEndian.Uint64(b[relaOff+24 : relaOff+32])
	sectSize := binary.LittleEndian.Uint64(b[relaOff+32 : relaOff+40])
	if sectSize != relaEntrySize {
		t.Fatalf(".rela.text sh_size = %d, want %d", sectSize, relaEntrySize)
	}
	entry := b[sectOffset : sectOffset+relaEntrySize]
	gotAddend := int64(binary.LittleEndian.Uint64(entry[16:24]))
	if gotAddend != 42 {
		t.Errorf("relocation addend = %d, want 42", gotAddend)
	}
	info := binary.LittleEndian.Uint64(entry[8:16])
	if sym := info >> 32; sym != 1 {
		t.Errorf("relocation symbol index = %d, want 1 (1-based, symbol 0 + 1)", sym)
	}
	if typ := uint32(info & 0xffffffff); typ != 1 {
		t.Errorf("relocation type = %d, want 1", typ)
	}
}

func TestStringTableDeduplicatesIdenticalNames(t *testing.T) {
	st := newStringTable()
	a := st.add("foo")
	b := st.add("bar")
	c := st.add("foo")
	if a != c {
		t.Errorf("add(\"foo\") twice returned different offsets: %d, %d", a, c)
	}
	if a == b {
		t.Errorf("add(\"foo\") and add(\"bar\") collided at offset %d", a)
	}
}

func TestStringTableStartsWithNulByte(t *testing.T) {
	st := newStringTable()
	if len(st.bytes()) != 1 || st.bytes()[0] != 0 {
		t.Fatalf("a fresh string table should be exactly one NUL byte, got %v", st.bytes())
	}
	if off := st.add(""); off != 0 {
		t.Errorf("add(\"\") = %d, want 0", off)
	}
}

func TestNewSymbolDefaults(t *testing.T) {
	s := NewSymbol("x", 16, 4)
	if s.Binding != stbGlobal || s.Type != sttNotype {
		t.Errorf("NewSymbol binding/type = %d/%d, want STB_GLOBAL/STT_NOTYPE", s.Binding, s.Type)
	}
	if s.section != shText {
		t.Errorf("NewSymbol section = %d, want shText", s.section)
	}
}

func TestNewGlobalObjectSymbolTargetsData(t *testing.T) {
	s := NewGlobalObjectSymbol("g", 0, 8)
	if s.Type != sttObject {
		t.Errorf("NewGlobalObjectSymbol type = %d, want STT_OBJECT", s.Type)
	}
	if s.section != shData {
		t.Errorf("NewGlobalObjectSymbol section = %d, want shData", s.section)
	}
}
