package elfobj

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/xyproto/rv64ssa/internal/rtrace"
)

// Relocation is one .rela.text entry: a patch site at Offset within .text,
// naming the zero-based index (within the symbols this Object was given,
// not the raw symtab index) of the symbol the linker should resolve, a
// relocation Type (one of the R_RISCV_* constants), and an Addend. This
// backend's instruction set has no call or branch to an external symbol
// (Non-goals), so a typical Object carries none; the mechanism is kept
// because spec.md §4.6 fixes .rela.text's section format regardless.
type Relocation struct {
	Offset uint64
	Symbol int
	Type   uint32
	Addend int64
}

// Object accumulates a compiled program's .text and .data bytes, its
// symbols, and any relocations, and serializes them into a single ELF64
// relocatable object file on Bytes/WriteFile. It is grounded on the
// teacher's ExecutableBuilder (elf.go, elf_complete.go): a byte-buffer per
// section plus a deferred, single serialization pass that fills in offsets
// once every section's size is known — narrowed here to the fixed
// six-section, no-program-header layout spec.md §4.6 names.
type Object struct {
	text        []byte
	data        []byte
	symbols     []Symbol
	relocations []Relocation
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{}
}

// AppendText appends code to the .text section and returns the byte offset
// it was placed at.
func (o *Object) AppendText(code []byte) uint64 {
	off := uint64(len(o.text))
	o.text = append(o.text, code...)
	return off
}

// AppendData appends raw bytes to the .data section and returns the byte
// offset it was placed at.
func (o *Object) AppendData(d []byte) uint64 {
	off := uint64(len(o.data))
	o.data = append(o.data, d...)
	return off
}

// AddSymbol records sym for the object's .symtab.
func (o *Object) AddSymbol(sym Symbol) {
	o.symbols = append(o.symbols, sym)
}

// AddSymbolAtEnd records a STB_GLOBAL/STT_NOTYPE symbol named name, sized
// size, at the current end of .text — the offset AppendText's next call
// would return. spec.md §6 names this operation directly ("the symbols
// added via add_symbol_at_end"): it lets a producer mark a function's entry
// point immediately after materializing it, without having to remember the
// offset AppendText returned earlier.
func (o *Object) AddSymbolAtEnd(name string, size uint64) {
	o.AddSymbol(NewSymbol(name, uint64(len(o.text)), size))
}

// AddRelocation records r for the object's .rela.text.
func (o *Object) AddRelocation(r Relocation) {
	o.relocations = append(o.relocations, r)
}

func align(n, a int) int {
	if a <= 1 {
		return n
	}
	if r := n % a; r != 0 {
		return n + (a - r)
	}
	return n
}

// Bytes serializes the object into a complete ELF64 little-endian
// relocatable file, per spec.md §4.6: e_type=ET_REL, e_machine=EM_RISCV,
// e_flags=0x04, sections [SHT_NULL], .strtab, .text, .rela.text, .data,
// .symtab in that order, each section's offset and size filled in only
// after every section's content is known.
func (o *Object) Bytes() ([]byte, error) {
	strtab := newStringTable()
	nameStrtab := strtab.add(".strtab")
	nameText := strtab.add(".text")
	nameRela := strtab.add(".rela.text")
	nameData := strtab.add(".data")
	nameSymtab := strtab.add(".symtab")

	symtab, err := o.buildSymtab(strtab)
	if err != nil {
		return nil, err
	}
	rela := o.buildRela()

	base := elfHeaderSize + numSections*sectionHeaderSize
	strtabOff := base
	strtabSize := len(strtab.bytes())
	textOff := align(strtabOff+strtabSize, 4)
	textSize := len(o.text)
	relaOff := align(textOff+textSize, 8)
	relaSize := len(rela)
	dataOff := align(relaOff+relaSize, 1)
	dataSize := len(o.data)
	symtabOff := align(dataOff+dataSize, 8)
	symtabSize := len(symtab)

	rtrace.Tracef("elfobj: layout strtab=%d+%d text=%d+%d rela=%d+%d data=%d+%d symtab=%d+%d",
		strtabOff, strtabSize, textOff, textSize, relaOff, relaSize, dataOff, dataSize, symtabOff, symtabSize)

	var buf bytes.Buffer
	writeHeader(&buf)

	writeSectionHeader(&buf, 0, shtNull, 0, 0, 0, 0, 0, 0, 0)
	writeSectionHeader(&buf, nameStrtab, shtStrtab, 0, uint64(strtabOff), uint64(strtabSize), 0, 0, 1, 0)
	writeSectionHeader(&buf, nameText, shtProgbits, shfAlloc|shfExecinstr, uint64(textOff), uint64(textSize), 0, 0, 4, 0)
	writeSectionHeader(&buf, nameRela, shtRela, shfInfoLink, uint64(relaOff), uint64(relaSize), shSymtab, shText, 8, relaEntrySize)
	writeSectionHeader(&buf, nameData, shtProgbits, shfAlloc|shfWrite, uint64(dataOff), uint64(dataSize), 0, 0, 1, 0)
	writeSectionHeader(&buf, nameSymtab, shtSymtab, 0, uint64(symtabOff), uint64(symtabSize), shStrtab, 1, 8, symEntrySize)

	padTo(&buf, strtabOff)
	buf.Write(strtab.bytes())
	padTo(&buf, textOff)
	buf.Write(o.text)
	padTo(&buf, relaOff)
	buf.Write(rela)
	padTo(&buf, dataOff)
	buf.Write(o.data)
	padTo(&buf, symtabOff)
	buf.Write(symtab)

	return buf.Bytes(), nil
}

// WriteFile serializes the object and writes it to path, wrapping any I/O
// failure exactly as the teacher wraps os errors in elf_complete.go:
// fmt.Errorf with %w, never swallowed.
func (o *Object) WriteFile(path string) error {
	b, err := o.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("elfobj: write %s: %w", path, err)
	}
	return nil
}

func padTo(buf *bytes.Buffer, target int) {
	for buf.Len() < target {
		buf.WriteByte(0)
	}
}

func writeHeader(buf *bytes.Buffer) {
	ident := [16]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}
	buf.Write(ident[:])
	binary.Write(buf, binary.LittleEndian, uint16(etRel))
	binary.Write(buf, binary.LittleEndian, uint16(emRISCV))
	binary.Write(buf, binary.LittleEndian, uint32(1)) // e_version
	binary.Write(buf, binary.LittleEndian, uint64(0)) // e_entry
	binary.Write(buf, binary.LittleEndian, uint64(0)) // e_phoff
	binary.Write(buf, binary.LittleEndian, uint64(elfHeaderSize)) // e_shoff
	binary.Write(buf, binary.LittleEndian, uint32(0x04))          // e_flags
	binary.Write(buf, binary.LittleEndian, uint16(elfHeaderSize))
	binary.Write(buf, binary.LittleEndian, uint16(0)) // e_phentsize
	binary.Write(buf, binary.LittleEndian, uint16(0)) // e_phnum
	binary.Write(buf, binary.LittleEndian, uint16(sectionHeaderSize))
	binary.Write(buf, binary.LittleEndian, uint16(numSections))
	binary.Write(buf, binary.LittleEndian, uint16(shStrtab)) // e_shstrndx
}

func writeSectionHeader(buf *bytes.Buffer, name uint32, typ, flags uint32, offset, size uint64, link, info uint32, addralign, entsize uint64) {
	binary.Write(buf, binary.LittleEndian, name)
	binary.Write(buf, binary.LittleEndian, typ)
	binary.Write(buf, binary.LittleEndian, uint64(flags))
	binary.Write(buf, binary.LittleEndian, uint64(0)) // sh_addr
	binary.Write(buf, binary.LittleEndian, offset)
	binary.Write(buf, binary.LittleEndian, size)
	binary.Write(buf, binary.LittleEndian, link)
	binary.Write(buf, binary.LittleEndian, info)
	binary.Write(buf, binary.LittleEndian, addralign)
	binary.Write(buf, binary.LittleEndian, entsize)
}

func (o *Object) buildSymtab(strtab *stringTable) ([]byte, error) {
	var buf bytes.Buffer
	writeSym(&buf, 0, 0, 0, 0, 0) // index 0: the mandatory null symbol
	for _, s := range o.symbols {
		name := strtab.add(s.Name)
		info := (s.Binding << 4) | (s.Type & 0xf)
		writeSym(&buf, name, info, s.section, s.Value, s.Size)
	}
	return buf.Bytes(), nil
}

func writeSym(buf *bytes.Buffer, name uint32, info byte, shndx uint16, value, size uint64) {
	binary.Write(buf, binary.LittleEndian, name)
	buf.WriteByte(info)
	buf.WriteByte(0) // st_other
	binary.Write(buf, binary.LittleEndian, shndx)
	binary.Write(buf, binary.LittleEndian, value)
	binary.Write(buf, binary.LittleEndian, size)
}

func (o *Object) buildRela() []byte {
	var buf bytes.Buffer
	for _, r := range o.relocations {
		info := (uint64(r.Symbol+1) << 32) | uint64(r.Type)
		binary.Write(&buf, binary.LittleEndian, r.Offset)
		binary.Write(&buf, binary.LittleEndian, info)
		binary.Write(&buf, binary.LittleEndian, r.Addend)
	}
	return buf.Bytes()
}
