// Package elfobj writes a minimal ELF64 little-endian relocatable object
// file: a string table, a symbol table, and the .text/.rela.text/.data
// sections spec.md §4.6 names. It is grounded on the teacher's
// elf_sections.go (section-type/flag constants, the Symbol record, and the
// addString-into-a-string-table idiom) and elf_complete.go/elf_static.go
// (the section-by-section byte-buffer assembly and offset bookkeeping),
// narrowed from the teacher's executable-with-program-headers writer down
// to the section-header-only relocatable object this backend produces, and
// retargeted from x86_64/ARM64 to the single RISC-V e_machine value.
package elfobj

const (
	shtNull    = 0
	shtProgbits = 1
	shtSymtab  = 2
	shtStrtab  = 3
	shtRela    = 4

	shfWrite     = 0x1
	shfAlloc     = 0x2
	shfExecinstr = 0x4
	shfInfoLink  = 0x40

	// STB_GLOBAL and STT_NOTYPE/STT_FUNC/STT_OBJECT, per the ELF64 symbol
	// binding/type taxonomy spec.md §4.6 and SPEC_FULL.md §3 name.
	stbGlobal  = 1
	sttNotype  = 0
	sttObject  = 1
	sttFunc    = 2

	// emRISCV is the e_machine value the RISC-V psABI assigns; not present
	// anywhere in the teacher's own constant tables (which only define
	// x86_64/ARM64/dynamic-linking relocation types), so it is named here
	// directly from the ELF specification rather than grounded in the pack.
	emRISCV = 243
	etRel   = 1

	elfHeaderSize     = 64
	sectionHeaderSize = 64
	symEntrySize      = 24
	relaEntrySize     = 24
)

// Section header indices, in the fixed order spec.md §4.6 mandates:
// [SHT_NULL], .strtab, .text, .rela.text, .data, .symtab.
const (
	shNull = iota
	shStrtab
	shText
	shRelaText
	shData
	shSymtab
	numSections
)
