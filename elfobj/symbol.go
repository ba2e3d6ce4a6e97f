package elfobj

// Symbol is one entry this object's .symtab will carry. Value and Size are
// byte offsets and lengths within the section the unexported section field
// names (shText or shData); Binding and Type are the raw ELF64 st_info
// sub-fields.
type Symbol struct {
	Name    string
	Value   uint64
	Size    uint64
	Binding byte
	Type    byte
	section uint16
}

// NewSymbol returns a symbol at the spec.md §4.6 default: binding
// STB_GLOBAL, type STT_NOTYPE, naming an offset within .text. This is the
// literal combination spec.md's ELF writer section describes.
func NewSymbol(name string, offset, size uint64) Symbol {
	return Symbol{Name: name, Value: offset, Size: size, Binding: stbGlobal, Type: sttNotype, section: shText}
}

// NewGlobalFunctionSymbol returns a STB_GLOBAL/STT_FUNC symbol naming a
// function's entry offset and byte length within .text, mirroring the
// teacher's AddSymbol(name, binding, STT_FUNC) convenience in
// elf_sections.go, scoped to the combination this backend actually emits:
// one symbol per compiled Function.
func NewGlobalFunctionSymbol(name string, offset, size uint64) Symbol {
	return Symbol{Name: name, Value: offset, Size: size, Binding: stbGlobal, Type: sttFunc, section: shText}
}

// NewGlobalObjectSymbol returns a STB_GLOBAL/STT_OBJECT symbol naming a
// data offset and byte length within .data.
func NewGlobalObjectSymbol(name string, offset, size uint64) Symbol {
	return Symbol{Name: name, Value: offset, Size: size, Binding: stbGlobal, Type: sttObject, section: shData}
}
