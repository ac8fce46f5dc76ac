// Package moduleinfo is the narrow boundary type this module accepts
// from the Wasm parser/validator, which spec.md §1 explicitly places
// out of scope ("treated as external collaborators, with only their
// interface to the core specified"). It carries exactly the facts the
// VM Context layer needs: per-entity counts, memory styles, and global
// mutability — never instructions, sections, or validation state.
package moduleinfo

// Index identifies an entity (memory, table, global, function,
// signature) by its position within its namespace, local indices
// counted separately from imported ones exactly as spec.md §3 does.
type Index uint32

// MemoryStyle controls whether a memory's base pointer can move after
// the function is entered (spec.md §3: "Dynamic is chosen iff the
// memory style says the base may move").
type MemoryStyle uint8

const (
	MemoryStyleStatic MemoryStyle = iota
	MemoryStyleDynamic
)

// ValueType is the Wasm value type of a global, reproduced here (not
// imported from a parser package) since the VM context layer only ever
// needs to pick a backend.Type for it.
type ValueType uint8

const (
	ValueTypeI32 ValueType = iota
	ValueTypeI64
	ValueTypeF32
	ValueTypeF64
	ValueTypeV128
)

// GlobalType describes one global's declared type and mutability.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// Signature is a Wasm function type, reduced to the shape the VM
// context / intrinsics layers need: a stable per-module SignatureIndex
// and the shared-signature-id lookup depends on nothing else.
type Signature struct {
	Params  []ValueType
	Results []ValueType
}

// ModuleInfo is the pure data this module needs about one validated
// Wasm module in order to compute VMContext offsets (spec.md §3
// "VMContext Offsets: a pure function of (pointer-width, module
// layout)") and to drive the VM Context Access Cache's local/imported
// split for every entity kind.
type ModuleInfo struct {
	// LocalMemories and ImportedMemories are, respectively, the styles
	// of the memories defined in this module and the memories it
	// imports (style is unknown/irrelevant for most imports in real
	// engines, but spec.md's style-gated Dynamic/Static split applies
	// equally to both).
	LocalMemories    []MemoryStyle
	ImportedMemories []MemoryStyle

	LocalTableCount    int
	ImportedTableCount int

	LocalGlobals    []GlobalType
	ImportedGlobals []GlobalType

	// ImportedFunctionSignatures and LocalFunctionSignatures give the
	// SignatureIndex of every imported/locally-defined function, in
	// FunctionIndex order (imports numbered first, matching Wasm's
	// function-index space).
	ImportedFunctionSignatures []int
	LocalFunctionSignatures    []int

	// Signatures is the module's full type section, addressed by
	// SignatureIndex.
	Signatures []Signature
}

// HasMemory reports whether the module defines or imports at least one
// memory.
func (m *ModuleInfo) HasMemory() bool {
	return len(m.LocalMemories) > 0 || len(m.ImportedMemories) > 0
}

// FunctionCount is the total size of the function index space.
func (m *ModuleInfo) FunctionCount() int {
	return len(m.ImportedFunctionSignatures) + len(m.LocalFunctionSignatures)
}

// IsImportedFunction reports whether idx names an imported function.
func (m *ModuleInfo) IsImportedFunction(idx Index) bool {
	return int(idx) < len(m.ImportedFunctionSignatures)
}

// IsImportedMemory reports whether idx names an imported memory
// (imports are numbered before locally-defined entities, matching
// Wasm's index-space convention).
func (m *ModuleInfo) IsImportedMemory(idx Index) bool {
	return int(idx) < len(m.ImportedMemories)
}

// IsImportedTable reports whether idx names an imported table.
func (m *ModuleInfo) IsImportedTable(idx Index) bool {
	return int(idx) < m.ImportedTableCount
}

// IsImportedGlobal reports whether idx names an imported global.
func (m *ModuleInfo) IsImportedGlobal(idx Index) bool {
	return int(idx) < len(m.ImportedGlobals)
}

// LocalMemoryIndex converts a MemoryIndex that IsImportedMemory
// reports false for into its offset within LocalMemories.
func (m *ModuleInfo) LocalMemoryIndex(idx Index) int {
	return int(idx) - len(m.ImportedMemories)
}

// LocalTableIndex converts a TableIndex that IsImportedTable reports
// false for into its offset within the local tables.
func (m *ModuleInfo) LocalTableIndex(idx Index) int {
	return int(idx) - m.ImportedTableCount
}

// LocalGlobalIndex converts a GlobalIndex that IsImportedGlobal
// reports false for into its offset within LocalGlobals.
func (m *ModuleInfo) LocalGlobalIndex(idx Index) int {
	return int(idx) - len(m.ImportedGlobals)
}

// GlobalType returns the declared type of global idx, whether local or
// imported.
func (m *ModuleInfo) GlobalType(idx Index) GlobalType {
	if m.IsImportedGlobal(idx) {
		return m.ImportedGlobals[idx]
	}
	return m.LocalGlobals[m.LocalGlobalIndex(idx)]
}

// MemoryStyle returns the style of memory idx, whether local or
// imported.
func (m *ModuleInfo) MemoryStyle(idx Index) MemoryStyle {
	if m.IsImportedMemory(idx) {
		return m.ImportedMemories[idx]
	}
	return m.LocalMemories[m.LocalMemoryIndex(idx)]
}

// FunctionSignature returns the SignatureIndex of function idx.
func (m *ModuleInfo) FunctionSignature(idx Index) int {
	if m.IsImportedFunction(idx) {
		return m.ImportedFunctionSignatures[idx]
	}
	return m.LocalFunctionSignatures[int(idx)-len(m.ImportedFunctionSignatures)]
}
