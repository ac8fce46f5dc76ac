// Package offsets computes the VMContext byte-offset table: a pure
// function of (pointer width, module layout) that the VM Context
// Accessor consults on every materialization. Grounded on the
// teacher's wazevoapi.NewModuleContextOffsetData, which builds an
// equivalent table (ModuleContextOffsetData) by walking the module's
// declared entities once and accumulating a running offset — the same
// running-offset construction is used here, generalized to the
// richer VMContext layout spec.md §3 describes (separate local/import
// regions per entity kind, a shared-signature-ID table, and four fixed
// builtin-function-pointer slots rather than one opaque table).
package offsets

import "github.com/kubkon/wasmnative/moduleinfo"

// Offset is a byte offset into the VMContext struct. Negative means
// "this region does not exist for this module" (no memories, no
// tables, ...), matching the teacher's -1 sentinel convention.
type Offset int32

const noRegion Offset = -1

// Sizes of the fixed-shape sub-structures the runtime places inline in
// VMContext, per spec.md §3/§6.
const (
	// MemoryDefinitionSize is sizeof({ base *u8, current_length usize }).
	MemoryDefinitionSize = 16
	// TableDefinitionSize is sizeof({ base *VMCallerCheckedAnyfunc, current_elements usize }).
	TableDefinitionSize = 16
	// FunctionImportSize is sizeof({ body *u8, vmctx *u8 }).
	FunctionImportSize = 16
	// SignatureIDSize is sizeof(i32) for a shared signature id slot.
	SignatureIDSize = 4
	// Global storage slots have no size constant here: every global's
	// slot, mutable or immutable, holds a pointer to its value, so it is
	// one pointer wide (New's pointerWidth parameter).
)

// Offsets is the complete, immutable byte-offset table for one
// (pointer width, ModuleInfo) pair. Once constructed it never changes
// for the lifetime of the compilation (spec.md §3: "Offsets are
// immutable for the lifetime of one compilation").
type Offsets struct {
	PointerWidth int32

	localMemoryBegin    Offset
	importedMemoryBegin Offset

	localTableBegin    Offset
	importedTableBegin Offset

	signatureIDsBegin Offset

	localGlobalsBegin    Offset
	importedGlobalsBegin Offset

	importedFunctionsBegin Offset

	// Fixed builtin-function-pointer slots. There are exactly four:
	// grow/size, crossed with local/imported, since the MemoryIndex
	// itself is passed as a runtime argument to the libcall rather
	// than selecting a different slot (spec.md §4.3: "memory_grow,
	// memory_size: mapping MemoryIndex -> pointer to the correct
	// builtin (local vs imported variant)").
	builtinMemoryGrowLocal      Offset
	builtinMemoryGrowImported   Offset
	builtinMemorySizeLocal      Offset
	builtinMemorySizeImported   Offset

	TotalSize int32
}

// New computes the VMContext offset table for m on a host with the
// given pointer width (4 or 8 bytes).
func New(pointerWidth int32, m *moduleinfo.ModuleInfo) Offsets {
	o := Offsets{PointerWidth: pointerWidth}
	pw := Offset(pointerWidth)
	var off Offset

	if n := len(m.LocalMemories); n > 0 {
		o.localMemoryBegin = off
		off += Offset(n) * MemoryDefinitionSize
	} else {
		o.localMemoryBegin = noRegion
	}

	if n := len(m.ImportedMemories); n > 0 {
		o.importedMemoryBegin = off
		// Each imported memory is a pointer to the owning module's
		// VMMemoryDefinition, dereferenced once before use.
		off += Offset(n) * pw
	} else {
		o.importedMemoryBegin = noRegion
	}

	if n := m.LocalTableCount; n > 0 {
		o.localTableBegin = off
		off += Offset(n) * TableDefinitionSize
	} else {
		o.localTableBegin = noRegion
	}

	if n := m.ImportedTableCount; n > 0 {
		o.importedTableBegin = off
		off += Offset(n) * pw
	} else {
		o.importedTableBegin = noRegion
	}

	if n := len(m.Signatures); n > 0 {
		o.signatureIDsBegin = off
		off += Offset(n) * SignatureIDSize
	} else {
		o.signatureIDsBegin = noRegion
	}

	if n := len(m.LocalGlobals); n > 0 {
		o.localGlobalsBegin = off
		off += Offset(n) * pw
	} else {
		o.localGlobalsBegin = noRegion
	}

	if n := len(m.ImportedGlobals); n > 0 {
		o.importedGlobalsBegin = off
		off += Offset(n) * pw
	} else {
		o.importedGlobalsBegin = noRegion
	}

	if n := len(m.ImportedFunctionSignatures); n > 0 {
		o.importedFunctionsBegin = off
		off += Offset(n) * FunctionImportSize
	} else {
		o.importedFunctionsBegin = noRegion
	}

	o.builtinMemoryGrowLocal = off
	off += pw
	o.builtinMemoryGrowImported = off
	off += pw
	o.builtinMemorySizeLocal = off
	off += pw
	o.builtinMemorySizeImported = off
	off += pw

	o.TotalSize = int32(off)
	return o
}

// LocalMemoryDefinition returns the offset of the i-th local memory's
// inline VMMemoryDefinition (base pointer at +0, current length at
// +PointerWidth).
func (o *Offsets) LocalMemoryDefinition(i moduleinfo.Index) Offset {
	return o.localMemoryBegin + Offset(i)*MemoryDefinitionSize
}

// LocalMemoryBase returns the offset of the base-pointer field within
// the i-th local memory's definition.
func (o *Offsets) LocalMemoryBase(i moduleinfo.Index) Offset {
	return o.LocalMemoryDefinition(i)
}

// LocalMemoryLength returns the offset of the current-length field
// within the i-th local memory's definition.
func (o *Offsets) LocalMemoryLength(i moduleinfo.Index) Offset {
	return o.LocalMemoryDefinition(i) + Offset(o.PointerWidth)
}

// ImportedMemory returns the offset of the pointer to the i-th
// imported memory's VMMemoryDefinition (owned by the exporting
// module); this pointer must be dereferenced once before LocalMemory*
// style offsets can be applied to the result.
func (o *Offsets) ImportedMemory(i moduleinfo.Index) Offset {
	return o.importedMemoryBegin + Offset(i)*Offset(o.PointerWidth)
}

// LocalTableDefinition returns the offset of the i-th local table's
// inline VMTableDefinition.
func (o *Offsets) LocalTableDefinition(i moduleinfo.Index) Offset {
	return o.localTableBegin + Offset(i)*TableDefinitionSize
}

// LocalTableBase returns the offset of the base-pointer field within
// the i-th local table's definition.
func (o *Offsets) LocalTableBase(i moduleinfo.Index) Offset {
	return o.LocalTableDefinition(i)
}

// LocalTableCurrentElements returns the offset of the current-elements
// field within the i-th local table's definition.
func (o *Offsets) LocalTableCurrentElements(i moduleinfo.Index) Offset {
	return o.LocalTableDefinition(i) + Offset(o.PointerWidth)
}

// ImportedTable returns the offset of the pointer to the i-th
// imported table's VMTableDefinition.
func (o *Offsets) ImportedTable(i moduleinfo.Index) Offset {
	return o.importedTableBegin + Offset(i)*Offset(o.PointerWidth)
}

// SharedSignatureID returns the offset of the i-th shared signature
// id slot (a loaded i32).
func (o *Offsets) SharedSignatureID(i int) Offset {
	return o.signatureIDsBegin + Offset(i)*SignatureIDSize
}

// LocalGlobal returns the offset of the pointer-sized storage slot for
// the i-th locally-defined global.
func (o *Offsets) LocalGlobal(i moduleinfo.Index) Offset {
	return o.localGlobalsBegin + Offset(i)*Offset(o.PointerWidth)
}

// ImportedGlobal returns the offset of the pointer-sized storage slot
// for the i-th imported global.
func (o *Offsets) ImportedGlobal(i moduleinfo.Index) Offset {
	return o.importedGlobalsBegin + Offset(i)*Offset(o.PointerWidth)
}

// ImportedFunction returns the offsets of the body and companion
// vmctx fields of the i-th imported function's slot.
func (o *Offsets) ImportedFunction(i moduleinfo.Index) (body, vmctx Offset) {
	base := o.importedFunctionsBegin + Offset(i)*FunctionImportSize
	return base, base + Offset(o.PointerWidth)
}

// BuiltinMemoryGrow returns the offset of the memory32.grow builtin
// function pointer slot, local or imported variant.
func (o *Offsets) BuiltinMemoryGrow(imported bool) Offset {
	if imported {
		return o.builtinMemoryGrowImported
	}
	return o.builtinMemoryGrowLocal
}

// BuiltinMemorySize returns the offset of the memory32.size builtin
// function pointer slot, local or imported variant.
func (o *Offsets) BuiltinMemorySize(imported bool) Offset {
	if imported {
		return o.builtinMemorySizeImported
	}
	return o.builtinMemorySizeLocal
}
