// Package vmctx implements the VM Context Accessor: spec.md §4.3,
// "the subsystem whose design carries the most semantic weight". It is
// a stateful, per-function cache that lazily materializes typed
// pointers into the VM context struct, tagging every load with a TBAA
// label so the backend optimizer may freely hoist, CSE and reorder
// them.
//
// Grounded on the teacher's frontend.Compiler (internal/engine/wazevo/frontend),
// which holds exactly this kind of per-function state
// (memoryBaseVariable, globalVariables, wasmLocalToVariable, ...) reset
// once per function and populated lazily as the Wasm body references
// each entity, and on wazevoapi.ModuleContextOffsetData's
// local/imported split. The teacher folds caching into SSA variables
// resolved by block-local definitions; this module instead models
// spec.md's literal "entry().or_insert_with(...)" idiom with plain Go
// maps, since the cache here is not meant to evolve across control-flow
// joins (read once at entry, dominates every later use).
package vmctx

import (
	"fmt"

	"github.com/kubkon/wasmnative/backend"
	"github.com/kubkon/wasmnative/moduleinfo"
	"github.com/kubkon/wasmnative/offsets"
)

// MemoryCache is the materialized access path to one memory.
//
// Both variants eagerly load the base pointer once, tagged
// "memory base_ptr <index>" (spec.md §8 scenario S1/S2). Dynamic
// additionally retains the addresses of the base pointer and
// current-length fields so a later memory.grow can invalidate just
// this entity by reloading through them; Static never needs to reload
// so those addresses are not kept (spec.md §4.3: "the length field
// is not tracked because it is constant").
type MemoryCache struct {
	Dynamic bool

	// Base is the memory's base pointer, loaded once at cache-build
	// time. Valid for both variants.
	Base backend.Value

	// BasePtrAddr and LenAddr are the addresses of the base-pointer and
	// current-length fields within the VMMemoryDefinition. Only valid
	// when Dynamic is true.
	BasePtrAddr backend.Value
	LenAddr     backend.Value
}

// TableCache is the materialized access path to one table: its base
// pointer and current element count, both loaded eagerly (spec.md
// §4.3: "materializes base pointer and current-elements count via
// table_prepare, then loads both").
type TableCache struct {
	Base   backend.Value
	Bounds backend.Value
}

// GlobalCache is the materialized access path to one global.
// Immutable globals are loaded once and the Const value shared across
// every use in the function, since a global declared immutable cannot
// change for the duration of a call (spec.md §4.3). Mutable globals
// instead cache the address, so every read/write goes through a fresh
// load/store of the current value.
type GlobalCache struct {
	Mutable bool

	// Const holds the loaded value when !Mutable.
	Const backend.Value
	// Addr holds the pointer to the global's value, loaded once from
	// its VMContext slot, when Mutable.
	Addr backend.Value
}

// FunctionCache is the materialized access path to one function: its
// entry point and companion VMContext, plus whatever attributes the
// call site should propagate (e.g. a host-import trampoline's
// attribute list).
type FunctionCache struct {
	FuncPtr backend.Value
	VMCtx   backend.Value
	Attrs   []backend.Attribute
}

// LocalFuncDeclarer declares the external symbol for a locally-defined
// function, returning the backend Function the cache will take the
// address of. Supplied by the translator (not specified by spec.md,
// which leaves trap-emission sites and ABI lowering to the excluded
// translator layer) since only it knows each local function's
// Wasm-ABI-lowered Signature.
type LocalFuncDeclarer func(idx moduleinfo.Index) (*backend.Function, error)

// Cache is the per-function VM Context Access Cache (spec.md §4.3).
// It owns no lifetime beyond the function currently being translated:
// callers construct one per function and discard it when that
// function's translation finishes (spec.md §5).
type Cache struct {
	module  *backend.Module
	builder *backend.Builder
	offs    *offsets.Offsets
	info    *moduleinfo.ModuleInfo

	// vmctx is the function's VMContext pointer parameter: every
	// materialization starts with a GEP from this value.
	vmctx backend.Value

	declareLocalFunc LocalFuncDeclarer

	memories   map[moduleinfo.Index]MemoryCache
	tables     map[moduleinfo.Index]TableCache
	sigIDs     map[int]backend.Value
	globals    map[moduleinfo.Index]GlobalCache
	funcs      map[moduleinfo.Index]FunctionCache
	memoryGrow map[moduleinfo.Index]backend.Value
	memorySize map[moduleinfo.Index]backend.Value
}

// New creates a VM Context Access Cache for one function. builder must
// be positioned at the function's entry block (spec.md §4.3
// "Initialization detail": "All materialized loads are emitted with a
// builder positioned at the function's entry block"); vmctxParam is
// that function's VMContext pointer parameter.
func New(
	module *backend.Module,
	builder *backend.Builder,
	offs *offsets.Offsets,
	info *moduleinfo.ModuleInfo,
	vmctxParam backend.Value,
	declareLocalFunc LocalFuncDeclarer,
) *Cache {
	return &Cache{
		module:           module,
		builder:          builder,
		offs:             offs,
		info:             info,
		vmctx:            vmctxParam,
		declareLocalFunc: declareLocalFunc,
		memories:         make(map[moduleinfo.Index]MemoryCache),
		tables:           make(map[moduleinfo.Index]TableCache),
		sigIDs:           make(map[int]backend.Value),
		globals:          make(map[moduleinfo.Index]GlobalCache),
		funcs:            make(map[moduleinfo.Index]FunctionCache),
		memoryGrow:       make(map[moduleinfo.Index]backend.Value),
		memorySize:       make(map[moduleinfo.Index]backend.Value),
	}
}

// Memory returns the MemoryCache for index, materializing it on first
// use. A second call with the same index is a pure map lookup: no new
// instructions are emitted (spec.md §8 invariant 4).
func (c *Cache) Memory(index moduleinfo.Index, style moduleinfo.MemoryStyle) MemoryCache {
	if mc, ok := c.memories[index]; ok {
		return mc
	}

	var structPtr backend.Value
	if c.info.IsImportedMemory(index) {
		// Outer GEP to the import slot, then one load to dereference
		// the pointer to the owning module's VMMemoryDefinition
		// (spec.md §4.3 scenario S2: "two GEPs (outer to import slot,
		// then deref), one load of the definition pointer").
		slot := c.builder.GEP(c.vmctx, int32(c.offs.ImportedMemory(index)))
		slot = c.builder.BitCast(slot, backend.Ptr)
		tag := c.module.TBAA.ScalarTag(memoryDefinitionLabel(index))
		structPtr = c.builder.Load(slot, backend.Ptr, tag)
	} else {
		localIndex := moduleinfo.Index(c.info.LocalMemoryIndex(index))
		structPtr = c.builder.GEP(c.vmctx, int32(c.offs.LocalMemoryDefinition(localIndex)))
		structPtr = c.builder.BitCast(structPtr, backend.Ptr)
	}

	basePtrAddr := c.builder.StructGEP(structPtr, 0, backend.Ptr)
	baseTag := c.module.TBAA.ScalarTag(memoryBasePtrLabel(index))
	base := c.builder.Load(basePtrAddr, backend.Ptr, baseTag)

	mc := MemoryCache{Base: base}
	if style == moduleinfo.MemoryStyleDynamic {
		mc.Dynamic = true
		mc.BasePtrAddr = basePtrAddr
		mc.LenAddr = c.builder.StructGEP(structPtr, int32(c.offs.PointerWidth), backend.I64)
	}

	c.memories[index] = mc
	return mc
}

// Table returns the TableCache for index, materializing it on first
// use.
func (c *Cache) Table(index moduleinfo.Index) TableCache {
	if tc, ok := c.tables[index]; ok {
		return tc
	}

	var structPtr backend.Value
	if c.info.IsImportedTable(index) {
		slot := c.builder.GEP(c.vmctx, int32(c.offs.ImportedTable(index)))
		slot = c.builder.BitCast(slot, backend.Ptr)
		tag := c.module.TBAA.ScalarTag(tableDefinitionLabel(index))
		structPtr = c.builder.Load(slot, backend.Ptr, tag)
	} else {
		localIndex := moduleinfo.Index(c.info.LocalTableIndex(index))
		structPtr = c.builder.GEP(c.vmctx, int32(c.offs.LocalTableDefinition(localIndex)))
		structPtr = c.builder.BitCast(structPtr, backend.Ptr)
	}

	baseAddr := c.builder.StructGEP(structPtr, 0, backend.Ptr)
	baseTag := c.module.TBAA.ScalarTag(tableBasePtrLabel(index))
	base := c.builder.Load(baseAddr, backend.Ptr, baseTag)

	boundsAddr := c.builder.StructGEP(structPtr, int32(c.offs.PointerWidth), backend.I32)
	boundsTag := c.module.TBAA.ScalarTag(tableBoundsLabel(index))
	bounds := c.builder.Load(boundsAddr, backend.I32, boundsTag)

	tc := TableCache{Base: base, Bounds: bounds}
	c.tables[index] = tc
	return tc
}

// DynamicSigIndex returns the loaded i32 shared signature id for
// sigIndex, used for indirect-call signature checks.
func (c *Cache) DynamicSigIndex(sigIndex int) backend.Value {
	if v, ok := c.sigIDs[sigIndex]; ok {
		return v
	}
	addr := c.builder.GEP(c.vmctx, int32(c.offs.SharedSignatureID(sigIndex)))
	addr = c.builder.BitCast(addr, backend.Ptr)
	tag := c.module.TBAA.ScalarTag(sigIndexLabel(sigIndex))
	v := c.builder.Load(addr, backend.I32, tag)
	c.sigIDs[sigIndex] = v
	return v
}

// Global returns the GlobalCache for index, materializing it on first
// use. Mutability is copied from the module's declared global type.
func (c *Cache) Global(index moduleinfo.Index) GlobalCache {
	if gc, ok := c.globals[index]; ok {
		return gc
	}

	typ := c.info.GlobalType(index)
	backendType := wasmValueTypeToBackend(typ.ValType)

	var addr backend.Value
	if c.info.IsImportedGlobal(index) {
		addr = c.builder.GEP(c.vmctx, int32(c.offs.ImportedGlobal(index)))
	} else {
		localIndex := moduleinfo.Index(c.info.LocalGlobalIndex(index))
		addr = c.builder.GEP(c.vmctx, int32(c.offs.LocalGlobal(localIndex)))
	}
	addr = c.builder.BitCast(addr, backend.Ptr)
	ptrTag := c.module.TBAA.ScalarTag(globalPtrLabel(index))
	valuePtr := c.builder.Load(addr, backend.Ptr, ptrTag)

	var gc GlobalCache
	if typ.Mutable {
		gc.Mutable = true
		gc.Addr = valuePtr
	} else {
		valueTag := c.module.TBAA.ScalarTag(globalLabel(index))
		gc.Const = c.builder.Load(valuePtr, backendType, valueTag)
	}

	c.globals[index] = gc
	return gc
}

// Func returns the FunctionCache for index, materializing it on first
// use: imported functions load their body/vmctx pair from the import
// slot; local functions get a freshly declared external symbol via the
// LocalFuncDeclarer supplied at construction.
func (c *Cache) Func(index moduleinfo.Index) (FunctionCache, error) {
	if fc, ok := c.funcs[index]; ok {
		return fc, nil
	}

	if c.info.IsImportedFunction(index) {
		bodyOff, vmctxOff := c.offs.ImportedFunction(index)
		bodyAddr := c.builder.GEP(c.vmctx, int32(bodyOff))
		vmctxAddr := c.builder.GEP(c.vmctx, int32(vmctxOff))
		bodyTag := c.module.TBAA.ScalarTag(backend.Label(fmt.Sprintf("function %d body", index)))
		vmctxTag := c.module.TBAA.ScalarTag(backend.Label(fmt.Sprintf("function %d vmctx", index)))
		fc := FunctionCache{
			FuncPtr: c.builder.Load(bodyAddr, backend.Ptr, bodyTag),
			VMCtx:   c.builder.Load(vmctxAddr, backend.Ptr, vmctxTag),
		}
		c.funcs[index] = fc
		return fc, nil
	}

	if c.declareLocalFunc == nil {
		return FunctionCache{}, fmt.Errorf("vmctx: local function %d referenced with no LocalFuncDeclarer configured", index)
	}
	fn, err := c.declareLocalFunc(index)
	if err != nil {
		return FunctionCache{}, fmt.Errorf("vmctx: declaring local function %d: %w", index, err)
	}
	fc := FunctionCache{
		FuncPtr: c.builder.FuncRef(fn),
		VMCtx:   c.vmctx,
	}
	c.funcs[index] = fc
	return fc, nil
}

// AddFunc inserts a pre-built FunctionCache entry for index. A second
// call for the same index is a programming error and panics (spec.md
// §8 invariant 6: "add_func(idx, ...) called twice with the same idx
// is a programming error (detected and signalled)").
func (c *Cache) AddFunc(index moduleinfo.Index, fc FunctionCache) {
	if _, ok := c.funcs[index]; ok {
		panic(fmt.Sprintf("vmctx: add_func called twice for function index %d", index))
	}
	c.funcs[index] = fc
}

// MemoryGrow returns the correct memory32.grow builtin function
// pointer for index (local vs imported variant), loaded once.
func (c *Cache) MemoryGrow(index moduleinfo.Index) backend.Value {
	if v, ok := c.memoryGrow[index]; ok {
		return v
	}
	imported := c.info.IsImportedMemory(index)
	addr := c.builder.GEP(c.vmctx, int32(c.offs.BuiltinMemoryGrow(imported)))
	addr = c.builder.BitCast(addr, backend.Ptr)
	label := backend.Label("builtin memory32.grow imported")
	if !imported {
		label = backend.Label("builtin memory32.grow local")
	}
	tag := c.module.TBAA.ScalarTag(label)
	v := c.builder.Load(addr, backend.Ptr, tag)
	c.memoryGrow[index] = v
	return v
}

// MemorySize returns the correct memory32.size builtin function
// pointer for index (local vs imported variant), loaded once.
func (c *Cache) MemorySize(index moduleinfo.Index) backend.Value {
	if v, ok := c.memorySize[index]; ok {
		return v
	}
	imported := c.info.IsImportedMemory(index)
	addr := c.builder.GEP(c.vmctx, int32(c.offs.BuiltinMemorySize(imported)))
	addr = c.builder.BitCast(addr, backend.Ptr)
	label := backend.Label("builtin memory32.size imported")
	if !imported {
		label = backend.Label("builtin memory32.size local")
	}
	tag := c.module.TBAA.ScalarTag(label)
	v := c.builder.Load(addr, backend.Ptr, tag)
	c.memorySize[index] = v
	return v
}

func wasmValueTypeToBackend(vt moduleinfo.ValueType) backend.Type {
	switch vt {
	case moduleinfo.ValueTypeI32:
		return backend.I32
	case moduleinfo.ValueTypeI64:
		return backend.I64
	case moduleinfo.ValueTypeF32:
		return backend.F32
	case moduleinfo.ValueTypeF64:
		return backend.F64
	case moduleinfo.ValueTypeV128:
		return backend.V128I1
	default:
		panic(fmt.Sprintf("vmctx: unsupported global value type %d", vt))
	}
}
