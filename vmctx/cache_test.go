package vmctx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kubkon/wasmnative/backend"
	"github.com/kubkon/wasmnative/moduleinfo"
	"github.com/kubkon/wasmnative/offsets"
	"github.com/kubkon/wasmnative/vmctx"
)

func newEntry(t *testing.T) (*backend.Module, *backend.Builder, backend.Value) {
	t.Helper()
	m := backend.NewModule("test")
	fn, err := m.DeclareFunction("f", backend.Signature{Params: []backend.Type{backend.Ptr}}, backend.LinkageLocal)
	require.NoError(t, err)
	b := backend.EntryBuilder(fn)
	return m, b, b.Param(0)
}

// S1: dynamic local memory 0 loads the base pointer once, tagged
// "memory base_ptr 0", and a second Memory(0, ...) call materializes
// nothing new.
func TestMemoryDynamicLocal(t *testing.T) {
	info := &moduleinfo.ModuleInfo{LocalMemories: []moduleinfo.MemoryStyle{moduleinfo.MemoryStyleDynamic}}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)

	c := vmctx.New(m, b, &off, info, vmctxParam, nil)

	mc := c.Memory(0, moduleinfo.MemoryStyleDynamic)
	require.True(t, mc.Dynamic)
	require.True(t, mc.Base.Valid())
	require.True(t, mc.BasePtrAddr.Valid())
	require.True(t, mc.LenAddr.Valid())
	require.Equal(t, 1, b.LoadCount(backend.Label("memory base_ptr 0")))

	mc2 := c.Memory(0, moduleinfo.MemoryStyleDynamic)
	require.Equal(t, mc.Base, mc2.Base)
	require.Equal(t, 1, b.LoadCount(backend.Label("memory base_ptr 0")))
}

// S2: imported static memory 0 needs one extra load to dereference the
// import slot (tagged "memory 0 definition") before the base pointer
// load (tagged "memory base_ptr 0"); Static never computes LenAddr.
func TestMemoryImportedStatic(t *testing.T) {
	info := &moduleinfo.ModuleInfo{
		ImportedMemories: []moduleinfo.MemoryStyle{moduleinfo.MemoryStyleStatic},
	}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)

	c := vmctx.New(m, b, &off, info, vmctxParam, nil)
	mc := c.Memory(0, moduleinfo.MemoryStyleStatic)

	require.False(t, mc.Dynamic)
	require.False(t, mc.BasePtrAddr.Valid())
	require.False(t, mc.LenAddr.Valid())
	require.Equal(t, 1, b.LoadCount(backend.Label("memory 0 definition")))
	require.Equal(t, 1, b.LoadCount(backend.Label("memory base_ptr 0")))

	c.Memory(0, moduleinfo.MemoryStyleStatic)
	require.Equal(t, 1, b.LoadCount(backend.Label("memory 0 definition")))
	require.Equal(t, 1, b.LoadCount(backend.Label("memory base_ptr 0")))
}

// S3: an immutable global is loaded once and the same Const value is
// returned on every subsequent access.
func TestGlobalImmutable(t *testing.T) {
	info := &moduleinfo.ModuleInfo{
		LocalGlobals: []moduleinfo.GlobalType{{ValType: moduleinfo.ValueTypeI32, Mutable: false}},
	}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)

	c := vmctx.New(m, b, &off, info, vmctxParam, nil)
	gc := c.Global(0)

	require.False(t, gc.Mutable)
	require.True(t, gc.Const.Valid())
	require.Equal(t, 1, b.LoadCount(backend.Label("global_ptr 0")))
	require.Equal(t, 1, b.LoadCount(backend.Label("global 0")))

	gc2 := c.Global(0)
	require.Equal(t, gc.Const, gc2.Const)
	require.Equal(t, 1, b.LoadCount(backend.Label("global 0")))
}

func TestGlobalMutableCachesAddress(t *testing.T) {
	info := &moduleinfo.ModuleInfo{
		LocalGlobals: []moduleinfo.GlobalType{{ValType: moduleinfo.ValueTypeI64, Mutable: true}},
	}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)

	c := vmctx.New(m, b, &off, info, vmctxParam, nil)
	gc := c.Global(0)

	require.True(t, gc.Mutable)
	require.True(t, gc.Addr.Valid())
	require.False(t, gc.Const.Valid())

	gc2 := c.Global(0)
	require.Equal(t, gc.Addr, gc2.Addr)
}

// Invariant 4: idempotence across entity kinds, exercised here for
// tables and signature ids too.
func TestTableAndSigIndexIdempotent(t *testing.T) {
	info := &moduleinfo.ModuleInfo{
		LocalTableCount: 1,
		Signatures:      []moduleinfo.Signature{{}, {}},
	}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)
	c := vmctx.New(m, b, &off, info, vmctxParam, nil)

	tc1 := c.Table(0)
	tc2 := c.Table(0)
	require.Equal(t, tc1, tc2)
	require.Equal(t, 1, b.LoadCount(backend.Label("table_base_ptr 0")))
	require.Equal(t, 1, b.LoadCount(backend.Label("table_bounds 0")))

	s1 := c.DynamicSigIndex(1)
	s2 := c.DynamicSigIndex(1)
	require.Equal(t, s1, s2)
	require.Equal(t, 1, b.LoadCount(backend.Label("sigindex 1")))
}

// Invariant 6: add_func called twice for the same index panics.
func TestAddFuncTwicePanics(t *testing.T) {
	info := &moduleinfo.ModuleInfo{}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)
	c := vmctx.New(m, b, &off, info, vmctxParam, nil)

	fc := vmctx.FunctionCache{FuncPtr: vmctxParam, VMCtx: vmctxParam}
	c.AddFunc(0, fc)
	require.Panics(t, func() { c.AddFunc(0, fc) })
}

func TestFuncImportedLoadsBodyAndVMCtx(t *testing.T) {
	info := &moduleinfo.ModuleInfo{ImportedFunctionSignatures: []int{0}}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)
	c := vmctx.New(m, b, &off, info, vmctxParam, nil)

	fc, err := c.Func(0)
	require.NoError(t, err)
	require.True(t, fc.FuncPtr.Valid())
	require.True(t, fc.VMCtx.Valid())

	fc2, err := c.Func(0)
	require.NoError(t, err)
	require.Equal(t, fc, fc2)
}

func TestFuncLocalRequiresDeclarer(t *testing.T) {
	info := &moduleinfo.ModuleInfo{LocalFunctionSignatures: []int{0}}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)
	c := vmctx.New(m, b, &off, info, vmctxParam, nil)

	_, err := c.Func(0)
	require.Error(t, err)
}

// nthVMCtxGEPOffset returns the byte offset of the n-th (zero-based)
// OpGEP instruction emitted, used to find the outer-GEP offset a
// Memory/Table/Global call used. It counts every OpGEP in emission
// order without checking that its base is vmctxParam.
func nthVMCtxGEPOffset(t *testing.T, b *backend.Builder, vmctxParam backend.Value, n int) int32 {
	t.Helper()
	seen := 0
	for _, instr := range b.Instructions() {
		if instr.Opcode() != backend.OpGEP {
			continue
		}
		if seen == n {
			return instr.Offset()
		}
		seen++
	}
	t.Fatalf("fewer than %d GEP instructions emitted", n+1)
	return 0
}

// Regression: a module with both an imported and a local entity of the
// same kind must localize the raw (module-wide) index before consulting
// the local-region offsets table — using the raw index instead lands the
// GEP past the (smaller) local region into whatever follows it.
func TestMemoryMixedImportedAndLocalUsesLocalizedIndex(t *testing.T) {
	info := &moduleinfo.ModuleInfo{
		ImportedMemories: []moduleinfo.MemoryStyle{moduleinfo.MemoryStyleStatic},
		LocalMemories:    []moduleinfo.MemoryStyle{moduleinfo.MemoryStyleStatic},
	}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)
	c := vmctx.New(m, b, &off, info, vmctxParam, nil)

	// Memory index 1 is the sole local memory (index 0 is the import).
	c.Memory(1, moduleinfo.MemoryStyleStatic)

	got := nthVMCtxGEPOffset(t, b, vmctxParam, 0)
	want := int32(off.LocalMemoryDefinition(0))
	require.Equal(t, want, got, "local memory 1 (local index 0) must GEP into the local region, not at the raw module-wide index")
}

func TestTableMixedImportedAndLocalUsesLocalizedIndex(t *testing.T) {
	info := &moduleinfo.ModuleInfo{
		ImportedTableCount: 1,
		LocalTableCount:    1,
	}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)
	c := vmctx.New(m, b, &off, info, vmctxParam, nil)

	// Table index 1 is the sole local table (index 0 is the import).
	c.Table(1)

	got := nthVMCtxGEPOffset(t, b, vmctxParam, 0)
	want := int32(off.LocalTableDefinition(0))
	require.Equal(t, want, got, "local table 1 (local index 0) must GEP into the local region, not at the raw module-wide index")
}

func TestGlobalMixedImportedAndLocalUsesLocalizedIndex(t *testing.T) {
	info := &moduleinfo.ModuleInfo{
		ImportedGlobals: []moduleinfo.GlobalType{{ValType: moduleinfo.ValueTypeI32, Mutable: true}},
		LocalGlobals:    []moduleinfo.GlobalType{{ValType: moduleinfo.ValueTypeI32, Mutable: true}},
	}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)
	c := vmctx.New(m, b, &off, info, vmctxParam, nil)

	// Global index 1 is the sole local global (index 0 is the import).
	c.Global(1)

	got := nthVMCtxGEPOffset(t, b, vmctxParam, 0)
	want := int32(off.LocalGlobal(0))
	require.Equal(t, want, got, "local global 1 (local index 0) must GEP into the local region, not at the raw module-wide index")
}

func TestMemoryGrowAndSizeLocalVsImported(t *testing.T) {
	info := &moduleinfo.ModuleInfo{
		LocalMemories:    []moduleinfo.MemoryStyle{moduleinfo.MemoryStyleStatic},
		ImportedMemories: []moduleinfo.MemoryStyle{moduleinfo.MemoryStyleStatic},
	}
	off := offsets.New(8, info)
	m, b, vmctxParam := newEntry(t)
	c := vmctx.New(m, b, &off, info, vmctxParam, nil)

	localGrow := c.MemoryGrow(1)
	importedGrow := c.MemoryGrow(0)
	require.NotEqual(t, localGrow, importedGrow)

	require.Equal(t, 1, b.LoadCount(backend.Label("builtin memory32.grow local")))
	require.Equal(t, 1, b.LoadCount(backend.Label("builtin memory32.grow imported")))

	c.MemoryGrow(1)
	require.Equal(t, 1, b.LoadCount(backend.Label("builtin memory32.grow local")))

	size := c.MemorySize(1)
	require.True(t, size.Valid())
}
