package backend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kubkon/wasmnative/backend"
)

func TestDeclareFunctionOnce(t *testing.T) {
	m := backend.NewModule("test")
	_, err := m.DeclareFunction("wasmer_vm_raise_trap", backend.Signature{Params: []backend.Type{backend.I32}}, backend.LinkageExternal)
	require.NoError(t, err)

	_, err = m.DeclareFunction("wasmer_vm_raise_trap", backend.Signature{}, backend.LinkageExternal)
	require.Error(t, err)
}

func TestLoadTaggingAndCounting(t *testing.T) {
	m := backend.NewModule("test")
	fn, err := m.DeclareFunction("f", backend.Signature{Params: []backend.Type{backend.Ptr}}, backend.LinkageLocal)
	require.NoError(t, err)

	b := backend.EntryBuilder(fn)
	ctx := b.Param(0)

	tag := m.TBAA.ScalarTag(backend.Label("memory base_ptr 0"))
	ptr := b.GEP(ctx, 16)
	ptr = b.BitCast(ptr, backend.Ptr)
	_ = b.Load(ptr, backend.I64, tag)
	_ = b.Load(ptr, backend.I64, tag)

	require.Equal(t, 2, b.LoadCount(backend.Label("memory base_ptr 0")))
}

func TestTBAADistinctLabelsShareRoot(t *testing.T) {
	r := backend.NewTBAARegistry()
	a := r.Node("memory base_ptr 0")
	c := r.Node("memory base_ptr 1")
	require.Same(t, r.Root(), a.Parent)
	require.Same(t, r.Root(), c.Parent)
	require.NotSame(t, a, c)
	require.Same(t, r.Node("memory base_ptr 0"), a, "node lookup must be idempotent")
}

func TestAttributeAttachment(t *testing.T) {
	m := backend.NewModule("test")
	fn, err := m.DeclareFunction("wasmer_vm_raise_trap", backend.Signature{Params: []backend.Type{backend.I32}}, backend.LinkageExternal)
	require.NoError(t, err)
	fn.AddAttribute(backend.AttrLocFunction, 0, backend.NoReturn())
	require.True(t, fn.HasAttribute(backend.AttrLocFunction, backend.AttrNameNoReturn))
}
