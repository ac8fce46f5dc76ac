package intrinsics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kubkon/wasmnative/backend"
	"github.com/kubkon/wasmnative/intrinsics"
)

func TestCtpopShapesOnly(t *testing.T) {
	m := backend.NewModule("test")
	c, err := intrinsics.Declare(m)
	require.NoError(t, err)
	require.NotNil(t, c)

	fn, ok := c.Intrinsic("ctpop.v16i8")
	require.True(t, ok)
	require.Equal(t, "ctpop.v16i8", fn.Name)

	_, ok = c.Intrinsic("ctpop.v8i16")
	require.False(t, ok, "ctpop is only declared over i32, i64 and v16i8")
}

func TestDeclareTwiceOnSameModuleFails(t *testing.T) {
	m := backend.NewModule("test")
	_, err := intrinsics.Declare(m)
	require.NoError(t, err)

	_, err = intrinsics.Declare(m)
	require.Error(t, err, "re-declaring the catalog into the same module must fail, not silently overwrite")
}

func TestSaturatingArithmeticOnlyTwoShapes(t *testing.T) {
	m := backend.NewModule("test")
	c, err := intrinsics.Declare(m)
	require.NoError(t, err)

	_, ok := c.Intrinsic("sadd.sat.v16i8")
	require.True(t, ok)
	_, ok = c.Intrinsic("sadd.sat.v8i16")
	require.True(t, ok)
	_, ok = c.Intrinsic("sadd.sat.v4i32")
	require.False(t, ok)
}

func TestRaiseTrapAndFuncRefAttributes(t *testing.T) {
	m := backend.NewModule("test")
	c, err := intrinsics.Declare(m)
	require.NoError(t, err)

	require.True(t, c.RaiseTrap().HasAttribute(backend.AttrLocFunction, backend.AttrNameNoReturn))
	require.True(t, c.FuncRef().HasAttribute(backend.AttrLocFunction, backend.AttrNameReadOnly))
	require.NotNil(t, c.Personality())
}

func TestPrepareFunctionAttachesProbeStackAlwaysPersonalityConditionally(t *testing.T) {
	m := backend.NewModule("test")
	c, err := intrinsics.Declare(m)
	require.NoError(t, err)

	fn, err := m.DeclareFunction("wasm_func_0", backend.Signature{}, backend.LinkageLocal)
	require.NoError(t, err)
	c.PrepareFunction(fn, false)
	require.True(t, fn.HasAttribute(backend.AttrLocFunction, backend.AttrNameProbeStack))
	require.Nil(t, fn.Personality())

	fn2, err := m.DeclareFunction("wasm_func_1", backend.Signature{}, backend.LinkageLocal)
	require.NoError(t, err)
	c.PrepareFunction(fn2, true)
	require.True(t, fn2.HasAttribute(backend.AttrLocFunction, backend.AttrNameProbeStack))
	require.Same(t, c.Personality(), fn2.Personality())
}

func TestTrapCodeOrdering(t *testing.T) {
	require.Equal(t, intrinsics.TrapCode(0), intrinsics.UnreachableCodeReached)
	require.Equal(t, intrinsics.TrapCode(8), intrinsics.TableAccessOutOfBounds)
	require.Equal(t, "HeapAccessOutOfBounds", intrinsics.HeapAccessOutOfBounds.String())
}
