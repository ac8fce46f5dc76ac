// Package intrinsics declares the backend-level intrinsic catalog and
// the runtime libcall surface every translated function is compiled
// against (spec.md §4.2, ≈25% of the core). Declaration happens once
// per compilation module; a second declaration of the same name is
// rejected by backend.Module.DeclareFunction, which is what gives this
// package its "declared exactly once" invariant for free.
//
// Grounded on the teacher's wazevo.Compiler.declareSignatures-style
// up-front declaration pass and on wazevo's use of a closed, named set
// of backend intrinsics rather than ad hoc per-callsite declarations.
package intrinsics

import (
	"fmt"

	"github.com/kubkon/wasmnative/backend"
)

// fourShapes is the {f32, f64, v4f32, v2f64} shape family spec.md §4.2
// applies to sqrt, ceil, floor, trunc, nearbyint, fabs and copysign.
var fourShapes = []backend.Type{backend.F32, backend.F64, backend.V4F32, backend.V2F64}

// ctpopShapes is the {i32, i64, v16i8} shape family the original
// intrinsics table draws ctpop from; scalarCountShapes holds the two
// scalar integer shapes ctlz/cttz only ever need (see SPEC_FULL.md's SUPPLEMENTED FEATURES
// section for why ctpop's vector shape is kept but the other count
// intrinsics are not widened to match).
var scalarCountShapes = []backend.Type{backend.I32, backend.I64}
var ctpopShapes = []backend.Type{backend.I32, backend.I64, backend.V16I8}

// saturatingShapes is the {v16i8, v8i16} pair the original sources
// actually instantiate saturating arithmetic over.
var saturatingShapes = []backend.Type{backend.V16I8, backend.V8I16}

func typeSuffix(t backend.Type) string {
	switch t {
	case backend.I32:
		return "i32"
	case backend.I64:
		return "i64"
	case backend.F32:
		return "f32"
	case backend.F64:
		return "f64"
	case backend.V4F32:
		return "v4f32"
	case backend.V2F64:
		return "v2f64"
	case backend.V16I8:
		return "v16i8"
	case backend.V8I16:
		return "v8i16"
	default:
		return t.String()
	}
}

// Catalog is the full set of backend handles declared for one
// compilation module: pure intrinsics, runtime libcalls and the
// personality routine. Trap codes are not held here; they are the
// TrapCode constants of trapcode.go.
type Catalog struct {
	module *backend.Module

	intrinsics  map[string]*backend.Function
	libcalls    map[string]*backend.Function
	personality *backend.Function
}

// Declare declares the complete intrinsics and libcall surface into m,
// returning the populated Catalog. Called once at compilation-module
// initialization (spec.md §4.2).
func Declare(m *backend.Module) (*Catalog, error) {
	c := &Catalog{
		module:     m,
		intrinsics: make(map[string]*backend.Function),
		libcalls:   make(map[string]*backend.Function),
	}

	if err := c.declarePureIntrinsics(); err != nil {
		return nil, err
	}
	if err := c.declareLibcalls(); err != nil {
		return nil, err
	}
	if err := c.declarePersonality(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) declareUnary(baseName string, shapes []backend.Type) error {
	for _, t := range shapes {
		name := fmt.Sprintf("%s.%s", baseName, typeSuffix(t))
		fn, err := c.module.DeclareFunction(name, backend.Signature{Params: []backend.Type{t}, Results: []backend.Type{t}}, backend.LinkageLocal)
		if err != nil {
			return err
		}
		c.intrinsics[name] = fn
	}
	return nil
}

func (c *Catalog) declareBinary(baseName string, shapes []backend.Type) error {
	for _, t := range shapes {
		name := fmt.Sprintf("%s.%s", baseName, typeSuffix(t))
		fn, err := c.module.DeclareFunction(name, backend.Signature{Params: []backend.Type{t, t}, Results: []backend.Type{t}}, backend.LinkageLocal)
		if err != nil {
			return err
		}
		c.intrinsics[name] = fn
	}
	return nil
}

func (c *Catalog) declarePureIntrinsics() error {
	if err := c.declareUnary("ctlz", scalarCountShapes); err != nil {
		return err
	}
	if err := c.declareUnary("cttz", scalarCountShapes); err != nil {
		return err
	}
	if err := c.declareUnary("ctpop", ctpopShapes); err != nil {
		return err
	}
	if err := c.declareUnary("sqrt", fourShapes); err != nil {
		return err
	}
	if err := c.declareUnary("ceil", fourShapes); err != nil {
		return err
	}
	if err := c.declareUnary("floor", fourShapes); err != nil {
		return err
	}
	if err := c.declareUnary("trunc", fourShapes); err != nil {
		return err
	}
	if err := c.declareUnary("nearbyint", fourShapes); err != nil {
		return err
	}
	if err := c.declareUnary("fabs", fourShapes); err != nil {
		return err
	}
	if err := c.declareBinary("copysign", fourShapes); err != nil {
		return err
	}
	if err := c.declareBinary("sadd.sat", saturatingShapes); err != nil {
		return err
	}
	if err := c.declareBinary("uadd.sat", saturatingShapes); err != nil {
		return err
	}
	if err := c.declareBinary("ssub.sat", saturatingShapes); err != nil {
		return err
	}
	if err := c.declareBinary("usub.sat", saturatingShapes); err != nil {
		return err
	}

	expect, err := c.module.DeclareFunction("expect.i1", backend.Signature{Params: []backend.Type{backend.I1, backend.I1}, Results: []backend.Type{backend.I1}}, backend.LinkageLocal)
	if err != nil {
		return err
	}
	c.intrinsics["expect.i1"] = expect

	trap, err := c.module.DeclareFunction("trap", backend.Signature{}, backend.LinkageLocal)
	if err != nil {
		return err
	}
	trap.AddAttribute(backend.AttrLocFunction, 0, backend.NoReturn())
	c.intrinsics["trap"] = trap

	debugtrap, err := c.module.DeclareFunction("debugtrap", backend.Signature{}, backend.LinkageLocal)
	if err != nil {
		return err
	}
	c.intrinsics["debugtrap"] = debugtrap

	stackmap, err := c.module.DeclareFunction("experimental.stackmap", backend.Signature{
		Params:   []backend.Type{backend.I64, backend.I32},
		Variadic: true,
	}, backend.LinkageLocal)
	if err != nil {
		return err
	}
	c.intrinsics["experimental.stackmap"] = stackmap

	return nil
}

// Intrinsic looks up a previously declared pure intrinsic by name.
func (c *Catalog) Intrinsic(name string) (*backend.Function, bool) {
	fn, ok := c.intrinsics[name]
	return fn, ok
}
