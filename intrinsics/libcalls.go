package intrinsics

import "github.com/kubkon/wasmnative/backend"

// libcallSpec is one runtime libcall's declared shape. Signatures
// beyond raise_trap(i32) are not pinned by spec.md (trap-emission and
// the rest of the translator's ABI lowering are explicitly out of
// scope); the shapes below follow the VMContext-first calling
// convention every other libcall in this family uses in the teacher's
// generated-call sites, recorded as a DESIGN.md decision rather than
// guessed per call site.
type libcallSpec struct {
	name    string
	params  []backend.Type
	results []backend.Type
}

var libcallSpecs = []libcallSpec{
	{"table_copy", []backend.Type{backend.Ptr, backend.I32, backend.I32, backend.I32, backend.I32, backend.I32}, nil},
	{"table_init", []backend.Type{backend.Ptr, backend.I32, backend.I32, backend.I32, backend.I32, backend.I32}, nil},
	{"table_fill", []backend.Type{backend.Ptr, backend.I32, backend.I32, backend.I64, backend.I32}, nil},
	{"table_size", []backend.Type{backend.Ptr, backend.I32}, []backend.Type{backend.I32}},
	{"imported_table_size", []backend.Type{backend.Ptr, backend.I32}, []backend.Type{backend.I32}},
	{"table_get", []backend.Type{backend.Ptr, backend.I32, backend.I32}, []backend.Type{backend.I64}},
	{"imported_table_get", []backend.Type{backend.Ptr, backend.I32, backend.I32}, []backend.Type{backend.I64}},
	{"table_set", []backend.Type{backend.Ptr, backend.I32, backend.I32, backend.I64}, nil},
	{"imported_table_set", []backend.Type{backend.Ptr, backend.I32, backend.I32, backend.I64}, nil},
	{"table_grow", []backend.Type{backend.Ptr, backend.I32, backend.I64, backend.I32}, []backend.Type{backend.I32}},
	{"imported_table_grow", []backend.Type{backend.Ptr, backend.I32, backend.I64, backend.I32}, []backend.Type{backend.I32}},
	{"memory32_init", []backend.Type{backend.Ptr, backend.I32, backend.I32, backend.I32, backend.I32, backend.I32}, nil},
	{"memory32_copy", []backend.Type{backend.Ptr, backend.I32, backend.I32, backend.I32, backend.I32}, nil},
	{"imported_memory32_copy", []backend.Type{backend.Ptr, backend.I32, backend.I32, backend.I32, backend.I32}, nil},
	{"memory32_fill", []backend.Type{backend.Ptr, backend.I32, backend.I32, backend.I32, backend.I32}, nil},
	{"imported_memory32_fill", []backend.Type{backend.Ptr, backend.I32, backend.I32, backend.I32, backend.I32}, nil},
	{"data_drop", []backend.Type{backend.Ptr, backend.I32}, nil},
	{"elem_drop", []backend.Type{backend.Ptr, backend.I32}, nil},
}

const libcallPrefix = "wasmer_vm_"

// personalitySymbol is the unwind personality routine used to deliver
// runtime-raised traps through compiled frames (spec.md §4.2/§5).
const personalitySymbol = "__gxx_personality_v0"

func (c *Catalog) declareLibcalls() error {
	for _, s := range libcallSpecs {
		name := libcallPrefix + s.name
		fn, err := c.module.DeclareFunction(name, backend.Signature{Params: s.params, Results: s.results}, backend.LinkageExternal)
		if err != nil {
			return err
		}
		c.libcalls[name] = fn
	}

	funcRefName := libcallPrefix + "func_ref"
	funcRef, err := c.module.DeclareFunction(funcRefName, backend.Signature{
		Params:  []backend.Type{backend.Ptr, backend.I32},
		Results: []backend.Type{backend.I64},
	}, backend.LinkageExternal)
	if err != nil {
		return err
	}
	funcRef.AddAttribute(backend.AttrLocFunction, 0, backend.ReadOnly())
	c.libcalls[funcRefName] = funcRef

	raiseTrapName := libcallPrefix + "raise_trap"
	raiseTrap, err := c.module.DeclareFunction(raiseTrapName, backend.Signature{
		Params: []backend.Type{backend.I32},
	}, backend.LinkageExternal)
	if err != nil {
		return err
	}
	raiseTrap.AddAttribute(backend.AttrLocFunction, 0, backend.NoReturn())
	c.libcalls[raiseTrapName] = raiseTrap

	return nil
}

func (c *Catalog) declarePersonality() error {
	personality, err := c.module.DeclareFunction(personalitySymbol, backend.Signature{Results: []backend.Type{backend.I32}}, backend.LinkageExternal)
	if err != nil {
		return err
	}
	c.personality = personality
	return nil
}

// Libcall looks up a previously declared runtime libcall by its full
// wasmer_vm_-prefixed name.
func (c *Catalog) Libcall(name string) (*backend.Function, bool) {
	fn, ok := c.libcalls[name]
	return fn, ok
}

// RaiseTrap returns the wasmer_vm_raise_trap handle.
func (c *Catalog) RaiseTrap() *backend.Function {
	fn, _ := c.Libcall(libcallPrefix + "raise_trap")
	return fn
}

// FuncRef returns the wasmer_vm_func_ref handle.
func (c *Catalog) FuncRef() *backend.Function {
	fn, _ := c.Libcall(libcallPrefix + "func_ref")
	return fn
}

// Personality returns the declared __gxx_personality_v0 handle.
func (c *Catalog) Personality() *backend.Function {
	return c.personality
}
