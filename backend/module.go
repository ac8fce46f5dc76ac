package backend

import "fmt"

// Linkage mirrors the two linkages spec.md's intrinsics surface needs:
// intra-module declarations translated functions call directly, and
// extern-linked runtime symbols the runtime library provides.
type Linkage uint8

const (
	LinkageLocal Linkage = iota
	LinkageExternal
)

// Signature is a backend function signature: parameter and result
// types plus an optional variadic tail (used by
// `experimental.stackmap`, spec.md §4.2).
type Signature struct {
	Params   []Type
	Results  []Type
	Variadic bool
}

// Function is a declared backend function: either one the translator
// defines (LinkageLocal) or one it merely references by name
// (LinkageExternal, e.g. a `wasmer_vm_*` libcall).
type Function struct {
	Name    string
	Sig     Signature
	Linkage Linkage

	attrs       []attachedAttr
	personality *Function

	module *Module
}

// AddAttribute attaches attr to the function itself, its return value,
// or (when loc is AttrLocParam) the paramIndex-th parameter.
func (f *Function) AddAttribute(loc AttrLocation, paramIndex int, attr Attribute) {
	f.attrs = append(f.attrs, attachedAttr{loc: loc, paramIndex: paramIndex, attr: attr})
}

// Attributes returns every attribute attached to this function, in
// attachment order.
func (f *Function) Attributes() []Attribute {
	out := make([]Attribute, len(f.attrs))
	for i, a := range f.attrs {
		out[i] = a.attr
	}
	return out
}

// HasAttribute reports whether name was attached at loc (ignoring
// param index).
func (f *Function) HasAttribute(loc AttrLocation, name string) bool {
	for _, a := range f.attrs {
		if a.loc == loc && a.attr.Name == name {
			return true
		}
	}
	return false
}

// SetPersonality records fn as this function's unwind personality
// routine, used by the runtime to unwind through compiled frames when
// a trap is raised (spec.md §4.2/§5).
func (f *Function) SetPersonality(fn *Function) { f.personality = fn }

// Personality returns the previously set personality function, or nil.
func (f *Function) Personality() *Function { return f.personality }

// Module is a single compilation module: the backend-level container
// for declared functions, signatures and the TBAA registry. One Module
// corresponds to one compilation job (spec.md §5: "a backend
// compilation module and its builder are not shared across threads").
type Module struct {
	Name string

	functions map[string]*Function
	order     []string

	TBAA *TBAARegistry
}

// NewModule creates an empty compilation module.
func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		functions: make(map[string]*Function),
		TBAA:      NewTBAARegistry(),
	}
}

// DeclareFunction declares a function named name exactly once per
// module. A second declaration with the same name is an error: spec.md
// §3's "every entry is declared exactly once and never re-declared
// within the same module" invariant applies to every declared backend
// symbol, not only the fixed intrinsics table.
func (m *Module) DeclareFunction(name string, sig Signature, linkage Linkage) (*Function, error) {
	if _, ok := m.functions[name]; ok {
		return nil, fmt.Errorf("backend: function %q already declared in module %q", name, m.Name)
	}
	f := &Function{Name: name, Sig: sig, Linkage: linkage, module: m}
	m.functions[name] = f
	m.order = append(m.order, name)
	return f, nil
}

// Function looks up a previously declared function by name.
func (m *Module) Function(name string) (*Function, bool) {
	f, ok := m.functions[name]
	return f, ok
}

// Functions returns every declared function, in declaration order.
func (m *Module) Functions() []*Function {
	out := make([]*Function, len(m.order))
	for i, n := range m.order {
		out[i] = m.functions[n]
	}
	return out
}
