package intrinsics

import "github.com/kubkon/wasmnative/backend"

// probeStackRoutine is the stack-probe routine name every translated
// function's probe-stack attribute names (spec.md §4.2/§5).
const probeStackRoutine = "wasmer_vm_probestack"

// PrepareFunction attaches the attributes every function compiled
// through this core must carry (spec.md §8 invariant 10):
// probe-stack is attached unconditionally, since Wasm's bounded-stack
// contract applies to every translated function regardless of whether
// its body can trap; the personality reference is attached only when
// mayTrap is true (see SPEC_FULL.md's SUPPLEMENTED FEATURES section —
// the original sources only wire a personality routine onto functions
// whose body can reach a trap edge, since unwinding is meaningless
// otherwise).
func (c *Catalog) PrepareFunction(fn *backend.Function, mayTrap bool) {
	fn.AddAttribute(backend.AttrLocFunction, 0, backend.ProbeStack(probeStackRoutine))
	if mayTrap {
		fn.SetPersonality(c.Personality())
	}
}
