package backend

// Builder emits instructions into one function body. spec.md §4.3
// calls the builder positioned at the function's entry block the
// "cache_builder": every value the VM context accessor materializes is
// emitted there rather than at the use site, so it is computed once
// and dominates every later use (spec.md §4.3 "Initialization detail").
//
// This mirrors the teacher's ssa.Builder, which is likewise positioned
// at a BasicBlock and accumulates instructions via AllocateInstruction
// + InsertInstruction; here the two are folded into single builder
// methods per op since this package does not need the teacher's
// variable/phi machinery (the translator this module specifies never
// reassigns a materialized VM context value).
type Builder struct {
	fn        *Function
	module    *Module
	instrs    []*Instruction
	nextValue ValueID
	params    []Value
}

// EntryBuilder returns the Builder positioned at fn's entry block,
// creating params for the given parameter types.
func EntryBuilder(fn *Function) *Builder {
	b := &Builder{fn: fn, module: fn.module}
	b.params = make([]Value, len(fn.Sig.Params))
	for i, t := range fn.Sig.Params {
		b.params[i] = b.allocate(t)
	}
	return b
}

func (b *Builder) allocate(t Type) Value {
	v := Value{id: b.nextValue, typ: t}
	b.nextValue++
	return v
}

// Param returns the i-th parameter value of the function being built.
func (b *Builder) Param(i int) Value { return b.params[i] }

// Instructions returns every instruction emitted so far, in emission
// order. Used by tests to assert idempotence (spec.md §8 invariant 4).
func (b *Builder) Instructions() []*Instruction { return b.instrs }

func (b *Builder) emit(i *Instruction) *Instruction {
	b.instrs = append(b.instrs, i)
	return i
}

// Iconst materializes an integer (or float, via its bit pattern)
// constant of the given type.
func (b *Builder) Iconst(typ Type, value uint64) Value {
	r := b.allocate(typ)
	b.emit(&Instruction{opcode: OpIconst, typ: typ, offset: int32(value), result: r})
	return r
}

// GEP computes base+byteOffset as a new Ptr value, the first step of
// every VM context materialization (spec.md §4.3: "compute byte offset
// from the offsets table -> `gep ctx, offset`").
func (b *Builder) GEP(base Value, byteOffset int32) Value {
	r := b.allocate(Ptr)
	b.emit(&Instruction{opcode: OpGEP, base: base, offset: byteOffset, typ: Ptr, result: r})
	return r
}

// BitCast reinterprets v's bits as type to, without emitting a load or
// store.
func (b *Builder) BitCast(v Value, to Type) Value {
	r := b.allocate(to)
	b.emit(&Instruction{opcode: OpBitcast, value: v, typ: to, result: r})
	return r
}

// StructGEP computes a pointer to a sub-field of the struct base
// points to, given the field's byte offset and type, folding
// GEP+bitcast into a single instruction the way spec.md §6 lists
// struct-GEP as a distinct backend primitive.
func (b *Builder) StructGEP(base Value, fieldByteOffset int32, fieldType Type) Value {
	r := b.allocate(Ptr)
	b.emit(&Instruction{opcode: OpStructGEP, base: base, offset: fieldByteOffset, typ: fieldType, result: r})
	return r
}

// Load loads a value of type typ from ptr, tagging the load with tag
// for TBAA (spec.md §4.3's "tag the load with a TBAA label unique to
// this entity").
func (b *Builder) Load(ptr Value, typ Type, tag Tag) Value {
	r := b.allocate(typ)
	b.emit(&Instruction{opcode: OpLoad, base: ptr, typ: typ, tag: tag, result: r})
	return r
}

// Store stores v to ptr, tagged for TBAA the same way Load is.
func (b *Builder) Store(ptr Value, v Value, tag Tag) {
	b.emit(&Instruction{opcode: OpStore, base: ptr, value: v, tag: tag})
}

// FuncRef produces a Ptr value referencing fn's entry point, used both
// for directly-callable local functions and for runtime libcall
// symbols.
func (b *Builder) FuncRef(fn *Function) Value {
	r := b.allocate(Ptr)
	b.emit(&Instruction{opcode: OpFuncRef, callee: fn, typ: Ptr, result: r})
	return r
}

// Call emits a call to fn with the given arguments, returning its
// result values (possibly empty, for e.g. `trap`/`raise_trap`).
func (b *Builder) Call(fn *Function, args ...Value) []Value {
	results := make([]Value, len(fn.Sig.Results))
	for i, t := range fn.Sig.Results {
		results[i] = b.allocate(t)
	}
	b.emit(&Instruction{opcode: OpCall, callee: fn, args: args, results: results})
	return results
}

// LoadCount returns how many OpLoad instructions have been emitted
// carrying the given tag. This is the mechanism spec.md §8 invariant 4
// ("the load count emitted into the IR for K equals 1 regardless of
// the number of A(K) calls") is checked against in tests.
func (b *Builder) LoadCount(label Label) int {
	n := 0
	for _, i := range b.instrs {
		if i.opcode == OpLoad && i.tag.Access != nil && i.tag.Access.Label == label {
			n++
		}
	}
	return n
}
