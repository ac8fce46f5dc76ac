package backend

// Opcode identifies the shape of an Instruction. Only the subset of
// operations the translation layer actually emits is modeled here
// (spec.md §6: "GEP, load, store, bitcast, struct-GEP, function
// declaration, attribute attachment ... and metadata nodes for TBAA").
type Opcode uint8

const (
	opInvalid Opcode = iota
	OpIconst
	OpGEP
	OpStructGEP
	OpBitcast
	OpLoad
	OpStore
	OpFuncRef
	OpCall
)

// Instruction is a single emitted backend instruction. Like the
// teacher's ssa.Instruction, it is a flattened struct reused across
// opcodes rather than a tagged-union hierarchy per opcode.
type Instruction struct {
	opcode Opcode

	base   Value
	value  Value
	offset int32
	typ    Type

	tag Tag

	callee *Function
	args   []Value

	result  Value
	results []Value
}

// Opcode returns the instruction's opcode.
func (i *Instruction) Opcode() Opcode { return i.opcode }

// Result returns the single Value this instruction produces, if any.
func (i *Instruction) Result() Value { return i.result }

// Results returns every Value a multi-result instruction (Call)
// produces.
func (i *Instruction) Results() []Value { return i.results }

// Offset returns the byte offset baked into a GEP/struct-GEP
// instruction, used by tests to assert a materialization landed at the
// expected VMContext offset rather than merely that some load happened.
func (i *Instruction) Offset() int32 { return i.offset }
