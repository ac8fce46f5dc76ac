package backend

// ValueID uniquely identifies a Value within a Function.
type ValueID uint32

// Value is a typed SSA-ish value produced by some Instruction, or a
// Function/block parameter.
type Value struct {
	id  ValueID
	typ Type
}

// ValueInvalid is the zero Value, returned by operations that fail or
// produce no value.
var ValueInvalid = Value{}

// Valid reports whether v was actually produced by an instruction.
func (v Value) Valid() bool { return v.typ != typeInvalid }

// Type returns the type of the value.
func (v Value) Type() Type { return v.typ }

// ID returns the numeric identity of the value, mostly useful for
// debugging/printing.
func (v Value) ID() ValueID { return v.id }
