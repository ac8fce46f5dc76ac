// Package backend is the narrow surface this module consumes from a
// general-purpose optimizing compiler backend: primitive and vector
// types, pointers, a function/instruction builder, and TBAA-style
// metadata. spec.md treats the backend IR library as an external,
// already-available collaborator (§1, §6); this package is that
// collaborator's interface as seen from the translation layer, built
// the way the teacher's own internal `ssa` package plays the same role
// for its frontend (a flattened Instruction type, a Builder positioned
// at a current insertion point, module-scoped signature/metadata
// registries).
package backend

import "fmt"

// Type is a primitive or vector type understood by the backend.
type Type uint8

const (
	typeInvalid Type = iota

	I1
	I8
	I16
	I32
	I64
	I128
	F32
	F64

	// Ptr is a typed pointer in the backend's generic address space.
	Ptr

	// Vector shapes named in spec.md §6.
	V128I1
	V16I8
	V8I16
	V4I32
	V2I64
	V4F32
	V2F64
	V8I32
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case I1:
		return "i1"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case I128:
		return "i128"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Ptr:
		return "ptr"
	case V128I1:
		return "i1x128"
	case V16I8:
		return "i8x16"
	case V8I16:
		return "i16x8"
	case V4I32:
		return "i32x4"
	case V2I64:
		return "i64x2"
	case V4F32:
		return "f32x4"
	case V2F64:
		return "f64x2"
	case V8I32:
		return "i32x8"
	default:
		panic(fmt.Sprintf("invalid type %d", uint8(t)))
	}
}

// IsVector reports whether t is one of the SIMD vector shapes.
func (t Type) IsVector() bool {
	switch t {
	case V128I1, V16I8, V8I16, V4I32, V2I64, V4F32, V2F64, V8I32:
		return true
	default:
		return false
	}
}

// Bits returns the width of a scalar type in bits. Panics for vectors,
// which have no single scalar width.
func (t Type) Bits() int {
	switch t {
	case I1:
		return 1
	case I8:
		return 8
	case I16:
		return 16
	case I32, F32:
		return 32
	case I64, F64, Ptr:
		return 64
	case I128:
		return 128
	default:
		panic(fmt.Sprintf("Bits: not a scalar type: %s", t))
	}
}

// Zero returns the canonical zero constant for t, the value callers
// pass to Builder.Iconst (the package's only constant builder); it is 0
// for every type (spec.md §4.2: "canonical native types used
// throughout translation (... zero constants ...)").
func Zero(t Type) uint64 {
	return 0
}
