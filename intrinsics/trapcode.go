package intrinsics

// TrapCode identifies which Wasm-defined trap occurred. Values here
// must stay bit-exact with the runtime's own enumeration (spec.md §9:
// "must be bit-exact with the runtime... a single source of truth");
// this file is that single source, consumed by both the compiled-code
// emission side and (conceptually) the runtime crate.
type TrapCode uint32

const (
	UnreachableCodeReached TrapCode = iota
	IndirectCallToNull
	BadSignature
	HeapAccessOutOfBounds
	IntegerOverflow
	IntegerDivisionByZero
	BadConversionToInteger
	UnalignedAtomic
	TableAccessOutOfBounds
)

var trapCodeNames = [...]string{
	"UnreachableCodeReached",
	"IndirectCallToNull",
	"BadSignature",
	"HeapAccessOutOfBounds",
	"IntegerOverflow",
	"IntegerDivisionByZero",
	"BadConversionToInteger",
	"UnalignedAtomic",
	"TableAccessOutOfBounds",
}

// String returns the trap code's canonical name.
func (t TrapCode) String() string {
	if int(t) < len(trapCodeNames) {
		return trapCodeNames[t]
	}
	return "UnknownTrapCode"
}
