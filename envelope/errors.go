package envelope

import "fmt"

// IncompatibleError is returned when a byte sequence cannot possibly be
// a valid envelope: too short, or stamped for a different host
// endianness (spec.md §7, §8 invariants 8/9).
type IncompatibleError struct{ Reason string }

func (e *IncompatibleError) Error() string { return fmt.Sprintf("incompatible: %s", e.Reason) }

// Incompatible constructs an IncompatibleError.
func Incompatible(reason string) error { return &IncompatibleError{Reason: reason} }

// CorruptedBinaryError is returned when the envelope framing is sound
// but the archived payload inside it fails to decode.
type CorruptedBinaryError struct{ Reason string }

func (e *CorruptedBinaryError) Error() string { return fmt.Sprintf("corrupted binary: %s", e.Reason) }

// CorruptedBinary constructs a CorruptedBinaryError.
func CorruptedBinary(reason string) error { return &CorruptedBinaryError{Reason: reason} }

// GenericError wraps an otherwise-unclassified serialization failure.
type GenericError struct{ Message string }

func (e *GenericError) Error() string { return e.Message }

// Generic constructs a GenericError.
func Generic(message string) error { return &GenericError{Message: message} }
