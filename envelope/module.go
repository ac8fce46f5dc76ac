package envelope

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/kubkon/wasmnative/moduleinfo"
)

// Relocation is a single relocation site within a function body or
// trampoline, recorded so the loader can patch in absolute addresses
// once the artifact is mapped into memory.
type Relocation struct {
	Offset uint32
	Kind   string
	Target string
	Addend int64
}

// FrameInfo is the unwind/debug frame description for one function
// body, opaque to this layer beyond its raw bytes.
type FrameInfo struct {
	Bytes []byte
}

// FunctionCode is one locally-defined function's compiled body.
type FunctionCode struct {
	Body             []byte
	Relocations      []Relocation
	JumpTableOffsets []uint32
	Frame            FrameInfo
}

// CustomSection is a passed-through Wasm custom section, carried
// through compilation unmodified save for its own relocations.
type CustomSection struct {
	Name        string
	Data        []byte
	Relocations []Relocation
}

// Compilation is the per-module compiled output: everything keyed by
// a PrimaryMap in the original sources is a plain slice here, which is
// what gives "all PrimaryMap keys are contiguous from zero" (spec.md
// §3) for free — a Go slice has no other kind of index.
type Compilation struct {
	// Functions holds one FunctionCode per LocalFunctionIndex.
	Functions []FunctionCode
	// CallTrampolines holds one trampoline body per SignatureIndex.
	CallTrampolines [][]byte
	// DynamicTrampolines holds one trampoline body per FunctionIndex.
	DynamicTrampolines [][]byte
	CustomSections     []CustomSection
	// DWARF is the optional combined debug-info blob; nil when absent.
	DWARF []byte
}

// SerializableModule is the complete artifact the envelope wraps for
// later reload (spec.md §3 "Serializable Module").
type SerializableModule struct {
	Compilation           Compilation
	ModuleInfo            moduleinfo.ModuleInfo
	OwnedDataInitializers [][]byte
}

// SerializeModule archives m with encoding/gob and wraps the result in
// the envelope framing (spec.md §4.4). gob is the ambient choice here:
// the teacher's own cache format (engine_cache.go) is a hand-rolled,
// non-reflective binary layout because it only ever serializes a
// handful of fixed, already-flat fields (byte slices and integers);
// SerializableModule is a deeper, recursive tree of slices and structs,
// exactly the shape encoding/gob exists to handle, so the module-level
// archive uses it while the outer trailer stays hand-rolled framing
// like the teacher's.
func SerializeModule(m *SerializableModule) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, Generic(fmt.Sprintf("encoding module: %v", err))
	}
	// The gob stream is itself the archived root; it starts at
	// position 0 within the payload.
	return Serialize(buf.Bytes(), 0), nil
}

// DeserializeModule reverses SerializeModule, rejecting anything the
// envelope trailer itself flags as invalid before ever attempting to
// decode the payload, then wrapping a gob decode failure as
// CorruptedBinary.
func DeserializeModule(data []byte) (*SerializableModule, error) {
	payload, pos, err := Deserialize(data)
	if err != nil {
		return nil, err
	}
	if pos > uint64(len(payload)) {
		return nil, CorruptedBinary(fmt.Sprintf("root position %d out of range for payload of length %d", pos, len(payload)))
	}

	var m SerializableModule
	if err := gob.NewDecoder(bytes.NewReader(payload[pos:])).Decode(&m); err != nil {
		return nil, CorruptedBinary(fmt.Sprintf("decoding module: %v", err))
	}
	return &m, nil
}
