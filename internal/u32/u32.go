// Package u32 holds tiny little-endian encode/decode helpers, split out
// the way the teacher keeps its own u32/u64 byte-encoding helpers in
// their own leaf packages rather than inlined at each call site. No
// package of this module imports it; the envelope uses internal/u64.
package u32

import "encoding/binary"

// LeBytes encodes v as 4 little-endian bytes.
func LeBytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// Le decodes 4 little-endian bytes into a uint32.
func Le(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
