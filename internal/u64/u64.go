// Package u64 holds tiny little-endian encode/decode helpers shared by
// the envelope package. See internal/u32 for why these are split out.
package u64

import "encoding/binary"

// LeBytes encodes v as 8 little-endian bytes.
func LeBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// Le decodes 8 little-endian bytes into a uint64.
func Le(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}
