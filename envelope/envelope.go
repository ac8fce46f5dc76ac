// Package envelope implements the self-describing, endian-tagged
// container that wraps compilation artifacts for later reload
// (spec.md §4.4, ≈10% of the core). The framing is intentionally
// tiny and hand-rolled with encoding/binary, following the teacher's
// own engine_cache.go (internal/engine/wazevo/engine_cache.go), which
// hand-rolls an equivalent versioned binary envelope around compiled
// code rather than reaching for a serialization library — see
// DESIGN.md for why that choice is kept here too.
package envelope

import (
	"encoding/binary"
	"strconv"

	"github.com/kubkon/wasmnative/internal/u64"
)

// posSize is the width of the trailing position field; tagSize is the
// width of the trailing endian-tag byte. Total trailer size is 9
// bytes, the minimum valid envelope length (spec.md §8 invariant 8).
const (
	posSize    = 8
	tagSize    = 1
	TrailerLen = posSize + tagSize
)

const (
	endianTagLittle byte = 'l'
	endianTagBig    byte = 'b'
)

// hostEndianTag reports this host's endianness as the single-byte tag
// spec.md §4.4 defines, using encoding/binary.NativeEndian rather than
// an unsafe pointer trick.
func hostEndianTag() byte {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	if b[0] == 1 {
		return endianTagLittle
	}
	return endianTagBig
}

// Serialize wraps payload (an already-serialized archive) together
// with pos, the offset within payload of its root value, into the
// byte layout `[payload][pos:u64 little-endian][endian-tag:u8]`.
func Serialize(payload []byte, pos uint64) []byte {
	out := make([]byte, 0, len(payload)+TrailerLen)
	out = append(out, payload...)
	out = append(out, u64.LeBytes(pos)...)
	out = append(out, hostEndianTag())
	return out
}

// Deserialize splits data back into its payload and root position,
// rejecting anything that cannot possibly be a valid envelope on this
// host (spec.md §4.4, §8 invariants 8/9). The operation performs no
// structural validation of payload itself — only of the envelope's own
// trailer — matching the "labeled unsafe" contract spec.md §4.4 calls
// out: callers still must validate whatever payload decodes to.
func Deserialize(data []byte) (payload []byte, pos uint64, err error) {
	if len(data) < TrailerLen {
		return nil, 0, Incompatible("invalid serialized data")
	}

	tag := data[len(data)-1]
	host := hostEndianTag()
	if tag != host {
		return nil, 0, Incompatible(incompatibleEndianMessage(tag, host))
	}

	posBytes := data[len(data)-TrailerLen : len(data)-tagSize]
	pos = u64.Le(posBytes)
	payload = data[:len(data)-TrailerLen]
	return payload, pos, nil
}

func incompatibleEndianMessage(got, want byte) string {
	return "incompatible endian. Received " + strconv.Itoa(int(got)) + " but expected " + strconv.Itoa(int(want))
}
