// Package buf contains overflow-checked address arithmetic and endian helpers
// for stamping and verifying patterns in mapped memory.
package buf

import "encoding/binary"

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// PutU64LE writes v little-endian into b. Does nothing when b is too short.
func PutU64LE(b []byte, v uint64) {
	if len(b) < 8 {
		return
	}
	binary.LittleEndian.PutUint64(b, v)
}

// Fill stamps b with v repeated every 8 bytes; a trailing partial word gets
// the low bytes of v.
func Fill(b []byte, v uint64) {
	i := 0
	for ; i+8 <= len(b); i += 8 {
		PutU64LE(b[i:], v)
	}
	if i < len(b) {
		var word [8]byte
		PutU64LE(word[:], v)
		copy(b[i:], word[:])
	}
}

// Verify reports the first offset in b that does not hold the pattern written
// by Fill, or -1 if all bytes match.
func Verify(b []byte, v uint64) int {
	var word [8]byte
	PutU64LE(word[:], v)
	i := 0
	for ; i+8 <= len(b); i += 8 {
		if U64LE(b[i:]) != v {
			break
		}
	}
	// Whole words matched up to i; find the exact byte from there.
	for ; i < len(b); i++ {
		if b[i] != word[i%8] {
			return i
		}
	}
	return -1
}
