// Package utils holds small helpers shared by the caches.
package utils

import (
	"encoding/binary"
	"hash/fnv"
)

// FingerprintString returns the 64-bit FNV-1a hash of s. Used as the key of
// compiled expression and prepared statement caches.
func FingerprintString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// FingerprintStrings hashes parts in order with a separator that cannot
// appear in SQL identifiers, so ("ab", "c") and ("a", "bc") differ.
func FingerprintStrings(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// Mix64 combines two fingerprints into one.
func Mix64(a, b uint64) uint64 {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], a)
	binary.BigEndian.PutUint64(buf[8:], b)
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return h.Sum64()
}
