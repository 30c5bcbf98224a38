// Package random provides cryptographic seed generation helpers.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
)

// NewSeed generates a random seed using crypto/rand.
//
// Callers feed the seed into math/rand sources so gameplay rolls stay
// reproducible once the seed is known.
func NewSeed() int64 {
	var b [8]byte
	crand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}
