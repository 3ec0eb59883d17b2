// Body checksums.
//
// The header's _sum field is a 16 hex character digest of the stored body
// (after compression). Four algorithms are supported, selectable via
// Config.Algorithm and recorded in the header so any reader can verify.
package quire

import (
	"encoding/hex"
	"fmt"
	"hash/fnv"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Checksum algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
	AlgBlake3  = 4 // Cryptographic, fast on large bodies
)

// SumSize is the length of a checksum in hex characters.
const SumSize = 16

// sum returns the 16 hex character checksum of data, or "" for an unknown
// algorithm.
func sum(data []byte, alg int) string {
	switch alg {
	case AlgXXHash3:
		return fmt.Sprintf("%016x", xxh3.Hash(data))
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum64())
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write(data)
		return hex.EncodeToString(h.Sum(nil))
	case AlgBlake3:
		h := blake3.New()
		h.Write(data)
		return hex.EncodeToString(h.Sum(nil)[:8])
	default:
		return ""
	}
}

func knownAlgorithm(alg int) bool {
	return alg >= AlgXXHash3 && alg <= AlgBlake3
}
