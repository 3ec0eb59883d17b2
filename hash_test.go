// Checksum tests.
//
// The header stores a 16 hex character checksum of the body. A reader must
// recompute exactly the same string from the same bytes, whatever machine
// wrote the file, so every algorithm is checked for format, determinism and
// sensitivity to a single flipped bit.
package quire

import (
	"regexp"
	"testing"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

var algorithms = []struct {
	name string
	alg  int
}{
	{"xxhash3", AlgXXHash3},
	{"fnv1a", AlgFNV1a},
	{"blake2b", AlgBlake2b},
	{"blake3", AlgBlake3},
}

func TestSumFormat(t *testing.T) {
	for _, tt := range algorithms {
		t.Run(tt.name, func(t *testing.T) {
			got := sum([]byte("body"), tt.alg)
			if !hexPattern.MatchString(got) {
				t.Errorf("sum = %q, want %d hex chars", got, SumSize)
			}
		})
	}
}

func TestSumDeterministic(t *testing.T) {
	for _, tt := range algorithms {
		a := sum([]byte("same bytes"), tt.alg)
		b := sum([]byte("same bytes"), tt.alg)
		if a != b {
			t.Errorf("%s: %q != %q", tt.name, a, b)
		}
	}
}

// TestSumDetectsBitFlip is the property Verify relies on.
func TestSumDetectsBitFlip(t *testing.T) {
	data := []byte(`{"_a":["aa"],"_k":["k"],"_o":[]}`)
	for _, tt := range algorithms {
		flipped := append([]byte(nil), data...)
		flipped[5] ^= 0x01
		if sum(data, tt.alg) == sum(flipped, tt.alg) {
			t.Errorf("%s: single bit flip not detected", tt.name)
		}
	}
}

func TestSumAlgorithmsDiffer(t *testing.T) {
	seen := map[string]string{}
	for _, tt := range algorithms {
		s := sum([]byte("test"), tt.alg)
		if prev, ok := seen[s]; ok {
			t.Errorf("%s and %s produce the same checksum %q", tt.name, prev, s)
		}
		seen[s] = tt.name
	}
}

func TestSumUnknownAlgorithm(t *testing.T) {
	if got := sum([]byte("x"), 99); got != "" {
		t.Errorf("sum with unknown algorithm = %q, want empty", got)
	}
	if knownAlgorithm(0) || knownAlgorithm(99) {
		t.Error("knownAlgorithm accepted an invalid value")
	}
}
