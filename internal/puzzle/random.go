// internal/puzzle/random.go
//
// Random sources for round selection.
//   - NewSource: deterministic PCG stream for a seed (tests, RANDOM_SEED).
//   - NewRandomSource: the same generator seeded from crypto/rand.

package puzzle

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source is a uniform random source. IntN returns a value in [0, n) and is
// only called with n > 0. *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a deterministic source for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomSource returns a source seeded from crypto/rand.
func NewRandomSource() (*rand.Rand, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return NewSource(binary.LittleEndian.Uint64(b[:])), nil
}
