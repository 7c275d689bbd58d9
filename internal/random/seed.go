// Package random provides seed generation for the game's injectable random
// source.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"
)

// NewSeed returns a cryptographically random seed.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("generate seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a source seeded with seed, or with a fresh random seed when
// seed is zero. The seed actually used is returned so it can be logged and
// a match replayed.
func NewRand(seed int64) (*mathrand.Rand, int64, error) {
	if seed == 0 {
		var err error
		if seed, err = NewSeed(); err != nil {
			return nil, 0, err
		}
	}
	return mathrand.New(mathrand.NewSource(seed)), seed, nil
}
