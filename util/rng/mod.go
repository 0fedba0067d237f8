// Package rng implements the xoshiro256** and xoroshiro128** generators,
// their jump functions and the seeding rules used to derive reproducible,
// non-overlapping streams. https://prng.di.unimi.it
//
// Generators are not safe for concurrent use. Give every goroutine its own
// instance, derived from a common base with Jump or LongJump.
package rng

import (
	"errors"
	"math/rand"
)

var (
	ErrZeroState   = errors.New("rng: all-zero state")
	ErrBadEncoding = errors.New("rng: malformed state encoding")
)

const (
	MinOutput uint64 = 0
	MaxOutput uint64 = ^uint64(0)
)

// Generator is the contract shared by both generators.
type Generator interface {
	// Next returns the next output and advances the state by one step.
	Next() uint64
	// Jump advances the state as if Next had been called 2^(n/2) times,
	// n being the state size in bits.
	Jump()
	// LongJump advances the state as if Next had been called 2^(3n/4) times.
	LongJump()
	// Seed resets the state from a single word. It does not jump.
	Seed(s0 uint64)
	// SeedFrom resets the state from src. It does not jump.
	SeedFrom(src SeedSource) error
	// Clone returns an independent copy with identical state.
	Clone() Generator
	Min() uint64
	Max() uint64
	String() string
}

// jumpImpl XORs together the states visited at the set bits of table,
// stepping once per bit, and replaces state with the result.
func jumpImpl(state []uint64, table []uint64, permute func([]uint64) uint64) {
	var acc [4]uint64
	s := acc[:len(state)]

	for i := 0; i < len(table); i++ {
		for b := 0; b < 64; b++ {
			if (table[i] & (uint64(1) << b)) != 0 {
				for j := 0; j < len(state); j++ {
					s[j] ^= state[j]
				}
			}
			_ = permute(state)
		}
	}

	copy(state, s)
}

func isZero(state []uint64) bool {
	for _, v := range state {
		if v != 0 {
			return false
		}
	}

	return true
}

type source struct {
	g Generator
}

var _ rand.Source64 = (*source)(nil)

// AsSource exposes g as a math/rand source. The source shares g's state.
func AsSource(g Generator) rand.Source64 {
	return &source{g: g}
}

func (s *source) Seed(seed int64) {
	s.g.Seed(uint64(seed))
}

func (s *source) Int63() int64 {
	return int64(s.g.Next() >> 1)
}

func (s *source) Uint64() uint64 {
	return s.g.Next()
}
