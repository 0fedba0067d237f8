package rng

import (
	cr "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// SeedSource fills state words from some seed material.
type SeedSource interface {
	Fill(dst []uint64) error
}

type readerSource struct {
	r io.Reader
}

// Entropy draws state words from the operating system's random source.
var Entropy SeedSource = readerSource{r: cr.Reader}

// NewReaderSource reads little-endian words from r.
func NewReaderSource(r io.Reader) SeedSource {
	return readerSource{r: r}
}

func (rs readerSource) Fill(dst []uint64) error {
	var buf [8]byte

	for i := range dst {
		if _, err := io.ReadFull(rs.r, buf[:]); err != nil {
			return fmt.Errorf("rng: reading seed word %d: %w", i, err)
		}

		dst[i] = binary.LittleEndian.Uint64(buf[:])
	}

	return nil
}

// SplitMix64 expands a single word into as many well mixed words as needed.
// This is the seeding procedure recommended by the xoshiro authors.
type SplitMix64 uint64

const splitMixIncrement = 0x9e3779b97f4a7c15

func (s *SplitMix64) Uint64() uint64 {
	*s += splitMixIncrement
	z := uint64(*s)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (s *SplitMix64) Fill(dst []uint64) error {
	for i := range dst {
		dst[i] = s.Uint64()
	}

	return nil
}

// Words fills the destination with its elements, repeating them as needed.
// An empty Words fills zeros.
type Words []uint64

func (w Words) Fill(dst []uint64) error {
	for i := range dst {
		if len(w) == 0 {
			dst[i] = 0
			continue
		}

		dst[i] = w[i%len(w)]
	}

	return nil
}

// fillState fills state from src, rejecting the all-zero fixed point.
// The state is left untouched on failure.
func fillState(state []uint64, src SeedSource) error {
	var tmp [4]uint64
	s := tmp[:len(state)]

	if err := src.Fill(s); err != nil {
		return err
	}

	if isZero(s) {
		return ErrZeroState
	}

	copy(state, s)

	return nil
}
