package rng

import (
	"encoding/binary"

	"github.com/xor-shift/xoshiro/util"
)

var (
	xoroshiro128Jump     = [2]uint64{0xdf900294d8f554a5, 0x170865df4b3201fc}
	xoroshiro128LongJump = [2]uint64{0xd2a98b26625eee7b, 0xdddf9b1090aa7ac1}
)

const (
	xoroshiro128Magic = "x128"

	xoroshiro128SeedOffset = 117171717
)

// Xoroshiro128SSState is a xoroshiro128** generator: 128 bits of state,
// period 2^128 - 1.
type Xoroshiro128SSState struct {
	state [2]uint64
}

var _ Generator = (*Xoroshiro128SSState)(nil)

// NewXoroshiro128SS returns a generator seeded from Entropy. No jump is applied.
func NewXoroshiro128SS() (*Xoroshiro128SSState, error) {
	return newXoroshiro128SSFromEntropy(Entropy)
}

func newXoroshiro128SSFromEntropy(src SeedSource) (*Xoroshiro128SSState, error) {
	state := &Xoroshiro128SSState{}

	if err := src.Fill(state.state[:]); err != nil {
		return nil, err
	}

	return state, nil
}

// NewXoroshiro128SSFromSeed derives s1 from s0 and jumps once.
func NewXoroshiro128SSFromSeed(s0 uint64) *Xoroshiro128SSState {
	return NewXoroshiro128SSFromWords(s0, ^s0+xoroshiro128SeedOffset)
}

// NewXoroshiro128SSFromWords assigns the state and jumps once.
func NewXoroshiro128SSFromWords(s0, s1 uint64) *Xoroshiro128SSState {
	state := &Xoroshiro128SSState{
		state: [2]uint64{s0, s1},
	}

	state.Jump()

	return state
}

// NewXoroshiro128SSFromSource fills the state from src and jumps once.
func NewXoroshiro128SSFromSource(src SeedSource) (*Xoroshiro128SSState, error) {
	state := &Xoroshiro128SSState{}

	if err := fillState(state.state[:], src); err != nil {
		return nil, err
	}

	state.Jump()

	return state, nil
}

func (state *Xoroshiro128SSState) Next() uint64 {
	return xoroshiro128SSPermuteState(state.state[:])
}

// Jump is equivalent to 2^64 calls to Next. It can be used to generate 2^64
// non-overlapping subsequences for parallel computations.
func (state *Xoroshiro128SSState) Jump() {
	jumpImpl(state.state[:], xoroshiro128Jump[:], xoroshiro128SSPermuteState)
}

// LongJump is equivalent to 2^96 calls to Next. It yields 2^32 starting
// points, from each of which Jump yields 2^32 non-overlapping subsequences.
func (state *Xoroshiro128SSState) LongJump() {
	jumpImpl(state.state[:], xoroshiro128LongJump[:], xoroshiro128SSPermuteState)
}

// Seed resets the state from s0 without jumping.
func (state *Xoroshiro128SSState) Seed(s0 uint64) {
	state.state = [2]uint64{s0, ^util.RotL(s0, 17) + xoroshiro128SeedOffset}
}

// SeedFrom refills the state from src without jumping.
func (state *Xoroshiro128SSState) SeedFrom(src SeedSource) error {
	return fillState(state.state[:], src)
}

func (state *Xoroshiro128SSState) Clone() Generator {
	c := *state
	return &c
}

func (state *Xoroshiro128SSState) Min() uint64 {
	return MinOutput
}

func (state *Xoroshiro128SSState) Max() uint64 {
	return MaxOutput
}

func (state *Xoroshiro128SSState) String() string {
	return util.ArrayToString(state.state[:])
}

func (state *Xoroshiro128SSState) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, len(xoroshiro128Magic)+16)
	b = append(b, xoroshiro128Magic...)
	b = binary.BigEndian.AppendUint64(b, state.state[0])
	b = binary.BigEndian.AppendUint64(b, state.state[1])

	return b, nil
}

func (state *Xoroshiro128SSState) UnmarshalBinary(data []byte) error {
	if len(data) != len(xoroshiro128Magic)+16 || string(data[:len(xoroshiro128Magic)]) != xoroshiro128Magic {
		return ErrBadEncoding
	}

	data = data[len(xoroshiro128Magic):]
	s := [2]uint64{binary.BigEndian.Uint64(data), binary.BigEndian.Uint64(data[8:])}

	if isZero(s[:]) {
		return ErrZeroState
	}

	state.state = s

	return nil
}
