package rng

import (
	"encoding/binary"

	"github.com/xor-shift/xoshiro/util"
)

var (
	xoshiro256Jump     = [4]uint64{0x180ec6d33cfd0aba, 0xd5a61266f0c9392c, 0xa9582618e03fc9aa, 0x39abdc4529b1661c}
	xoshiro256LongJump = [4]uint64{0x76e15d3efefdcbbf, 0xc5004e441c522fb3, 0x77710069854ee241, 0x39109bb02acbe635}
)

const xoshiro256Magic = "x256"

// Xoshiro256SSState is a xoshiro256** generator: 256 bits of state,
// period 2^256 - 1.
type Xoshiro256SSState struct {
	state [4]uint64
}

var _ Generator = (*Xoshiro256SSState)(nil)

// NewXoshiro256SS returns a generator seeded from Entropy. No jump is applied.
func NewXoshiro256SS() (*Xoshiro256SSState, error) {
	return newXoshiro256SSFromEntropy(Entropy)
}

func newXoshiro256SSFromEntropy(src SeedSource) (*Xoshiro256SSState, error) {
	state := &Xoshiro256SSState{}

	if err := src.Fill(state.state[:]); err != nil {
		return nil, err
	}

	return state, nil
}

// NewXoshiro256SSFromSeed derives the remaining words from s0 and jumps once,
// so that adjacent seeds start far apart.
func NewXoshiro256SSFromSeed(s0 uint64) *Xoshiro256SSState {
	return NewXoshiro256SSFromWords(s0, s0^0x00f00f00f, s0^0x0f00f00f0, s0^0xf00f00f00)
}

// NewXoshiro256SSFromWords assigns the state and jumps once.
func NewXoshiro256SSFromWords(s0, s1, s2, s3 uint64) *Xoshiro256SSState {
	state := &Xoshiro256SSState{
		state: [4]uint64{s0, s1, s2, s3},
	}

	state.Jump()

	return state
}

// NewXoshiro256SSFromSource fills the state from src and jumps once.
func NewXoshiro256SSFromSource(src SeedSource) (*Xoshiro256SSState, error) {
	state := &Xoshiro256SSState{}

	if err := fillState(state.state[:], src); err != nil {
		return nil, err
	}

	state.Jump()

	return state, nil
}

func (state *Xoshiro256SSState) Next() uint64 {
	return xoshiro256SSPermuteState(state.state[:])
}

// Jump is equivalent to 2^128 calls to Next. It can be used to generate 2^128
// non-overlapping subsequences for parallel computations.
func (state *Xoshiro256SSState) Jump() {
	jumpImpl(state.state[:], xoshiro256Jump[:], xoshiro256SSPermuteState)
}

// LongJump is equivalent to 2^192 calls to Next. It yields 2^64 starting
// points, from each of which Jump yields 2^64 non-overlapping subsequences.
func (state *Xoshiro256SSState) LongJump() {
	jumpImpl(state.state[:], xoshiro256LongJump[:], xoshiro256SSPermuteState)
}

// Seed resets the state from s0 without jumping. Note that this differs from
// NewXoshiro256SSFromSeed, both in the derivation and in the missing jump.
func (state *Xoshiro256SSState) Seed(s0 uint64) {
	s1 := s0 ^ 0xf0ff00dd00f0f00c
	s2 := util.RotL(s1, 45) ^ 0xffff00f0dd0f00f7
	s3 := util.RotL(s2+s1, 17) ^ 0x000fffff00f00f07

	state.state = [4]uint64{s0, s1, s2, s3}
}

// SeedFrom refills the state from src without jumping.
func (state *Xoshiro256SSState) SeedFrom(src SeedSource) error {
	return fillState(state.state[:], src)
}

func (state *Xoshiro256SSState) Clone() Generator {
	c := *state
	return &c
}

func (state *Xoshiro256SSState) Min() uint64 {
	return MinOutput
}

func (state *Xoshiro256SSState) Max() uint64 {
	return MaxOutput
}

func (state *Xoshiro256SSState) String() string {
	return util.ArrayToString(state.state[:])
}

func (state *Xoshiro256SSState) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, len(xoshiro256Magic)+32)
	b = append(b, xoshiro256Magic...)

	for _, v := range state.state {
		b = binary.BigEndian.AppendUint64(b, v)
	}

	return b, nil
}

func (state *Xoshiro256SSState) UnmarshalBinary(data []byte) error {
	if len(data) != len(xoshiro256Magic)+32 || string(data[:len(xoshiro256Magic)]) != xoshiro256Magic {
		return ErrBadEncoding
	}

	var s [4]uint64
	data = data[len(xoshiro256Magic):]

	for i := range s {
		s[i] = binary.BigEndian.Uint64(data[i*8:])
	}

	if isZero(s[:]) {
		return ErrZeroState
	}

	state.state = s

	return nil
}
