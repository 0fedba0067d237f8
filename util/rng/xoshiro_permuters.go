package rng

import "github.com/xor-shift/xoshiro/util"

// permutes a [4]uint64 state according to xoshiro256**
// https://prng.di.unimi.it/xoshiro256starstar.c
func xoshiro256SSPermuteState(s []uint64) (result uint64) {
	result = util.RotL(s[1]*5, 7) * 9

	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]

	s[2] ^= t

	s[3] = util.RotL(s[3], 45)

	return result
}

// permutes a [2]uint64 state according to xoroshiro128**
// https://prng.di.unimi.it/xoroshiro128starstar.c
func xoroshiro128SSPermuteState(s []uint64) (result uint64) {
	s0 := s[0]
	s1 := s[1]
	result = util.RotL(s0*5, 7) * 9

	s1 ^= s0
	s[0] = util.RotL(s0, 24) ^ s1 ^ (s1 << 16)
	s[1] = util.RotL(s1, 37)

	return
}
