// Package dealer hands out non-overlapping substreams of a generator to
// parallel workers and audits streams reported back by them.
package dealer

import "github.com/xor-shift/xoshiro/util/rng"

// Split returns n clones of base, the i-th jumped i times. The clones are
// disjoint for up to 2^(n/2) outputs each, n being the state size in bits.
// base itself is not modified.
func Split(base rng.Generator, n int) []rng.Generator {
	ret := make([]rng.Generator, n)

	cur := base.Clone()
	for i := 0; i < n; i++ {
		ret[i] = cur.Clone()
		cur.Jump()
	}

	return ret
}

// LongSplit is Split with LongJump, yielding independent bases that can be
// split again.
func LongSplit(base rng.Generator, n int) []rng.Generator {
	ret := make([]rng.Generator, n)

	cur := base.Clone()
	for i := 0; i < n; i++ {
		ret[i] = cur.Clone()
		cur.LongJump()
	}

	return ret
}
