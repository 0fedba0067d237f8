package rng

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(g Generator, n int) []uint64 {
	ret := make([]uint64, n)
	for i := range ret {
		ret[i] = g.Next()
	}
	return ret
}

func TestXoshiro256SSReference(t *testing.T) {
	// plain state, no jump: matches the published xoshiro256starstar.c output
	raw := &Xoshiro256SSState{state: [4]uint64{1, 2, 3, 4}}
	require.Equal(t, []uint64{11520, 0, 1509978240, 1215971899390074240}, collect(raw, 4))

	tests := []struct {
		name string
		gen  Generator
		want []uint64
	}{
		{
			name: "words 1 2 3 4",
			gen:  NewXoshiro256SSFromWords(1, 2, 3, 4),
			want: []uint64{
				0xbbd2f312298443d8, 0x62e57db2d5706577, 0x34d1890374a6d72b, 0xa0425028ca8b66a0,
				0x986a928c99a10251, 0x02a79ef4cc0c7a67, 0x4b50848afa521d37, 0xa49fea6abf4c3238,
			},
		},
		{
			name: "seed 42",
			gen:  NewXoshiro256SSFromSeed(42),
			want: []uint64{
				0xd3c7c0b173aa0cec, 0x005470fa6ea0391c, 0x2da01319b51fd6fb, 0x77501b487c3b7168,
				0xfd296799c0a13d16, 0xfddab56b98be9f30, 0xab8bd90cf10a21bb, 0x415f06d422bcddb8,
			},
		},
		{
			name: "seed 0",
			gen:  NewXoshiro256SSFromSeed(0),
			want: []uint64{
				0x8aeac65fc773e11e, 0x85c317e74589955d, 0x2008456c1df12708, 0x60dd3f4bed187678,
				0x197d627bc3c86e60, 0x5ace10b7dc62667d, 0x389113b27d66dd6a, 0x0026abb20488e9a6,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, collect(tt.gen, len(tt.want)))
		})
	}
}

func TestXoshiro256SSReseedDoesNotJump(t *testing.T) {
	g := NewXoshiro256SSFromSeed(42)
	g.Seed(42)

	require.Equal(t, [4]uint64{0x2a, 0xf0ff00dd00f0f026, 0xe1fbdeef3d14a0e9, 0xbf9783f422efaaf2}, g.state)
	require.Equal(t, []uint64{
		0x69936c952d1b5a2a, 0xed876a70911c21fa, 0xffeee99b6283ff33, 0x98ef9afb03239e9c,
		0x971105baca6be47e, 0xe019abe093952fa4, 0xd64ea783b9e63443, 0x452ad79cad82908e,
	}, collect(g, 8))

	// the constructor and the mutator disagree for the same seed
	constructed := NewXoshiro256SSFromSeed(42)
	g.Seed(42)
	require.NotEqual(t, constructed.state, g.state)
}

func TestXoshiro256SSLongJump(t *testing.T) {
	g := &Xoshiro256SSState{state: [4]uint64{1, 2, 3, 4}}
	g.LongJump()

	require.Equal(t, [4]uint64{0x096a8eb71295a400, 0xdbf84991e50f4516, 0x534ee745810d2a0e, 0x31655ca1a2215bf1}, g.state)
	require.Equal(t, []uint64{0x527752a1d792704d, 0xd8d8bdec57599e64, 0x601cb926727eb003, 0xe0cd980a84253102}, collect(g, 4))
}

func TestXoshiro256SSDeterminism(t *testing.T) {
	for _, seed := range []uint64{0, 1, 42, 0xdeadbeef, ^uint64(0)} {
		a := NewXoshiro256SSFromSeed(seed)
		b := NewXoshiro256SSFromSeed(seed)
		require.Equal(t, collect(a, 64), collect(b, 64), "seed %d", seed)
	}
}

func TestXoshiro256SSNonZeroState(t *testing.T) {
	for _, seed := range []uint64{0, 1, 42, 0x00f00f00f, 0x0f00f00f0, 0xf00f00f00, ^uint64(0)} {
		g := NewXoshiro256SSFromSeed(seed)
		require.False(t, isZero(g.state[:]), "seed %#x", seed)

		g.Seed(seed)
		require.False(t, isZero(g.state[:]), "reseed %#x", seed)
	}
}

func TestXoshiro256SSJumpChangesStream(t *testing.T) {
	g := NewXoshiro256SSFromSeed(1234)
	plain := g.Clone()
	g.Jump()

	require.NotEqual(t, plain.Next(), g.Next())
	require.NotEqual(t, plain.String(), g.String())
}

func TestXoshiro256SSCloneIndependence(t *testing.T) {
	g := NewXoshiro256SSFromSeed(99)
	want := g.Clone().Next()

	c := g.Clone()
	collect(c, 10)
	c.Jump()

	require.Equal(t, want, g.Next())
}

func TestXoshiro256SSRange(t *testing.T) {
	g := NewXoshiro256SSFromSeed(5)
	for i := 0; i < 3; i++ {
		require.Equal(t, uint64(0), g.Min())
		require.Equal(t, ^uint64(0), g.Max())
		g.Jump()
	}
}

func TestXoshiro256SSEntropy(t *testing.T) {
	g, err := NewXoshiro256SS()
	require.NoError(t, err)
	require.False(t, isZero(g.state[:]))

	_, err = newXoshiro256SSFromEntropy(NewReaderSource(strings.NewReader("short")))
	require.Error(t, err)

	g, err = newXoshiro256SSFromEntropy(Words{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, [4]uint64{1, 2, 3, 4}, g.state)
}

func TestXoshiro256SSMarshal(t *testing.T) {
	g := NewXoshiro256SSFromSeed(77)
	b, err := g.MarshalBinary()
	require.NoError(t, err)

	var restored Xoshiro256SSState
	require.NoError(t, restored.UnmarshalBinary(b))
	require.Equal(t, collect(g, 16), collect(&restored, 16))

	require.ErrorIs(t, restored.UnmarshalBinary(b[:10]), ErrBadEncoding)
	require.ErrorIs(t, restored.UnmarshalBinary(append([]byte("x256"), make([]byte, 32)...)), ErrZeroState)

	var other Xoroshiro128SSState
	require.True(t, errors.Is(other.UnmarshalBinary(b), ErrBadEncoding))
}

func BenchmarkXoshiro256SSNext(b *testing.B) {
	g := NewXoshiro256SSFromSeed(1)
	var v uint64
	for i := 0; i < b.N; i++ {
		v = g.Next()
	}
	_ = v
}

func BenchmarkXoshiro256SSJump(b *testing.B) {
	g := NewXoshiro256SSFromSeed(1)
	for i := 0; i < b.N; i++ {
		g.Jump()
	}
}
