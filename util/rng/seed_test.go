package rng

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitMix64(t *testing.T) {
	s := SplitMix64(42)
	dst := make([]uint64, 4)
	require.NoError(t, s.Fill(dst))
	require.Equal(t, []uint64{0xbdd732262feb6e95, 0x28efe333b266f103, 0x47526757130f9f52, 0x581ce1ff0e4ae394}, dst)
}

func TestFromSource(t *testing.T) {
	sm := SplitMix64(42)
	g, err := NewXoshiro256SSFromSource(&sm)
	require.NoError(t, err)
	require.Equal(t, []uint64{0x50086ef83cbf4f4a, 0xba285ec21347d703, 0x5ea1247b4dc6452a, 0x03a5c66424702131}, collect(g, 4))

	sm = SplitMix64(42)
	h, err := NewXoroshiro128SSFromSource(&sm)
	require.NoError(t, err)
	require.Equal(t, []uint64{0x43a69bb2726217fd, 0x2be1f3ffc62e1f4b, 0xa69f7419d9d9bd19, 0xfa250e8aad6dbbc9}, collect(h, 4))

	w, err := NewXoshiro256SSFromSource(Words{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, NewXoshiro256SSFromWords(1, 2, 3, 4).state, w.state)
}

func TestSeedFromDoesNotJump(t *testing.T) {
	g := NewXoshiro256SSFromSeed(1)
	require.NoError(t, g.SeedFrom(Words{1, 2, 3, 4}))
	require.Equal(t, [4]uint64{1, 2, 3, 4}, g.state)

	h := NewXoroshiro128SSFromSeed(1)
	require.NoError(t, h.SeedFrom(Words{9}))
	require.Equal(t, [2]uint64{9, 9}, h.state)
}

func TestZeroSourceRejected(t *testing.T) {
	_, err := NewXoshiro256SSFromSource(Words{})
	require.ErrorIs(t, err, ErrZeroState)

	_, err = NewXoroshiro128SSFromSource(Words{0, 0})
	require.ErrorIs(t, err, ErrZeroState)

	g := NewXoshiro256SSFromSeed(5)
	before := g.state
	require.ErrorIs(t, g.SeedFrom(Words{0}), ErrZeroState)
	require.Equal(t, before, g.state)
}

func TestReaderSource(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []uint64{7, 8, 9, 10} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	g := NewXoshiro256SSFromSeed(0)
	require.NoError(t, g.SeedFrom(NewReaderSource(&buf)))
	require.Equal(t, [4]uint64{7, 8, 9, 10}, g.state)

	require.Error(t, g.SeedFrom(NewReaderSource(&buf)))
	require.Equal(t, [4]uint64{7, 8, 9, 10}, g.state)
}
