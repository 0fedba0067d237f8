package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xor-shift/xoshiro/common"
)

func TestLastBlocks(t *testing.T) {
	last := &lastBlocks{blocks: map[string]common.Block{}}
	spec := common.StreamSpec{ID: "s", Variant: common.VariantXoshiro256, Mode: common.ModeSeed}

	require.NoError(t, last.store(common.Block{Spec: spec, Worker: 0, Offset: 4, Values: []uint64{1}}))
	require.NoError(t, last.store(common.Block{Spec: spec, Worker: 1, Offset: 0, Values: []uint64{2}}))

	// an older block arriving late does not replace the newer one
	require.NoError(t, last.store(common.Block{Spec: spec, Worker: 0, Offset: 0, Values: []uint64{3}}))

	block, ok := last.get("s/0")
	require.True(t, ok)
	require.Equal(t, uint64(4), block.Offset)
	require.Equal(t, []uint64{1}, block.Values)

	_, ok = last.get("s/2")
	require.False(t, ok)

	all := last.all()
	require.Len(t, all, 2)

	delete(all, "s/1")
	_, ok = last.get("s/1")
	require.True(t, ok)
}

func TestBlockViewKeepsAllBits(t *testing.T) {
	block := common.Block{
		Spec:   common.StreamSpec{ID: "s"},
		Worker: 2,
		Offset: 16,
		Values: []uint64{0, 1<<53 + 1, 0xffffffffffffffff},
	}

	body, err := json.Marshal(newBlockView(block))
	require.NoError(t, err)

	var decoded struct {
		Worker int           `json:"worker"`
		Offset uint64        `json:"offset"`
		Values []interface{} `json:"values"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, 2, decoded.Worker)
	require.Equal(t, uint64(16), decoded.Offset)
	require.Equal(t, []interface{}{"0x0000000000000000", "0x0020000000000001", "0xffffffffffffffff"}, decoded.Values)
}
