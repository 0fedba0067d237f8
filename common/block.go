package common

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Block is a contiguous run of outputs of one worker substream. Spec is the
// worker's own spec, so Spec.Build followed by Offset calls to Next
// reproduces the stream right before Values[0].
type Block struct {
	Spec   StreamSpec `json:"spec"`
	Worker int        `json:"worker"`
	Offset uint64     `json:"offset"`
	Values []uint64   `json:"values"`
}

// Key identifies the substream a block belongs to.
func (b *Block) Key() string {
	return fmt.Sprintf("%s/%d", b.Spec.ID, b.Worker)
}

func EncodeBlock(block Block) ([]byte, error) {
	var buffer bytes.Buffer

	if err := gob.NewEncoder(&buffer).Encode(block); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func DecodeBlock(body []byte) (Block, error) {
	var block Block

	if err := gob.NewDecoder(bytes.NewBuffer(body)).Decode(&block); err != nil {
		return block, fmt.Errorf("decoding a block with gob: %w", err)
	}

	return block, nil
}
