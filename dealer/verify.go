package dealer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xor-shift/xoshiro/common"
	"github.com/xor-shift/xoshiro/util/rng"
)

var (
	ErrStaleOffset  = errors.New("offset is behind the verified position")
	ErrOffsetTooFar = errors.New("offset is too far ahead of the verified position")
)

// MaxSkip bounds how many outputs a single Check may step over to reach a
// report's offset.
const MaxSkip = 1 << 24

type MismatchError struct {
	Index uint64
	Got   uint64
	Want  uint64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("output %d mismatch (got: 0x%016x, expected: 0x%016x)", e.Index, e.Got, e.Want)
}

// Verifier checks reported outputs of one stream against a local copy of it.
type Verifier struct {
	gen     rng.Generator
	next    uint64
	skipped uint64
}

func NewVerifier(gen rng.Generator) *Verifier {
	return &Verifier{gen: gen}
}

// Next is the index of the next output the verifier expects.
func (v *Verifier) Next() uint64 {
	return v.next
}

// Skipped counts outputs that were jumped over because a report started past
// the expected position.
func (v *Verifier) Skipped() uint64 {
	return v.skipped
}

// Check verifies that values are the stream's outputs starting at offset.
// Stepping to a far offset is linear in the distance, which is at most
// MaxSkip. On failure the verifier is left as it was before the call.
func (v *Verifier) Check(offset uint64, values []uint64) error {
	if offset < v.next {
		return fmt.Errorf("%w (got: %d, expected at least: %d)", ErrStaleOffset, offset, v.next)
	}

	if offset-v.next > MaxSkip {
		return fmt.Errorf("%w (got: %d, expected at most: %d)", ErrOffsetTooFar, offset, v.next+MaxSkip)
	}

	snapshot, snapNext, snapSkipped := v.gen.Clone(), v.next, v.skipped

	for ; v.next < offset; v.next++ {
		_ = v.gen.Next()
		v.skipped++
	}

	for i, got := range values {
		if want := v.gen.Next(); got != want {
			index := v.next + uint64(i)
			v.gen, v.next, v.skipped = snapshot, snapNext, snapSkipped
			return &MismatchError{Index: index, Got: got, Want: want}
		}
	}

	v.next += uint64(len(values))

	return nil
}

// Auditor verifies blocks of many substreams, creating a Verifier per
// substream from the first block's spec. It is safe for concurrent use.
type Auditor struct {
	mu        sync.Mutex
	verifiers map[string]*Verifier
}

func NewAuditor() *Auditor {
	return &Auditor{verifiers: map[string]*Verifier{}}
}

func (a *Auditor) Audit(block common.Block) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := block.Key()

	v, ok := a.verifiers[key]
	if !ok {
		gen, err := block.Spec.Build()
		if err != nil {
			return fmt.Errorf("stream %s: %w", key, err)
		}

		v = NewVerifier(gen)
		a.verifiers[key] = v
	}

	if err := v.Check(block.Offset, block.Values); err != nil {
		return fmt.Errorf("stream %s: %w", key, err)
	}

	return nil
}

// Position reports the next expected offset of a substream.
func (a *Auditor) Position(key string) (uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, ok := a.verifiers[key]
	if !ok {
		return 0, false
	}

	return v.Next(), true
}
