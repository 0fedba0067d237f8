package dealer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xor-shift/xoshiro/common"
	"github.com/xor-shift/xoshiro/util/rng"
)

var ErrBadShape = errors.New("bad deal shape")

const (
	MaxWorkers   = 256
	MaxBlocks    = 1 << 16
	MaxBlockSize = 1 << 16
)

// CheckShape validates a deal before any work is started. Worker i publishes
// its blocks with spec.Jumps+i jumps, so the last worker must stay within
// common.MaxJumps as well.
func CheckShape(spec common.StreamSpec, workers, blocks, size int) error {
	switch {
	case workers <= 0 || workers > MaxWorkers:
		return fmt.Errorf("%w: workers must be within [1, %d], got %d", ErrBadShape, MaxWorkers, workers)
	case blocks <= 0 || blocks > MaxBlocks:
		return fmt.Errorf("%w: blocks must be within [1, %d], got %d", ErrBadShape, MaxBlocks, blocks)
	case size <= 0 || size > MaxBlockSize:
		return fmt.Errorf("%w: block size must be within [1, %d], got %d", ErrBadShape, MaxBlockSize, size)
	case spec.Jumps > common.MaxJumps-uint(workers-1):
		return fmt.Errorf("%w: %d jumps leave no room for %d workers", common.ErrTooManyJumps, spec.Jumps, workers)
	}

	return nil
}

type Publisher interface {
	Publish(block common.Block) error
}

type Dealer struct {
	pub Publisher
}

func NewDealer(pub Publisher) *Dealer {
	return &Dealer{pub: pub}
}

// Deal splits the stream described by spec into one substream per worker and
// publishes blocks blocks of size values from each. Workers run concurrently;
// the first error cancels the rest and is returned.
func (d *Dealer) Deal(ctx context.Context, spec common.StreamSpec, workers, blocks, size int) error {
	var err error

	if spec, err = spec.Normalize(); err != nil {
		return err
	}

	if err = CheckShape(spec, workers, blocks, size); err != nil {
		return err
	}

	base, err := spec.Build()
	if err != nil {
		return err
	}

	return d.deal(ctx, spec, base, workers, blocks, size)
}

// DealFrom is Deal for a spec that was already normalized and built into
// base, e.g. by common.ParseStreamSpec. base is not modified.
func (d *Dealer) DealFrom(ctx context.Context, spec common.StreamSpec, base rng.Generator, workers, blocks, size int) error {
	if err := CheckShape(spec, workers, blocks, size); err != nil {
		return err
	}

	return d.deal(ctx, spec, base, workers, blocks, size)
}

func (d *Dealer) deal(ctx context.Context, spec common.StreamSpec, base rng.Generator, workers, blocks, size int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error

	for i, stream := range Split(base, workers) {
		workerSpec := spec
		workerSpec.Jumps += uint(i)

		wg.Add(1)

		go func(worker int, stream rng.Generator, workerSpec common.StreamSpec) {
			defer wg.Done()

			var offset uint64

			for b := 0; b < blocks; b++ {
				if ctx.Err() != nil {
					errOnce.Do(func() { firstErr = ctx.Err() })
					return
				}

				block := common.Block{
					Spec:   workerSpec,
					Worker: worker,
					Offset: offset,
					Values: make([]uint64, size),
				}

				for j := range block.Values {
					block.Values[j] = stream.Next()
				}

				if err := d.pub.Publish(block); err != nil {
					errOnce.Do(func() { firstErr = err })
					cancel()
					return
				}

				offset += uint64(size)
			}

			log.Debug().Str("stream", spec.ID).Int("worker", worker).Uint64("values", offset).Msg("worker done")
		}(i, stream, workerSpec)
	}

	wg.Wait()

	return firstErr
}
