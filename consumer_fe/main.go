package main

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/kataras/iris/v12"
	"github.com/rs/zerolog/log"
	"github.com/xor-shift/xoshiro/common"
)

func init() {
	if err := common.LoadEnv(); err != nil {
		log.Fatal().Err(err).Msg("loading dotenv failed")
	}

	common.SetupLogging()
}

// lastBlocks keeps the most recent block of every substream.
type lastBlocks struct {
	mu     sync.RWMutex
	blocks map[string]common.Block
}

func (l *lastBlocks) store(block common.Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.blocks[block.Key()]; ok && prev.Offset > block.Offset {
		return nil
	}

	l.blocks[block.Key()] = block

	log.Debug().Str("stream", block.Key()).Uint64("offset", block.Offset).Int("values", len(block.Values)).Msg("block")

	return nil
}

func (l *lastBlocks) get(key string) (common.Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	block, ok := l.blocks[key]
	return block, ok
}

func (l *lastBlocks) all() map[string]common.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ret := make(map[string]common.Block, len(l.blocks))
	for k, v := range l.blocks {
		ret[k] = v
	}

	return ret
}

// blockView is the JSON form of a block. Values are hex strings so that
// clients decoding numbers as float64 keep all 64 bits.
type blockView struct {
	Spec   common.StreamSpec `json:"spec"`
	Worker int               `json:"worker"`
	Offset uint64            `json:"offset"`
	Values []string          `json:"values"`
}

func newBlockView(block common.Block) blockView {
	view := blockView{
		Spec:   block.Spec,
		Worker: block.Worker,
		Offset: block.Offset,
		Values: make([]string, len(block.Values)),
	}

	for i, v := range block.Values {
		view.Values[i] = fmt.Sprintf("0x%016x", v)
	}

	return view
}

func main() {
	var err error

	var consumer *common.AMQPConsumer
	var app *iris.Application

	last := &lastBlocks{blocks: map[string]common.Block{}}

	if consumer, err = common.NewAMQPConsumer(
		common.AMQPURL(),
		common.BlockExchange,
		"block_queue_fe",
		"block_consumer_fe",
		last.store,
	); err != nil {
		log.Fatal().Err(err).Msg("connecting to amqp failed")
	}

	if err = consumer.Start(); err != nil {
		log.Fatal().Err(err).Msg("starting the consumer failed")
	}

	app = iris.New()

	app.Get("/test", func(ctx iris.Context) {
		_, _ = ctx.Text("OK")
	})

	// /data lists every substream, /data?stream=id/worker a single one
	app.Get("/data", func(ctx iris.Context) {
		key := ctx.URLParam("stream")
		if key == "" {
			views := map[string]blockView{}
			for k, block := range last.all() {
				views[k] = newBlockView(block)
			}

			_, _ = ctx.JSON(views)
			return
		}

		block, ok := last.get(key)
		if !ok {
			ctx.StatusCode(http.StatusNotFound)
			_, _ = ctx.Text("no blocks seen for stream %s", key)
			return
		}

		_, _ = ctx.JSON(newBlockView(block))
	})

	port := os.Getenv("CONSUMER_FE_PORT")
	if port == "" {
		port = "8081"
	}

	if err = app.Listen(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatal().Err(err).Msg("listening failed")
	}
}
