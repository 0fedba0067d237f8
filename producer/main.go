package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/rs/zerolog/log"
	"github.com/xor-shift/xoshiro/common"
	"github.com/xor-shift/xoshiro/dealer"
	"github.com/xor-shift/xoshiro/util/rng"
)

func init() {
	if err := common.LoadEnv(); err != nil {
		log.Fatal().Err(err).Msg("loading dotenv failed")
	}

	common.SetupLogging()
}

// vectorsResponse lists outputs as hex so that JSON clients keep all 64 bits.
type vectorsResponse struct {
	Spec   common.StreamSpec `json:"spec"`
	Values []string          `json:"values"`
}

// intParam reads an integer url param, def if it is absent. Malformed values
// are errors rather than falling back to def.
func intParam(ctx iris.Context, name string, def int) (int, error) {
	if !ctx.URLParamExists(name) {
		return def, nil
	}

	v, err := strconv.Atoi(ctx.URLParam(name))
	if err != nil {
		return 0, fmt.Errorf("url param %s: %w", name, err)
	}

	return v, nil
}

func newApp(pub dealer.Publisher) *iris.Application {
	app := iris.New()
	d := dealer.NewDealer(pub)

	app.Get("/test", func(ctx iris.Context) {
		_, _ = ctx.Text("OK")
	})

	app.Post("/streams", func(ctx iris.Context) {
		body, err := ctx.GetBody()
		if err != nil {
			log.Warn().Err(err).Msg("/streams: reading the body failed")
			ctx.StatusCode(http.StatusBadRequest)
			return
		}

		spec, base, err := common.ParseStreamSpec(body)
		if err != nil {
			ctx.StatusCode(http.StatusBadRequest)
			_, _ = ctx.Text("bad stream spec: %s", err)
			return
		}

		var workers, blocks, size int

		if workers, err = intParam(ctx, "workers", 1); err == nil {
			if blocks, err = intParam(ctx, "blocks", 1); err == nil {
				size, err = intParam(ctx, "size", 1024)
			}
		}
		if err == nil {
			err = dealer.CheckShape(spec, workers, blocks, size)
		}

		if err != nil {
			ctx.StatusCode(http.StatusBadRequest)
			_, _ = ctx.Text("bad deal: %s", err)
			return
		}

		log.Info().
			Str("stream", spec.ID).
			Str("variant", spec.Variant).
			Int("workers", workers).
			Int("blocks", blocks).
			Int("size", size).
			Msg("dealing stream")

		go func() {
			if err := d.DealFrom(context.Background(), spec, base, workers, blocks, size); err != nil {
				log.Error().Err(err).Str("stream", spec.ID).Msg("dealing failed")
			}
		}()

		ctx.StatusCode(http.StatusAccepted)
		_, _ = ctx.JSON(spec)
	})

	// cross validation endpoint: the first outputs of a stream given as
	// url params, e.g. /vectors?variant=128&seed=42&count=3 or
	// /vectors?mode=words&words=1,2,3,4
	app.Get("/vectors", func(ctx iris.Context) {
		params := map[string]interface{}{}
		for k, v := range ctx.URLParams() {
			switch k {
			case "count":
			case "words":
				params[k] = strings.Split(v, ",")
			default:
				params[k] = v
			}
		}

		var spec common.StreamSpec
		var gen rng.Generator

		err := common.DecodeMap(params, &spec)
		if err == nil {
			spec, err = spec.Normalize()
		}
		if err == nil {
			gen, err = spec.Build()
		}

		if err != nil {
			ctx.StatusCode(http.StatusBadRequest)
			_, _ = ctx.Text("bad stream spec: %s", err)
			return
		}

		count, err := intParam(ctx, "count", 8)
		if err != nil || count <= 0 || count > 1<<16 {
			ctx.StatusCode(http.StatusBadRequest)
			_, _ = ctx.Text("count must be within [1, 65536]")
			return
		}

		resp := vectorsResponse{Spec: spec, Values: make([]string, count)}
		for i := range resp.Values {
			resp.Values[i] = fmt.Sprintf("0x%016x", gen.Next())
		}

		_, _ = ctx.JSON(resp)
	})

	return app
}

func main() {
	var err error

	var publisher *common.AMQPPublisher

	if publisher, err = common.NewAMQPPublisher(common.AMQPURL(), common.BlockExchange); err != nil {
		log.Fatal().Err(err).Msg("connecting to amqp failed")
	}

	defer publisher.Close()

	app := newApp(publisher)

	port := os.Getenv("PRODUCER_PORT")
	if port == "" {
		port = "8080"
	}

	if err = app.Listen(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatal().Err(err).Msg("listening failed")
	}
}
