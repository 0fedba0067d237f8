package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/xor-shift/xoshiro/util/rng"
)

const (
	VariantXoshiro256   = "xoshiro256**"
	VariantXoroshiro128 = "xoroshiro128**"

	// ModeSeed constructs from a single word, which jumps once.
	ModeSeed = "seed"
	// ModeWords constructs from explicit state words, which jumps once.
	ModeWords = "words"
	// ModeSource constructs from a SplitMix64 seed source started at Seed,
	// which jumps once.
	ModeSource = "source"
	// ModeReseed applies the Seed mutator, which does not jump.
	ModeReseed = "reseed"
)

var (
	ErrUnknownVariant = errors.New("unknown generator variant")
	ErrUnknownMode    = errors.New("unknown seeding mode")
	ErrWordCount      = errors.New("wrong number of state words")
	ErrTooManyJumps   = errors.New("too many jumps")
)

// MaxJumps bounds Jumps and LongJumps each. Every jump costs a fixed 256 steps
// (128 for xoroshiro128**), so building a spec stays cheap.
const MaxJumps = 1 << 16

// StreamSpec describes how to reproduce a stream: which generator, how it is
// seeded and how far it is jumped before the first output.
type StreamSpec struct {
	ID        string   `json:"id" mapstructure:"id"`
	Variant   string   `json:"variant" mapstructure:"variant"`
	Mode      string   `json:"mode" mapstructure:"mode"`
	Seed      uint64   `json:"seed" mapstructure:"seed"`
	Words     []uint64 `json:"words,omitempty" mapstructure:"words"`
	Jumps     uint     `json:"jumps" mapstructure:"jumps"`
	LongJumps uint     `json:"longJumps" mapstructure:"longJumps"`
}

func normalizeVariant(v string) (string, error) {
	switch v {
	case VariantXoshiro256, "xoshiro256", "256", "":
		return VariantXoshiro256, nil
	case VariantXoroshiro128, "xoroshiro128", "128":
		return VariantXoroshiro128, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
}

// Normalize fills defaults and canonicalizes the variant name.
func (spec StreamSpec) Normalize() (StreamSpec, error) {
	var err error

	if spec.Variant, err = normalizeVariant(spec.Variant); err != nil {
		return spec, err
	}

	if spec.Mode == "" {
		spec.Mode = ModeSeed
	}

	if spec.Jumps > MaxJumps || spec.LongJumps > MaxJumps {
		return spec, fmt.Errorf("%w: %d jumps and %d long jumps, at most %d each",
			ErrTooManyJumps, spec.Jumps, spec.LongJumps, MaxJumps)
	}

	return spec, nil
}

// Build constructs the generator, long jumps it LongJumps times and then
// jumps it Jumps times.
func (spec StreamSpec) Build() (rng.Generator, error) {
	var err error
	var g rng.Generator

	if spec, err = spec.Normalize(); err != nil {
		return nil, err
	}

	switch spec.Variant {
	case VariantXoshiro256:
		g, err = build256(spec)
	case VariantXoroshiro128:
		g, err = build128(spec)
	}

	if err != nil {
		return nil, err
	}

	for i := uint(0); i < spec.LongJumps; i++ {
		g.LongJump()
	}

	for i := uint(0); i < spec.Jumps; i++ {
		g.Jump()
	}

	return g, nil
}

func build256(spec StreamSpec) (rng.Generator, error) {
	switch spec.Mode {
	case ModeSeed:
		return rng.NewXoshiro256SSFromSeed(spec.Seed), nil
	case ModeWords:
		if len(spec.Words) != 4 {
			return nil, fmt.Errorf("%w: %s takes 4, got %d", ErrWordCount, spec.Variant, len(spec.Words))
		}
		w := spec.Words
		return rng.NewXoshiro256SSFromWords(w[0], w[1], w[2], w[3]), nil
	case ModeSource:
		src := rng.SplitMix64(spec.Seed)
		return rng.NewXoshiro256SSFromSource(&src)
	case ModeReseed:
		g := &rng.Xoshiro256SSState{}
		g.Seed(spec.Seed)
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, spec.Mode)
	}
}

func build128(spec StreamSpec) (rng.Generator, error) {
	switch spec.Mode {
	case ModeSeed:
		return rng.NewXoroshiro128SSFromSeed(spec.Seed), nil
	case ModeWords:
		if len(spec.Words) != 2 {
			return nil, fmt.Errorf("%w: %s takes 2, got %d", ErrWordCount, spec.Variant, len(spec.Words))
		}
		return rng.NewXoroshiro128SSFromWords(spec.Words[0], spec.Words[1]), nil
	case ModeSource:
		src := rng.SplitMix64(spec.Seed)
		return rng.NewXoroshiro128SSFromSource(&src)
	case ModeReseed:
		g := &rng.Xoroshiro128SSState{}
		g.Seed(spec.Seed)
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, spec.Mode)
	}
}

var jsonNumberType = reflect.TypeOf(json.Number(""))

// jsonNumberToUint keeps 64 bit seeds exact; float64 would round them.
func jsonNumberToUint(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f != jsonNumberType {
		return data, nil
	}

	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(string(data.(json.Number)), 0, t.Bits())
	}

	return data, nil
}

// DecodeMap decodes a generic map into the structure pointed to by into.
// Seeds and words may be numbers or strings in any Go integer notation.
func DecodeMap(m map[string]interface{}, into interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       jsonNumberToUint,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           into,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(m)
}

// DecodeJSON unmarshals a JSON object and decodes it with DecodeMap.
func DecodeJSON(body []byte, into interface{}) error {
	var m map[string]interface{}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	if err := decoder.Decode(&m); err != nil {
		return err
	}

	return DecodeMap(m, into)
}

// ParseStreamSpec decodes a JSON encoded StreamSpec and builds its generator,
// which is returned positioned at the stream's first output.
func ParseStreamSpec(body []byte) (spec StreamSpec, gen rng.Generator, err error) {
	if err = DecodeJSON(body, &spec); err != nil {
		return
	}

	if spec, err = spec.Normalize(); err != nil {
		return
	}

	gen, err = spec.Build()

	return
}
