package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
	"github.com/xor-shift/xoshiro/common"
	"github.com/xor-shift/xoshiro/dealer"
	"github.com/xor-shift/xoshiro/util"
)

func init() {
	if err := common.LoadEnv(); err != nil {
		log.Fatal().Err(err).Msg("loading dotenv failed")
	}

	common.SetupLogging()
}

type streamFlags struct {
	ID        string `name:"id" default:"export" help:"Stream identifier"`
	Variant   string `name:"variant" short:"v" enum:"256,128" default:"256" help:"Generator: 256 for xoshiro256**, 128 for xoroshiro128**"`
	Mode      string `name:"mode" short:"m" enum:"seed,words,source,reseed" default:"seed" help:"Seeding mode"`
	Seed      string `name:"seed" short:"s" default:"0" help:"Seed word (decimal or 0x hex)"`
	Words     string `name:"words" help:"Comma separated state words for the words mode"`
	Jumps     uint   `name:"jumps" short:"j" help:"Number of jumps applied after seeding"`
	LongJumps uint   `name:"long-jumps" help:"Number of long jumps applied after seeding, before the jumps"`
}

func (f *streamFlags) spec() (common.StreamSpec, error) {
	var err error

	spec := common.StreamSpec{
		ID:        f.ID,
		Variant:   f.Variant,
		Mode:      f.Mode,
		Jumps:     f.Jumps,
		LongJumps: f.LongJumps,
	}

	if spec.Seed, err = util.ParseWord(f.Seed); err != nil {
		return spec, err
	}

	if spec.Words, err = util.ParseWordList(f.Words); err != nil {
		return spec, err
	}

	return spec.Normalize()
}

// vectorFile is the JSON layout written by export and read by verify.
type vectorFile struct {
	common.StreamSpec `mapstructure:",squash"`
	Offset            uint64   `mapstructure:"offset"`
	Values            []uint64 `mapstructure:"values"`
}

type vectorFileJSON struct {
	common.StreamSpec
	Offset uint64   `json:"offset"`
	Values []string `json:"values"`
}

type exportCmd struct {
	streamFlags `embed:""`

	Count              int    `name:"count" short:"n" default:"16" help:"Number of outputs to export"`
	Out                string `name:"out" short:"o" default:"stream_{{.Bits}}_{{.Seed}}.{{.Format}}" help:"File to output to (templated), - for stdout"`
	Format             string `name:"format" short:"f" enum:"csv,json" default:"csv" help:"Data format"`
	ExportColumnTitles bool   `name:"export_column_titles" negatable:"" default:"true" help:"(applicable only to CSV outputs) whether to include column titles for CSV exports"`
}

func (c *exportCmd) outFileName(spec common.StreamSpec) (string, error) {
	var err error

	var outFileNameTemplate *template.Template
	if outFileNameTemplate, err = template.New("").Parse(c.Out); err != nil {
		return "", fmt.Errorf("creating the output filename template: %w", err)
	}

	outFileNameBuf := bytes.Buffer{}

	templateArguments := struct {
		ID     string
		Bits   string
		Seed   uint64
		Mode   string
		Jumps  uint
		Format string
	}{
		ID:     spec.ID,
		Bits:   strings.TrimSuffix(strings.TrimLeft(spec.Variant, "xorshi"), "**"),
		Seed:   spec.Seed,
		Mode:   spec.Mode,
		Jumps:  spec.Jumps,
		Format: c.Format,
	}

	if err = outFileNameTemplate.Execute(&outFileNameBuf, templateArguments); err != nil {
		return "", fmt.Errorf("executing the output filename template: %w", err)
	}

	return outFileNameBuf.String(), nil
}

func (c *exportCmd) write(w io.Writer, spec common.StreamSpec, values []uint64) error {
	if c.Format == "json" {
		out := vectorFileJSON{StreamSpec: spec, Values: make([]string, len(values))}
		for i, v := range values {
			out.Values[i] = fmt.Sprintf("0x%016x", v)
		}

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	csvWriter := csv.NewWriter(w)

	if c.ExportColumnTitles {
		_ = csvWriter.Write([]string{"Index", "Hex", "Decimal"})
	}

	for i, v := range values {
		_ = csvWriter.Write([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%016x", v),
			fmt.Sprintf("%d", v),
		})
	}

	csvWriter.Flush()

	return csvWriter.Error()
}

func (c *exportCmd) Run() error {
	spec, err := c.spec()
	if err != nil {
		return err
	}

	if c.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", c.Count)
	}

	gen, err := spec.Build()
	if err != nil {
		return err
	}

	values := make([]uint64, c.Count)
	for i := range values {
		values[i] = gen.Next()
	}

	outFileName, err := c.outFileName(spec)
	if err != nil {
		return err
	}

	if outFileName == "-" {
		return c.write(os.Stdout, spec, values)
	}

	var outFile *os.File
	if outFile, err = os.Create(outFileName); err != nil {
		return fmt.Errorf("creating the output file %q: %w", outFileName, err)
	}

	if err = c.write(outFile, spec, values); err != nil {
		_ = outFile.Close()
		return err
	}

	log.Info().Str("file", outFileName).Int("values", len(values)).Msg("exported")

	return outFile.Close()
}

type verifyCmd struct {
	File string `arg:"" type:"existingfile" help:"JSON vectors file, as written by export --format json"`
}

func (c *verifyCmd) Run() error {
	var err error

	var body []byte
	if body, err = os.ReadFile(c.File); err != nil {
		return err
	}

	var vf vectorFile
	if err = common.DecodeJSON(body, &vf); err != nil {
		return fmt.Errorf("parsing %s: %w", c.File, err)
	}

	gen, err := vf.StreamSpec.Build()
	if err != nil {
		return err
	}

	if err = dealer.NewVerifier(gen).Check(vf.Offset, vf.Values); err != nil {
		return err
	}

	log.Info().Str("file", c.File).Int("values", len(vf.Values)).Msg("all values reproduce")

	return nil
}

type cli struct {
	Export exportCmd `cmd:"" help:"Generate outputs of a stream and write them to a file"`
	Verify verifyCmd `cmd:"" help:"Check a vectors file against this implementation"`
}

func main() {
	var args cli

	ctx := kong.Parse(&args,
		kong.Name("data_exporter"),
		kong.Description("Exports and cross-checks xoshiro256** / xoroshiro128** streams"))

	ctx.FatalIfErrorf(ctx.Run())
}
