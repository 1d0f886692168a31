// bincode decodes a bincode byte stream against a field schema and prints
// one line per field. It is meant for inspecting payloads produced by
// other programs when the Go type that wrote them is not at hand.
//
// The --endian flag selects one of three compiled decoders; the byte order
// is never a runtime parameter of the decoder itself.
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/freeeve/bincode"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	endian         string
	limit          uint64
	hexInput       bool
	rejectTrailing bool
	verbose        bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("bincode", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.endian, "endian", "little", "byte order: little, big or native")
	flagSet.Uint64Var(&opts.limit, "limit", 0, "maximum number of bytes to read (0 = no limit)")
	flagSet.BoolVar(&opts.hexInput, "hex", false, "input is hex text (whitespace ignored)")
	flagSet.BoolVar(&opts.rejectTrailing, "reject-trailing", false, "fail if input remains after the last field")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log every decoded field")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}

	positional := flagSet.Args()
	if len(positional) < 1 || len(positional) > 2 {
		printHelp(stderr, flagSet)
		return fmt.Errorf("expected SCHEMA [FILE], got %d arguments", len(positional))
	}

	fields, err := parseSchema(positional[0])
	if err != nil {
		return err
	}

	input := stdin
	if len(positional) == 2 {
		file, err := os.Open(positional[1])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer file.Close()
		input = file
	}
	data, err := readInput(input, opts.hexInput)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, opts.verbose)
	defer logger.Sync() //nolint:errcheck

	cfg := bincode.DefaultConfig().WithRejectTrailing(opts.rejectTrailing)
	if opts.limit > 0 {
		cfg = cfg.WithLimit(opts.limit)
	}

	switch opts.endian {
	case "little":
		err = dump[bincode.Little](logger, stdout, data, fields, cfg)
	case "big":
		err = dump[bincode.Big](logger, stdout, data, fields, cfg)
	case "native":
		err = dump[bincode.Native](logger, stdout, data, fields, cfg)
	default:
		return fmt.Errorf("unknown --endian %q (want little, big or native)", opts.endian)
	}
	if err != nil {
		var codecErr *bincode.Error
		if errors.As(err, &codecErr) {
			logger.Warn("decode failed",
				zap.String("endian", opts.endian),
				zap.String("kind", codecErr.Description()),
				zap.Error(err),
			)
		}
		return err
	}
	return nil
}

// readInput reads all of r, decoding it from hex when hexInput is set
func readInput(r io.Reader, hexInput bool) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if !hexInput {
		return data, nil
	}
	decoded, err := hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
	if err != nil {
		return nil, fmt.Errorf("decoding hex input: %w", err)
	}
	return decoded, nil
}

// dump decodes fields from data in order and prints each one
func dump[O bincode.ByteOrder](logger *zap.Logger, w io.Writer, data []byte, fields []field, cfg bincode.Config) error {
	r := bytes.NewReader(data)
	d := bincode.NewReaderDecoderWithConfig[O](r, cfg)

	for _, f := range fields {
		offset := d.BytesRead()
		value, err := decodeField(d, f)
		if err != nil {
			return fmt.Errorf("field %s (%s) at offset %d: %w", f.name, f.kind, offset, err)
		}
		logger.Debug("decoded field",
			zap.String("field", f.name),
			zap.String("type", f.kind.String()),
			zap.Uint64("offset", offset),
			zap.Uint64("size", d.BytesRead()-offset),
		)
		fmt.Fprintf(w, "%s\t%s\n", f.name, value)
	}

	if cfg.RejectTrailing && r.Len() > 0 {
		return d.Custom(fmt.Sprintf("%d bytes remaining after the last field", r.Len()))
	}
	logger.Debug("decode complete",
		zap.Int("fields", len(fields)),
		zap.Uint64("bytes", d.BytesRead()),
		zap.Int("trailing", r.Len()),
	)
	return nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `bincode decodes a bincode byte stream field by field.

Usage:
  bincode [flags] SCHEMA [FILE]

SCHEMA is a comma-separated list of [name=]type, where type is one of
bool, u8, u16, u32, u64, i8, i16, i32, i64, f32, f64, char, str, bytes,
time, or tag:N (enum variant index with N variants). Input is read from
FILE, or stdin when FILE is omitted.

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
