// Package cli implements the tszip and tsunzip command line tools. All
// failures are rendered as a single line on stderr with a non-zero exit
// status.
package cli

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tszip-db/tszip"
	"github.com/tszip-db/tszip/internal/objstore"
)

// UsageError reports a command line contract violation, as opposed to a
// failure of the operation itself.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErrorf(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// countFlag counts repeated occurrences, so -v -v raises verbosity twice.
type countFlag int

func (c *countFlag) String() string     { return strconv.Itoa(int(*c)) }
func (c *countFlag) Set(s string) error { *c++; return nil }
func (c *countFlag) IsBoolFlag() bool   { return true }

type options struct {
	decompress   bool
	list         bool
	suffix       string
	keep         bool
	force        bool
	stdout       bool
	variantsOnly bool
	configPath   string
	verbosity    int
	inputs       []string
	config       tszip.Config
}

// Main runs one tool invocation and returns its exit code. When
// decompressOnly is set the tool always decompresses, regardless of
// flags, matching the tsunzip entry point.
func Main(name string, args []string, decompressOnly bool) int {
	opts, err := parse(name, args)
	if err == flag.ErrHelp {
		return 0
	}
	if err == nil {
		err = run(opts, decompressOnly)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		return 1
	}
	return 0
}

func parse(name string, args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.BoolVar(&opts.decompress, "d", false, "decompress")
	fs.BoolVar(&opts.decompress, "decompress", false, "decompress")
	fs.BoolVar(&opts.list, "l", false, "list archive contents")
	fs.BoolVar(&opts.list, "list", false, "list archive contents")
	fs.StringVar(&opts.suffix, "S", "", "archive file name suffix")
	fs.StringVar(&opts.suffix, "suffix", "", "archive file name suffix")
	fs.BoolVar(&opts.keep, "k", false, "keep input files")
	fs.BoolVar(&opts.keep, "keep", false, "keep input files")
	fs.BoolVar(&opts.force, "f", false, "overwrite existing output files")
	fs.BoolVar(&opts.force, "force", false, "overwrite existing output files")
	fs.BoolVar(&opts.stdout, "c", false, "write to standard output")
	fs.BoolVar(&opts.stdout, "stdout", false, "write to standard output")
	fs.BoolVar(&opts.variantsOnly, "variants-only", false, "lossy compression preserving variant data only")
	fs.StringVar(&opts.configPath, "config", "", "config file path")
	var verbosity countFlag
	fs.Var(&verbosity, "v", "increase verbosity (repeatable)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.verbosity = int(verbosity)
	opts.inputs = fs.Args()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	opts.config = cfg
	if opts.suffix == "" {
		opts.suffix = cfg.Suffix
	}
	return opts, nil
}

// loadConfig reads the named config file, falling back to .tszip.yaml in
// the working directory when none is given.
func loadConfig(path string) (tszip.Config, error) {
	if path == "" {
		if _, err := os.Stat(".tszip.yaml"); err != nil {
			return tszip.DefaultConfig(), nil
		}
		path = ".tszip.yaml"
	}
	return tszip.LoadConfig(path)
}

func setupLogging(verbosity int) {
	level := slog.LevelWarn
	switch {
	case verbosity >= 2:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(opts *options, decompressOnly bool) error {
	setupLogging(opts.verbosity)

	if len(opts.inputs) == 0 {
		return usageErrorf("no input files")
	}
	if opts.stdout && len(opts.inputs) > 1 {
		return usageErrorf("cannot use --stdout with more than one input file")
	}

	for _, input := range opts.inputs {
		var err error
		switch {
		case opts.list:
			err = list(input, opts)
		case opts.decompress || decompressOnly:
			err = decompress(input, opts)
		default:
			err = compress(input, opts)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// localize fetches a remote input to a temporary file. The second return
// is a cleanup function; for local paths it is a no-op.
func localize(input string) (string, func(), error) {
	if !objstore.IsRemote(input) {
		return input, func() {}, nil
	}
	slog.Info("fetching remote input", "uri", input)
	path, err := objstore.Fetch(context.Background(), input)
	if err != nil {
		return "", nil, err
	}
	return path, func() { os.Remove(path) }, nil
}

// publish places a local file at the output location, which may be an
// S3 URI.
func publish(local, output string) error {
	if !objstore.IsRemote(output) {
		return nil
	}
	slog.Info("uploading output", "uri", output)
	if err := objstore.Push(context.Background(), local, output); err != nil {
		return err
	}
	return os.Remove(local)
}

// checkOutput rejects an existing output unless --force was given.
func checkOutput(output string, opts *options) error {
	if opts.force || objstore.IsRemote(output) {
		return nil
	}
	if _, err := os.Stat(output); err == nil {
		return usageErrorf("output file %q exists, use --force to overwrite", output)
	}
	return nil
}

func compress(input string, opts *options) error {
	local, cleanup, err := localize(input)
	if err != nil {
		return err
	}
	defer cleanup()

	ts, err := tszip.Load(local)
	if err != nil {
		return err
	}
	encOpts := opts.config.Options(opts.variantsOnly)

	if opts.stdout {
		return tszip.CompressTo(ts, os.Stdout, encOpts)
	}

	output := input + opts.suffix
	if err := checkOutput(output, opts); err != nil {
		return err
	}
	dest := output
	if objstore.IsRemote(output) {
		tmp, err := os.CreateTemp("", ".tszip-upload-*")
		if err != nil {
			return err
		}
		tmp.Close()
		dest = tmp.Name()
	}
	if err := tszip.Compress(ts, dest, encOpts); err != nil {
		if dest != output {
			os.Remove(dest)
		}
		return err
	}
	if err := publish(dest, output); err != nil {
		return err
	}
	if !opts.keep && !objstore.IsRemote(input) {
		return os.Remove(input)
	}
	return nil
}

func decompress(input string, opts *options) error {
	if !strings.HasSuffix(input, opts.suffix) {
		return usageErrorf("input %q does not end with suffix %q", input, opts.suffix)
	}
	output := strings.TrimSuffix(input, opts.suffix)

	local, cleanup, err := localize(input)
	if err != nil {
		return err
	}
	defer cleanup()

	ts, err := tszip.Decompress(local)
	if err != nil {
		return err
	}

	if opts.stdout {
		return ts.Dump(os.Stdout)
	}
	if err := checkOutput(output, opts); err != nil {
		return err
	}
	dest := output
	if objstore.IsRemote(output) {
		tmp, err := os.CreateTemp("", ".tszip-upload-*")
		if err != nil {
			return err
		}
		tmp.Close()
		dest = tmp.Name()
	}
	if err := ts.DumpFile(dest); err != nil {
		if dest != output {
			os.Remove(dest)
		}
		return err
	}
	if err := publish(dest, output); err != nil {
		return err
	}
	if !opts.keep && !objstore.IsRemote(input) {
		return os.Remove(input)
	}
	return nil
}

func list(input string, opts *options) error {
	local, cleanup, err := localize(input)
	if err != nil {
		return err
	}
	defer cleanup()

	s, err := tszip.Summarize(local)
	if err != nil {
		return err
	}
	s.Path = input
	return s.Render(os.Stdout, opts.verbosity)
}
