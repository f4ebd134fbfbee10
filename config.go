package tszip

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tszip-db/tszip/internal/carray"
)

// DefaultSuffix is the archive file name suffix used by the command line
// tools.
const DefaultSuffix = ".tsz"

// Options control one compress call.
type Options struct {
	// VariantsOnly enables the lossy transform: topology is reduced to the
	// sites and node times are reduced to ranks before encoding.
	VariantsOnly bool

	// Compressor selects the per-column chunk codec: "zstd" (default) or
	// "snappy".
	Compressor string

	// Level is the compression level for codecs that support one. Zero
	// means the codec default.
	Level int
}

// DefaultOptions returns the options used when Compress receives nil.
func DefaultOptions() *Options {
	return &Options{Compressor: string(carray.Zstd)}
}

func (o *Options) compressor() carray.Compressor {
	if o == nil || o.Compressor == "" {
		return carray.Zstd
	}
	return carray.Compressor(o.Compressor)
}

func (o *Options) validate() error {
	switch o.compressor() {
	case carray.Zstd, carray.Snappy, carray.None:
		return nil
	}
	return fmt.Errorf("tszip: unknown compressor %q", o.Compressor)
}

// Config holds the command line tools' settings, loadable from a YAML
// file.
type Config struct {
	// Suffix is appended to compressed file names. Default ".tsz".
	Suffix string `yaml:"suffix"`

	// Compressor selects the per-column chunk codec.
	Compressor string `yaml:"compressor"`

	// Level is the compression level.
	Level int `yaml:"level"`
}

// DefaultConfig returns the built-in command line settings.
func DefaultConfig() Config {
	return Config{Suffix: DefaultSuffix, Compressor: string(carray.Zstd)}
}

// LoadConfig reads a YAML config file, filling unset fields with defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("tszip: parsing config %s: %w", path, err)
	}
	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSuffix
	}
	return cfg, nil
}

// Options derives compress options from the config.
func (c Config) Options(variantsOnly bool) *Options {
	return &Options{
		VariantsOnly: variantsOnly,
		Compressor:   c.Compressor,
		Level:        c.Level,
	}
}
