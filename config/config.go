// Package config holds the settings used to stand up an early allocator
// over a mapped region. It can be populated from YAML and overridden by flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/earlyalloc/internal/format"
)

// Config is the serialisable allocator setup. The zero value is not
// usable; start from Default.
type Config struct {
	// PageSize is the page granularity; must be a power of two.
	PageSize Size `yaml:"page_size"`

	// RegionSize is how many bytes to map for the allocator.
	RegionSize Size `yaml:"region_size"`

	// RegionOffset shifts the start handed to Init past the mapping base, so
	// Init has to round it up to a page boundary.
	RegionOffset Size `yaml:"region_offset"`

	Log LogConfig `yaml:"log"`
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		PageSize:   4096,
		RegionSize: 1 << 20,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// maxAddr is the largest value a uintptr holds on this target.
const maxAddr = uint64(^uintptr(0))

// validPageSize reports whether s is a power of two no larger than limit.
// The width check comes first so a 64-bit size is never truncated before
// its bits are inspected.
func validPageSize(s Size, limit uint64) bool {
	return uint64(s) <= limit && format.IsPowerOfTwo(uintptr(s))
}

// Validate returns an aggregated error describing invalid settings, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if !validPageSize(c.PageSize, maxAddr) {
		errs = append(errs, fmt.Errorf("page_size %d must be a power of two that fits an address", c.PageSize))
	}
	if c.RegionSize == 0 {
		errs = append(errs, fmt.Errorf("region_size must be > 0"))
	} else if uint64(c.RegionSize) > maxAddr {
		errs = append(errs, fmt.Errorf("region_size %d does not fit an address", c.RegionSize))
	}
	if c.RegionOffset >= c.RegionSize && c.RegionSize != 0 {
		errs = append(errs, fmt.Errorf("region_offset %d must be < region_size %d", c.RegionOffset, c.RegionSize))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", l.Level, err)
	}
	return level, nil
}
