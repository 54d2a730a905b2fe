// Package config loads shard store settings from a YAML file.
//
// The file is named explicitly or by the SHARD_CONFIG environment variable.
// There is no discovery: without either, Load fails.
//
// Example file:
//
//	capabilities: [cbor, zstd]
//	digest: blake3
//	log:
//	  level: debug
//	  development: true
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/gophersatwork/shard"
	"github.com/gophersatwork/shard/codec"
)

// EnvVar names the environment variable Load reads the config path from.
const EnvVar = "SHARD_CONFIG"

// DigestNone disables payload digests.
const DigestNone = "none"

// Config holds the settings used to build a shard.Store.
type Config struct {
	// Capabilities lists the optional codec features to enable. Nil
	// enables every capability; an empty list enables none.
	Capabilities []codec.Capability `yaml:"capabilities"`

	// Digest is the payload digest algorithm, or "none".
	Digest string `yaml:"digest"`

	// Log configures the store logger.
	Log LogConfig `yaml:"log"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `yaml:"level"`

	// Development switches to zap's human-readable development encoder.
	Development bool `yaml:"development"`
}

// Default returns the configuration used when a file leaves fields unset.
func Default() *Config {
	return &Config{
		Digest: shard.DigestXXH64,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads the file named by SHARD_CONFIG from the OS filesystem.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; set it to the path of a shard config file", EnvVar)
	}
	return LoadFile(afero.NewOsFs(), path)
}

// LoadFile loads and validates the config file at path. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func LoadFile(fsys afero.Fs, path string) (*Config, error) {
	f, err := fsys.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: config %s", shard.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: config %s: %v", shard.ErrMalformed, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	known := codec.AllCapabilities()
	for _, capability := range c.Capabilities {
		if !slices.Contains(known, capability) {
			errs = append(errs, fmt.Errorf("%w: capabilities: unknown capability %q", shard.ErrUnsupported, capability))
		}
	}

	if c.Digest != DigestNone && !slices.Contains(shard.DigestAlgorithms(), c.Digest) {
		errs = append(errs, fmt.Errorf("%w: digest must be one of %s or %q, got %q",
			shard.ErrUnsupported, strings.Join(shard.DigestAlgorithms(), ", "), DigestNone, c.Digest))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: log.level: %v", shard.ErrMalformed, err))
	}

	return errors.Join(errs...)
}

// Registry returns a codec registry with the configured capabilities
// enabled.
func (c *Config) Registry() *codec.Registry {
	if c.Capabilities == nil {
		return codec.NewRegistry(codec.AllCapabilities()...)
	}
	return codec.NewRegistry(c.Capabilities...)
}

// Logger builds the configured zap logger.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level: %v", shard.ErrMalformed, err)
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Options returns the store options for this configuration. Options
// passed to shard.New after these override them.
func (c *Config) Options() ([]shard.Option, error) {
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	digest := c.Digest
	if digest == DigestNone {
		digest = ""
	}

	return []shard.Option{
		shard.WithRegistry(c.Registry()),
		shard.WithDigest(digest),
		shard.WithLogger(logger),
	}, nil
}

// NewStore builds a store from the configuration plus extra options, for
// example shard.WithFs.
func (c *Config) NewStore(extra ...shard.Option) (*shard.Store, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return shard.New(append(opts, extra...)...)
}
