// Package config loads configuration for the save tools.
//
// Configuration comes from a single YAML file named by the --config flag
// or, failing that, the BL2SAVE_CONFIG environment variable. There is no
// search path: with neither set, Default is used unchanged.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Oberacda/Borderlands2SaveEditor/save"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "BL2SAVE_CONFIG"

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// Config is the configuration shared by the command-line tools.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Limits LimitsConfig `yaml:"limits"`
	Output OutputConfig `yaml:"output"`

	// Workers bounds how many files are decoded at once. Zero means
	// one per CPU.
	Workers int `yaml:"workers"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
}

// LimitsConfig bounds the sizes a save file may declare.
type LimitsConfig struct {
	MaxFileSize    int64 `yaml:"max_file_size"`
	MaxBlockSize   int   `yaml:"max_block_size"`
	MaxPayloadSize int   `yaml:"max_payload_size"`
}

// OutputConfig configures where and how decoded records are written.
type OutputConfig struct {
	Format string `yaml:"format"`

	// Directory receives one file per input. Empty writes to stdout.
	Directory string `yaml:"directory"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Limits: LimitsConfig{
			MaxFileSize:    save.DefaultLimits.MaxFileSize,
			MaxBlockSize:   save.DefaultLimits.MaxBlockSize,
			MaxPayloadSize: save.DefaultLimits.MaxPayloadSize,
		},
		Output: OutputConfig{Format: FormatJSON},
	}
}

// Load loads the file named by path, or by BL2SAVE_CONFIG when path is
// empty. With neither set it returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads and validates the YAML file at path. Keys absent from
// the file keep their Default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Output.Format {
	case FormatJSON, FormatYAML, FormatCBOR:
	default:
		errs = append(errs, fmt.Errorf("output.format: unknown format %q (want json, yaml or cbor)", c.Output.Format))
	}
	if c.Limits.MaxFileSize < 0 {
		errs = append(errs, errors.New("limits.max_file_size must not be negative"))
	}
	if c.Limits.MaxBlockSize < 0 {
		errs = append(errs, errors.New("limits.max_block_size must not be negative"))
	}
	if c.Limits.MaxPayloadSize < 0 {
		errs = append(errs, errors.New("limits.max_payload_size must not be negative"))
	}
	if c.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}
	return errors.Join(errs...)
}

// SaveLimits converts the limits section for save.Decoder.
func (c *Config) SaveLimits() save.Limits {
	return save.Limits{
		MaxFileSize:    c.Limits.MaxFileSize,
		MaxBlockSize:   c.Limits.MaxBlockSize,
		MaxPayloadSize: c.Limits.MaxPayloadSize,
	}
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level: unknown level %q", name)
	}
}

// Logger builds the text logger the tools write to w, normally stderr.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
