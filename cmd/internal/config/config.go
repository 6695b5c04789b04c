package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/rs/zerolog"
	"github.com/saylorsolutions/vaultkey/pkg/blockcipher"
	"github.com/saylorsolutions/vaultkey/pkg/composite"
	"github.com/saylorsolutions/vaultkey/pkg/keystream"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCipher        = "aes"
	DefaultKeystream     = "salsa20"
	DefaultLogLevel      = "info"
	DefaultBenchDuration = time.Second
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the CLI settings.
// Values are layered: defaults, then the YAML file, then VAULTKEY_* environment variables, then flags.
type Config struct {
	Rounds        uint64        `yaml:"rounds" env:"VAULTKEY_ROUNDS"`
	Cipher        string        `yaml:"cipher" env:"VAULTKEY_CIPHER"`
	Keystream     string        `yaml:"keystream" env:"VAULTKEY_KEYSTREAM"`
	LogLevel      string        `yaml:"log_level" env:"VAULTKEY_LOG_LEVEL"`
	LogJSON       bool          `yaml:"log_json" env:"VAULTKEY_LOG_JSON"`
	BenchDuration time.Duration `yaml:"bench_duration" env:"VAULTKEY_BENCH_DURATION"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Rounds:        composite.DefaultRounds,
		Cipher:        DefaultCipher,
		Keystream:     DefaultKeystream,
		LogLevel:      DefaultLogLevel,
		BenchDuration: DefaultBenchDuration,
	}
}

// DefaultPath is where the config file is read from when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vaultkey", "config.yaml")
}

// Load reads the YAML file at path, then applies environment overrides.
// An empty path means DefaultPath, which doesn't need to exist. An explicit path must exist.
func (c *Config) Load(path string) error {
	if err := c.loadYaml(path); err != nil {
		return err
	}
	if err := c.loadEnv(); err != nil {
		return err
	}
	return nil
}

func (c *Config) loadYaml(path string) error {
	optional := len(path) == 0
	if optional {
		path = DefaultPath()
		if len(path) == 0 {
			return nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: failed to parse '%s': %w", ErrInvalidConfig, path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks that every setting can be used.
func (c *Config) Validate() error {
	if c.Rounds == 0 {
		return fmt.Errorf("%w: rounds must be at least 1", ErrInvalidConfig)
	}
	if c.BenchDuration <= 0 {
		return fmt.Errorf("%w: bench duration must be positive", ErrInvalidConfig)
	}
	if _, err := c.Engine(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Algorithm(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) Engine() (blockcipher.Engine, error) {
	return blockcipher.LookupName(c.Cipher)
}

func (c *Config) Algorithm() (keystream.Algorithm, error) {
	return keystream.ParseAlgorithm(c.Keystream)
}

func (c *Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(c.LogLevel)
}

// Logger builds the CLI logger, which always writes to stderr so it doesn't mix with command output.
func (c *Config) Logger() zerolog.Logger {
	level, err := c.Level()
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.LogJSON {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
}
