package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/vaultkey/pkg/blockcipher"
	"github.com/saylorsolutions/vaultkey/pkg/composite"
	"github.com/saylorsolutions/vaultkey/pkg/keystream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0600))
	return path
}

func TestNew(t *testing.T) {
	conf := New()
	assert.Equal(t, composite.DefaultRounds, conf.Rounds)
	require.NoError(t, conf.Validate())

	eng, err := conf.Engine()
	require.NoError(t, err)
	assert.Equal(t, blockcipher.AESID, eng.ID())
	alg, err := conf.Algorithm()
	require.NoError(t, err)
	assert.Equal(t, keystream.Salsa20, alg)
	level, err := conf.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
rounds: 1000
cipher: twofish
keystream: chacha20
log_level: debug
bench_duration: 250ms
`)
	conf := New()
	require.NoError(t, conf.Load(path))
	assert.Equal(t, uint64(1000), conf.Rounds)
	assert.Equal(t, "twofish", conf.Cipher)
	assert.Equal(t, "chacha20", conf.Keystream)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.False(t, conf.LogJSON)
	assert.Equal(t, 250*time.Millisecond, conf.BenchDuration)
	assert.NoError(t, conf.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "rounds: 1000\ncipher: twofish\n")
	t.Setenv("VAULTKEY_ROUNDS", "5000")
	t.Setenv("VAULTKEY_LOG_JSON", "true")
	t.Setenv("VAULTKEY_BENCH_DURATION", "2s")

	conf := New()
	require.NoError(t, conf.Load(path))
	assert.Equal(t, uint64(5000), conf.Rounds)
	assert.Equal(t, "twofish", conf.Cipher, "values without overrides should be kept")
	assert.True(t, conf.LogJSON)
	assert.Equal(t, 2*time.Second, conf.BenchDuration)
}

func TestLoad_Neg(t *testing.T) {
	conf := New()
	assert.Error(t, conf.Load(filepath.Join(t.TempDir(), "missing.yaml")))

	conf = New()
	assert.ErrorIs(t, conf.Load(writeConfig(t, "rounds: [not a number")), ErrInvalidConfig)

	t.Setenv("VAULTKEY_ROUNDS", "lots")
	conf = New()
	assert.ErrorIs(t, conf.Load(writeConfig(t, "")), ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(c *Config){
		"ZeroRounds":     func(c *Config) { c.Rounds = 0 },
		"BadCipher":      func(c *Config) { c.Cipher = "des" },
		"BadKeystream":   func(c *Config) { c.Keystream = "null" },
		"BadLevel":       func(c *Config) { c.LogLevel = "loud" },
		"NoBenchmarking": func(c *Config) { c.BenchDuration = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			conf := New()
			mutate(conf)
			assert.ErrorIs(t, conf.Validate(), ErrInvalidConfig)
		})
	}
}
