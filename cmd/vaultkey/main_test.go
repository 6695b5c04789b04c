package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/vaultkey/cmd/internal/config"
	"github.com/saylorsolutions/vaultkey/pkg/composite"
	"github.com/saylorsolutions/vaultkey/pkg/entropy"
	"github.com/saylorsolutions/vaultkey/pkg/userkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) *env {
	t.Helper()
	pool, err := entropy.New()
	require.NoError(t, err)
	conf := config.New()
	conf.Rounds = 10
	return &env{conf: conf, log: zerolog.Nop(), pool: pool}
}

func TestDeriveParams(t *testing.T) {
	e := testEnv(t)
	seed := bytes.Repeat([]byte{7}, composite.KeySize)
	params, err := deriveParams(e, "", hex.EncodeToString(seed), "")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), params.Rounds())
	assert.Equal(t, seed, params.TransformSeed())
	assert.NotEqual(t, seed, params.MasterSeed())

	encoded, err := params.MarshalBinary()
	require.NoError(t, err)
	again, err := deriveParams(e, hex.EncodeToString(encoded), "", "")
	require.NoError(t, err)
	assert.Equal(t, params.TransformSeed(), again.TransformSeed())
	assert.Equal(t, params.MasterSeed(), again.MasterSeed())

	_, err = deriveParams(e, "zz", "", "")
	assert.Error(t, err)
	_, err = deriveParams(e, "", "abcd", "")
	assert.ErrorIs(t, err, composite.ErrInvalidArgument)
}

func TestKeyFlags_CompositeKey(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "test.keyx")
	f, err := os.Create(keyPath)
	require.NoError(t, err)
	require.NoError(t, userkey.GenerateKeyFile(f, testEnv(t).pool))
	require.NoError(t, f.Close())

	t.Setenv("VAULTKEY_TEST_PASSWORD", "from the environment")
	flags := &keyFlags{passwordEnv: "VAULTKEY_TEST_PASSWORD", keyFiles: []string{keyPath}}
	key, cleanup, err := flags.compositeKey(zerolog.Nop())
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, 2, key.Len())
	assert.Equal(t, "password", key.Sources()[0].Name())
	assert.Equal(t, "keyfile", key.Sources()[1].Name())

	same, cleanupSame, err := (&keyFlags{password: "from the environment", keyFiles: []string{keyPath}}).compositeKey(zerolog.Nop())
	require.NoError(t, err)
	defer cleanupSame()
	eq, err := key.EqualValue(same)
	require.NoError(t, err)
	assert.True(t, eq)

	_, _, err = (&keyFlags{}).compositeKey(zerolog.Nop())
	assert.Error(t, err)
	_, _, err = (&keyFlags{passwordEnv: "VAULTKEY_TEST_UNSET_VARIABLE"}).compositeKey(zerolog.Nop())
	assert.Error(t, err)
	_, _, err = (&keyFlags{keyFiles: []string{filepath.Join(dir, "missing")}}).compositeKey(zerolog.Nop())
	assert.ErrorIs(t, err, userkey.ErrUnreadableKeyFile)
}

func TestCommonFlags_Parse(t *testing.T) {
	t.Setenv("VAULTKEY_ROUNDS", "500")
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("cipher: twofish\nrounds: 100\n"), 0600))

	flags, common := newFlagSet("derive", "derive [FLAGS]")
	_, e, err := common.parse(context.Background(), flags, []string{"--config", configPath, "--log-level", "error"})
	require.NoError(t, err)
	assert.Equal(t, "twofish", e.conf.Cipher)
	assert.Equal(t, uint64(500), e.conf.Rounds, "environment should override the file")
	assert.Equal(t, "error", e.conf.LogLevel)

	flags, common = newFlagSet("derive", "derive [FLAGS]")
	_, e, err = common.parse(context.Background(), flags, []string{"--config", configPath, "--log-level", "error", "--rounds", "7"})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), e.conf.Rounds, "flags should override the environment")

	flags, common = newFlagSet("derive", "derive [FLAGS]")
	_, _, err = common.parse(context.Background(), flags, []string{"--config", configPath, "--cipher", "des"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
