package envelope

import (
	"bytes"
	"context"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/saylorsolutions/vaultkey/pkg/blockcipher"
	"github.com/saylorsolutions/vaultkey/pkg/composite"
	"github.com/saylorsolutions/vaultkey/pkg/userkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passwordKey(t *testing.T, password string) *composite.Key {
	t.Helper()
	k, err := composite.New()
	require.NoError(t, err)
	require.NoError(t, k.Add(userkey.NewPassword(password)))
	return k
}

func seal(t *testing.T, plain []byte, eng blockcipher.Engine) []byte {
	t.Helper()
	params, err := composite.NewParams(composite.SetRounds(100))
	require.NoError(t, err)
	var buf bytes.Buffer
	err = Seal(context.Background(), &buf, bytes.NewReader(plain), passwordKey(t, "open sesame"), eng, params, rand.Reader)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestSealOpen(t *testing.T) {
	plain := []byte(strings.Repeat("all work and no play makes jack a dull boy\n", 200))
	for _, eng := range []blockcipher.Engine{blockcipher.AES, blockcipher.Twofish} {
		t.Run(eng.Name(), func(t *testing.T) {
			sealed := seal(t, plain, eng)
			assert.True(t, bytes.HasPrefix(sealed, magic[:]))
			assert.Less(t, len(sealed), len(plain), "repetitive input should compress")

			h, err := ReadHeader(bytes.NewReader(sealed))
			require.NoError(t, err)
			assert.Equal(t, eng.ID(), h.Cipher)
			assert.Equal(t, uint64(100), h.Params.Rounds())

			var out bytes.Buffer
			require.NoError(t, Open(context.Background(), &out, bytes.NewReader(sealed), passwordKey(t, "open sesame")))
			assert.Equal(t, plain, out.Bytes())
		})
	}
}

func TestSeal_DefaultCipher(t *testing.T) {
	plain := []byte("no cipher given")
	sealed := seal(t, plain, nil)

	h, err := ReadHeader(bytes.NewReader(sealed))
	require.NoError(t, err)
	assert.Equal(t, blockcipher.AESID, h.Cipher)

	var out bytes.Buffer
	require.NoError(t, Open(context.Background(), &out, bytes.NewReader(sealed), passwordKey(t, "open sesame")))
	assert.Equal(t, plain, out.Bytes())
}

func TestOpen_WrongKey(t *testing.T) {
	sealed := seal(t, []byte("secret stuff"), blockcipher.AES)
	var out bytes.Buffer
	err := Open(context.Background(), &out, bytes.NewReader(sealed), passwordKey(t, "guess"))
	assert.ErrorIs(t, err, ErrWrongKey)
	assert.Empty(t, out.Bytes())
}

func TestReadHeader_Neg(t *testing.T) {
	_, err := ReadHeader(bytes.NewReader([]byte("nope")))
	assert.ErrorIs(t, err, ErrNotEnvelope)
	_, err = ReadHeader(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrNotEnvelope)

	sealed := seal(t, []byte("x"), blockcipher.AES)
	bumped := bytes.Clone(sealed)
	bumped[len(magic)] = version + 1
	_, err = ReadHeader(bytes.NewReader(bumped))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = ReadHeader(bytes.NewReader(sealed[:len(magic)+1+8]))
	assert.ErrorIs(t, err, ErrNotEnvelope)
}
