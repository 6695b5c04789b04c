package blockcipher

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/twofish"
)

func testKeyIV(t *testing.T) ([]byte, []byte) {
	key := make([]byte, KeySize)
	iv := make([]byte, BlockSize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	_, err = rand.Read(iv)
	require.NoError(t, err)
	return key, iv
}

func TestLookup(t *testing.T) {
	eng, err := Lookup(AESID)
	require.NoError(t, err)
	assert.Equal(t, "aes", eng.Name())
	assert.Equal(t, KeySize, eng.KeySize())
	assert.Equal(t, BlockSize, eng.BlockSize())

	eng, err = Lookup(TwofishID)
	require.NoError(t, err)
	assert.Equal(t, "twofish", eng.Name())

	eng, err = LookupName("twofish")
	require.NoError(t, err)
	assert.Equal(t, TwofishID, eng.ID())

	_, err = Lookup(uuid.New())
	assert.ErrorIs(t, err, ErrUnsupportedCipher)
	_, err = LookupName("des")
	assert.ErrorIs(t, err, ErrUnsupportedCipher)
}

func TestPKCS7(t *testing.T) {
	tests := map[string]struct {
		input   []byte
		padding byte
	}{
		"Empty":   {input: []byte{}, padding: 16},
		"Partial": {input: []byte("hello"), padding: 11},
		"OneShy":  {input: bytes.Repeat([]byte{'a'}, 15), padding: 1},
		"Whole":   {input: bytes.Repeat([]byte{'a'}, 16), padding: 16},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			padded := PadPKCS7(tc.input, BlockSize)
			assert.Equal(t, 0, len(padded)%BlockSize)
			assert.Equal(t, tc.padding, padded[len(padded)-1])
			unpadded, err := UnpadPKCS7(padded, BlockSize)
			require.NoError(t, err)
			assert.Equal(t, tc.input, unpadded)
		})
	}
}

func TestUnpadPKCS7_Invalid(t *testing.T) {
	tests := map[string][]byte{
		"Empty":        {},
		"NotMultiple":  bytes.Repeat([]byte{1}, 15),
		"ZeroPad":      append(bytes.Repeat([]byte{'a'}, 15), 0),
		"PadTooLong":   append(bytes.Repeat([]byte{'a'}, 15), 17),
		"MismatchPads": append(bytes.Repeat([]byte{'a'}, 13), 2, 3, 3),
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnpadPKCS7(input, BlockSize)
			assert.ErrorIs(t, err, ErrInvalidPadding)
		})
	}
}

func TestStream_RoundTrip(t *testing.T) {
	key, iv := testKeyIV(t)
	sizes := []int{0, 1, 15, 16, 17, 255, 4096, chunkBlocks * BlockSize, chunkBlocks*BlockSize + 3, 3 * chunkBlocks * BlockSize}
	for _, eng := range []Engine{AES, Twofish} {
		for _, size := range sizes {
			plain := make([]byte, size)
			_, err := rand.Read(plain)
			require.NoError(t, err)

			var enc bytes.Buffer
			w, err := NewEncryptWriter(&enc, eng, key, iv)
			require.NoError(t, err)
			// Odd write sizes shouldn't matter.
			for i := 0; i < len(plain); i += 7 {
				end := min(i+7, len(plain))
				n, err := w.Write(plain[i:end])
				require.NoError(t, err)
				assert.Equal(t, end-i, n)
			}
			require.NoError(t, w.Close())
			assert.Equal(t, (size/BlockSize+1)*BlockSize, enc.Len(), "%s: %d bytes", eng.Name(), size)

			r, err := NewDecryptReader(&enc, eng, key, iv)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, plain, got, "%s: %d bytes", eng.Name(), size)
		}
	}
}

func TestEncryptStream_MatchesCBC(t *testing.T) {
	key, iv := testKeyIV(t)
	plain := []byte("The quick brown fox jumps over the lazy dog")

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	expected := PadPKCS7(plain, BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(expected, expected)

	var buf bytes.Buffer
	n, err := EncryptStream(&buf, bytes.NewReader(plain), key, iv)
	require.NoError(t, err)
	assert.Equal(t, int64(len(expected)), n)
	assert.Equal(t, expected, buf.Bytes())

	var out bytes.Buffer
	n, err = DecryptStream(&out, &buf, key, iv)
	require.NoError(t, err)
	assert.Equal(t, int64(len(plain)), n)
	assert.Equal(t, plain, out.Bytes())
}

func TestStream_Arguments(t *testing.T) {
	key, iv := testKeyIV(t)
	var buf bytes.Buffer

	_, err := NewEncryptWriter(&buf, AES, key[:16], iv)
	assert.ErrorIs(t, err, ErrInvalidKeySize)
	_, err = NewEncryptWriter(&buf, AES, key, iv[:8])
	assert.ErrorIs(t, err, ErrInvalidIVSize)
	_, err = NewEncryptWriter(nil, AES, key, iv)
	assert.ErrorIs(t, err, ErrNotWritable)
	_, err = NewDecryptReader(nil, AES, key, iv)
	assert.ErrorIs(t, err, ErrNotReadable)
	_, err = NewDecryptReader(&buf, Twofish, append(key, 0), iv)
	assert.ErrorIs(t, err, ErrInvalidKeySize)
	_, err = EncryptStream(nil, &buf, key, iv)
	assert.ErrorIs(t, err, ErrNotWritable)
	_, err = EncryptStream(&buf, nil, key, iv)
	assert.ErrorIs(t, err, ErrNotReadable)
	_, err = DecryptStream(nil, &buf, key, iv)
	assert.ErrorIs(t, err, ErrNotWritable)
}

func TestEncryptWriter_WriteAfterClose(t *testing.T) {
	key, iv := testKeyIV(t)
	var buf bytes.Buffer
	w, err := NewEncryptWriter(&buf, nil, key, iv)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "Close should be idempotent")
	assert.Equal(t, BlockSize, buf.Len())
	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, ErrWriterClosed)
}

type failingWriter struct {
	writes int
}

func (f *failingWriter) Write([]byte) (int, error) {
	f.writes++
	return 0, io.ErrClosedPipe
}

func TestEncryptWriter_FailedWriteSticks(t *testing.T) {
	key, iv := testKeyIV(t)
	target := new(failingWriter)
	w, err := NewEncryptWriter(target, nil, key, iv)
	require.NoError(t, err)

	_, err = w.Write(make([]byte, 2*BlockSize))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	_, err = w.Write(make([]byte, BlockSize))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.ErrorIs(t, w.Close(), io.ErrClosedPipe)
	assert.ErrorIs(t, w.Close(), io.ErrClosedPipe, "Close should keep reporting the failure")
	assert.Equal(t, 1, target.writes, "Nothing more should be written after a failure")
}

func TestDecryptReader_Invalid(t *testing.T) {
	key, iv := testKeyIV(t)

	t.Run("Empty", func(t *testing.T) {
		r, err := NewDecryptReader(bytes.NewReader(nil), AES, key, iv)
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("Truncated", func(t *testing.T) {
		r, err := NewDecryptReader(bytes.NewReader(make([]byte, 17)), AES, key, iv)
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("BadPadding", func(t *testing.T) {
		// A final plaintext byte of zero is never valid padding.
		block, err := aes.NewCipher(key)
		require.NoError(t, err)
		ciphertext := make([]byte, 2*BlockSize)
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, ciphertext)

		r, err := NewDecryptReader(bytes.NewReader(ciphertext), AES, key, iv)
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		assert.ErrorIs(t, err, ErrInvalidPadding)
	})
}

func TestPermutation(t *testing.T) {
	key, _ := testKeyIV(t)
	buf := make([]byte, PermutationSize)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	orig := bytes.Clone(buf)

	for _, tc := range []struct {
		eng   Engine
		block func([]byte) (cipher.Block, error)
	}{
		{AES, aes.NewCipher},
		{Twofish, func(k []byte) (cipher.Block, error) { return twofish.NewCipher(k) }},
	} {
		work := bytes.Clone(orig)
		p, err := NewPermutation(tc.eng, key)
		require.NoError(t, err)
		p.Apply(work)

		ref, err := tc.block(key)
		require.NoError(t, err)
		expected := make([]byte, PermutationSize)
		ref.Encrypt(expected[:16], orig[:16])
		ref.Encrypt(expected[16:], orig[16:])
		assert.Equal(t, expected, work, tc.eng.Name())
	}

	_, err = NewPermutation(AES, key[:31])
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	p, err := NewPermutation(nil, key)
	require.NoError(t, err)
	assert.Panics(t, func() { p.Apply(make([]byte, 16)) })
}
