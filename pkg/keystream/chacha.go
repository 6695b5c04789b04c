package keystream

import (
	"crypto/sha512"

	"github.com/saylorsolutions/vaultkey/pkg/protect"
	"golang.org/x/crypto/chacha20"
)

type chaCha struct {
	c *chacha20.Cipher
}

func newChaCha20(key []byte) (*chaCha, error) {
	h := sha512.Sum512(key)
	defer protect.Wipe(h[:])
	c, err := chacha20.NewUnauthenticatedCipher(h[:chacha20.KeySize], h[chacha20.KeySize:chacha20.KeySize+chacha20.NonceSize])
	if err != nil {
		return nil, err
	}
	return &chaCha{c: c}, nil
}

func (c *chaCha) keystream(dst []byte) {
	clear(dst)
	c.c.XORKeyStream(dst, dst)
}

func (c *chaCha) wipe() {
	// The cipher has no exported reset, so replace it with one keyed by zeroes.
	var zero [chacha20.KeySize]byte
	c.c, _ = chacha20.NewUnauthenticatedCipher(zero[:], zero[:chacha20.NonceSize])
}
