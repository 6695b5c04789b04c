package keystream

import (
	"crypto/rc4"

	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

const (
	arcFourMaxKey  = 256
	arcFourDiscard = 512
)

type arcFour struct {
	c *rc4.Cipher
}

func newArcFour(key []byte) (*arcFour, error) {
	// Bytes past 256 can't affect the key schedule.
	if len(key) > arcFourMaxKey {
		key = key[:arcFourMaxKey]
	}
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, err
	}
	discard := make([]byte, arcFourDiscard)
	c.XORKeyStream(discard, discard)
	protect.Wipe(discard)
	return &arcFour{c: c}, nil
}

func (a *arcFour) keystream(dst []byte) {
	clear(dst)
	a.c.XORKeyStream(dst, dst)
}

func (a *arcFour) wipe() {
	a.c.Reset()
}
