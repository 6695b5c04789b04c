package userkey

import (
	"crypto/sha256"
	"errors"

	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

// KeySize is the size of the key data every Source produces.
const KeySize = sha256.Size

var (
	ErrInvalidArgument = errors.New("invalid argument")
)

// Source is one factor of a composite key.
type Source interface {
	// Name describes the source for display. It never contains secret data.
	Name() string
	// KeyData returns the 32 bytes this source contributes, or nil once the source is destroyed.
	KeyData() *protect.Buffer
	Destroy()
}

var (
	_ Source = (*Password)(nil)
	_ Source = (*KeyFile)(nil)
	_ Source = (*Custom)(nil)
)

func hashed(data []byte) *protect.Buffer {
	sum := sha256.Sum256(data)
	defer protect.Wipe(sum[:])
	return protect.New(sum[:])
}
