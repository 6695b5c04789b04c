package userkey

import (
	"fmt"

	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

// Custom is a Source supplied by a named key provider.
type Custom struct {
	name string
	key  *protect.Buffer
}

// NewCustom creates a Custom source.
// When hash is true the key data is the SHA-256 of data, otherwise data must already be exactly KeySize bytes.
func NewCustom(name string, data []byte, hash bool) (*Custom, error) {
	if len(name) == 0 {
		return nil, fmt.Errorf("%w: custom key provider name is required", ErrInvalidArgument)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: custom key data is empty", ErrInvalidArgument)
	}
	c := &Custom{name: name}
	if hash {
		c.key = hashed(data)
		return c, nil
	}
	if len(data) != KeySize {
		return nil, fmt.Errorf("%w: unhashed custom key data must be %d bytes, got %d", ErrInvalidArgument, KeySize, len(data))
	}
	c.key = protect.New(data)
	return c, nil
}

func (c *Custom) Name() string {
	return c.name
}

func (c *Custom) KeyData() *protect.Buffer {
	return c.key
}

func (c *Custom) Destroy() {
	c.key.Destroy()
	c.key = nil
}
