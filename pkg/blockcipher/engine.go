package blockcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/twofish"
)

const (
	KeySize   = 32
	BlockSize = 16
)

var (
	ErrInvalidKeySize    = errors.New("invalid cipher key size")
	ErrInvalidIVSize     = errors.New("invalid cipher IV size")
	ErrUnsupportedCipher = errors.New("unsupported cipher")
)

var (
	AESID     = uuid.MustParse("31c1f2e6-bf71-4350-be58-05216afc5aff")
	TwofishID = uuid.MustParse("ad68f29f-576f-4bb9-a36a-d47af965346c")
)

// Engine is a 256-bit key, 128-bit block cipher.
type Engine interface {
	// ID is the identifier stored in container headers for this cipher.
	ID() uuid.UUID
	Name() string
	KeySize() int
	BlockSize() int
	// NewBlock returns the keyed block cipher. The key must be KeySize bytes.
	NewBlock(key []byte) (cipher.Block, error)
}

var (
	AES     Engine = aesEngine{}
	Twofish Engine = twofishEngine{}

	engines = []Engine{AES, Twofish}
)

// Lookup returns the Engine registered for the given cipher ID.
func Lookup(id uuid.UUID) (Engine, error) {
	for _, e := range engines {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedCipher, id)
}

// LookupName returns the Engine with the given name.
func LookupName(name string) (Engine, error) {
	for _, e := range engines {
		if e.Name() == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedCipher, name)
}

type aesEngine struct{}

func (aesEngine) ID() uuid.UUID { return AESID }
func (aesEngine) Name() string  { return "aes" }
func (aesEngine) KeySize() int   { return KeySize }
func (aesEngine) BlockSize() int { return aes.BlockSize }

func (aesEngine) NewBlock(key []byte) (cipher.Block, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return aes.NewCipher(key)
}

type twofishEngine struct{}

func (twofishEngine) ID() uuid.UUID { return TwofishID }
func (twofishEngine) Name() string  { return "twofish" }
func (twofishEngine) KeySize() int   { return KeySize }
func (twofishEngine) BlockSize() int { return twofish.BlockSize }

func (twofishEngine) NewBlock(key []byte) (cipher.Block, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return twofish.NewCipher(key)
}

func checkKey(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}
	return nil
}

func checkIV(iv []byte) error {
	if len(iv) != BlockSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidIVSize, BlockSize, len(iv))
	}
	return nil
}
