package blockcipher

import (
	"crypto/cipher"
	"fmt"
)

// PermutationSize is the size of the buffer a Permutation transforms.
const PermutationSize = 32

// Permutation encrypts a 32 byte buffer as two independent blocks with a fixed key.
// It's used for key stretching, where the same keyed cipher is applied many thousands of times.
type Permutation struct {
	block cipher.Block
}

// NewPermutation keys eng with key. A nil Engine means AES.
func NewPermutation(eng Engine, key []byte) (*Permutation, error) {
	if eng == nil {
		eng = AES
	}
	block, err := eng.NewBlock(key)
	if err != nil {
		return nil, err
	}
	if block.BlockSize()*2 != PermutationSize {
		return nil, fmt.Errorf("%w: %s has a %d byte block", ErrUnsupportedCipher, eng.Name(), block.BlockSize())
	}
	return &Permutation{block: block}, nil
}

// Apply encrypts both halves of buf in place.
// It panics if buf is not PermutationSize bytes, since that's always a programming error.
func (p *Permutation) Apply(buf []byte) {
	if len(buf) != PermutationSize {
		panic(fmt.Sprintf("blockcipher: permutation buffer must be %d bytes, got %d", PermutationSize, len(buf)))
	}
	half := PermutationSize / 2
	p.block.Encrypt(buf[:half], buf[:half])
	p.block.Encrypt(buf[half:], buf[half:])
}
