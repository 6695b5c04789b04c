package keystream

import (
	"errors"
	"fmt"
	"io"

	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

const (
	// SessionKeySize is the size of the random pre-key used by NewRandom.
	SessionKeySize = 32
)

var (
	ErrEmptyKey             = errors.New("cannot use an empty keystream key")
	ErrUnsupportedAlgorithm = errors.New("unsupported keystream algorithm")
)

type generator interface {
	// keystream overwrites dst with the next len(dst) bytes of output.
	keystream(dst []byte)
	wipe()
}

// Stream is a deterministic keystream.
// It only ever moves forward; there is no way to seek or reset it.
type Stream struct {
	alg Algorithm
	gen generator
}

var (
	_ io.Reader = (*Stream)(nil)
)

// New constructs a Stream for the given Algorithm, keyed with key.
// The key is not retained, so the caller may wipe it after New returns.
func New(alg Algorithm, key []byte) (*Stream, error) {
	if !alg.Supported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	s := &Stream{alg: alg}
	switch alg {
	case ArcFourVariant:
		gen, err := newArcFour(key)
		if err != nil {
			return nil, err
		}
		s.gen = gen
	case Salsa20:
		s.gen = newSalsa20(key)
	case ChaCha20:
		gen, err := newChaCha20(key)
		if err != nil {
			return nil, err
		}
		s.gen = gen
	}
	return s, nil
}

// NewRandom constructs a Stream keyed with SessionKeySize bytes read from rng.
// This is how a fresh session stream should be created, since Salsa20 uses a fixed nonce.
func NewRandom(alg Algorithm, rng io.Reader) (*Stream, error) {
	key := make([]byte, SessionKeySize)
	defer protect.Wipe(key)
	if _, err := io.ReadFull(rng, key); err != nil {
		return nil, fmt.Errorf("failed to read session key: %w", err)
	}
	return New(alg, key)
}

// Algorithm returns the Algorithm this Stream was constructed with.
func (s *Stream) Algorithm() Algorithm {
	return s.alg
}

// Next returns the next n bytes of the keystream.
func (s *Stream) Next(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	out := make([]byte, n)
	s.gen.keystream(out)
	return out
}

// Read fills p with keystream bytes. It never returns an error.
func (s *Stream) Read(p []byte) (int, error) {
	s.gen.keystream(p)
	return len(p), nil
}

// XORKeyStream XORs each byte in src with the next keystream byte, and writes the result to dst.
// Dst and src must overlap entirely or not at all, and dst must be at least as long as src.
func (s *Stream) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("keystream: output smaller than input")
	}
	ks := s.Next(len(src))
	defer protect.Wipe(ks)
	for i := range src {
		dst[i] = src[i] ^ ks[i]
	}
}

// Blocks reports how many whole output blocks the generator has produced so far.
// Only block oriented algorithms count blocks, the others always report 0.
func (s *Stream) Blocks() uint64 {
	if bc, ok := s.gen.(interface{ blockCount() uint64 }); ok {
		return bc.blockCount()
	}
	return 0
}

// Wipe zeroes the internal generator state.
// The Stream must not be used afterward.
func (s *Stream) Wipe() {
	if s.gen != nil {
		s.gen.wipe()
	}
}
