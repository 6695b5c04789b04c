package xor

import (
	"github.com/saylorsolutions/vaultkey/pkg/keystream"
	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

// Screen XORs bytes with a keystream, and can restart the keystream from the beginning.
type Screen struct {
	alg    keystream.Algorithm
	key    *protect.Buffer
	stream *keystream.Stream
}

// NewScreen creates a Screen for the given algorithm and key.
// A protected copy of key is kept for Reset, so the caller may wipe theirs.
func NewScreen(alg keystream.Algorithm, key []byte) (*Screen, error) {
	stream, err := keystream.New(alg, key)
	if err != nil {
		return nil, err
	}
	return &Screen{
		alg:    alg,
		key:    protect.New(key),
		stream: stream,
	}, nil
}

// Apply screens src into dst, advancing the keystream by len(src).
func (s *Screen) Apply(dst, src []byte) {
	s.stream.XORKeyStream(dst, src)
}

// Reset restarts the keystream from its first byte.
func (s *Screen) Reset() error {
	key, err := s.key.Bytes()
	if err != nil {
		return err
	}
	defer protect.Wipe(key)
	stream, err := keystream.New(s.alg, key)
	if err != nil {
		return err
	}
	s.stream.Wipe()
	s.stream = stream
	return nil
}

// Wipe destroys the keystream state and the protected key.
func (s *Screen) Wipe() {
	s.stream.Wipe()
	s.key.Destroy()
}
