package xor

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrEmptyPad = errors.New("asked to generate a 0-length pad")
)

// GenPad reads a pad of the given length from rng.
func GenPad(length int, rng io.Reader) ([]byte, error) {
	if length <= 0 {
		return nil, ErrEmptyPad
	}
	if rng == nil {
		return nil, errors.New("nil random source")
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, fmt.Errorf("failed to read requested bytes: %w", err)
	}
	return buf, nil
}
