package keystream

import (
	"fmt"
	"strings"
)

// Algorithm identifies a keystream generator.
// The numeric values match the identifiers stored in container headers.
type Algorithm uint32

const (
	Null Algorithm = iota
	ArcFourVariant
	Salsa20
	ChaCha20
)

func (a Algorithm) String() string {
	switch a {
	case Null:
		return "null"
	case ArcFourVariant:
		return "arcfour"
	case Salsa20:
		return "salsa20"
	case ChaCha20:
		return "chacha20"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint32(a))
	}
}

// Supported reports whether New can construct a Stream for this Algorithm.
func (a Algorithm) Supported() bool {
	switch a {
	case ArcFourVariant, Salsa20, ChaCha20:
		return true
	default:
		return false
	}
}

// ParseAlgorithm maps a name as returned by Algorithm.String back to the Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "arcfour", "arcfourvariant", "rc4":
		return ArcFourVariant, nil
	case "salsa20":
		return Salsa20, nil
	case "chacha20":
		return ChaCha20, nil
	default:
		return Null, fmt.Errorf("%w: '%s'", ErrUnsupportedAlgorithm, name)
	}
}
