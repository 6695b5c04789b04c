package blockcipher

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

var (
	ErrInvalidPadding = errors.New("invalid PKCS #7 padding")
)

// PadPKCS7 returns a copy of src padded to a multiple of size.
// Padding is always added, even when src is already a multiple of size, so that unpadding is unambiguous.
func PadPKCS7(src []byte, size int) []byte {
	if size <= 0 || size > 255 {
		panic(fmt.Sprintf("blockcipher: invalid PKCS #7 block size %d", size))
	}
	n := size - len(src)%size
	padded := make([]byte, len(src)+n)
	copy(padded, src)
	for i := len(src); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// UnpadPKCS7 validates and strips PKCS #7 padding, returning a sub-slice of src.
func UnpadPKCS7(src []byte, size int) ([]byte, error) {
	if len(src) == 0 || len(src)%size != 0 {
		return nil, fmt.Errorf("%w: expected a multiple of %d bytes, got %d", ErrInvalidPadding, size, len(src))
	}
	n := int(src[len(src)-1])
	if n == 0 || n > size {
		return nil, fmt.Errorf("%w: pad length %d out of range", ErrInvalidPadding, n)
	}
	good := 1
	for _, b := range src[len(src)-n:] {
		good &= subtle.ConstantTimeByteEq(b, byte(n))
	}
	if good != 1 {
		return nil, fmt.Errorf("%w: mismatched pad bytes", ErrInvalidPadding)
	}
	return src[:len(src)-n], nil
}
