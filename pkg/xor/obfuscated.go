package xor

import (
	"errors"
	"fmt"
	"io"

	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

var (
	ErrLengthMismatch = errors.New("data and pad lengths differ")
)

// Obfuscated is an immutable value stored as data XOR pad.
type Obfuscated struct {
	data []byte
	pad  []byte
}

// New creates an Obfuscated from already screened data and its pad.
// Both slices are copied, so the caller keeps ownership of its own.
func New(data, pad []byte) (*Obfuscated, error) {
	if len(data) != len(pad) {
		return nil, fmt.Errorf("%w: data is %d bytes, pad is %d bytes", ErrLengthMismatch, len(data), len(pad))
	}
	o := &Obfuscated{
		data: make([]byte, len(data)),
		pad:  make([]byte, len(pad)),
	}
	copy(o.data, data)
	copy(o.pad, pad)
	return o, nil
}

// Obfuscate screens plain with a random pad read from rng.
func Obfuscate(plain []byte, rng io.Reader) (*Obfuscated, error) {
	if len(plain) == 0 {
		return &Obfuscated{data: []byte{}, pad: []byte{}}, nil
	}
	pad, err := GenPad(len(plain), rng)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(plain))
	for i := range plain {
		data[i] = plain[i] ^ pad[i]
	}
	return &Obfuscated{data: data, pad: pad}, nil
}

// Len returns the length of the original value.
func (o *Obfuscated) Len() int {
	return len(o.data)
}

// Reveal returns the original value in a new slice, which the caller should wipe.
func (o *Obfuscated) Reveal() []byte {
	out := make([]byte, len(o.data))
	for i := range o.data {
		out[i] = o.data[i] ^ o.pad[i]
	}
	return out
}

// Protect reveals the original value directly into a protect.Buffer.
func (o *Obfuscated) Protect() *protect.Buffer {
	plain := o.Reveal()
	defer protect.Wipe(plain)
	return protect.New(plain)
}

// Wipe zeroes both arrays. Reveal returns zeroes afterward.
func (o *Obfuscated) Wipe() {
	protect.Wipe(o.data, o.pad)
}

func (o *Obfuscated) String() string {
	return "[OBFUSCATED]"
}
