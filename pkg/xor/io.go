package xor

import (
	"io"

	"github.com/saylorsolutions/vaultkey/pkg/keystream"
	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

// Reader extends io.Reader, but also provides a way to reuse a key with a different source.
type Reader interface {
	io.Reader
	// Reset will use the provided io.Reader and restart the keystream.
	Reset(source io.Reader) error
}

// Writer extends io.Writer, but also provides a way to reuse a key with a different target.
type Writer interface {
	io.Writer
	// Reset will use the provided io.Writer and restart the keystream.
	Reset(target io.Writer) error
}

var _ Reader = (*reader)(nil)

type reader struct {
	source io.Reader
	scr    *Screen
}

func (r *reader) Read(out []byte) (n int, err error) {
	n, err = r.source.Read(out)
	r.scr.Apply(out[:n], out[:n])
	return n, err
}

func (r *reader) Reset(source io.Reader) error {
	r.source = source
	return r.scr.Reset()
}

// NewReader constructs a new Reader that will screen all bytes read with the keystream for alg and key.
func NewReader(r io.Reader, alg keystream.Algorithm, key []byte) (Reader, error) {
	scr, err := NewScreen(alg, key)
	if err != nil {
		return nil, err
	}
	xReader := &reader{
		source: r,
		scr:    scr,
	}
	return xReader, nil
}

var _ Writer = (*writer)(nil)

type writer struct {
	target io.Writer
	scr    *Screen
}

// NewWriter constructs a new Writer that will screen all bytes written with the keystream for alg and key.
func NewWriter(target io.Writer, alg keystream.Algorithm, key []byte) (Writer, error) {
	scr, err := NewScreen(alg, key)
	if err != nil {
		return nil, err
	}
	xWriter := &writer{
		target: target,
		scr:    scr,
	}
	return xWriter, nil
}

// Write screens in and writes it to the target, returning the count the target accepted.
// The keystream is consumed for all of in regardless, so after a short or failed write the Writer is out of step with any Reader and must be Reset before reuse.
func (w *writer) Write(in []byte) (n int, err error) {
	buf := make([]byte, len(in))
	defer protect.Wipe(buf)
	w.scr.Apply(buf, in)
	return w.target.Write(buf)
}

func (w *writer) Reset(target io.Writer) error {
	w.target = target
	return w.scr.Reset()
}
