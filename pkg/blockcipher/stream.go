package blockcipher

import (
	"crypto/cipher"
	"errors"
	"fmt"
	"io"

	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

var (
	ErrNotWritable   = errors.New("stream is not writable")
	ErrNotReadable   = errors.New("stream is not readable")
	ErrInvalidLength = errors.New("ciphertext is not a whole number of blocks")
	ErrWriterClosed  = errors.New("encrypt writer is closed")
)

const chunkBlocks = 256

func newMode(eng Engine, key, iv []byte, encrypt bool) (cipher.BlockMode, error) {
	if eng == nil {
		eng = AES
	}
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := checkIV(iv); err != nil {
		return nil, err
	}
	block, err := eng.NewBlock(key)
	if err != nil {
		return nil, err
	}
	if encrypt {
		return cipher.NewCBCEncrypter(block, iv), nil
	}
	return cipher.NewCBCDecrypter(block, iv), nil
}

type encryptWriter struct {
	w       io.Writer
	mode    cipher.BlockMode
	pending []byte
	closed  bool
	err     error
}

// NewEncryptWriter returns a writer that CBC encrypts everything written to it, and writes the ciphertext to w.
// Close writes the final padded block, but doesn't close w.
// A nil Engine means AES.
// Once a write to w fails, the CBC chain can't be resumed, so every later Write and Close returns that error.
func NewEncryptWriter(w io.Writer, eng Engine, key, iv []byte) (io.WriteCloser, error) {
	if w == nil {
		return nil, ErrNotWritable
	}
	mode, err := newMode(eng, key, iv, true)
	if err != nil {
		return nil, err
	}
	return &encryptWriter{w: w, mode: mode}, nil
}

func (e *encryptWriter) Write(p []byte) (int, error) {
	if e.closed {
		return 0, ErrWriterClosed
	}
	if e.err != nil {
		return 0, e.err
	}
	bs := e.mode.BlockSize()
	written := len(p)
	e.pending = append(e.pending, p...)
	whole := len(e.pending) - len(e.pending)%bs
	if whole == 0 {
		return written, nil
	}
	out := make([]byte, whole)
	e.mode.CryptBlocks(out, e.pending[:whole])
	rest := copy(e.pending, e.pending[whole:])
	protect.Wipe(e.pending[rest:])
	e.pending = e.pending[:rest]
	if _, err := e.w.Write(out); err != nil {
		e.err = fmt.Errorf("failed to write ciphertext: %w", err)
		return 0, e.err
	}
	return written, nil
}

func (e *encryptWriter) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	if e.err != nil {
		protect.Wipe(e.pending)
		e.pending = nil
		return e.err
	}
	padded := PadPKCS7(e.pending, e.mode.BlockSize())
	defer protect.Wipe(padded)
	protect.Wipe(e.pending)
	e.pending = nil
	e.mode.CryptBlocks(padded, padded)
	if _, err := e.w.Write(padded); err != nil {
		e.err = fmt.Errorf("failed to write final block: %w", err)
		return e.err
	}
	return nil
}

type decryptReader struct {
	r    io.Reader
	mode cipher.BlockMode
	// plain is decrypted output that hasn't been returned yet.
	plain []byte
	// held is the last ciphertext block read, which might be the padded block.
	held []byte
	buf  []byte
	err  error
}

// NewDecryptReader returns a reader that CBC decrypts r.
// The padding is validated and stripped when r reaches EOF, so ErrInvalidPadding is reported by the final Read.
// A nil Engine means AES.
func NewDecryptReader(r io.Reader, eng Engine, key, iv []byte) (io.Reader, error) {
	if r == nil {
		return nil, ErrNotReadable
	}
	mode, err := newMode(eng, key, iv, false)
	if err != nil {
		return nil, err
	}
	return &decryptReader{
		r:    r,
		mode: mode,
		buf:  make([]byte, chunkBlocks*mode.BlockSize()),
	}, nil
}

func (d *decryptReader) Read(p []byte) (int, error) {
	for len(d.plain) == 0 {
		if d.err != nil {
			return 0, d.err
		}
		d.fill()
	}
	n := copy(p, d.plain)
	d.plain = d.plain[n:]
	return n, nil
}

func (d *decryptReader) fill() {
	bs := d.mode.BlockSize()
	n, err := io.ReadFull(d.r, d.buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		err = io.EOF
	default:
		d.err = err
		return
	}
	chunk := d.buf[:n]
	if n%bs != 0 {
		d.err = fmt.Errorf("%w: trailing %d bytes", ErrInvalidLength, n%bs)
		return
	}

	// Everything but the last block seen so far is safe to release.
	data := append(d.held, chunk...)
	if err == nil {
		split := len(data) - bs
		d.held = append([]byte(nil), data[split:]...)
		out := make([]byte, split)
		d.mode.CryptBlocks(out, data[:split])
		d.plain = out
		return
	}

	if len(data) == 0 {
		d.err = fmt.Errorf("%w: no ciphertext", ErrInvalidLength)
		return
	}
	out := make([]byte, len(data))
	d.mode.CryptBlocks(out, data)
	d.held = nil
	unpadded, perr := UnpadPKCS7(out, bs)
	if perr != nil {
		protect.Wipe(out)
		d.err = perr
		return
	}
	d.plain = unpadded
	d.err = io.EOF
}

// EncryptStream encrypts all of src to dst with AES in CBC mode, and returns the number of ciphertext bytes written.
func EncryptStream(dst io.Writer, src io.Reader, key, iv []byte) (int64, error) {
	if dst == nil {
		return 0, ErrNotWritable
	}
	if src == nil {
		return 0, ErrNotReadable
	}
	cw := &countingWriter{w: dst}
	enc, err := NewEncryptWriter(cw, AES, key, iv)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(enc, src); err != nil {
		return cw.n, err
	}
	if err := enc.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// DecryptStream decrypts all of src to dst with AES in CBC mode, and returns the number of plaintext bytes written.
func DecryptStream(dst io.Writer, src io.Reader, key, iv []byte) (int64, error) {
	if dst == nil {
		return 0, ErrNotWritable
	}
	dec, err := NewDecryptReader(src, AES, key, iv)
	if err != nil {
		return 0, err
	}
	return io.Copy(dst, dec)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
