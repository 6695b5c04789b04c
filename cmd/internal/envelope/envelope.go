package envelope

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/saylorsolutions/vaultkey/pkg/blockcipher"
	"github.com/saylorsolutions/vaultkey/pkg/composite"
	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

const version uint8 = 1

var (
	magic = [4]byte{'V', 'K', 'E', 'Y'}

	ErrNotEnvelope        = errors.New("input is not a vaultkey envelope")
	ErrUnsupportedVersion = errors.New("unsupported envelope version")
	ErrWrongKey           = errors.New("wrong key or corrupted envelope")
)

// Header is the unencrypted prefix of an envelope.
type Header struct {
	Cipher uuid.UUID
	Params *composite.Params
	IV     [blockcipher.BlockSize]byte
}

func (h *Header) write(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return err
	}
	if _, err := w.Write(h.Cipher[:]); err != nil {
		return err
	}
	if err := h.Params.Write(w); err != nil {
		return err
	}
	_, err := w.Write(h.IV[:])
	return err
}

// ReadHeader reads and validates an envelope header from r, leaving r positioned at the ciphertext.
func ReadHeader(r io.Reader) (*Header, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil || m != magic {
		return nil, ErrNotEnvelope
	}
	var v uint8
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEnvelope, err)
	}
	if v != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	h := &Header{Params: new(composite.Params)}
	if _, err := io.ReadFull(r, h.Cipher[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEnvelope, err)
	}
	if err := h.Params.Read(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEnvelope, err)
	}
	if _, err := io.ReadFull(r, h.IV[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEnvelope, err)
	}
	return h, nil
}

// Seal compresses and encrypts src to dst with a key derived from key and params.
// The IV is read from rng. A nil eng means AES.
func Seal(ctx context.Context, dst io.Writer, src io.Reader, key *composite.Key, eng blockcipher.Engine, params *composite.Params, rng io.Reader) error {
	if eng == nil {
		eng = blockcipher.AES
	}
	h := &Header{Cipher: eng.ID(), Params: params}
	if _, err := io.ReadFull(rng, h.IV[:]); err != nil {
		return fmt.Errorf("failed to generate IV: %w", err)
	}
	master, err := masterKey(ctx, key, params)
	if err != nil {
		return err
	}
	defer protect.Wipe(master)

	if err := h.write(dst); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	enc, err := blockcipher.NewEncryptWriter(dst, eng, master, h.IV[:])
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(enc)
	n, err := io.Copy(gz, src)
	if err != nil {
		return fmt.Errorf("failed to encrypt input: %w", err)
	}
	if err := gz.Close(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("cipher", eng.Name()).Int64("bytes", n).Msg("Sealed envelope")
	return nil
}

// Open decrypts and decompresses an envelope from src to dst.
// A wrong key is reported as ErrWrongKey, since it almost always shows up as bad padding or a corrupt gzip stream.
func Open(ctx context.Context, dst io.Writer, src io.Reader, key *composite.Key) error {
	h, err := ReadHeader(src)
	if err != nil {
		return err
	}
	eng, err := blockcipher.Lookup(h.Cipher)
	if err != nil {
		return err
	}
	master, err := masterKey(ctx, key, h.Params)
	if err != nil {
		return err
	}
	defer protect.Wipe(master)

	dec, err := blockcipher.NewDecryptReader(src, eng, master, h.IV[:])
	if err != nil {
		return err
	}
	gz, err := gzip.NewReader(dec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrongKey, err)
	}
	n, err := io.Copy(dst, gz)
	if err != nil {
		if errors.Is(err, blockcipher.ErrInvalidPadding) || errors.Is(err, gzip.ErrChecksum) || errors.Is(err, gzip.ErrHeader) {
			return fmt.Errorf("%w: %w", ErrWrongKey, err)
		}
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("cipher", eng.Name()).Int64("bytes", n).Msg("Opened envelope")
	return nil
}

func masterKey(ctx context.Context, key *composite.Key, params *composite.Params) ([]byte, error) {
	final, err := key.Derive(ctx, params)
	if err != nil {
		return nil, err
	}
	defer final.Destroy()
	data, err := final.Bytes()
	if err != nil {
		return nil, err
	}
	defer protect.Wipe(data)
	return composite.MasterKey(params.MasterSeed(), data), nil
}
