package composite

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	bin "github.com/saylorsolutions/binmap"
)

const (
	// DefaultRounds is the round count used when none is specified.
	DefaultRounds uint64 = 60000
	KeySize              = 32
)

// Params are the non-secret inputs to key derivation.
type Params struct {
	transformSeed [KeySize]byte
	masterSeed    [KeySize]byte
	rounds        uint64
}

func (p *Params) mapper() bin.Mapper {
	mappers := make([]bin.Mapper, 0, 2*KeySize+1)
	mappers = append(mappers, bin.Int(&p.rounds))
	for i := range p.transformSeed {
		mappers = append(mappers, bin.Byte(&p.transformSeed[i]))
	}
	for i := range p.masterSeed {
		mappers = append(mappers, bin.Byte(&p.masterSeed[i]))
	}
	return bin.MapSequence(mappers...)
}

type ParamsOpt = func(*Params) error

// SetRounds sets the number of transform rounds. There must be at least one.
func SetRounds(rounds uint64) ParamsOpt {
	return func(p *Params) error {
		if rounds == 0 {
			return fmt.Errorf("%w: rounds must be at least 1", ErrInvalidArgument)
		}
		p.rounds = rounds
		return nil
	}
}

// SetTransformSeed sets the key used for the transform rounds.
func SetTransformSeed(seed []byte) ParamsOpt {
	return func(p *Params) error {
		if len(seed) != KeySize {
			return fmt.Errorf("%w: transform seed must be %d bytes, got %d", ErrInvalidArgument, KeySize, len(seed))
		}
		copy(p.transformSeed[:], seed)
		return nil
	}
}

// SetMasterSeed sets the seed mixed into the final master key.
func SetMasterSeed(seed []byte) ParamsOpt {
	return func(p *Params) error {
		if len(seed) != KeySize {
			return fmt.Errorf("%w: master seed must be %d bytes, got %d", ErrInvalidArgument, KeySize, len(seed))
		}
		copy(p.masterSeed[:], seed)
		return nil
	}
}

// RandomSeeds reads both seeds from rng.
func RandomSeeds(rng io.Reader) ParamsOpt {
	return func(p *Params) error {
		if rng == nil {
			return fmt.Errorf("%w: nil random source", ErrInvalidArgument)
		}
		if _, err := io.ReadFull(rng, p.transformSeed[:]); err != nil {
			return fmt.Errorf("failed to read transform seed: %w", err)
		}
		if _, err := io.ReadFull(rng, p.masterSeed[:]); err != nil {
			return fmt.Errorf("failed to read master seed: %w", err)
		}
		return nil
	}
}

// NewParams creates Params from zero or more ParamsOpt.
// By default, the seeds are read from crypto/rand and DefaultRounds is used.
func NewParams(opts ...ParamsOpt) (*Params, error) {
	p := &Params{rounds: DefaultRounds}
	if err := RandomSeeds(rand.Reader)(p); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Params) Rounds() uint64 {
	return p.rounds
}

func (p *Params) TransformSeed() []byte {
	return bytes.Clone(p.transformSeed[:])
}

func (p *Params) MasterSeed() []byte {
	return bytes.Clone(p.masterSeed[:])
}

// Write encodes the Params to w.
func (p *Params) Write(w io.Writer) error {
	return p.mapper().Write(w, binary.LittleEndian)
}

// Read decodes Params written by Write.
// The receiver is only updated if the whole encoding is read and valid.
func (p *Params) Read(r io.Reader) error {
	var read Params
	if err := read.mapper().Read(r, binary.LittleEndian); err != nil {
		return fmt.Errorf("failed to read key derivation parameters: %w", err)
	}
	if read.rounds == 0 {
		return fmt.Errorf("%w: encoded rounds must be at least 1", ErrInvalidArgument)
	}
	*p = read
	return nil
}

func (p *Params) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Params) UnmarshalBinary(data []byte) error {
	var read Params
	r := bytes.NewReader(data)
	if err := read.Read(r); err != nil {
		return err
	}
	if r.Len() > 0 {
		return fmt.Errorf("%w: %d trailing bytes after parameters", ErrInvalidArgument, r.Len())
	}
	*p = read
	return nil
}
