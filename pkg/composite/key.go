package composite

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/vaultkey/pkg/protect"
	"github.com/saylorsolutions/vaultkey/pkg/userkey"
)

// Key is an ordered set of key sources.
type Key struct {
	sources []userkey.Source
	log     zerolog.Logger
}

type KeyOpt = func(*Key) error

// WithLogger sets the logger used by operations that don't take a context.
func WithLogger(logger zerolog.Logger) KeyOpt {
	return func(k *Key) error {
		k.log = logger
		return nil
	}
}

// New creates an empty Key. Logging is disabled unless WithLogger is passed.
func New(opts ...KeyOpt) (*Key, error) {
	k := &Key{log: zerolog.Nop()}
	for _, opt := range opts {
		if err := opt(k); err != nil {
			return nil, err
		}
	}
	return k, nil
}

// Add appends a source. Adding the same source twice is allowed, and it contributes twice.
func (k *Key) Add(src userkey.Source) error {
	if src == nil {
		return fmt.Errorf("%w: nil key source", ErrInvalidArgument)
	}
	k.sources = append(k.sources, src)
	k.log.Debug().Str("source", src.Name()).Int("sources", len(k.sources)).Msg("Added key source")
	return nil
}

// Remove removes the first occurrence of src, and reports whether it was present.
func (k *Key) Remove(src userkey.Source) bool {
	for i, s := range k.sources {
		if s == src {
			k.sources = append(k.sources[:i], k.sources[i+1:]...)
			return true
		}
	}
	return false
}

func (k *Key) Len() int {
	return len(k.sources)
}

// Sources returns the sources in the order they were added.
func (k *Key) Sources() []userkey.Source {
	out := make([]userkey.Source, len(k.sources))
	copy(out, k.sources)
	return out
}

// DeriveRaw hashes the key data of every source in order.
// Destroyed sources contribute nothing, but at least one source must still have key data. The caller should wipe the result.
func (k *Key) DeriveRaw() ([]byte, error) {
	if len(k.sources) == 0 {
		return nil, ErrNoKeySources
	}
	h := sha256.New()
	contributed := 0
	for _, src := range k.sources {
		data, err := src.KeyData().Bytes()
		if errors.Is(err, protect.ErrDestroyed) {
			k.log.Warn().Str("source", src.Name()).Msg("Skipping destroyed key source")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read key source '%s': %w", src.Name(), err)
		}
		h.Write(data)
		protect.Wipe(data)
		contributed++
	}
	if contributed == 0 {
		return nil, fmt.Errorf("%w: all %d sources have been destroyed", ErrNoKeySources, len(k.sources))
	}
	return h.Sum(nil), nil
}

// Derive runs the full derivation with params: DeriveRaw, Transform, then Finalize.
// Intermediate buffers are wiped whether or not derivation succeeds.
func (k *Key) Derive(ctx context.Context, params *Params) (*protect.Buffer, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: nil params", ErrInvalidArgument)
	}
	raw, err := k.DeriveRaw()
	if err != nil {
		return nil, err
	}
	defer protect.Wipe(raw)
	stretched, err := Transform(ctx, raw, params.transformSeed[:], params.rounds)
	if err != nil {
		return nil, err
	}
	final := Finalize(stretched)
	defer protect.Wipe(final)
	zerolog.Ctx(ctx).Debug().Int("sources", len(k.sources)).Uint64("rounds", params.rounds).Msg("Derived composite key")
	return protect.New(final), nil
}

// EqualValue reports whether both keys derive the same raw key.
func (k *Key) EqualValue(other *Key) (bool, error) {
	if other == nil {
		return false, nil
	}
	mine, err := k.DeriveRaw()
	if err != nil {
		return false, err
	}
	defer protect.Wipe(mine)
	theirs, err := other.DeriveRaw()
	if err != nil {
		return false, err
	}
	defer protect.Wipe(theirs)
	return subtle.ConstantTimeCompare(mine, theirs) == 1, nil
}
