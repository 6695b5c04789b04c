package composite

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/vaultkey/pkg/blockcipher"
	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

var (
	ErrNoKeySources    = errors.New("composite key has no sources")
	ErrCancelled       = errors.New("key transformation cancelled")
	ErrInvalidArgument = errors.New("invalid argument")
)

const benchmarkStep = 1024

// Transform stretches raw by encrypting it rounds times with AES-256 keyed by seed.
// Both raw and seed must be KeySize bytes, and raw isn't modified.
//
// The context is checked before every round. If it's done, the working buffer is wiped and the returned error matches both ErrCancelled and the context's error.
func Transform(ctx context.Context, raw, seed []byte, rounds uint64) ([]byte, error) {
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: raw key must be %d bytes, got %d", ErrInvalidArgument, KeySize, len(raw))
	}
	if len(seed) != KeySize {
		return nil, fmt.Errorf("%w: transform seed must be %d bytes, got %d", ErrInvalidArgument, KeySize, len(seed))
	}
	perm, err := blockcipher.NewPermutation(blockcipher.AES, seed)
	if err != nil {
		return nil, err
	}
	log := zerolog.Ctx(ctx)
	start := time.Now()
	work := bytes.Clone(raw)
	done := ctx.Done()
	for i := uint64(0); i < rounds; i++ {
		select {
		case <-done:
			protect.Wipe(work)
			log.Debug().Uint64("completed", i).Uint64("rounds", rounds).Msg("Key transformation cancelled")
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		default:
		}
		perm.Apply(work)
	}
	log.Debug().Uint64("rounds", rounds).Dur("elapsed", time.Since(start)).Msg("Transformed key")
	return work, nil
}

// Finalize hashes the stretched key with SHA-256, then wipes it.
func Finalize(stretched []byte) []byte {
	sum := sha256.Sum256(stretched)
	protect.Wipe(stretched)
	return sum[:]
}

// MasterKey combines a container's master seed with a finalized key.
func MasterKey(masterSeed, final []byte) []byte {
	h := sha256.New()
	h.Write(masterSeed)
	h.Write(final)
	return h.Sum(nil)
}

// Benchmark reports how many transform rounds this machine completes in d.
// The count is a multiple of an internal step size, and is at least one step.
func Benchmark(ctx context.Context, d time.Duration) (uint64, error) {
	if d <= 0 {
		return 0, fmt.Errorf("%w: benchmark duration must be positive", ErrInvalidArgument)
	}
	var seed, work [KeySize]byte
	perm, err := blockcipher.NewPermutation(blockcipher.AES, seed[:])
	if err != nil {
		return 0, err
	}
	deadline := time.Now().Add(d)
	var rounds uint64
	for {
		for i := 0; i < benchmarkStep; i++ {
			perm.Apply(work[:])
		}
		rounds += benchmarkStep
		if err := ctx.Err(); err != nil {
			return rounds, fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if !time.Now().Before(deadline) {
			break
		}
	}
	zerolog.Ctx(ctx).Debug().Uint64("rounds", rounds).Dur("duration", d).Msg("Benchmarked key transformation")
	return rounds, nil
}
