package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/saylorsolutions/vaultkey/cmd/internal/envelope"
	"github.com/saylorsolutions/vaultkey/pkg/composite"
	"github.com/saylorsolutions/vaultkey/pkg/keystream"
	"github.com/saylorsolutions/vaultkey/pkg/protect"
	"github.com/saylorsolutions/vaultkey/pkg/userkey"
)

func runDerive(ctx context.Context, args []string) error {
	flags, common := newFlagSet("derive", "derive [FLAGS]")
	keys := addKeyFlags(flags)
	var paramsHex, transformSeed, masterSeed string
	flags.StringVar(&paramsHex, "params", "", "Hex encoded parameters printed by a previous derive. Overrides --rounds and the seed flags.")
	flags.StringVar(&transformSeed, "transform-seed", "", "Hex encoded 32 byte transform seed. Random if not given.")
	flags.StringVar(&masterSeed, "master-seed", "", "Hex encoded 32 byte master seed. Random if not given.")
	ctx, e, err := common.parse(ctx, flags, args)
	if err != nil {
		return err
	}

	params, err := deriveParams(e, paramsHex, transformSeed, masterSeed)
	if err != nil {
		return err
	}
	key, cleanup, err := keys.compositeKey(e.log)
	if err != nil {
		return err
	}
	defer cleanup()

	start := time.Now()
	final, err := key.Derive(ctx, params)
	if err != nil {
		return err
	}
	defer final.Destroy()
	data, err := final.Bytes()
	if err != nil {
		return err
	}
	defer protect.Wipe(data)
	master := composite.MasterKey(params.MasterSeed(), data)
	defer protect.Wipe(master)
	e.log.Info().Uint64("rounds", params.Rounds()).Dur("elapsed", time.Since(start)).Msg("Derived master key")

	encoded, err := params.MarshalBinary()
	if err != nil {
		return err
	}
	fmt.Printf("params: %s\nkey:    %s\n", hex.EncodeToString(encoded), hex.EncodeToString(master))
	return nil
}

func deriveParams(e *env, paramsHex, transformSeed, masterSeed string) (*composite.Params, error) {
	if len(paramsHex) > 0 {
		encoded, err := hex.DecodeString(paramsHex)
		if err != nil {
			return nil, fmt.Errorf("failed to decode --params: %w", err)
		}
		params := new(composite.Params)
		if err := params.UnmarshalBinary(encoded); err != nil {
			return nil, err
		}
		return params, nil
	}
	opts := []composite.ParamsOpt{
		composite.SetRounds(e.conf.Rounds),
		composite.RandomSeeds(e.pool),
	}
	if len(transformSeed) > 0 {
		seed, err := hex.DecodeString(transformSeed)
		if err != nil {
			return nil, fmt.Errorf("failed to decode --transform-seed: %w", err)
		}
		opts = append(opts, composite.SetTransformSeed(seed))
	}
	if len(masterSeed) > 0 {
		seed, err := hex.DecodeString(masterSeed)
		if err != nil {
			return nil, fmt.Errorf("failed to decode --master-seed: %w", err)
		}
		opts = append(opts, composite.SetMasterSeed(seed))
	}
	return composite.NewParams(opts...)
}

func runBench(ctx context.Context, args []string) error {
	flags, common := newFlagSet("bench", "bench [FLAGS]")
	var duration time.Duration
	flags.DurationVarP(&duration, "duration", "d", time.Second, "How long to run the benchmark. Overrides the configured duration.")
	ctx, e, err := common.parse(ctx, flags, args)
	if err != nil {
		return err
	}
	if flags.Changed("duration") {
		e.conf.BenchDuration = duration
	}
	e.log.Info().Dur("duration", e.conf.BenchDuration).Msg("Benchmarking key transformation")
	rounds, err := composite.Benchmark(ctx, e.conf.BenchDuration)
	if err != nil {
		return err
	}
	fmt.Printf("%d rounds in %s\n", rounds, e.conf.BenchDuration)
	return nil
}

func runKeyFile(ctx context.Context, args []string) error {
	flags, common := newFlagSet("keyfile", "keyfile [FLAGS] FILE")
	_, e, err := common.parse(ctx, flags, args)
	if err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("exactly one FILE argument is required")
	}
	path := flags.Arg(0)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	if err := userkey.GenerateKeyFile(f, e.pool); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	e.log.Info().Str("path", path).Msg("Generated key file")
	return nil
}

func runEncrypt(ctx context.Context, args []string) error {
	flags, common := newFlagSet("encrypt", "encrypt [FLAGS]")
	keys := addKeyFlags(flags)
	var inPath, outPath string
	flags.StringVarP(&inPath, "in", "i", "-", "Input file, or '-' for stdin. Can't be used with a prompted password.")
	flags.StringVarP(&outPath, "out", "o", "-", "Output file, or '-' for stdout.")
	ctx, e, err := common.parse(ctx, flags, args)
	if err != nil {
		return err
	}
	eng, err := e.conf.Engine()
	if err != nil {
		return err
	}
	params, err := composite.NewParams(composite.SetRounds(e.conf.Rounds), composite.RandomSeeds(e.pool))
	if err != nil {
		return err
	}
	key, cleanup, err := keys.compositeKey(e.log)
	if err != nil {
		return err
	}
	defer cleanup()

	return withFiles(inPath, outPath, func(in io.Reader, out io.Writer) error {
		return envelope.Seal(ctx, out, in, key, eng, params, e.pool)
	})
}

func runDecrypt(ctx context.Context, args []string) error {
	flags, common := newFlagSet("decrypt", "decrypt [FLAGS]")
	keys := addKeyFlags(flags)
	var inPath, outPath string
	flags.StringVarP(&inPath, "in", "i", "-", "Input envelope, or '-' for stdin. Can't be used with a prompted password.")
	flags.StringVarP(&outPath, "out", "o", "-", "Output file, or '-' for stdout.")
	ctx, e, err := common.parse(ctx, flags, args)
	if err != nil {
		return err
	}
	key, cleanup, err := keys.compositeKey(e.log)
	if err != nil {
		return err
	}
	defer cleanup()

	return withFiles(inPath, outPath, func(in io.Reader, out io.Writer) error {
		return envelope.Open(ctx, out, in, key)
	})
}

// withFiles opens the input and output paths, treating "-" as stdin or stdout.
// A partially written output file is removed if fn fails.
func withFiles(inPath, outPath string, fn func(in io.Reader, out io.Writer) error) error {
	var in io.Reader = os.Stdin
	if inPath != "-" {
		f, err := os.Open(inPath)
		if err != nil {
			return err
		}
		defer func() {
			_ = f.Close()
		}()
		in = f
	}
	if outPath == "-" {
		return fn(in, os.Stdout)
	}
	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := fn(in, out); err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return err
	}
	return out.Close()
}

func runKeystream(ctx context.Context, args []string) error {
	flags, common := newFlagSet("keystream", "keystream [FLAGS]")
	var (
		keyHex string
		count  int
	)
	flags.StringVar(&keyHex, "key", "", "Hex encoded keystream key. A random session key is used if not given.")
	flags.IntVarP(&count, "count", "n", 64, "Number of keystream bytes to print.")
	_, e, err := common.parse(ctx, flags, args)
	if err != nil {
		return err
	}
	if count <= 0 {
		return errors.New("count must be positive")
	}
	alg, err := e.conf.Algorithm()
	if err != nil {
		return err
	}

	var stream *keystream.Stream
	if len(keyHex) > 0 {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return fmt.Errorf("failed to decode --key: %w", err)
		}
		stream, err = keystream.New(alg, key)
		protect.Wipe(key)
		if err != nil {
			return err
		}
	} else {
		stream, err = keystream.NewRandom(alg, e.pool)
		if err != nil {
			return err
		}
	}
	defer stream.Wipe()

	out := stream.Next(count)
	defer protect.Wipe(out)
	fmt.Println(hex.EncodeToString(out))
	e.log.Debug().Str("algorithm", alg.String()).Uint64("blocks", stream.Blocks()).Msg("Generated keystream")
	return nil
}
