package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/vaultkey/cmd/internal"
	"github.com/saylorsolutions/vaultkey/cmd/internal/config"
	"github.com/saylorsolutions/vaultkey/pkg/composite"
	"github.com/saylorsolutions/vaultkey/pkg/entropy"
	"github.com/saylorsolutions/vaultkey/pkg/protect"
	"github.com/saylorsolutions/vaultkey/pkg/userkey"
	flag "github.com/spf13/pflag"
)

var errHelp = errors.New("help requested")

// env is what every command needs once its flags are parsed.
type env struct {
	conf *config.Config
	log  zerolog.Logger
	pool *entropy.Pool
}

type commonFlags struct {
	help       bool
	configPath string
	logLevel   string
	logJSON    bool
	rounds     uint64
	cipher     string
	keystream  string
}

func newFlagSet(name string, usage string) (*flag.FlagSet, *commonFlags) {
	c := new(commonFlags)
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.BoolVarP(&c.help, "help", "h", false, "Prints this usage information.")
	flags.StringVar(&c.configPath, "config", "", "Config file to load instead of the default.")
	flags.StringVar(&c.logLevel, "log-level", config.DefaultLogLevel, "Log level, one of trace, debug, info, warn, or error.")
	flags.BoolVar(&c.logJSON, "log-json", false, "Log JSON instead of human readable lines.")
	flags.Uint64Var(&c.rounds, "rounds", composite.DefaultRounds, "Key transformation rounds.")
	flags.StringVar(&c.cipher, "cipher", config.DefaultCipher, "Cipher for encryption, either aes or twofish.")
	flags.StringVar(&c.keystream, "algorithm", config.DefaultKeystream, "Keystream algorithm, one of arcfour, salsa20, or chacha20.")
	flags.Usage = func() {
		fmt.Printf("\nUSAGE:  vaultkey %s\n\nFLAGS:\n%s\n", usage, flags.FlagUsages())
	}
	return flags, c
}

// parse parses args, then layers flags that were set over the loaded config.
func (c *commonFlags) parse(ctx context.Context, flags *flag.FlagSet, args []string) (context.Context, *env, error) {
	if err := flags.Parse(args); err != nil {
		flags.Usage()
		return nil, nil, fmt.Errorf("error parsing flags: %w", err)
	}
	if c.help {
		flags.Usage()
		return nil, nil, errHelp
	}
	conf := config.New()
	if err := conf.Load(c.configPath); err != nil {
		return nil, nil, err
	}
	if flags.Changed("log-level") {
		conf.LogLevel = c.logLevel
	}
	if flags.Changed("log-json") {
		conf.LogJSON = c.logJSON
	}
	if flags.Changed("rounds") {
		conf.Rounds = c.rounds
	}
	if flags.Changed("cipher") {
		conf.Cipher = c.cipher
	}
	if flags.Changed("algorithm") {
		conf.Keystream = c.keystream
	}
	if err := conf.Validate(); err != nil {
		return nil, nil, err
	}

	log := conf.Logger()
	pool, err := entropy.New(entropy.WithLogger(log))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to seed entropy pool: %w", err)
	}
	return log.WithContext(ctx), &env{conf: conf, log: log, pool: pool}, nil
}

type keyFlags struct {
	password    string
	passwordEnv string
	keyFiles    []string
	allowDB     bool
}

func addKeyFlags(flags *flag.FlagSet) *keyFlags {
	k := new(keyFlags)
	flags.StringVarP(&k.password, "password", "p", "", "Password key source. Use '-' to be prompted for it instead.")
	flags.StringVar(&k.passwordEnv, "password-env", "", "Read the password key source from this environment variable.")
	flags.StringSliceVarP(&k.keyFiles, "keyfile", "k", nil, "Key file key source. May be given more than once, and files are added in order.")
	flags.BoolVar(&k.allowDB, "allow-db-keyfile", false, "Allow a key file that looks like a database file.")
	return k
}

// compositeKey builds the composite key, and returns a function that destroys its sources.
func (k *keyFlags) compositeKey(log zerolog.Logger) (*composite.Key, func(), error) {
	key, err := composite.New(composite.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	var sources []userkey.Source
	cleanup := func() {
		for _, src := range sources {
			src.Destroy()
		}
	}
	add := func(src userkey.Source) error {
		sources = append(sources, src)
		return key.Add(src)
	}

	switch {
	case k.password == "-":
		password, err := internal.PromptPassword("Password: ")
		if err != nil {
			return nil, nil, err
		}
		err = add(userkey.NewPasswordBytes(password))
		protect.Wipe(password)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	case len(k.password) > 0:
		if err := add(userkey.NewPassword(k.password)); err != nil {
			cleanup()
			return nil, nil, err
		}
	case len(k.passwordEnv) > 0:
		password, ok := os.LookupEnv(k.passwordEnv)
		if !ok {
			return nil, nil, fmt.Errorf("password environment variable '%s' is not set", k.passwordEnv)
		}
		if err := add(userkey.NewPassword(password)); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	var opts []userkey.KeyFileOpt
	if k.allowDB {
		opts = append(opts, userkey.AllowDatabaseFile())
	}
	for _, path := range k.keyFiles {
		kf, err := readKeyFile(path, opts...)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := add(kf); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	if key.Len() == 0 {
		return nil, nil, errors.New("at least one key source is required, use --password, --password-env, or --keyfile")
	}
	return key, cleanup, nil
}

func readKeyFile(path string, opts ...userkey.KeyFileOpt) (*userkey.KeyFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", userkey.ErrUnreadableKeyFile, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return userkey.NewKeyFile(f, path, opts...)
}
