package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/saylorsolutions/vaultkey/cmd/internal"
)

var version = "dev"

type command struct {
	usage string
	desc  string
	run   func(ctx context.Context, args []string) error
}

var commands = map[string]command{
	"derive": {
		usage: "derive [FLAGS]",
		desc:  "Derives a master key from the given key sources, and prints it with the parameters needed to derive it again.",
		run:   runDerive,
	},
	"bench": {
		usage: "bench [FLAGS]",
		desc:  "Reports how many transform rounds this machine completes in the configured benchmark duration.",
		run:   runBench,
	},
	"keyfile": {
		usage: "keyfile [FLAGS] FILE",
		desc:  "Generates a new XML key file at FILE. Existing files are never overwritten.",
		run:   runKeyFile,
	},
	"encrypt": {
		usage: "encrypt [FLAGS]",
		desc:  "Compresses and encrypts the input into an envelope with a key derived from the given key sources.",
		run:   runEncrypt,
	},
	"decrypt": {
		usage: "decrypt [FLAGS]",
		desc:  "Decrypts an envelope created with encrypt.",
		run:   runDecrypt,
	},
	"keystream": {
		usage: "keystream [FLAGS]",
		desc:  "Prints keystream bytes as hex, from the given key or a fresh random key.",
		run:   runKeystream,
	},
	"version": {
		usage: "version",
		desc:  "Prints the version of vaultkey.",
		run: func(_ context.Context, _ []string) error {
			fmt.Println(version)
			return nil
		},
	},
}

func usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("    %-10s %s\n", name, commands[name].desc))
	}
	fmt.Printf(`
vaultkey derives keys from passwords and key files, and uses them to encrypt data.

USAGE:  vaultkey COMMAND [FLAGS]

COMMANDS:
%s
Run 'vaultkey COMMAND --help' to see the flags for a command.
`, sb.String())
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	name := os.Args[1]
	if name == "-h" || name == "--help" || name == "help" {
		usage()
		return
	}
	cmd, ok := commands[name]
	if !ok {
		usage()
		internal.Fatal("Unknown command '%s'", name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.run(ctx, os.Args[2:])
	stop()
	if err != nil && !errors.Is(err, errHelp) {
		internal.FatalErr(err)
	}
}
