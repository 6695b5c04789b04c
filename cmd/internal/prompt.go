package internal

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("stdin is not a terminal")

// PromptPassword reads a password from the terminal without echoing it.
// The caller should wipe the result.
func PromptPassword(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	_, _ = fmt.Fprint(os.Stderr, prompt)
	defer func() {
		_, _ = fmt.Fprintln(os.Stderr)
	}()
	password, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}
