package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Output is where Echo writes. It's stderr unless a test replaces it.
var Output io.Writer = os.Stderr

// Fatal will Echo the message and os.Exit with code 1.
func Fatal(msg string, args ...any) {
	Echo(msg, args...)
	os.Exit(1)
}

// FatalErr will Echo the error chain, one cause per line, and os.Exit with code 1.
func FatalErr(err error) {
	Echo("%s", ErrorChain(err))
	os.Exit(1)
}

// Echo will emit the given message without any logging formatting.
func Echo(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = fmt.Fprintf(Output, msg, args...)
}

// ErrorChain formats err followed by each error it wraps that adds a different message.
func ErrorChain(err error) string {
	if err == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Error: ")
	sb.WriteString(err.Error())
	seen := err.Error()
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		msg := cause.Error()
		if msg == seen {
			continue
		}
		sb.WriteString("\n  caused by: ")
		sb.WriteString(msg)
		seen = msg
	}
	return sb.String()
}
