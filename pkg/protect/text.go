package protect

import (
	"crypto/subtle"
	"sync"
	"unicode/utf8"
)

type textState uint8

const (
	textProtected textState = iota
	textRevealed
)

// Text is a secret UTF-8 string.
// It starts out protected, and moves to the revealed state the first time ReadString is called.
type Text struct {
	mu     sync.Mutex
	state  textState
	buf    *Buffer
	plain  string
	runes  int
	closed bool
}

// NewText protects the given string.
func NewText(s string) *Text {
	data := []byte(s)
	defer Wipe(data)
	return &Text{
		buf:   New(data),
		runes: utf8.RuneCountInString(s),
	}
}

// NewTextBytes protects the given UTF-8 bytes.
// The caller's slice is left as-is.
func NewTextBytes(data []byte) *Text {
	return &Text{
		buf:   New(data),
		runes: utf8.RuneCount(data),
	}
}

// Len returns the number of characters in the text.
// This is the same before and after the text is revealed.
func (t *Text) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runes
}

// Revealed reports whether ReadString has promoted this Text to plain storage.
func (t *Text) Revealed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == textRevealed
}

// Bytes returns a fresh UTF-8 copy of the text that the caller should wipe when done.
// This doesn't change the state of the Text.
func (t *Text) Bytes() ([]byte, error) {
	if t == nil {
		return nil, ErrDestroyed
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrDestroyed
	}
	if t.state == textRevealed {
		return []byte(t.plain), nil
	}
	return t.buf.Bytes()
}

// ReadString returns the text as a string.
// The first call permanently moves the Text to the revealed state: the protected copy is destroyed and the string is cached.
func (t *Text) ReadString() (string, error) {
	if t == nil {
		return "", ErrDestroyed
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return "", ErrDestroyed
	}
	if t.state == textRevealed {
		return t.plain, nil
	}
	data, err := t.buf.Bytes()
	if err != nil {
		return "", err
	}
	t.plain = string(data)
	Wipe(data)
	t.buf.Destroy()
	t.buf = nil
	t.state = textRevealed
	return t.plain, nil
}

// Equal compares the content of two texts in constant time.
func (t *Text) Equal(other *Text) bool {
	if t == other {
		return t != nil
	}
	mine, err := t.Bytes()
	if err != nil {
		return false
	}
	defer Wipe(mine)
	theirs, err := other.Bytes()
	if err != nil {
		return false
	}
	defer Wipe(theirs)
	return subtle.ConstantTimeCompare(mine, theirs) == 1
}

// Destroy releases the protected copy, and drops the reference to a revealed string.
func (t *Text) Destroy() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Destroy()
	t.buf = nil
	t.plain = ""
	t.closed = true
}

func (t *Text) String() string {
	return redacted
}

func (t *Text) GoString() string {
	return redacted
}
