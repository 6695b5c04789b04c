package protect

import (
	"crypto/subtle"
	"errors"
	"hash/maphash"
	"sync"

	"github.com/awnumar/memguard"
)

const redacted = "[REDACTED]"

var (
	ErrDestroyed = errors.New("protected value has been destroyed")
)

// Buffer is a construct-once, read-many container for secret bytes.
// The zero value is an empty, usable Buffer.
type Buffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	length    int
	destroyed bool
}

// New copies data into a new Buffer.
// The caller's slice is left as-is, so the caller is still responsible for wiping it.
func New(data []byte) *Buffer {
	b := &Buffer{length: len(data)}
	if len(data) == 0 {
		return b
	}
	// NewEnclave wipes its input, so hand it a copy.
	tmp := make([]byte, len(data))
	copy(tmp, data)
	b.enclave = memguard.NewEnclave(tmp)
	return b
}

// Len returns the logical length of the secret.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.length
}

// Bytes returns a fresh copy of the secret.
// The returned slice is never shared with the Buffer, so it may be wiped independently.
func (b *Buffer) Bytes() ([]byte, error) {
	if b == nil {
		return nil, ErrDestroyed
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.destroyed {
		return nil, ErrDestroyed
	}
	out := make([]byte, b.length)
	if b.enclave == nil {
		return out, nil
	}
	locked, err := b.enclave.Open()
	if err != nil {
		return nil, err
	}
	defer locked.Destroy()
	copy(out, locked.Bytes())
	return out, nil
}

// Equal reports whether both buffers hold the same bytes.
// The comparison is constant time with respect to content, and the revealed temporaries are wiped before returning.
// A destroyed Buffer is never equal to anything.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == other {
		return b != nil && !b.isDestroyed()
	}
	mine, err := b.Bytes()
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

// Hash computes a hash over the revealed content using the given seed.
// Buffers that are Equal produce the same Hash for the same seed.
func (b *Buffer) Hash(seed maphash.Seed) uint64 {
	data, err := b.Bytes()
	if err != nil {
		return 0
	}
	defer Wipe(data)
	return maphash.Bytes(seed, data)
}

// Destroy releases the protected copy.
// It's safe to call Destroy more than once.
func (b *Buffer) Destroy() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return
	}
	b.enclave = nil
	b.destroyed = true
}

func (b *Buffer) isDestroyed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.destroyed
}

func (b *Buffer) String() string {
	return redacted
}

func (b *Buffer) GoString() string {
	return redacted
}

// Wipe zeroes each given slice in place.
func Wipe(data ...[]byte) {
	for _, d := range data {
		if len(d) > 0 {
			memguard.WipeBytes(d)
		}
	}
}
