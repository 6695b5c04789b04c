package entropy

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

const (
	PoolSize  = sha512.Size
	BlockSize = sha256.Size
)

var (
	ErrInvalidLength = errors.New("invalid random byte count")
)

// Pool accumulates entropy and generates random bytes from it.
type Pool struct {
	mu        sync.Mutex
	pool      [PoolSize]byte
	counter   uint64
	generated uint64
	weak      *rand.Rand
	log       zerolog.Logger
	extra     [][]byte
}

var _ io.Reader = (*Pool)(nil)

type Option = func(*Pool) error

// WithLogger sets the logger used to report seeding.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pool) error {
		p.log = log
		return nil
	}
}

// WithEntropy mixes additional caller-supplied material into the initial seed.
func WithEntropy(material []byte) Option {
	return func(p *Pool) error {
		if len(material) == 0 {
			return errors.New("initial entropy must not be empty")
		}
		p.extra = append(p.extra, append([]byte(nil), material...))
		return nil
	}
}

// New creates and seeds a Pool.
func New(opts ...Option) (*Pool, error) {
	p := &Pool{
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	now := uint64(time.Now().UnixNano())
	p.weak = rand.New(rand.NewPCG(now, now^0x9e3779b97f4a7c15))

	signals := collectSignals()
	signals = append(signals, p.extra...)
	h := sha512.New()
	for _, s := range signals {
		_, _ = h.Write(s)
	}
	h.Sum(p.pool[:0])
	protect.Wipe(signals...)
	p.extra = nil

	p.log.Debug().Int("signals", len(signals)).Msg("Seeded entropy pool")
	return p, nil
}

// AddEntropy folds material into the pool.
func (p *Pool) AddEntropy(material []byte) {
	if len(material) == 0 {
		return
	}
	if len(material) >= PoolSize {
		sum := sha512.Sum512(material)
		defer protect.Wipe(sum[:])
		material = sum[:]
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	buf := make([]byte, 0, PoolSize+len(material))
	buf = append(buf, p.pool[:]...)
	buf = append(buf, material...)
	p.pool = sha512.Sum512(buf)
	protect.Wipe(buf)
}

// GetRandomBytes returns n random bytes.
func (p *Pool) GetRandomBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidLength
	}
	out := make([]byte, n)
	p.fill(out)
	return out, nil
}

// Generate256 returns a single 32 byte block of random output.
func (p *Pool) Generate256() [BlockSize]byte {
	var out [BlockSize]byte
	p.fill(out[:])
	return out
}

// Read fills b with random bytes. It never fails.
func (p *Pool) Read(b []byte) (int, error) {
	p.fill(b)
	return len(b), nil
}

// Generated returns the total number of random bytes handed out by this Pool.
func (p *Pool) Generated() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generated
}

func (p *Pool) fill(out []byte) {
	for len(out) > 0 {
		n := min(len(out), BlockSize)
		block := p.block(n)
		copy(out, block[:n])
		protect.Wipe(block[:])
		out = out[n:]
	}
}

// block produces the next output block, counting used bytes as handed out.
func (p *Pool) block(used int) [BlockSize]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	var buf [PoolSize + 8 + BlockSize]byte
	copy(buf[:PoolSize], p.pool[:])
	p.counter++
	binary.LittleEndian.PutUint64(buf[PoolSize:], p.counter)
	weak := buf[PoolSize+8:]
	for i := 0; i < len(weak); i += 8 {
		binary.LittleEndian.PutUint64(weak[i:], p.weak.Uint64())
	}
	out := sha256.Sum256(buf[:])
	protect.Wipe(buf[:])
	p.generated += uint64(used)
	return out
}
