// Package seed provides RandomSource implementations for the wager engine.
//
// The engine only needs "the current seed". Static serves fixed seeds for
// tests and replays. Rotating is a provably-fair source: it publishes the
// SHA-256 commitment of the seed in use and reveals the seed once it is
// rotated out, so every past draw can be checked against the commitment.
package seed

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Size is the length of generated seeds in bytes.
const Size = 32

// Static always returns the same seed.
type Static []byte

// ParseStatic decodes a hex seed. An empty string is a valid, empty seed.
func ParseStatic(s string) (Static, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return Static(b), nil
}

// CurrentSeed returns a copy of the seed.
func (s Static) CurrentSeed() []byte {
	return append([]byte(nil), s...)
}

// Commit returns the hex SHA-256 commitment for a seed.
func Commit(seed []byte) string {
	sum := sha256.Sum256(seed)
	return hex.EncodeToString(sum[:])
}

// Commitment is the published hash of the seed currently in use.
type Commitment struct {
	Hash  string    `json:"hash"`
	Since time.Time `json:"since"`
}

// Reveal is a retired seed together with the commitment it was served under.
type Reveal struct {
	Seed      string    `json:"seed"` // hex
	Hash      string    `json:"hash"`
	Since     time.Time `json:"since"`
	RetiredAt time.Time `json:"retired_at"`
}

// Rotating serves a random seed and replaces it once interval has elapsed.
//
// Thread-safety: Rotating is safe for concurrent use.
type Rotating struct {
	mu       sync.Mutex
	current  []byte
	since    time.Time
	interval time.Duration
	revealed []Reveal
	keep     int
	now      func() time.Time
	entropy  io.Reader
	logger   *slog.Logger
}

// RotatingOption configures a Rotating source.
type RotatingOption func(*Rotating)

// WithClock sets the time source. Default: time.Now.
func WithClock(now func() time.Time) RotatingOption {
	return func(r *Rotating) {
		r.now = now
	}
}

// WithEntropy sets the entropy source. Default: crypto/rand.Reader.
func WithEntropy(rd io.Reader) RotatingOption {
	return func(r *Rotating) {
		r.entropy = rd
	}
}

// WithKeep sets how many revealed seeds are retained. Default: 16.
func WithKeep(n int) RotatingOption {
	return func(r *Rotating) {
		r.keep = n
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) RotatingOption {
	return func(r *Rotating) {
		r.logger = l
	}
}

// NewRotating creates a source with a fresh seed. An interval <= 0 never rotates.
func NewRotating(interval time.Duration, opts ...RotatingOption) (*Rotating, error) {
	r := &Rotating{
		interval: interval,
		keep:     16,
		now:      time.Now,
		entropy:  rand.Reader,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	seed, err := r.generate()
	if err != nil {
		return nil, err
	}
	r.current = seed
	r.since = r.now()
	return r, nil
}

// CurrentSeed returns the seed in use, rotating first if it has expired.
// If fresh entropy cannot be read the old seed stays in service.
func (r *Rotating) CurrentSeed() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.interval > 0 && r.now().Sub(r.since) >= r.interval {
		if err := r.rotateLocked(); err != nil {
			r.logger.Warn("seed rotation failed, keeping current seed", "error", err)
		}
	}
	return append([]byte(nil), r.current...)
}

// Rotate retires the current seed immediately and returns its reveal.
func (r *Rotating) Rotate() (Reveal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.rotateLocked(); err != nil {
		return Reveal{}, err
	}
	return r.revealed[len(r.revealed)-1], nil
}

// Commitment returns the hash of the seed currently in use.
func (r *Rotating) Commitment() Commitment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Commitment{Hash: Commit(r.current), Since: r.since}
}

// Revealed returns retired seeds, oldest first.
func (r *Rotating) Revealed() []Reveal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Reveal(nil), r.revealed...)
}

func (r *Rotating) rotateLocked() error {
	next, err := r.generate()
	if err != nil {
		return err
	}

	now := r.now()
	r.revealed = append(r.revealed, Reveal{
		Seed:      hex.EncodeToString(r.current),
		Hash:      Commit(r.current),
		Since:     r.since,
		RetiredAt: now,
	})
	if r.keep > 0 && len(r.revealed) > r.keep {
		r.revealed = r.revealed[len(r.revealed)-r.keep:]
	}

	r.current = next
	r.since = now
	r.logger.Info("seed rotated", "commitment", Commit(next))
	return nil
}

func (r *Rotating) generate() ([]byte, error) {
	seed := make([]byte, Size)
	if _, err := io.ReadFull(r.entropy, seed); err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}
	return seed, nil
}
