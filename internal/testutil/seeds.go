package testutil

import (
	"encoding/binary"
	"fmt"

	"github.com/roach88/potwager/internal/wager"
)

// FixedSeed is a RandomSource that always returns the same bytes.
type FixedSeed []byte

// CurrentSeed returns a copy of the seed.
func (s FixedSeed) CurrentSeed() []byte {
	return append([]byte(nil), s...)
}

// SeedFor returns the first 8-byte counter seed whose draw for (id, nonce)
// has the requested outcome. It lets tests force a win or a loss without
// hard-coding digests.
//
// Panics if no seed is found in the first million candidates, which for a
// ~50% draw cannot happen short of a broken hash.
func SeedFor(id wager.Identity, nonce uint64, won bool) []byte {
	seed := make([]byte, 8)
	for i := uint64(0); i < 1_000_000; i++ {
		binary.BigEndian.PutUint64(seed, i)
		if wager.Draw(seed, id, nonce).Won == won {
			return append([]byte(nil), seed...)
		}
	}
	panic(fmt.Sprintf("SeedFor: no seed found for %s/%d/%v", id, nonce, won))
}

// SequenceSeed is a RandomSource that hands out seeds in order, repeating
// the last one once exhausted.
//
// Not safe for concurrent use.
type SequenceSeed struct {
	seeds [][]byte
	idx   int
}

// NewSequenceSeed creates a source that returns seeds in order.
func NewSequenceSeed(seeds ...[]byte) *SequenceSeed {
	return &SequenceSeed{seeds: seeds}
}

// CurrentSeed returns the next seed.
func (s *SequenceSeed) CurrentSeed() []byte {
	if len(s.seeds) == 0 {
		return nil
	}
	seed := s.seeds[s.idx]
	if s.idx < len(s.seeds)-1 {
		s.idx++
	}
	return append([]byte(nil), seed...)
}
