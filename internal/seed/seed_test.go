package seed

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/potwager/internal/testutil"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("no entropy")
}

func TestParseStatic(t *testing.T) {
	s, err := ParseStatic("00ff10")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, s.CurrentSeed())

	empty, err := ParseStatic("")
	require.NoError(t, err)
	assert.Empty(t, empty.CurrentSeed())

	_, err = ParseStatic("zz")
	assert.Error(t, err)
}

func TestStatic_ReturnsCopy(t *testing.T) {
	s := Static{1, 2}
	got := s.CurrentSeed()
	got[0] = 7
	assert.Equal(t, []byte{1, 2}, s.CurrentSeed())
}

func TestCommit_KnownVector(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Commit(nil))
}

func TestRotating_StableWithinInterval(t *testing.T) {
	clock := testutil.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	r, err := NewRotating(time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	first := r.CurrentSeed()
	require.Len(t, first, Size)
	clock.Advance(59 * time.Minute)

	assert.Equal(t, first, r.CurrentSeed())
	assert.Empty(t, r.Revealed())
}

func TestRotating_RotatesAndReveals(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := testutil.NewManualClock(start)
	r, err := NewRotating(time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	first := r.CurrentSeed()
	before := r.Commitment()
	assert.Equal(t, Commit(first), before.Hash)
	assert.Equal(t, start, before.Since)

	clock.Advance(time.Hour)
	second := r.CurrentSeed()
	assert.NotEqual(t, first, second)

	revealed := r.Revealed()
	require.Len(t, revealed, 1)
	assert.Equal(t, hex.EncodeToString(first), revealed[0].Seed)
	assert.Equal(t, before.Hash, revealed[0].Hash)
	assert.Equal(t, start.Add(time.Hour), revealed[0].RetiredAt)
	assert.Equal(t, Commit(second), r.Commitment().Hash)
}

func TestRotating_ZeroIntervalNeverRotates(t *testing.T) {
	clock := testutil.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	r, err := NewRotating(0, WithClock(clock.Now))
	require.NoError(t, err)

	first := r.CurrentSeed()
	clock.Advance(1000 * time.Hour)
	assert.Equal(t, first, r.CurrentSeed())
}

func TestRotating_ManualRotate(t *testing.T) {
	entropy := bytes.NewReader(append(bytes.Repeat([]byte{1}, Size), bytes.Repeat([]byte{2}, Size)...))
	r, err := NewRotating(0, WithEntropy(entropy))
	require.NoError(t, err)

	reveal, err := r.Rotate()
	require.NoError(t, err)

	assert.Equal(t, hex.EncodeToString(bytes.Repeat([]byte{1}, Size)), reveal.Seed)
	assert.Equal(t, bytes.Repeat([]byte{2}, Size), r.CurrentSeed())
}

func TestRotating_KeepsBoundedReveals(t *testing.T) {
	r, err := NewRotating(0, WithKeep(2))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := r.Rotate()
		require.NoError(t, err)
	}
	assert.Len(t, r.Revealed(), 2)
}

func TestRotating_EntropyFailure(t *testing.T) {
	_, err := NewRotating(time.Hour, WithEntropy(failingReader{}))
	assert.Error(t, err)
}

func TestRotating_FailedRotationKeepsSeed(t *testing.T) {
	clock := testutil.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	entropy := bytes.NewReader(bytes.Repeat([]byte{9}, Size))
	r, err := NewRotating(time.Minute, WithClock(clock.Now), WithEntropy(entropy))
	require.NoError(t, err)

	clock.Advance(time.Hour)

	assert.Equal(t, bytes.Repeat([]byte{9}, Size), r.CurrentSeed())
	assert.Empty(t, r.Revealed())
}
