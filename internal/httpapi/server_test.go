package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/potwager/internal/seed"
	"github.com/roach88/potwager/internal/store"
	"github.com/roach88/potwager/internal/testutil"
	"github.com/roach88/potwager/internal/wager"
)

type fixture struct {
	srv   *Server
	store *store.Store
}

func newFixture(t *testing.T, random wager.RandomSource, opts Options) *fixture {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "wager.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	engine := wager.New(st, random, wager.WithIDGenerator(wager.NewFixedGenerator("play-1", "play-2", "play-3")))
	return &fixture{srv: New(engine, st, opts), store: st}
}

func (f *fixture) do(t *testing.T, method, path, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return resp.StatusCode, out
}

func as(id string) map[string]string {
	return map[string]string{headerIdentity: id}
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error body, got %v", body)
	return e["code"].(string)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed("s"), Options{})

	status, body := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestStake_FirstWriteWins(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed("s"), Options{})

	status, body := f.do(t, http.MethodPost, "/v1/stake", `{"value": 10}`, as("owner"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["applied"])

	status, body = f.do(t, http.MethodPost, "/v1/stake", `{"value": 99}`, as("owner"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["applied"])

	state := body["state"].(map[string]any)
	assert.Equal(t, float64(10), state["payment"])
	assert.Equal(t, float64(10), state["pot"])
}

func TestStake_MissingValue(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed("s"), Options{})

	status, body := f.do(t, http.MethodPost, "/v1/stake", `{}`, as("owner"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, body))
}

func TestStake_RequiresIdentity(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed("s"), Options{})

	status, body := f.do(t, http.MethodPost, "/v1/stake", `{"value": 10}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, string(wager.ErrCodeUnauthenticated), errorCode(t, body))
}

func TestPlay_BeforeStakeIsConflict(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed("s"), Options{})

	status, body := f.do(t, http.MethodPost, "/v1/play", "", as("alice"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(wager.ErrCodeConfiguration), errorCode(t, body))
}

func TestPlay_InsufficientFunds(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed("s"), Options{})
	f.do(t, http.MethodPost, "/v1/stake", `{"value": 10}`, as("owner"))

	status, body := f.do(t, http.MethodPost, "/v1/play", "", as("alice"))
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, string(wager.ErrCodeInsufficientFunds), errorCode(t, body))
}

func TestPlay_Win(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed(testutil.SeedFor("alice", 0, true)), Options{})
	ctx := context.Background()

	f.do(t, http.MethodPost, "/v1/stake", `{"value": 10}`, as("owner"))
	_, err := f.store.Deposit(ctx, "alice", 100)
	require.NoError(t, err)

	status, body := f.do(t, http.MethodPost, "/v1/play", "", as("alice"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "play-1", body["play_id"])
	assert.Equal(t, true, body["won"])
	assert.Equal(t, float64(10), body["payout"])
	assert.Equal(t, float64(100), body["balance_after"])
	assert.Equal(t, float64(10), body["pot_after"])
	assert.Equal(t, float64(1), body["next_nonce"])

	status, body = f.do(t, http.MethodGet, "/v1/accounts/alice", "", as("alice"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(100), body["balance"])

	status, body = f.do(t, http.MethodGet, "/v1/state", "", as("alice"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "active", body["phase"])
	assert.Equal(t, float64(10), body["pot"])
	assert.Equal(t, float64(1), body["nonce"])
}

func TestPlay_OverflowIsUnprocessable(t *testing.T) {
	random := testutil.NewSequenceSeed(
		testutil.SeedFor("bob", 0, false),
		testutil.SeedFor("alice", 1, true),
	)
	f := newFixture(t, random, Options{})
	ctx := context.Background()

	f.do(t, http.MethodPost, "/v1/stake", `{"value": 10}`, as("owner"))
	_, err := f.store.Deposit(ctx, "bob", 10)
	require.NoError(t, err)
	_, err = f.store.Deposit(ctx, "alice", wager.MaxAmount)
	require.NoError(t, err)

	// bob loses, pot grows to 20
	status, body := f.do(t, http.MethodPost, "/v1/play", "", as("bob"))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, body["won"])

	status, body = f.do(t, http.MethodPost, "/v1/play", "", as("alice"))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, string(wager.ErrCodeArithmeticOverflow), errorCode(t, body))

	balance, err := f.store.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, wager.MaxAmount, balance)
}

func TestAccount_DecodesPathIdentity(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed("s"), Options{})
	ctx := context.Background()

	_, err := f.store.Deposit(ctx, wager.NewIdentity("José"), 500)
	require.NoError(t, err)
	_, err = f.store.Deposit(ctx, "alice bob", 700)
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		identity string
		balance  float64
	}{
		{"composed", "/v1/accounts/Jos%C3%A9", "José", 500},
		{"decomposed", "/v1/accounts/Jose%CC%81", "José", 500},
		{"space", "/v1/accounts/alice%20bob", "alice bob", 700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.do(t, http.MethodGet, tt.path, "", nil)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.identity, body["identity"])
			assert.Equal(t, tt.balance, body["balance"])
		})
	}
}

func TestState_Uninitialized(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed("s"), Options{})

	status, body := f.do(t, http.MethodGet, "/v1/state", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "uninitialized", body["phase"])
	assert.Equal(t, false, body["payment_set"])
}

func TestAPIKeyGuard(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed("s"), Options{APIKeys: []string{"k1", "k2"}})

	status, body := f.do(t, http.MethodGet, "/v1/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	status, _ = f.do(t, http.MethodGet, "/v1/state", "", map[string]string{headerAPIKey: "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(t, http.MethodGet, "/v1/state", "", map[string]string{headerAPIKey: "k2"})
	assert.Equal(t, http.StatusOK, status)

	// health stays open
	status, _ = f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestSeed_NotPublished(t *testing.T) {
	f := newFixture(t, testutil.FixedSeed("s"), Options{})

	status, body := f.do(t, http.MethodGet, "/v1/seed", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestSeed_PublishesCommitment(t *testing.T) {
	clock := testutil.NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	rot, err := seed.NewRotating(time.Hour, seed.WithClock(clock.Now))
	require.NoError(t, err)

	f := newFixture(t, rot, Options{Seeds: rot})

	status, body := f.do(t, http.MethodGet, "/v1/seed", "", nil)
	require.Equal(t, http.StatusOK, status)

	commitment := body["commitment"].(map[string]any)
	assert.Equal(t, rot.Commitment().Hash, commitment["hash"])
	assert.Empty(t, body["revealed"])

	_, err = rot.Rotate()
	require.NoError(t, err)

	_, body = f.do(t, http.MethodGet, "/v1/seed", "", nil)
	assert.Len(t, body["revealed"], 1)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(wager.ErrCodeConfiguration))
	assert.Equal(t, http.StatusPaymentRequired, statusFor(wager.ErrCodeInsufficientFunds))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(wager.ErrCodeArithmeticOverflow))
	assert.Equal(t, http.StatusUnauthorized, statusFor(wager.ErrCodeUnauthenticated))
	assert.Equal(t, http.StatusInternalServerError, statusFor("OTHER"))
}
