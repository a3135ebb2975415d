package harness

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/potwager/internal/testutil"
	"github.com/roach88/potwager/internal/wager"
)

// Harness drives one scenario against a fresh in-memory host.
type Harness struct {
	store  *testutil.MemoryStore
	engine *wager.Engine
	random *stepSeed
	logger *slog.Logger
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sends engine and harness logs to l. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// stepSeed is the RandomSource the harness repoints before every play.
type stepSeed struct {
	mu   sync.Mutex
	seed []byte
}

func (s *stepSeed) set(seed []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = seed
}

func (s *stepSeed) CurrentSeed() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.seed...)
}

// sequentialIDs numbers plays play-1, play-2, ... so traces are stable.
type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("play-%d", g.n)
}

// Run executes a scenario and checks its expectations.
//
// Failed expectations are reported in Result.Errors; the returned error is
// reserved for failures of the run itself.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	defaultSeed, err := hex.DecodeString(scenario.Seed)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	st := testutil.NewMemoryStore()
	random := &stepSeed{seed: defaultSeed}
	h := &Harness{
		store: st,
		engine: wager.New(st, random,
			wager.WithIDGenerator(&sequentialIDs{}),
			wager.WithLogger(cfg.logger),
		),
		random: random,
		logger: cfg.logger,
	}

	for id, balance := range scenario.Accounts {
		st.SetBalance(wager.NewIdentity(id), balance)
	}

	if scenario.Nonce != nil {
		st.SetNonce(*scenario.Nonce)
	}

	if scenario.Stake != nil {
		if _, err := h.engine.SetStake(ctx, DefaultStaker, *scenario.Stake); err != nil {
			return nil, fmt.Errorf("apply scenario stake: %w", err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		event, err := h.executeStep(ctx, i, step, defaultSeed)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
		result.Trace = append(result.Trace, event)

		for _, failure := range checkStep(i, step.Expect, event) {
			result.AddError(failure.Error())
		}
	}

	result.Final = h.snapshot()
	for _, failure := range checkFinal(scenario.Final, result.Final) {
		result.AddError(failure.Error())
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"steps", len(scenario.Flow),
		"pass", result.Pass,
	)
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, i int, step FlowStep, defaultSeed []byte) (TraceEvent, error) {
	event := TraceEvent{Step: i, Op: step.Op()}

	var stepErr error
	switch event.Op {
	case opStake:
		caller := step.As
		if caller == "" {
			caller = DefaultStaker
		}
		event.Caller = wager.NewIdentity(caller)
		event.Value = step.Stake

		applied, err := h.engine.SetStake(ctx, event.Caller, *step.Stake)
		if err == nil {
			event.Applied = &applied
		}
		stepErr = err

	case opPlay:
		event.Caller = wager.NewIdentity(step.Play)

		seed := defaultSeed
		if step.Seed != "" {
			decoded, err := hex.DecodeString(step.Seed)
			if err != nil {
				return event, fmt.Errorf("decode seed: %w", err)
			}
			seed = decoded
		}
		h.random.set(seed)

		out, err := h.engine.Play(ctx, event.Caller)
		if err == nil {
			event.Outcome = out
		}
		stepErr = err
	}

	if stepErr != nil {
		code := wager.CodeOf(stepErr)
		if code == "" {
			return event, stepErr
		}
		event.Error = string(code)
	}

	event.Pot = h.store.Pot()
	event.Nonce = h.store.Nonce()
	event.Balance = h.store.Balance(event.Caller)

	h.logger.Debug("flow step completed",
		"step", i,
		"op", event.Op,
		"caller", event.Caller,
		"error", event.Error,
	)
	return event, nil
}

func (h *Harness) snapshot() FinalSnapshot {
	payment, set := h.store.Payment()
	return FinalSnapshot{
		Payment:    payment,
		PaymentSet: set,
		Pot:        h.store.Pot(),
		Nonce:      h.store.Nonce(),
		Balances:   h.store.Balances(),
	}
}
