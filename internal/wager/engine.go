package wager

import (
	"context"
	"fmt"
	"log/slog"
)

// Phase is the engine's logical state.
type Phase string

const (
	// PhaseUninitialized means no stake has been set; Play is rejected.
	PhaseUninitialized Phase = "uninitialized"

	// PhaseActive means the stake is fixed. Active is terminal.
	PhaseActive Phase = "active"
)

// Snapshot is a consistent read of the engine's persistent values.
type Snapshot struct {
	Payment    Amount `json:"payment"`
	PaymentSet bool   `json:"payment_set"`
	Pot        Amount `json:"pot"`
	Nonce      uint64 `json:"nonce"`
}

// Phase derives the logical state from the snapshot.
func (s Snapshot) Phase() Phase {
	if s.PaymentSet {
		return PhaseActive
	}
	return PhaseUninitialized
}

// Outcome describes a completed play.
type Outcome struct {
	PlayID       string   `json:"play_id"`
	Identity     Identity `json:"identity"`
	Nonce        uint64   `json:"nonce"` // nonce the draw used
	NextNonce    uint64   `json:"next_nonce"`
	DrawByte     byte     `json:"draw_byte"`
	Won          bool     `json:"won"`
	Stake        Amount   `json:"stake"`
	Payout       Amount   `json:"payout"` // pot swept on a win, zero on a loss
	BalanceAfter Amount   `json:"balance_after"`
	PotAfter     Amount   `json:"pot_after"`
}

// Engine is the wager state-transition function.
//
// Engine holds no mutable state of its own; it is safe to share as long as
// the Store serializes Update calls.
type Engine struct {
	store  Store
	random RandomSource
	ids    IDGenerator
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator sets the generator for journaled play IDs.
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over the given host store and random source.
func New(store Store, random RandomSource, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		random: random,
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetStake fixes the stake and seeds the pot with it.
//
// First write wins: once a stake is set, later calls change nothing and
// return applied=false without error. A zero stake is a valid stake.
func (e *Engine) SetStake(ctx context.Context, caller Identity, value Amount) (applied bool, err error) {
	if !caller.Valid() {
		return false, NewUnauthenticatedError()
	}

	err = e.store.Update(ctx, func(tx Tx) error {
		_, set, err := tx.Payment(ctx)
		if err != nil {
			return fmt.Errorf("read payment: %w", err)
		}
		if set {
			return nil
		}
		if err := tx.SetPayment(ctx, value); err != nil {
			return fmt.Errorf("write payment: %w", err)
		}
		if err := tx.SetPot(ctx, value); err != nil {
			return fmt.Errorf("write pot: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("set stake: %w", err)
	}

	if applied {
		e.logger.Info("stake set", "caller", caller, "payment", value)
	} else {
		e.logger.Debug("stake already set, ignoring", "caller", caller, "value", value)
	}
	return applied, nil
}

// Play debits the stake from caller, draws, and either pays out the pot or
// adds the stake to it.
//
// The whole call is one Store.Update: on any error no balance, pot or nonce
// changes.
func (e *Engine) Play(ctx context.Context, caller Identity) (*Outcome, error) {
	if !caller.Valid() {
		return nil, NewUnauthenticatedError()
	}

	var out *Outcome
	err := e.store.Update(ctx, func(tx Tx) error {
		o, err := e.play(ctx, tx, caller)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		if code := CodeOf(err); code != "" {
			e.logger.Info("play rejected", "caller", caller, "code", code)
			return nil, err
		}
		return nil, fmt.Errorf("play: %w", err)
	}

	e.logger.Debug("play completed",
		"caller", caller,
		"play_id", out.PlayID,
		"nonce", out.Nonce,
		"won", out.Won,
		"payout", out.Payout,
		"pot", out.PotAfter,
	)
	return out, nil
}

// play computes every new value before writing any of them.
func (e *Engine) play(ctx context.Context, tx Tx, caller Identity) (*Outcome, error) {
	payment, set, err := tx.Payment(ctx)
	if err != nil {
		return nil, fmt.Errorf("read payment: %w", err)
	}
	if !set {
		return nil, NewConfigurationError()
	}

	nonce, err := tx.Nonce(ctx)
	if err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	pot, err := tx.Pot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read pot: %w", err)
	}
	balance, err := tx.Balance(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}

	newBalance, ok := CheckedSub(balance, payment)
	if !ok {
		return nil, NewInsufficientFundsError(caller, balance, payment)
	}

	seed := e.random.CurrentSeed()
	draw := Draw(seed, caller, nonce)

	var payout Amount
	if draw.Won {
		credited, ok := CheckedAdd(newBalance, pot)
		if !ok {
			return nil, NewOverflowError(caller, "balance", newBalance, pot)
		}
		newBalance = credited
		payout = pot
		pot = 0
	}

	newPot, ok := CheckedAdd(pot, payment)
	if !ok {
		return nil, NewOverflowError(caller, "pot", pot, payment)
	}

	// Nonce is decorrelation salt, not currency: wrapping is intended.
	nextNonce := nonce + 1

	out := &Outcome{
		PlayID:       e.ids.Generate(),
		Identity:     caller,
		Nonce:        nonce,
		NextNonce:    nextNonce,
		DrawByte:     draw.Byte(),
		Won:          draw.Won,
		Stake:        payment,
		Payout:       payout,
		BalanceAfter: newBalance,
		PotAfter:     newPot,
	}

	if err := tx.SetBalance(ctx, caller, newBalance); err != nil {
		return nil, fmt.Errorf("write balance: %w", err)
	}
	if err := tx.SetPot(ctx, newPot); err != nil {
		return nil, fmt.Errorf("write pot: %w", err)
	}
	if err := tx.SetNonce(ctx, nextNonce); err != nil {
		return nil, fmt.Errorf("write nonce: %w", err)
	}

	if j, ok := tx.(Journal); ok {
		rec := PlayRecord{
			ID:           out.PlayID,
			Identity:     caller,
			Seed:         append([]byte(nil), seed...),
			Nonce:        nonce,
			DrawByte:     out.DrawByte,
			Won:          out.Won,
			Stake:        payment,
			Payout:       payout,
			BalanceAfter: newBalance,
			PotAfter:     newPot,
		}
		if err := j.RecordPlay(ctx, rec); err != nil {
			return nil, fmt.Errorf("record play: %w", err)
		}
	}

	return out, nil
}

// Snapshot reads Payment, Pot and Nonce in one consistent view.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := e.store.View(ctx, func(tx Tx) error {
		var err error
		snap.Payment, snap.PaymentSet, err = tx.Payment(ctx)
		if err != nil {
			return fmt.Errorf("read payment: %w", err)
		}
		if snap.Pot, err = tx.Pot(ctx); err != nil {
			return fmt.Errorf("read pot: %w", err)
		}
		if snap.Nonce, err = tx.Nonce(ctx); err != nil {
			return fmt.Errorf("read nonce: %w", err)
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}

// Phase reports whether a stake has been set.
func (e *Engine) Phase(ctx context.Context) (Phase, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return snap.Phase(), nil
}
