package wager

import "context"

// Ledger reads and writes participant balances. It is owned by the host.
type Ledger interface {
	Balance(ctx context.Context, id Identity) (Amount, error)
	SetBalance(ctx context.Context, id Identity, amount Amount) error
}

// State holds the engine's persistent values: Payment, Pot and Nonce.
// A fresh State has no payment, a zero pot and a zero nonce.
type State interface {
	// Payment returns the stake and whether it has been set.
	Payment(ctx context.Context) (Amount, bool, error)
	SetPayment(ctx context.Context, amount Amount) error

	Pot(ctx context.Context) (Amount, error)
	SetPot(ctx context.Context, amount Amount) error

	Nonce(ctx context.Context) (uint64, error)
	SetNonce(ctx context.Context, nonce uint64) error
}

// Tx is the view of Ledger and State inside one atomic unit.
type Tx interface {
	Ledger
	State
}

// Store runs atomic units against the host's persistent state.
//
// Update commits every write made through the Tx if and only if fn returns
// nil. Hosts must serialize Update calls; the engine does no locking.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
}

// Journal is implemented by a Tx that keeps a record of completed plays.
// RecordPlay runs inside the same atomic unit as the play itself.
type Journal interface {
	RecordPlay(ctx context.Context, rec PlayRecord) error
}

// RandomSource supplies the unpredictable per-block seed material.
type RandomSource interface {
	CurrentSeed() []byte
}

// RandomSourceFunc adapts a function to RandomSource.
type RandomSourceFunc func() []byte

// CurrentSeed calls f.
func (f RandomSourceFunc) CurrentSeed() []byte {
	return f()
}

// PlayRecord is the journaled, re-verifiable account of one play.
type PlayRecord struct {
	ID           string
	Identity     Identity
	Seed         []byte
	Nonce        uint64
	DrawByte     byte
	Won          bool
	Stake        Amount
	Payout       Amount
	BalanceAfter Amount
	PotAfter     Amount
}
