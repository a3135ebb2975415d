package testutil

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/potwager/internal/wager"
)

// Fault names a MemoryStore operation that can be made to fail.
type Fault string

const (
	FaultBalance    Fault = "balance"
	FaultSetBalance Fault = "set_balance"
	FaultSetPot     Fault = "set_pot"
	FaultSetNonce   Fault = "set_nonce"
	FaultRecordPlay Fault = "record_play"
)

// memoryState is one committed version of the host's state.
type memoryState struct {
	payment    wager.Amount
	paymentSet bool
	pot        wager.Amount
	nonce      uint64
	balances   map[wager.Identity]wager.Amount
	plays      []wager.PlayRecord
}

func (s *memoryState) clone() *memoryState {
	c := *s
	c.balances = maps.Clone(s.balances)
	c.plays = slices.Clone(s.plays)
	return &c
}

// MemoryStore is an in-memory wager.Store.
//
// Update works on a private copy of the state and swaps it in only when the
// callback succeeds, so a failed unit leaves nothing behind. A mutex
// serializes units, standing in for the host's single-writer discipline.
type MemoryStore struct {
	mu     sync.Mutex
	state  *memoryState
	faults map[Fault]error
}

// NewMemoryStore creates an empty store: no payment, zero pot and nonce.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state:  &memoryState{balances: make(map[wager.Identity]wager.Amount)},
		faults: make(map[Fault]error),
	}
}

// InjectFault makes op return err until cleared with a nil err.
func (m *MemoryStore) InjectFault(op Fault, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, op)
		return
	}
	m.faults[op] = err
}

// View runs fn against a throwaway copy of the committed state.
func (m *MemoryStore) View(ctx context.Context, fn func(tx wager.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memoryTx{state: m.state.clone(), faults: m.faults})
}

// Update runs fn against a copy and commits it if fn returns nil.
func (m *MemoryStore) Update(ctx context.Context, fn func(tx wager.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{state: m.state.clone(), faults: m.faults}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

// SetBalance sets a balance directly, outside any engine call.
func (m *MemoryStore) SetBalance(id wager.Identity, amount wager.Amount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.balances[id] = amount
}

// SetNonce sets the nonce directly, outside any engine call.
func (m *MemoryStore) SetNonce(nonce uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nonce = nonce
}

// SetPot sets the pot directly, outside any engine call.
func (m *MemoryStore) SetPot(pot wager.Amount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.pot = pot
}

// Balance returns a committed balance.
func (m *MemoryStore) Balance(id wager.Identity) wager.Amount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.balances[id]
}

// Balances returns a copy of all committed balances.
func (m *MemoryStore) Balances() map[wager.Identity]wager.Amount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.state.balances)
}

// Pot returns the committed pot.
func (m *MemoryStore) Pot() wager.Amount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.pot
}

// Nonce returns the committed nonce.
func (m *MemoryStore) Nonce() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.nonce
}

// Payment returns the committed payment and whether it is set.
func (m *MemoryStore) Payment() (wager.Amount, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.payment, m.state.paymentSet
}

// Plays returns the journaled plays in commit order.
func (m *MemoryStore) Plays() []wager.PlayRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.plays)
}

type memoryTx struct {
	state  *memoryState
	faults map[Fault]error
}

func (tx *memoryTx) Balance(ctx context.Context, id wager.Identity) (wager.Amount, error) {
	if err := tx.faults[FaultBalance]; err != nil {
		return 0, err
	}
	return tx.state.balances[id], nil
}

func (tx *memoryTx) SetBalance(ctx context.Context, id wager.Identity, amount wager.Amount) error {
	if err := tx.faults[FaultSetBalance]; err != nil {
		return err
	}
	tx.state.balances[id] = amount
	return nil
}

func (tx *memoryTx) Payment(ctx context.Context) (wager.Amount, bool, error) {
	return tx.state.payment, tx.state.paymentSet, nil
}

func (tx *memoryTx) SetPayment(ctx context.Context, amount wager.Amount) error {
	tx.state.payment = amount
	tx.state.paymentSet = true
	return nil
}

func (tx *memoryTx) Pot(ctx context.Context) (wager.Amount, error) {
	return tx.state.pot, nil
}

func (tx *memoryTx) SetPot(ctx context.Context, amount wager.Amount) error {
	if err := tx.faults[FaultSetPot]; err != nil {
		return err
	}
	tx.state.pot = amount
	return nil
}

func (tx *memoryTx) Nonce(ctx context.Context) (uint64, error) {
	return tx.state.nonce, nil
}

func (tx *memoryTx) SetNonce(ctx context.Context, nonce uint64) error {
	if err := tx.faults[FaultSetNonce]; err != nil {
		return err
	}
	tx.state.nonce = nonce
	return nil
}

func (tx *memoryTx) RecordPlay(ctx context.Context, rec wager.PlayRecord) error {
	if err := tx.faults[FaultRecordPlay]; err != nil {
		return err
	}
	tx.state.plays = append(tx.state.plays, rec)
	return nil
}
