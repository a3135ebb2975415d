package store

import (
	"context"
	"fmt"

	"github.com/roach88/potwager/internal/wager"
)

// Account is one row of the ledger.
type Account struct {
	Identity wager.Identity `json:"identity"`
	Balance  wager.Amount   `json:"balance"`
}

// Deposit credits amount to id and returns the new balance.
// Fails with ARITHMETIC_OVERFLOW rather than wrapping.
func (s *Store) Deposit(ctx context.Context, id wager.Identity, amount wager.Amount) (wager.Amount, error) {
	if !id.Valid() {
		return 0, wager.NewUnauthenticatedError()
	}

	var balance wager.Amount
	err := s.Update(ctx, func(tx wager.Tx) error {
		current, err := tx.Balance(ctx, id)
		if err != nil {
			return err
		}
		next, ok := wager.CheckedAdd(current, amount)
		if !ok {
			return wager.NewOverflowError(id, "balance", current, amount)
		}
		balance = next
		return tx.SetBalance(ctx, id, next)
	})
	if err != nil {
		return 0, fmt.Errorf("deposit: %w", err)
	}
	return balance, nil
}

// Balance returns the committed balance for id.
func (s *Store) Balance(ctx context.Context, id wager.Identity) (wager.Amount, error) {
	var balance wager.Amount
	err := s.View(ctx, func(tx wager.Tx) error {
		var err error
		balance, err = tx.Balance(ctx, id)
		return err
	})
	return balance, err
}

// Accounts returns every ledger row ordered by identity.
// Returns an empty slice (not nil) when there are none.
func (s *Store) Accounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identity, balance FROM accounts
		ORDER BY identity COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		balance, err := wager.ParseAmount(raw)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, Account{Identity: wager.Identity(id), Balance: balance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}
