package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/potwager/internal/wager"
)

// sqlTx adapts a sql.Tx to wager.Tx and wager.Journal.
type sqlTx struct {
	tx *sql.Tx
}

var (
	_ wager.Tx      = (*sqlTx)(nil)
	_ wager.Journal = (*sqlTx)(nil)
)

// Balance returns zero for identities without an account row.
func (t *sqlTx) Balance(ctx context.Context, id wager.Identity) (wager.Amount, error) {
	var raw string
	err := t.tx.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE identity = ?`, string(id),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return wager.ParseAmount(raw)
}

func (t *sqlTx) SetBalance(ctx context.Context, id wager.Identity, amount wager.Amount) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO accounts (identity, balance) VALUES (?, ?)
		ON CONFLICT(identity) DO UPDATE SET balance = excluded.balance
	`, string(id), amount.String())
	if err != nil {
		return fmt.Errorf("write balance: %w", err)
	}
	return nil
}

func (t *sqlTx) Payment(ctx context.Context) (wager.Amount, bool, error) {
	var raw sql.NullString
	if err := t.tx.QueryRowContext(ctx,
		`SELECT payment FROM wager_state WHERE id = 1`,
	).Scan(&raw); err != nil {
		return 0, false, fmt.Errorf("read payment: %w", err)
	}
	if !raw.Valid {
		return 0, false, nil
	}
	amount, err := wager.ParseAmount(raw.String)
	if err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

func (t *sqlTx) SetPayment(ctx context.Context, amount wager.Amount) error {
	return t.setColumn(ctx, "payment", amount.String())
}

func (t *sqlTx) Pot(ctx context.Context) (wager.Amount, error) {
	raw, err := t.column(ctx, "pot")
	if err != nil {
		return 0, err
	}
	return wager.ParseAmount(raw)
}

func (t *sqlTx) SetPot(ctx context.Context, amount wager.Amount) error {
	return t.setColumn(ctx, "pot", amount.String())
}

func (t *sqlTx) Nonce(ctx context.Context) (uint64, error) {
	raw, err := t.column(ctx, "nonce")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse nonce %q: %w", raw, err)
	}
	return n, nil
}

func (t *sqlTx) SetNonce(ctx context.Context, nonce uint64) error {
	return t.setColumn(ctx, "nonce", strconv.FormatUint(nonce, 10))
}

// RecordPlay appends to the journal inside the play's transaction.
func (t *sqlTx) RecordPlay(ctx context.Context, rec wager.PlayRecord) error {
	won := 0
	if rec.Won {
		won = 1
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO plays
		(id, identity, seed, nonce, draw_byte, won, stake, payout, balance_after, pot_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		string(rec.Identity),
		hex.EncodeToString(rec.Seed),
		strconv.FormatUint(rec.Nonce, 10),
		int(rec.DrawByte),
		won,
		rec.Stake.String(),
		rec.Payout.String(),
		rec.BalanceAfter.String(),
		rec.PotAfter.String(),
	)
	if err != nil {
		return fmt.Errorf("record play: %w", err)
	}
	return nil
}

// column reads one column of the wager_state row. name is never user input.
func (t *sqlTx) column(ctx context.Context, name string) (string, error) {
	var raw string
	query := fmt.Sprintf("SELECT %s FROM wager_state WHERE id = 1", name)
	if err := t.tx.QueryRowContext(ctx, query).Scan(&raw); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return raw, nil
}

func (t *sqlTx) setColumn(ctx context.Context, name, value string) error {
	query := fmt.Sprintf("UPDATE wager_state SET %s = ? WHERE id = 1", name)
	if _, err := t.tx.ExecContext(ctx, query, value); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
