package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/roach88/potwager/internal/wager"
)

// Plays returns journaled plays in commit order.
// When limit > 0 only the most recent limit plays are returned.
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) Plays(ctx context.Context, limit int) ([]wager.PlayRecord, error) {
	query := `
		SELECT id, identity, seed, nonce, draw_byte, won, stake, payout, balance_after, pot_after
		FROM plays ORDER BY seq ASC`
	var args []any
	if limit > 0 {
		query = `
		SELECT id, identity, seed, nonce, draw_byte, won, stake, payout, balance_after, pot_after
		FROM (SELECT * FROM plays ORDER BY seq DESC LIMIT ?)
		ORDER BY seq ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query plays: %w", err)
	}
	defer rows.Close()

	plays := []wager.PlayRecord{}
	for rows.Next() {
		rec, err := scanPlay(rows)
		if err != nil {
			return nil, err
		}
		plays = append(plays, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plays: %w", err)
	}
	return plays, nil
}

func scanPlay(rows *sql.Rows) (wager.PlayRecord, error) {
	var rec wager.PlayRecord
	var id, seedHex, nonce string
	var stake, payout, balanceAfter, potAfter string
	var drawByte, won int
	if err := rows.Scan(&rec.ID, &id, &seedHex, &nonce, &drawByte, &won,
		&stake, &payout, &balanceAfter, &potAfter); err != nil {
		return rec, fmt.Errorf("scan play: %w", err)
	}

	var err error
	rec.Identity = wager.Identity(id)
	rec.DrawByte = byte(drawByte)
	rec.Won = won != 0
	if rec.Seed, err = hex.DecodeString(seedHex); err != nil {
		return rec, fmt.Errorf("decode seed of play %s: %w", rec.ID, err)
	}
	if rec.Nonce, err = strconv.ParseUint(nonce, 10, 64); err != nil {
		return rec, fmt.Errorf("parse nonce of play %s: %w", rec.ID, err)
	}
	for _, f := range []struct {
		dst *wager.Amount
		raw string
	}{
		{&rec.Stake, stake},
		{&rec.Payout, payout},
		{&rec.BalanceAfter, balanceAfter},
		{&rec.PotAfter, potAfter},
	} {
		if *f.dst, err = wager.ParseAmount(f.raw); err != nil {
			return rec, fmt.Errorf("play %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

// Discrepancy is one journal entry that does not re-verify.
type Discrepancy struct {
	PlayID  string `json:"play_id"`
	Message string `json:"message"`
}

// VerifyReport is the result of re-deriving the journal.
type VerifyReport struct {
	Plays         int           `json:"plays"`
	Wins          int           `json:"wins"`
	TotalStaked   wager.Amount  `json:"total_staked"`
	TotalPaidOut  wager.Amount  `json:"total_paid_out"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// OK reports whether every play re-verified.
func (r VerifyReport) OK() bool {
	return len(r.Discrepancies) == 0
}

// VerifyPlays replays the journal against the draw function and the pot
// rules: each outcome must match Draw(seed, identity, nonce), nonces must
// advance by one (wrapping), a win must pay exactly the previous pot, and
// each pot must be the previous pot (or zero after a win) plus the stake.
//
// The chain starts from the stake, which is the pot's initial value.
// Totals that do not fit in an Amount fail with ARITHMETIC_OVERFLOW.
func (s *Store) VerifyPlays(ctx context.Context) (VerifyReport, error) {
	report := VerifyReport{Discrepancies: []Discrepancy{}}

	plays, err := s.Plays(ctx, 0)
	if err != nil {
		return report, fmt.Errorf("verify plays: %w", err)
	}
	if len(plays) == 0 {
		return report, nil
	}

	var payment wager.Amount
	var set bool
	err = s.View(ctx, func(tx wager.Tx) error {
		payment, set, err = tx.Payment(ctx)
		return err
	})
	if err != nil {
		return report, fmt.Errorf("verify plays: %w", err)
	}
	if !set {
		return report, fmt.Errorf("verify plays: journal has %d plays but no stake is set", len(plays))
	}

	flag := func(id, format string, args ...any) {
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			PlayID:  id,
			Message: fmt.Sprintf(format, args...),
		})
	}

	prevPot := payment
	for i, rec := range plays {
		report.Plays++
		staked, ok := wager.CheckedAdd(report.TotalStaked, rec.Stake)
		if !ok {
			return report, wager.NewOverflowError(rec.Identity, "total staked", report.TotalStaked, rec.Stake)
		}
		paidOut, ok := wager.CheckedAdd(report.TotalPaidOut, rec.Payout)
		if !ok {
			return report, wager.NewOverflowError(rec.Identity, "total paid out", report.TotalPaidOut, rec.Payout)
		}
		report.TotalStaked, report.TotalPaidOut = staked, paidOut
		if rec.Won {
			report.Wins++
		}

		draw := wager.Draw(rec.Seed, rec.Identity, rec.Nonce)
		if draw.Won != rec.Won || draw.Byte() != rec.DrawByte {
			flag(rec.ID, "draw mismatch: journal byte=%d won=%v, recomputed byte=%d won=%v",
				rec.DrawByte, rec.Won, draw.Byte(), draw.Won)
		}

		if i > 0 && rec.Nonce != plays[i-1].Nonce+1 {
			flag(rec.ID, "nonce %d does not follow %d", rec.Nonce, plays[i-1].Nonce)
		}

		if rec.Stake != payment {
			flag(rec.ID, "stake %s differs from payment %s", rec.Stake, payment)
		}

		base := prevPot
		if rec.Won {
			if rec.Payout != prevPot {
				flag(rec.ID, "payout %s differs from pot %s", rec.Payout, prevPot)
			}
			base = 0
		} else if rec.Payout != 0 {
			flag(rec.ID, "losing play paid out %s", rec.Payout)
		}

		want, ok := wager.CheckedAdd(base, rec.Stake)
		if !ok || want != rec.PotAfter {
			flag(rec.ID, "pot after is %s, expected %s", rec.PotAfter, want)
		}
		prevPot = rec.PotAfter
	}

	return report, nil
}
