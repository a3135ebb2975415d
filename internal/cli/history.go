package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/potwager/internal/wager"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// PlayEntry is one journaled play as printed by history.
type PlayEntry struct {
	ID           string         `json:"id"`
	Identity     wager.Identity `json:"identity"`
	Seed         string         `json:"seed"` // hex
	Nonce        uint64         `json:"nonce"`
	DrawByte     byte           `json:"draw_byte"`
	Won          bool           `json:"won"`
	Stake        wager.Amount   `json:"stake"`
	Payout       wager.Amount   `json:"payout"`
	BalanceAfter wager.Amount   `json:"balance_after"`
	PotAfter     wager.Amount   `json:"pot_after"`
}

func newPlayEntry(rec wager.PlayRecord) PlayEntry {
	return PlayEntry{
		ID:           rec.ID,
		Identity:     rec.Identity,
		Seed:         hex.EncodeToString(rec.Seed),
		Nonce:        rec.Nonce,
		DrawByte:     rec.DrawByte,
		Won:          rec.Won,
		Stake:        rec.Stake,
		Payout:       rec.Payout,
		BalanceAfter: rec.BalanceAfter,
		PotAfter:     rec.PotAfter,
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled plays",
		Long: `List journaled plays, oldest first.

Examples:
  potwager history
  potwager history --limit 10 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the most recent N plays (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	env, err := setup(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	f := env.formatter

	if opts.Limit < 0 {
		return f.Fail(ExitCommandError, CodeInvalidArgument, "limit must not be negative", nil)
	}

	st, err := env.openStore()
	if err != nil {
		return err
	}
	defer env.closeStore(st)

	plays, err := st.Plays(cmd.Context(), opts.Limit)
	if err != nil {
		return f.FailWager(err)
	}

	entries := make([]PlayEntry, 0, len(plays))
	for _, rec := range plays {
		entries = append(entries, newPlayEntry(rec))
	}

	var text strings.Builder
	if len(entries) == 0 {
		fmt.Fprintln(&text, "No plays recorded.")
	}
	for _, e := range entries {
		result := "lost"
		if e.Won {
			result = fmt.Sprintf("won %s", e.Payout)
		}
		fmt.Fprintf(&text, "[%d] %s %s (byte %d) balance=%s pot=%s\n",
			e.Nonce, e.Identity, result, e.DrawByte, e.BalanceAfter, e.PotAfter)
	}
	return f.Success(entries, text.String())
}
