package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/potwager/internal/seed"
	"github.com/roach88/potwager/internal/store"
	"github.com/roach88/potwager/internal/wager"
)

// StateResult is the state command's JSON payload.
type StateResult struct {
	Phase    wager.Phase     `json:"phase"`
	Payment  *wager.Amount   `json:"payment"` // null until staked
	Pot      wager.Amount    `json:"pot"`
	Nonce    uint64          `json:"nonce"`
	Accounts []store.Account `json:"accounts"`
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show stake, pot, nonce and balances",
		Long: `Show the wager's persistent values and every account balance.

Example:
  potwager state --db ./potwager.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(rootOpts, cmd)
		},
	}
	return cmd
}

func runState(opts *RootOptions, cmd *cobra.Command) error {
	env, err := setup(opts, cmd)
	if err != nil {
		return err
	}
	f := env.formatter

	st, err := env.openStore()
	if err != nil {
		return err
	}
	defer env.closeStore(st)

	ctx := cmd.Context()
	snap, err := env.newEngine(st, seed.Static(nil)).Snapshot(ctx)
	if err != nil {
		return f.FailWager(err)
	}
	accounts, err := st.Accounts(ctx)
	if err != nil {
		return f.FailWager(err)
	}

	result := StateResult{
		Phase:    snap.Phase(),
		Pot:      snap.Pot,
		Nonce:    snap.Nonce,
		Accounts: accounts,
	}
	if snap.PaymentSet {
		payment := snap.Payment
		result.Payment = &payment
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Phase:   %s\n", result.Phase)
	if result.Payment != nil {
		fmt.Fprintf(&text, "Stake:   %s\n", *result.Payment)
	} else {
		fmt.Fprintln(&text, "Stake:   (not set)")
	}
	fmt.Fprintf(&text, "Pot:     %s\n", result.Pot)
	fmt.Fprintf(&text, "Nonce:   %d\n", result.Nonce)
	if len(accounts) > 0 {
		fmt.Fprintln(&text, "\nAccounts:")
		for _, a := range accounts {
			fmt.Fprintf(&text, "  %s: %s\n", a.Identity, a.Balance)
		}
	}
	return f.Success(result, text.String())
}
