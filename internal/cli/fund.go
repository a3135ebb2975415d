package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/potwager/internal/store"
)

// NewFundCommand creates the fund command.
func NewFundCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund <identity> <amount>",
		Short: "Credit an account",
		Long: `Credit an account with amount, creating it if needed.

The ledger is external to the wager; fund stands in for it when running
locally. Credits that would overflow are refused.

Example:
  potwager fund alice 1000000`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFund(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runFund(opts *RootOptions, idArg, amountArg string, cmd *cobra.Command) error {
	env, err := setup(opts, cmd)
	if err != nil {
		return err
	}
	f := env.formatter

	id, err := parseIdentity(f, idArg)
	if err != nil {
		return err
	}
	amount, err := parseAmount(f, amountArg)
	if err != nil {
		return err
	}

	st, err := env.openStore()
	if err != nil {
		return err
	}
	defer env.closeStore(st)

	balance, err := st.Deposit(cmd.Context(), id, amount)
	if err != nil {
		return f.FailWager(err)
	}

	env.logger.Info("account funded", "identity", id, "amount", amount, "balance", balance)
	return f.Success(store.Account{Identity: id, Balance: balance},
		fmt.Sprintf("✓ %s balance: %s\n", id, balance))
}
