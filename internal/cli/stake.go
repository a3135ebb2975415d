package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/potwager/internal/seed"
	"github.com/roach88/potwager/internal/wager"
)

// StakeOptions holds flags for the stake command.
type StakeOptions struct {
	*RootOptions
	As string
}

// StakeResult is the stake command's JSON payload.
type StakeResult struct {
	Applied bool           `json:"applied"`
	State   wager.Snapshot `json:"state"`
}

// NewStakeCommand creates the stake command.
func NewStakeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StakeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stake <amount>",
		Short: "Fix the stake every play pays",
		Long: `Fix the stake every play pays and seed the pot with it.

The first stake wins. Later calls leave the stake and pot untouched and
report applied=false.

Examples:
  potwager stake 100
  potwager stake 100 --as treasury --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStake(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "owner", "identity setting the stake")

	return cmd
}

func runStake(opts *StakeOptions, amountArg string, cmd *cobra.Command) error {
	env, err := setup(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	f := env.formatter

	value, err := parseAmount(f, amountArg)
	if err != nil {
		return err
	}

	st, err := env.openStore()
	if err != nil {
		return err
	}
	defer env.closeStore(st)

	// setStake never draws; any source will do.
	engine := env.newEngine(st, seed.Static(nil))

	ctx := cmd.Context()
	applied, err := engine.SetStake(ctx, wager.NewIdentity(opts.As), value)
	if err != nil {
		return f.FailWager(err)
	}
	snap, err := engine.Snapshot(ctx)
	if err != nil {
		return f.FailWager(err)
	}

	text := fmt.Sprintf("✓ Stake set to %s\n", snap.Payment)
	if !applied {
		text = fmt.Sprintf("Stake already set to %s; %s ignored\n", snap.Payment, value)
	}
	return f.Success(StakeResult{Applied: applied, State: snap}, text)
}
