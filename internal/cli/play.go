package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Seed string
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <identity>",
		Short: "Pay the stake and draw",
		Long: `Pay the stake on behalf of identity and draw.

The seed comes from --seed, then the configured seed.hex, then fresh
randomness. The seed is journaled with the play so it can be audited.

Exit codes:
  0 - Play completed (won or lost)
  1 - Play rejected (no stake, insufficient funds, overflow)
  2 - Command error

Examples:
  potwager play alice
  potwager play alice --seed 00ff --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "hex seed for the draw")

	return cmd
}

func runPlay(opts *PlayOptions, idArg string, cmd *cobra.Command) error {
	env, err := setup(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	f := env.formatter

	id, err := parseIdentity(f, idArg)
	if err != nil {
		return err
	}

	random, err := env.randomSource(opts.Seed)
	if err != nil {
		return f.Fail(ExitCommandError, CodeInvalidArgument, err.Error(), nil)
	}

	st, err := env.openStore()
	if err != nil {
		return err
	}
	defer env.closeStore(st)

	out, err := env.newEngine(st, random).Play(cmd.Context(), id)
	if err != nil {
		return f.FailWager(err)
	}

	var text strings.Builder
	if out.Won {
		fmt.Fprintf(&text, "✓ %s won %s\n", out.Identity, out.Payout)
	} else {
		fmt.Fprintf(&text, "✗ %s lost %s\n", out.Identity, out.Stake)
	}
	fmt.Fprintf(&text, "  draw byte: %d (nonce %d)\n", out.DrawByte, out.Nonce)
	fmt.Fprintf(&text, "  balance:   %s\n", out.BalanceAfter)
	fmt.Fprintf(&text, "  pot:       %s\n", out.PotAfter)
	return f.Success(out, text.String())
}
