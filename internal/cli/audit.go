package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Re-verify every journaled play",
		Long: `Recompute every journaled draw and check the pot and nonce chain.

Exit codes:
  0 - Journal verified
  1 - One or more discrepancies
  2 - Command error

Example:
  potwager audit --db ./potwager.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(rootOpts, cmd)
		},
	}
	return cmd
}

func runAudit(opts *RootOptions, cmd *cobra.Command) error {
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

	report, err := st.VerifyPlays(cmd.Context())
	if err != nil {
		return f.FailWager(err)
	}

	var text strings.Builder
	if report.OK() {
		fmt.Fprintf(&text, "✓ %d play(s) verified\n", report.Plays)
	} else {
		fmt.Fprintf(&text, "✗ %d discrepancy(ies) in %d play(s)\n", len(report.Discrepancies), report.Plays)
		for _, d := range report.Discrepancies {
			fmt.Fprintf(&text, "  %s: %s\n", d.PlayID, d.Message)
		}
	}
	fmt.Fprintf(&text, "  wins:     %d\n", report.Wins)
	fmt.Fprintf(&text, "  staked:   %s\n", report.TotalStaked)
	fmt.Fprintf(&text, "  paid out: %s\n", report.TotalPaidOut)

	if err := f.Success(report, text.String()); err != nil {
		return err
	}
	if !report.OK() {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d discrepancy(ies)", len(report.Discrepancies)), Reported: true}
	}
	return nil
}
