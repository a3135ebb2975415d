package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/potwager/internal/seed"
	"github.com/roach88/potwager/internal/wager"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Seed     string
	Identity string
	Nonce    uint64
}

// VerifyResult is the verify command's JSON payload.
type VerifyResult struct {
	Seed           string         `json:"seed"`
	SeedCommitment string         `json:"seed_commitment"`
	Identity       wager.Identity `json:"identity"`
	Nonce          uint64         `json:"nonce"`
	Digest         string         `json:"digest"`
	DrawByte       byte           `json:"draw_byte"`
	Won            bool           `json:"won"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Recompute a draw",
		Long: `Recompute the draw for a seed, identity and nonce without touching
any state. The seed commitment is the SHA-256 published while the seed
was in service.

Example:
  potwager verify --seed 00ff --identity alice --nonce 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "hex seed (required)")
	_ = cmd.MarkFlagRequired("seed")
	cmd.Flags().StringVar(&opts.Identity, "identity", "", "identity (required)")
	_ = cmd.MarkFlagRequired("identity")
	cmd.Flags().Uint64Var(&opts.Nonce, "nonce", 0, "nonce")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	raw, err := decodeSeed(opts.Seed)
	if err != nil {
		return f.Fail(ExitCommandError, CodeInvalidArgument, fmt.Sprintf("invalid seed: %v", err), nil)
	}
	id, err := parseIdentity(f, opts.Identity)
	if err != nil {
		return err
	}

	draw := wager.Draw(raw, id, opts.Nonce)
	result := VerifyResult{
		Seed:           hex.EncodeToString(raw),
		SeedCommitment: seed.Commit(raw),
		Identity:       id,
		Nonce:          opts.Nonce,
		Digest:         hex.EncodeToString(draw.Digest[:]),
		DrawByte:       draw.Byte(),
		Won:            draw.Won,
	}

	outcome := "loses"
	if draw.Won {
		outcome = "wins"
	}
	var text strings.Builder
	fmt.Fprintf(&text, "%s %s at nonce %d\n", id, outcome, opts.Nonce)
	fmt.Fprintf(&text, "  draw byte:  %d (threshold %d)\n", result.DrawByte, wager.WinThreshold)
	fmt.Fprintf(&text, "  digest:     %s\n", result.Digest)
	fmt.Fprintf(&text, "  commitment: %s\n", result.SeedCommitment)
	return f.Success(result, text.String())
}
