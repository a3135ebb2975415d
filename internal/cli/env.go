package cli

import (
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/potwager/internal/config"
	"github.com/roach88/potwager/internal/seed"
	"github.com/roach88/potwager/internal/store"
	"github.com/roach88/potwager/internal/wager"
)

// environment is what a command needs after config is loaded.
type environment struct {
	cfg       *config.Config
	logger    *slog.Logger
	formatter *OutputFormatter
}

// setup loads config, applies flag overrides and builds the logger and
// output formatter. Logs go to stderr so they never mix with JSON output.
func setup(opts *RootOptions, cmd *cobra.Command) (*environment, error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_ = formatter.Error(CodeInvalidArgument, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	return &environment{
		cfg:       cfg,
		logger:    cfg.NewLogger(cmd.ErrOrStderr(), opts.Verbose),
		formatter: formatter,
	}, nil
}

func (e *environment) openStore() (*store.Store, error) {
	e.formatter.VerboseLog("opening database %s", e.cfg.Database)
	st, err := store.Open(e.cfg.Database)
	if err != nil {
		_ = e.formatter.Error(CodeInternal, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func (e *environment) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}

// randomSource picks the seed for a play: an explicit hex seed, then the
// configured one, then a fresh random seed.
func (e *environment) randomSource(seedHex string) (wager.RandomSource, error) {
	if seedHex == "" {
		seedHex = e.cfg.Seed.Hex
	}
	if seedHex != "" {
		s, err := seed.ParseStatic(seedHex)
		if err != nil {
			return nil, fmt.Errorf("invalid seed: %w", err)
		}
		return s, nil
	}
	r, err := seed.NewRotating(0, seed.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (e *environment) newEngine(st *store.Store, random wager.RandomSource) *wager.Engine {
	return wager.New(st, random, wager.WithLogger(e.logger))
}

func parseAmount(formatter *OutputFormatter, s string) (wager.Amount, error) {
	amount, err := wager.ParseAmount(s)
	if err != nil {
		return 0, formatter.Fail(ExitCommandError, CodeInvalidArgument, err.Error(), map[string]string{"amount": s})
	}
	return amount, nil
}

func parseIdentity(formatter *OutputFormatter, s string) (wager.Identity, error) {
	id := wager.NewIdentity(s)
	if !id.Valid() {
		return "", formatter.Fail(ExitCommandError, CodeInvalidArgument, "identity must not be empty", nil)
	}
	return id, nil
}

// decodeSeed accepts the hex form printed by history and audit.
func decodeSeed(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
