package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/potwager/internal/httpapi"
	"github.com/roach88/potwager/internal/seed"
	"github.com/roach88/potwager/internal/wager"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wager over HTTP",
		Long: `Serve stake, play and state over HTTP until interrupted.

Without seed.hex the server draws from a rotating random seed whose
SHA-256 commitment is published at GET /v1/seed; retired seeds are
revealed there once rotated out.

Example:
  potwager serve --db ./potwager.db --listen :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	env, err := setup(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		env.cfg.Listen = opts.Listen
	}
	logger := env.logger

	var random wager.RandomSource
	var publisher httpapi.SeedPublisher
	if env.cfg.Seed.Hex != "" {
		static, err := seed.ParseStatic(env.cfg.Seed.Hex)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid seed", err)
		}
		logger.Warn("serving a fixed seed; draws are predictable")
		random = static
	} else {
		interval, err := env.cfg.RotateInterval()
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid seed rotation", err)
		}
		rotating, err := seed.NewRotating(interval, seed.WithLogger(logger))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create seed", err)
		}
		random = rotating
		publisher = rotating
	}

	if len(env.cfg.APIKeys) == 0 {
		logger.Warn("no api keys configured; /v1 is open")
	}

	st, err := env.openStore()
	if err != nil {
		return err
	}
	defer env.closeStore(st)

	srv := httpapi.New(env.newEngine(st, random), st, httpapi.Options{
		APIKeys: env.cfg.APIKeys,
		Seeds:   publisher,
		Logger:  logger,
	})

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting", "listen", env.cfg.Listen, "db", env.cfg.Database)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s. Press Ctrl-C to stop.\n", env.cfg.Listen)

	if err := srv.Listen(ctx, env.cfg.Listen); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
