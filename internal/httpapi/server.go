// Package httpapi mounts the wager engine behind an HTTP surface.
//
// Authentication is the host's job: a client holding a valid API key is
// trusted to assert the caller identity in the X-Wager-Identity header.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/roach88/potwager/internal/seed"
	"github.com/roach88/potwager/internal/wager"
)

// BalanceReader reads committed balances.
type BalanceReader interface {
	Balance(ctx context.Context, id wager.Identity) (wager.Amount, error)
}

// SeedPublisher exposes the commitment of a rotating seed.
type SeedPublisher interface {
	Commitment() seed.Commitment
	Revealed() []seed.Reveal
}

// Server serves the wager operations over HTTP.
type Server struct {
	app    *fiber.App
	engine *wager.Engine
	ledger BalanceReader
	seeds  SeedPublisher
	logger *slog.Logger
}

// Options configures a Server.
type Options struct {
	APIKeys []string

	// Seeds is optional; without it GET /v1/seed answers 404.
	Seeds SeedPublisher

	Logger *slog.Logger
}

// New builds the route table.
func New(engine *wager.Engine, ledger BalanceReader, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine: engine,
		ledger: ledger,
		seeds:  opts.Seeds,
		logger: logger,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/v1", APIKeyGuard(opts.APIKeys), IdentityFromHeader())
	api.Post("/stake", s.setStake)
	api.Post("/play", s.play)
	api.Get("/state", s.state)
	api.Get("/accounts/:id", s.account)
	api.Get("/seed", s.seed)

	s.app = app
	return s
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		if err := s.app.ShutdownWithContext(context.Background()); err != nil {
			return err
		}
		return <-errCh
	}
}

type stakeRequest struct {
	Value *wager.Amount `json:"value"`
}

type stakeResponse struct {
	Applied bool           `json:"applied"`
	State   wager.Snapshot `json:"state"`
}

func (s *Server) setStake(c *fiber.Ctx) error {
	var req stakeRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid body")
	}
	if req.Value == nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "value is required")
	}

	ctx := c.UserContext()
	applied, err := s.engine.SetStake(ctx, identity(c), *req.Value)
	if err != nil {
		return err
	}
	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		return err
	}
	return c.JSON(stakeResponse{Applied: applied, State: snap})
}

func (s *Server) play(c *fiber.Ctx) error {
	out, err := s.engine.Play(c.UserContext(), identity(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

type stateResponse struct {
	Phase wager.Phase `json:"phase"`
	wager.Snapshot
}

func (s *Server) state(c *fiber.Ctx) error {
	snap, err := s.engine.Snapshot(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stateResponse{Phase: snap.Phase(), Snapshot: snap})
}

func (s *Server) account(c *fiber.Ctx) error {
	// fiber leaves path parameters percent-encoded.
	raw, err := url.PathUnescape(c.Params("id"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid account id")
	}
	id := wager.NewIdentity(raw)
	balance, err := s.ledger.Balance(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"identity": id, "balance": balance})
}

func (s *Server) seed(c *fiber.Ctx) error {
	if s.seeds == nil {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "seed is not published")
	}
	return c.JSON(fiber.Map{
		"commitment": s.seeds.Commitment(),
		"revealed":   s.seeds.Revealed(),
	})
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorBody{Error: errorDetail{Code: code, Message: message}})
}

// handleError maps wager errors to statuses; anything else is a 500.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var we *wager.Error
	if errors.As(err, &we) {
		return c.Status(statusFor(we.Code)).JSON(errorBody{Error: errorDetail{
			Code:    string(we.Code),
			Message: we.Message,
			Details: we.Details,
		}})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return writeError(c, fe.Code, "HTTP_ERROR", fe.Message)
	}

	s.logger.Error("request failed", "path", c.Path(), "error", err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL", "internal error")
}

func statusFor(code wager.ErrorCode) int {
	switch code {
	case wager.ErrCodeConfiguration:
		return fiber.StatusConflict
	case wager.ErrCodeInsufficientFunds:
		return fiber.StatusPaymentRequired
	case wager.ErrCodeArithmeticOverflow:
		return fiber.StatusUnprocessableEntity
	case wager.ErrCodeUnauthenticated:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
