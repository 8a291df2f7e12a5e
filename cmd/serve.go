package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bnema/followcheck/internal/adapters/health"
	"github.com/bnema/followcheck/internal/adapters/session/memory"
	"github.com/bnema/followcheck/internal/adapters/transport/telegram"
	"github.com/bnema/followcheck/internal/application"
	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
	"github.com/bnema/followcheck/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	token, err := a.telegramToken(ctx)
	if err != nil {
		return err
	}

	bot, err := telegram.New(telegram.Config{
		Token:        token,
		AllowedUsers: a.cfg.Telegram.AllowedUsers,
		PollTimeout:  a.cfg.Telegram.PollTimeout,
		MaxFileSize:  a.cfg.Telegram.MaxFileSize,
	}, a.logger)
	if err != nil {
		return err
	}

	svc := a.buildServices()
	sessions := memory.NewStore(a.cfg.Session.TTL, a.clock)
	orchestrator := application.NewSessionOrchestrator(sessions, bot, svc.login, svc.collector, a.jars, a.codec, a.clock, a.logger)
	dispatcher := application.NewDispatcher(orchestrator, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx, dispatcher)
	})
	g.Go(func() error {
		return sweepSessions(gctx, sessions, a.clock, a.cfg.Session.SweepInterval, a.logger)
	})
	if a.cfg.Health.Addr != "" {
		stats := serveStats{sessions: sessions, dispatcher: dispatcher}
		g.Go(func() error {
			return health.New(a.cfg.Health.Addr, stats, version.Version, a.logger).Run(gctx)
		})
	}

	a.logger.Info("bot started", zap.Int("max_browser_sessions", a.cfg.Browser.MaxSessions))
	err = g.Wait()
	dispatcher.Wait()
	a.logger.Info("bot stopped")
	return err
}

// telegramToken prefers the configured token and falls back to the secret store.
func (a *app) telegramToken(ctx context.Context) (string, error) {
	if token := strings.TrimSpace(a.cfg.Telegram.Token); token != "" {
		return token, nil
	}

	token, err := a.secrets.Get(ctx, a.cfg.Telegram.TokenSecret)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			a.logger.Debug("no stored telegram token", zap.Error(err))
			return "", telegram.ErrMissingToken
		}
		return "", fmt.Errorf("load telegram token: %w", err)
	}
	return strings.TrimSpace(token), nil
}

type sessionSweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// sweepSessions evicts idle sessions every interval until ctx is done.
func sweepSessions(ctx context.Context, store sessionSweeper, clock ports.Clock, interval time.Duration, logger *zap.Logger) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			evicted, err := store.Sweep(ctx, clock.Now())
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("sweep sessions", zap.Error(err))
				continue
			}
			if evicted > 0 {
				logger.Info("evicted idle sessions", zap.Int("count", evicted))
			}
		}
	}
}

type serveStats struct {
	sessions   *memory.Store
	dispatcher *application.Dispatcher
}

func (s serveStats) Sessions() int { return s.sessions.Len() }
func (s serveStats) Busy() int     { return s.dispatcher.Active() }
