// Package telegram adapts telebot to the transport-neutral chat layer: bot
// construction, the middleware chain, the outbound messenger and the run loop.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/taskbot/core/config"
	"github.com/m3rciful/taskbot/core/logger"
	"github.com/m3rciful/taskbot/core/telegram/middleware"
)

// Route declares a handler bound to a telebot endpoint.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls Run.
type RunOptions struct {
	Config      *coreconfig.Config
	Registry    *Registry
	Middlewares []Middleware
	Routes      []Route
	// MenuCommands are shown in the command menu next to registry commands.
	MenuCommands []tele.Command

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context) error
	OnStop  func(ctx context.Context) error
}

// NewBot builds a bot with the configured poller and HTTP client. It calls
// getMe, so the token is validated here.
func NewBot(cfg *coreconfig.Config) (*tele.Bot, error) {
	if cfg == nil {
		return nil, errors.New("telegram: nil config")
	}
	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  BuildPoller(cfg),
		Client:  BuildHTTPClient(longPollTimeout(cfg)),
		OnError: onError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logger.TWire.Info("bot built",
		slog.String("event", "tg.build"),
		slog.String("mode", cfg.Telegram.RunMode),
		slog.String("username", bot.Me.Username),
		slog.Duration("duration", logger.Took(start)),
	)
	return bot, nil
}

// Run wires middlewares, routes and commands into bot and serves updates
// until ctx is done.
func Run(ctx context.Context, bot *tele.Bot, opts RunOptions) error {
	if bot == nil || opts.Config == nil {
		return errors.New("telegram: bot and config are required")
	}
	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	if cfg.Telegram.RunMode == coreconfig.RunModeLongpoll && !opts.DisableWebhookCleanup {
		if err := bot.RemoveWebhook(); err != nil {
			logger.Warn(ctx, "tg", "delete_webhook", slog.String("status", "fail"), slog.String("err", err.Error()))
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	adminOnly := middleware.AdminOnly(middleware.AdminOptions{AdminID: cfg.Telegram.AdminID})
	for name, cmd := range reg.Commands() {
		h := cmd.Handler
		if cmd.AdminOnly {
			h = adminOnly(h)
		}
		bot.Handle(name, h)
	}
	SetupCommands(ctx, bot, reg, opts.MenuCommands...)
	logger.TWire.Info("wired",
		slog.String("event", "tg.wire"),
		slog.Int("middlewares", len(opts.Middlewares)),
		slog.Int("routes", len(opts.Routes)),
		slog.Int("commands", len(reg.Commands())),
	)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()
	logger.Info(ctx, "tg", "tg.start", slog.String("mode", cfg.Telegram.RunMode))

	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
	case <-done:
	}
	logger.Info(ctx, "tg", "tg.stop")

	if opts.OnStop != nil {
		return opts.OnStop(context.WithoutCancel(ctx))
	}
	return nil
}

func onError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = middleware.Context(c)
	}
	logger.Error(ctx, "tg", "tg.error", slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
}
