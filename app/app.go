// Package app wires the taskbot: storage, the state engine, the dispatcher
// with its flows and the Telegram transport.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/app/accounts"
	"github.com/m3rciful/taskbot/app/flows"
	"github.com/m3rciful/taskbot/app/tasks"
	"github.com/m3rciful/taskbot/core/bootstrap"
	"github.com/m3rciful/taskbot/core/buildinfo"
	coredatabase "github.com/m3rciful/taskbot/core/database"
	"github.com/m3rciful/taskbot/core/dispatch"
	"github.com/m3rciful/taskbot/core/fsm"
	"github.com/m3rciful/taskbot/core/logger"
	"github.com/m3rciful/taskbot/core/metrics"
	"github.com/m3rciful/taskbot/core/telegram"
	"github.com/m3rciful/taskbot/core/telegram/middleware"
	"github.com/m3rciful/taskbot/core/telegram/router"
	"github.com/m3rciful/taskbot/core/telegram/sender"
)

// Options tweak New.
type Options struct {
	SkipMigrations bool
}

// App owns the long-lived components of a running bot.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	engine   *fsm.Engine
	accounts accounts.Repository
	tasks    tasks.Repository
	queue    *sender.Queue
	started  time.Time

	// lock takes the FSM writer lock; release frees it.
	lock func(ctx context.Context) (release func() error, err error)
}

// ErrWriterBusy is returned when another process already writes FSM contexts.
var ErrWriterBusy = errors.New("app: another taskbot process is serving; use the /purge admin command instead")

// New initializes the logger, prepares the schema and loads FSM state.
func New(ctx context.Context, cfg *Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	boot, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:         &cfg.Config,
		Database:       cfg.Database,
		SkipMigrations: opts.SkipMigrations,
	})
	if err != nil {
		return nil, err
	}

	engine, err := fsm.NewEngine(ctx, fsm.NewPostgresStore(boot.DB), cfg.FSM.Options())
	if err != nil {
		_ = boot.DB.Close()
		return nil, fmt.Errorf("app: %w", err)
	}
	return &App{
		cfg:      cfg,
		db:       boot.DB,
		engine:   engine,
		accounts: accounts.NewPostgresRepository(boot.DB),
		tasks:    tasks.NewPostgresRepository(boot.DB),
		queue:    sender.NewQueue(cfg.Sender.Options()),
		started:  time.Now(),
		lock: func(ctx context.Context) (func() error, error) {
			return coredatabase.TryAdvisoryLock(ctx, boot.DB, coredatabase.WriterLockKey)
		},
	}, nil
}

// Engine returns the state engine for read-only use.
func (a *App) Engine() *fsm.Engine { return a.engine }

// Exclusive runs fn with the FSM writer lock held. It fails with
// ErrWriterBusy while a bot process is serving.
func (a *App) Exclusive(ctx context.Context, fn func(*fsm.Engine) error) error {
	release, err := a.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()
	return fn(a.engine)
}

func (a *App) acquire(ctx context.Context) (func() error, error) {
	release, err := a.lock(ctx)
	if errors.Is(err, coredatabase.ErrLocked) {
		return nil, ErrWriterBusy
	}
	return release, err
}

// Run serves Telegram updates until ctx is done.
func (a *App) Run(ctx context.Context) error {
	release, err := a.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	bot, err := telegram.NewBot(&a.cfg.Config)
	if err != nil {
		return err
	}

	d := dispatch.New(a.engine, telegram.NewMessenger(bot, a.queue), dispatch.Options{DeleteIncoming: true})
	flows.New(a.accounts, a.tasks, flows.Options{
		Hasher:   accounts.NewHasher(a.cfg.Security.BcryptCost),
		PageSize: a.cfg.Tasks.PageSize,
		Columns:  a.cfg.Tasks.Columns,
	}).Register(d)
	logger.TWire.Info("routes registered",
		slog.String("event", "dispatch.wire"),
		slog.Int("routes", len(d.Routes())),
	)

	if listen := a.cfg.Metrics.Listen; listen != "" {
		go func() {
			if err := metrics.Serve(ctx, listen); err != nil {
				logger.Error(ctx, "metrics", "metrics.serve", slog.String("err", err.Error()))
			}
		}()
	}

	reg := telegram.NewRegistry()
	reg.RegisterCommand("/stats", telegram.Command{
		Handler:     a.stats,
		Description: "Состояние бота",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/purge", telegram.Command{
		Handler:     a.purge,
		Description: "Сбросить контекст пользователя",
		AdminOnly:   true,
	})

	return telegram.Run(ctx, bot, telegram.RunOptions{
		Config:       &a.cfg.Config,
		Registry:     reg,
		Middlewares:  telegram.DefaultMiddlewares(&a.cfg.Config, nil),
		Routes:       router.Routes(d),
		MenuCommands: []tele.Command{{Text: "start", Description: "Главное меню"}},
	})
}

func (a *App) stats(c tele.Context) error {
	return c.Send(statsText(a.engine.Len(), a.queue.ErrorCount(), time.Since(a.started)))
}

func (a *App) purge(c tele.Context) error {
	return c.Send(purgeUser(middleware.Context(c), a.engine, c.Message().Payload))
}

// purgeUser deletes the context of the user named by arg through the serving
// engine and returns the reply text.
func purgeUser(ctx context.Context, engine *fsm.Engine, arg string) string {
	userID, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || userID == 0 {
		return "Использование: /purge <user_id>"
	}
	err = engine.Delete(ctx, userID)
	switch {
	case errors.Is(err, fsm.ErrRecordNotFound):
		return fmt.Sprintf("Контекст %d не найден", userID)
	case err != nil:
		logger.Error(ctx, "app", "fsm.purge.failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return fmt.Sprintf("Не удалось сбросить контекст %d", userID)
	}
	logger.Info(ctx, "app", "fsm.purge", slog.Int64("user_id", userID))
	return fmt.Sprintf("Контекст %d сброшен", userID)
}

func statsText(records int, sendFailures uint64, uptime time.Duration) string {
	return fmt.Sprintf("Версия: %s\nАптайм: %s\nКонтекстов FSM: %d\nОшибок отправки: %d",
		buildinfo.String(), uptime.Truncate(time.Second), records, sendFailures)
}

// Close stops the sender queue and closes the database.
func (a *App) Close() error {
	a.queue.Close()
	return a.db.Close()
}
