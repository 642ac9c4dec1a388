// Package bootstrap brings up the infrastructure every command needs:
// logger, database connection and schema.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/taskbot/core/config"
	coredatabase "github.com/m3rciful/taskbot/core/database"
	"github.com/m3rciful/taskbot/core/logger"
)

// Options control the bootstrap pipeline. Nil funcs fall back to the
// package defaults.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	// SkipMigrations leaves the schema untouched.
	SkipMigrations bool

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(context.Context, coredatabase.Config) (coredatabase.MigrationResult, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB        *sqlx.DB
	Migration coredatabase.MigrationResult
}

// Run initializes the logger, applies migrations and connects to the database.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	if !opts.SkipMigrations {
		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		mig, err := migrate(ctx, opts.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
		res.Migration = mig
	} else {
		logger.MIG.Info("migrations skipped", slog.String("event", "db.migrate"), slog.String("status", "skip"))
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	res.DB = db
	return res, nil
}
