package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/taskbot/core/logger"
)

// ErrLocked is returned when another session holds the advisory lock.
var ErrLocked = errors.New("database: advisory lock held by another session")

// WriterLockKey guards the single process allowed to write FSM contexts.
const WriterLockKey int64 = 0x7461736b626f74

// TryAdvisoryLock takes a session-level advisory lock on a dedicated
// connection. The returned release unlocks it and hands the connection back.
func TryAdvisoryLock(ctx context.Context, db *sqlx.DB, key int64) (func() error, error) {
	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	var acquired bool
	if err := conn.GetContext(ctx, &acquired, `SELECT pg_try_advisory_lock($1)`, key); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	if !acquired {
		_ = conn.Close()
		return nil, ErrLocked
	}
	logger.DB.Debug("advisory lock acquired",
		slog.String("event", "db.lock"),
		slog.Int64("key", key),
	)
	return func() error {
		_, err := conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, key)
		return errors.Join(err, conn.Close())
	}, nil
}
