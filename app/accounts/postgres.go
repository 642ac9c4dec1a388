package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/taskbot/core/logger"
)

const uniqueViolation = "23505"

const accountColumns = `owner_telegram_id, login_name, username, password, is_login, registration_date`

// PostgresRepository keeps accounts in the users table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wraps an open sqlx handle.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ByOwner(ctx context.Context, ownerID int64) (Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM users WHERE owner_telegram_id = $1`, ownerID)
}

func (r *PostgresRepository) ByLogin(ctx context.Context, login string) (Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM users WHERE login_name = $1`, login)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg any) (Account, error) {
	var acc Account
	err := r.db.GetContext(ctx, &acc, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("accounts: select: %w", err)
	}
	return acc, nil
}

func (r *PostgresRepository) Create(ctx context.Context, acc Account) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO users (owner_telegram_id, login_name, username, password, is_login)
		 VALUES (:owner_telegram_id, :login_name, :username, :password, :is_login)`, acc)
	if err != nil {
		return mapError("insert", err)
	}
	logger.SVCAccounts.Info("account created",
		slog.String("event", "account.created"),
		slog.Int64("owner_id", acc.OwnerID),
	)
	return nil
}

func (r *PostgresRepository) SetLoggedIn(ctx context.Context, ownerID int64, loggedIn bool) error {
	return r.exec(ctx, "set_logged_in", `UPDATE users SET is_login = $2 WHERE owner_telegram_id = $1`, ownerID, loggedIn)
}

func (r *PostgresRepository) SetUsername(ctx context.Context, ownerID int64, username string) error {
	return r.exec(ctx, "set_username", `UPDATE users SET username = $2 WHERE owner_telegram_id = $1`, ownerID, username)
}

func (r *PostgresRepository) SetLogin(ctx context.Context, ownerID int64, login string) error {
	return r.exec(ctx, "set_login", `UPDATE users SET login_name = $2 WHERE owner_telegram_id = $1`, ownerID, login)
}

func (r *PostgresRepository) SetPassword(ctx context.Context, ownerID int64, hash string) error {
	return r.exec(ctx, "set_password", `UPDATE users SET password = $2 WHERE owner_telegram_id = $1`, ownerID, hash)
}

// Delete removes the account and its tasks in one transaction.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("accounts: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_tasks WHERE owner_telegram_id = $1`, ownerID); err != nil {
		return fmt.Errorf("accounts: delete tasks: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE owner_telegram_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("accounts: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("accounts: commit: %w", err)
	}
	logger.SVCAccounts.Info("account deleted",
		slog.String("event", "account.deleted"),
		slog.Int64("owner_id", ownerID),
	)
	return nil
}

func (r *PostgresRepository) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrLoginTaken
	}
	return fmt.Errorf("accounts: %s: %w", op, err)
}
