package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/taskbot/core/logger"
)

const taskColumns = `id_task, owner_telegram_id, task_name, description, start_time, end_time, completion_time, status`

// PostgresRepository keeps tasks in the user_tasks table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wraps an open sqlx handle.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t Task) (int64, error) {
	rows, err := r.db.NamedQueryContext(ctx,
		`INSERT INTO user_tasks (owner_telegram_id, task_name, description, start_time, end_time, status)
		 VALUES (:owner_telegram_id, :task_name, :description, :start_time, :end_time, false)
		 RETURNING id_task`, t)
	if err != nil {
		return 0, fmt.Errorf("tasks: insert: %w", err)
	}
	defer rows.Close()
	var id int64
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("tasks: insert scan: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("tasks: insert: %w", err)
	}
	logger.SVCTasks.Info("task created",
		slog.String("event", "task.created"),
		slog.Int64("owner_id", t.OwnerID),
		slog.Int64("task_id", id),
	)
	return id, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, ownerID int64) (Task, error) {
	var t Task
	err := r.db.GetContext(ctx, &t,
		`SELECT `+taskColumns+` FROM user_tasks WHERE id_task = $1 AND owner_telegram_id = $2`, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("tasks: select %d: %w", id, err)
	}
	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context, ownerID int64, f Filter, now time.Time) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM user_tasks WHERE owner_telegram_id = $1`
	args := []any{ownerID}
	switch f {
	case FilterCurrent:
		query += ` AND status = false AND start_time < $2 AND end_time > $2`
		args = append(args, now)
	case FilterOverdue:
		query += ` AND status = false AND end_time < $2`
		args = append(args, now)
	case FilterCompleted:
		query += ` AND status = true`
	}
	query += ` ORDER BY start_time, id_task`

	var out []Task
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("tasks: list %s: %w", f, err)
	}
	return out, nil
}

func (r *PostgresRepository) IDs(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids pq.Int64Array
	err := r.db.GetContext(ctx, &ids,
		`SELECT COALESCE(array_agg(id_task ORDER BY id_task), '{}') FROM user_tasks WHERE owner_telegram_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("tasks: ids: %w", err)
	}
	return []int64(ids), nil
}

func (r *PostgresRepository) SetName(ctx context.Context, id, ownerID int64, name string) error {
	return r.set(ctx, "task_name", id, ownerID, name)
}

func (r *PostgresRepository) SetDescription(ctx context.Context, id, ownerID int64, description string) error {
	return r.set(ctx, "description", id, ownerID, description)
}

func (r *PostgresRepository) SetStart(ctx context.Context, id, ownerID int64, start time.Time) error {
	return r.set(ctx, "start_time", id, ownerID, start)
}

func (r *PostgresRepository) SetEnd(ctx context.Context, id, ownerID int64, end time.Time) error {
	return r.set(ctx, "end_time", id, ownerID, end)
}

// set updates one whitelisted column.
func (r *PostgresRepository) set(ctx context.Context, column string, id, ownerID int64, value any) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_tasks SET `+column+` = $3 WHERE id_task = $1 AND owner_telegram_id = $2`, id, ownerID, value)
	if err != nil {
		return fmt.Errorf("tasks: set %s: %w", column, err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) ToggleStatus(ctx context.Context, id, ownerID int64, now time.Time) (bool, error) {
	var done bool
	err := r.db.GetContext(ctx, &done,
		`UPDATE user_tasks
		 SET status = NOT status,
		     completion_time = CASE WHEN status THEN NULL ELSE $3::timestamptz END
		 WHERE id_task = $1 AND owner_telegram_id = $2
		 RETURNING status`, id, ownerID, now)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("tasks: toggle %d: %w", id, err)
	}
	return done, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_tasks WHERE id_task = $1 AND owner_telegram_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("tasks: delete %d: %w", id, err)
	}
	if err := expectOne(res); err != nil {
		return err
	}
	logger.SVCTasks.Info("task deleted",
		slog.String("event", "task.deleted"),
		slog.Int64("owner_id", ownerID),
		slog.Int64("task_id", id),
	)
	return nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("tasks: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
