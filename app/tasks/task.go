// Package tasks stores the personal tasks of an account.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when the task does not exist or belongs to another owner.
var ErrNotFound = errors.New("tasks: not found")

// Task is one task of an account.
type Task struct {
	ID          int64        `db:"id_task"`
	OwnerID     int64        `db:"owner_telegram_id"`
	Name        string       `db:"task_name"`
	Description string       `db:"description"`
	Start       time.Time    `db:"start_time"`
	End         time.Time    `db:"end_time"`
	CompletedAt sql.NullTime `db:"completion_time"`
	Done        bool         `db:"status"`
}

// Overdue reports whether the task is unfinished past its end.
func (t Task) Overdue(now time.Time) bool {
	return !t.Done && t.End.Before(now)
}

// Filter selects which tasks List returns.
type Filter string

const (
	// FilterCurrent is unfinished tasks that have started and not yet ended.
	FilterCurrent Filter = "current"
	// FilterCompleted is finished tasks.
	FilterCompleted Filter = "completed"
	// FilterOverdue is unfinished tasks past their end.
	FilterOverdue Filter = "overdue"
	// FilterAll is every task.
	FilterAll Filter = "all"
)

// ParseFilter accepts the filter names above.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterCurrent, FilterCompleted, FilterOverdue, FilterAll:
		return f, nil
	}
	return "", fmt.Errorf("tasks: unknown filter %q", s)
}

// Keep reports whether t passes f at now.
func (f Filter) Keep(t Task, now time.Time) bool {
	switch f {
	case FilterCurrent:
		return !t.Done && t.Start.Before(now) && t.End.After(now)
	case FilterCompleted:
		return t.Done
	case FilterOverdue:
		return t.Overdue(now)
	}
	return true
}

// Repository is the task persistence contract. Every call is scoped to an
// owner; a task of another owner reads as ErrNotFound.
type Repository interface {
	Create(ctx context.Context, t Task) (int64, error)
	Get(ctx context.Context, id, ownerID int64) (Task, error)
	List(ctx context.Context, ownerID int64, f Filter, now time.Time) ([]Task, error)
	// IDs returns the ids of every task of the owner in ascending order.
	IDs(ctx context.Context, ownerID int64) ([]int64, error)
	SetName(ctx context.Context, id, ownerID int64, name string) error
	SetDescription(ctx context.Context, id, ownerID int64, description string) error
	SetStart(ctx context.Context, id, ownerID int64, start time.Time) error
	SetEnd(ctx context.Context, id, ownerID int64, end time.Time) error
	// ToggleStatus flips Done, stamping or clearing CompletedAt, and returns the new value.
	ToggleStatus(ctx context.Context, id, ownerID int64, now time.Time) (bool, error)
	Delete(ctx context.Context, id, ownerID int64) error
}
