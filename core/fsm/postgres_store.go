package fsm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type recordRow struct {
	UserID int64          `db:"telegram_id"`
	State  sql.NullString `db:"state"`
	Data   Data           `db:"data"`
}

func (r recordRow) record() Record {
	data := r.Data
	if data == nil {
		data = Data{}
	}
	return Record{UserID: r.UserID, State: r.State.String, Data: data}
}

// PostgresStore persists records in the fsm_context table.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open sqlx handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID int64) (Record, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row,
		`SELECT telegram_id, state, data FROM fsm_context WHERE telegram_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("fsm: select %d: %w", userID, err)
	}
	return row.record(), nil
}

func (s *PostgresStore) All(ctx context.Context) ([]Record, error) {
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT telegram_id, state, data FROM fsm_context ORDER BY telegram_id`); err != nil {
		return nil, fmt.Errorf("fsm: select all: %w", err)
	}
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fsm_context (telegram_id, state, data) VALUES ($1, $2, $3)`,
		rec.UserID, nullState(rec.State), rec.Data)
	if err != nil {
		return fmt.Errorf("fsm: insert %d: %w", rec.UserID, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, rec Record) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE fsm_context SET state = $2, data = $3 WHERE telegram_id = $1`,
		rec.UserID, nullState(rec.State), rec.Data)
	if err != nil {
		return fmt.Errorf("fsm: update %d: %w", rec.UserID, err)
	}
	return expectOne(res)
}

func (s *PostgresStore) Delete(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fsm_context WHERE telegram_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("fsm: delete %d: %w", userID, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fsm: rows affected: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// nullState stores the empty state as NULL, the "no active flow" marker.
func nullState(state string) sql.NullString {
	return sql.NullString{String: state, Valid: state != ""}
}
