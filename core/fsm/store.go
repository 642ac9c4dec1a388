package fsm

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned when no record exists for a user.
var ErrRecordNotFound = errors.New("fsm: record not found")

// Store is the durable backing of the engine. Only Engine writes to it.
type Store interface {
	Get(ctx context.Context, userID int64) (Record, error)
	All(ctx context.Context) ([]Record, error)
	Insert(ctx context.Context, rec Record) error
	Update(ctx context.Context, rec Record) error
	Delete(ctx context.Context, userID int64) error
}
