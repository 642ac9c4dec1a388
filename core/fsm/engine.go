package fsm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/m3rciful/taskbot/core/logger"
	"github.com/m3rciful/taskbot/core/metrics"
)

// Options tunes the retry policy around store calls.
type Options struct {
	// RetryAttempts is the total number of tries per store call.
	RetryAttempts int
	RetryInitial  time.Duration
	RetryMax      time.Duration
}

func (o Options) withDefaults() Options {
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 3
	}
	if o.RetryInitial <= 0 {
		o.RetryInitial = 100 * time.Millisecond
	}
	if o.RetryMax <= 0 {
		o.RetryMax = 2 * time.Second
	}
	if o.RetryMax < o.RetryInitial {
		o.RetryMax = o.RetryInitial
	}
	return o
}

// Engine is the only writer of the Store. Reads are served from a cache that
// is reloaded from the store after every successful write.
type Engine struct {
	store Store
	opts  Options

	mu    sync.RWMutex
	cache map[int64]Record
}

// NewEngine bulk-loads every stored record into the cache.
func NewEngine(ctx context.Context, store Store, opts Options) (*Engine, error) {
	if store == nil {
		return nil, errors.New("fsm: nil store")
	}
	e := &Engine{
		store: store,
		opts:  opts.withDefaults(),
		cache: make(map[int64]Record),
	}

	start := time.Now()
	var records []Record
	err := e.retry(ctx, "load", func() error {
		var err error
		records, err = store.All(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fsm: load records: %w", err)
	}
	for _, rec := range records {
		if rec.Data == nil {
			rec.Data = Data{}
		}
		e.cache[rec.UserID] = rec
	}
	metrics.SetCachedRecords(len(e.cache))
	logger.FSM.Info("cache loaded",
		slog.String("event", "fsm.load"),
		slog.Int("records", len(records)),
		slog.Duration("duration", logger.Took(start)),
	)
	return e, nil
}

// State returns the cached state label; ok is false when no record exists.
func (e *Engine) State(userID int64) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.cache[userID]
	return rec.State, ok
}

// Data returns a copy of the cached data, empty when no record exists.
func (e *Engine) Data(userID int64) Data {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cache[userID].Data.Clone()
}

// Exists reports whether a record is cached for userID.
func (e *Engine) Exists(userID int64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.cache[userID]
	return ok
}

// Len returns the number of cached records.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// UpdateState sets the state and keeps data, creating the record with empty data when missing.
func (e *Engine) UpdateState(ctx context.Context, userID int64, state string) error {
	return e.write(ctx, "update_state", userID, func(cur Record, exists bool) (Record, error) {
		if !exists {
			return Record{UserID: userID, State: state, Data: Data{}}, nil
		}
		cur.State = state
		return cur, nil
	})
}

// UpdateData replaces data and keeps the state, creating the record when missing.
// It returns data as re-read after the write.
func (e *Engine) UpdateData(ctx context.Context, userID int64, data Data) (Data, error) {
	if data == nil {
		data = Data{}
	}
	err := e.write(ctx, "update_data", userID, func(cur Record, exists bool) (Record, error) {
		if !exists {
			return Record{UserID: userID, Data: data}, nil
		}
		cur.Data = data
		return cur, nil
	})
	if err != nil {
		return nil, err
	}
	return e.Data(userID), nil
}

// Clear resets state and data of an existing record. It fails with
// ErrRecordNotFound when the user has no record.
func (e *Engine) Clear(ctx context.Context, userID int64) error {
	return e.write(ctx, "clear", userID, func(_ Record, exists bool) (Record, error) {
		if !exists {
			return Record{}, ErrRecordNotFound
		}
		return Record{UserID: userID, Data: Data{}}, nil
	})
}

// Delete removes the record from the store and the cache.
func (e *Engine) Delete(ctx context.Context, userID int64) error {
	err := e.retry(ctx, "delete", func() error {
		err := e.store.Delete(ctx, userID)
		if errors.Is(err, ErrRecordNotFound) {
			return backoff.Permanent(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("fsm: delete %d: %w", userID, err)
	}
	e.mu.Lock()
	delete(e.cache, userID)
	n := len(e.cache)
	e.mu.Unlock()
	metrics.SetCachedRecords(n)
	logger.FSM.Info("record deleted",
		slog.String("event", "fsm.delete"),
		slog.Int64("user_id", userID),
	)
	return nil
}

// write reads the authoritative record, applies mutate and stores the result,
// then refreshes the cache from the store.
func (e *Engine) write(ctx context.Context, op string, userID int64, mutate func(cur Record, exists bool) (Record, error)) error {
	start := time.Now()
	var committed Record
	err := e.retry(ctx, op, func() error {
		cur, err := e.store.Get(ctx, userID)
		exists := err == nil
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		next, err := mutate(cur, exists)
		if err != nil {
			return backoff.Permanent(err)
		}
		if next.Data, err = normalize(next.Data); err != nil {
			return backoff.Permanent(err)
		}
		if exists {
			err = e.store.Update(ctx, next)
		} else {
			err = e.store.Insert(ctx, next)
		}
		if err == nil {
			committed = next
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			metrics.RecordStoreFailure(op)
			logger.Error(ctx, "fsm", "fsm.write.failed",
				slog.String("op", op),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
		return fmt.Errorf("fsm: %s %d: %w", op, userID, err)
	}
	e.refresh(ctx, userID, committed)
	if logger.ShouldSampleDebug() {
		state, _ := e.State(userID)
		logger.Debug(ctx, "fsm", "fsm.write",
			slog.String("op", op),
			slog.String("next_state", state),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return nil
}

// refresh reloads userID from the store. When the re-read fails after a
// committed write, the committed record is cached instead.
func (e *Engine) refresh(ctx context.Context, userID int64, committed Record) {
	var rec Record
	err := e.retry(ctx, "refresh", func() error {
		var err error
		rec, err = e.store.Get(ctx, userID)
		if errors.Is(err, ErrRecordNotFound) {
			return backoff.Permanent(err)
		}
		return err
	})
	gone := errors.Is(err, ErrRecordNotFound)
	if err != nil && !gone {
		metrics.RecordStoreFailure("refresh")
		logger.Warn(ctx, "fsm", "fsm.refresh.failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		rec = committed
	}
	if rec.Data == nil {
		rec.Data = Data{}
	}

	e.mu.Lock()
	if gone {
		delete(e.cache, userID)
	} else {
		e.cache[userID] = rec
	}
	n := len(e.cache)
	e.mu.Unlock()
	metrics.SetCachedRecords(n)
}

func (e *Engine) retry(ctx context.Context, op string, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.opts.RetryInitial
	policy.MaxInterval = e.opts.RetryMax
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(e.opts.RetryAttempts-1)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		return fn()
	}, b, func(err error, wait time.Duration) {
		metrics.RecordStoreRetry(op)
		logger.Warn(ctx, "fsm", "store.retry",
			slog.String("op", op),
			slog.Int("attempts", attempt),
			slog.Duration("backoff", wait),
			slog.String("err", err.Error()),
		)
	})
}
