package fsm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = Options{RetryAttempts: 3, RetryInitial: time.Millisecond, RetryMax: 2 * time.Millisecond}

// flakyStore fails the next n writes with a transient error.
type flakyStore struct {
	*MemoryStore
	failWrites atomic.Int32
	writes     atomic.Int32
}

var errTransient = errors.New("connection reset")

func (s *flakyStore) fail() error {
	s.writes.Add(1)
	if s.failWrites.Load() > 0 {
		s.failWrites.Add(-1)
		return errTransient
	}
	return nil
}

func (s *flakyStore) Insert(ctx context.Context, rec Record) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.MemoryStore.Insert(ctx, rec)
}

func (s *flakyStore) Update(ctx context.Context, rec Record) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.MemoryStore.Update(ctx, rec)
}

func newEngine(t *testing.T, store Store) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), store, fastRetry)
	require.NoError(t, err)
	return e
}

func TestMissingRecordReadsAsEmpty(t *testing.T) {
	e := newEngine(t, NewMemoryStore())

	state, ok := e.State(1)
	assert.False(t, ok)
	assert.Empty(t, state)
	assert.Equal(t, Data{}, e.Data(1))
	assert.False(t, e.Exists(1))
}

func TestUpdateStateCreatesAndKeepsData(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, NewMemoryStore())

	require.NoError(t, e.UpdateState(ctx, 7, "registration_authorization"))
	state, ok := e.State(7)
	require.True(t, ok)
	assert.Equal(t, "registration_authorization", state)
	assert.Equal(t, Data{}, e.Data(7))

	_, err := e.UpdateData(ctx, 7, Data{"login_name": "neo"})
	require.NoError(t, err)
	require.NoError(t, e.UpdateState(ctx, 7, "authorization:password"))

	state, _ = e.State(7)
	assert.Equal(t, "authorization:password", state)
	assert.Equal(t, Data{"login_name": "neo"}, e.Data(7))
}

func TestUpdateDataKeepsStateAndReturnsStoredForm(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, NewMemoryStore())
	require.NoError(t, e.UpdateState(ctx, 7, "tasks:edit"))

	got, err := e.UpdateData(ctx, 7, Data{"pagination": 10, "list_ids": []int64{3, 4}})
	require.NoError(t, err)

	state, _ := e.State(7)
	assert.Equal(t, "tasks:edit", state)
	assert.Equal(t, float64(10), got["pagination"])
	offset, ok := got.Int64("pagination")
	require.True(t, ok)
	assert.EqualValues(t, 10, offset)
	assert.Equal(t, []int64{3, 4}, got.Int64s("list_ids"))
}

func TestUpdateDataCreatesRecordWithEmptyState(t *testing.T) {
	e := newEngine(t, NewMemoryStore())
	_, err := e.UpdateData(context.Background(), 9, Data{"a": "b"})
	require.NoError(t, err)

	state, ok := e.State(9)
	assert.True(t, ok)
	assert.Empty(t, state)
}

func TestClearResetsBothFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	e := newEngine(t, store)
	require.NoError(t, e.UpdateState(ctx, 1, "x"))
	_, err := e.UpdateData(ctx, 1, Data{"a": 1})
	require.NoError(t, err)

	require.NoError(t, e.Clear(ctx, 1))

	state, ok := e.State(1)
	assert.True(t, ok)
	assert.Empty(t, state)
	assert.Equal(t, Data{}, e.Data(1))

	stored, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, stored.State)
	assert.Empty(t, stored.Data)
}

func TestClearMissingRecordFails(t *testing.T) {
	e := newEngine(t, NewMemoryStore())
	err := e.Clear(context.Background(), 404)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.False(t, e.Exists(404))
}

func TestNewEngineBulkLoads(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Insert(ctx, Record{UserID: 1, State: "main_menu", Data: Data{"owner_id": 1}}))
	require.NoError(t, store.Insert(ctx, Record{UserID: 2, State: "tasks"}))

	e := newEngine(t, store)
	assert.Equal(t, 2, e.Len())
	state, _ := e.State(1)
	assert.Equal(t, "main_menu", state)
	owner, ok := e.Data(1).Int64("owner_id")
	assert.True(t, ok)
	assert.EqualValues(t, 1, owner)
}

func TestWritesRetryTransientFailures(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore()}
	store.failWrites.Store(2)
	e := newEngine(t, store)

	require.NoError(t, e.UpdateState(context.Background(), 5, "tasks"))
	assert.EqualValues(t, 3, store.writes.Load())
	state, _ := e.State(5)
	assert.Equal(t, "tasks", state)
}

func TestWritesGiveUpAfterAttempts(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore()}
	store.failWrites.Store(10)
	e := newEngine(t, store)

	err := e.UpdateState(context.Background(), 5, "tasks")
	assert.ErrorIs(t, err, errTransient)
	assert.EqualValues(t, fastRetry.RetryAttempts, store.writes.Load())
	assert.False(t, e.Exists(5))
}

func TestDataReturnsCopy(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, NewMemoryStore())
	_, err := e.UpdateData(ctx, 1, Data{"k": "v"})
	require.NoError(t, err)

	d := e.Data(1)
	d["k"] = "changed"
	assert.Equal(t, "v", e.Data(1)["k"])
}

func TestDeleteRemovesRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	e := newEngine(t, store)
	require.NoError(t, e.UpdateState(ctx, 3, "main_menu"))

	require.NoError(t, e.Delete(ctx, 3))
	assert.False(t, e.Exists(3))
	_, err := store.Get(ctx, 3)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, e.Delete(ctx, 3), ErrRecordNotFound)
}

// rereadFailStore fails every Get once armed, as if the connection dropped
// right after a committed write.
type rereadFailStore struct {
	*MemoryStore
	armed atomic.Bool
}

func (s *rereadFailStore) Get(ctx context.Context, userID int64) (Record, error) {
	if s.armed.Load() {
		return Record{}, errTransient
	}
	return s.MemoryStore.Get(ctx, userID)
}

func (s *rereadFailStore) Update(ctx context.Context, rec Record) error {
	if err := s.MemoryStore.Update(ctx, rec); err != nil {
		return err
	}
	s.armed.Store(true)
	return nil
}

func TestFailedRereadKeepsCommittedRecord(t *testing.T) {
	ctx := context.Background()
	store := &rereadFailStore{MemoryStore: NewMemoryStore()}
	e := newEngine(t, store)
	_, err := e.UpdateData(ctx, 7, Data{"owner": 7})
	require.NoError(t, err)

	require.NoError(t, e.UpdateState(ctx, 7, "tasks:edit"))

	state, ok := e.State(7)
	assert.True(t, ok)
	assert.Equal(t, "tasks:edit", state)
	assert.EqualValues(t, 7, e.Data(7)["owner"])

	store.armed.Store(false)
	stored, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "tasks:edit", stored.State)
}
