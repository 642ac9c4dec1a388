package fsm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type memoryRow struct {
	state string
	data  []byte
}

// MemoryStore keeps records in process memory. Data is held in encoded form
// so reads behave like a database round trip.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[int64]memoryRow
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[int64]memoryRow)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[userID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return row.record(userID)
}

func (s *MemoryStore) All(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.rows))
	for id, row := range s.rows {
		rec, err := row.record(id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, rec Record) error {
	row, err := encodeRow(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[rec.UserID]; exists {
		return fmt.Errorf("fsm: record %d already exists", rec.UserID)
	}
	s.rows[rec.UserID] = row
	return nil
}

func (s *MemoryStore) Update(_ context.Context, rec Record) error {
	row, err := encodeRow(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[rec.UserID]; !exists {
		return ErrRecordNotFound
	}
	s.rows[rec.UserID] = row
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[userID]; !exists {
		return ErrRecordNotFound
	}
	delete(s.rows, userID)
	return nil
}

func encodeRow(rec Record) (memoryRow, error) {
	v, err := rec.Data.Value()
	if err != nil {
		return memoryRow{}, fmt.Errorf("fsm: encode data: %w", err)
	}
	return memoryRow{state: rec.State, data: v.([]byte)}, nil
}

func (r memoryRow) record(userID int64) (Record, error) {
	var data Data
	if err := data.Scan(r.data); err != nil {
		return Record{}, err
	}
	return Record{UserID: userID, State: r.state, Data: data}, nil
}
