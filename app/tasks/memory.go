package tasks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is a Repository kept in process memory.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]Task
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[int64]Task)}
}

func (r *MemoryRepository) Create(_ context.Context, t Task) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	t.Done = false
	t.CompletedAt = sql.NullTime{}
	r.tasks[t.ID] = t
	return t.ID, nil
}

func (r *MemoryRepository) Get(_ context.Context, id, ownerID int64) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepository) List(_ context.Context, ownerID int64, f Filter, now time.Time) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID && f.Keep(t, now) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) IDs(_ context.Context, ownerID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := []int64{}
	for id, t := range r.tasks {
		if t.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *MemoryRepository) SetName(_ context.Context, id, ownerID int64, name string) error {
	return r.update(id, ownerID, func(t *Task) { t.Name = name })
}

func (r *MemoryRepository) SetDescription(_ context.Context, id, ownerID int64, description string) error {
	return r.update(id, ownerID, func(t *Task) { t.Description = description })
}

func (r *MemoryRepository) SetStart(_ context.Context, id, ownerID int64, start time.Time) error {
	return r.update(id, ownerID, func(t *Task) { t.Start = start })
}

func (r *MemoryRepository) SetEnd(_ context.Context, id, ownerID int64, end time.Time) error {
	return r.update(id, ownerID, func(t *Task) { t.End = end })
}

func (r *MemoryRepository) ToggleStatus(_ context.Context, id, ownerID int64, now time.Time) (bool, error) {
	var done bool
	err := r.update(id, ownerID, func(t *Task) {
		t.Done = !t.Done
		t.CompletedAt = sql.NullTime{Time: now, Valid: t.Done}
		done = t.Done
	})
	return done, err
}

func (r *MemoryRepository) Delete(_ context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

// DeleteOwner removes every task of ownerID.
func (r *MemoryRepository) DeleteOwner(_ context.Context, ownerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tasks {
		if t.OwnerID == ownerID {
			delete(r.tasks, id)
		}
	}
}

func (r *MemoryRepository) update(id, ownerID int64, fn func(*Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return ErrNotFound
	}
	fn(&t)
	r.tasks[id] = t
	return nil
}
