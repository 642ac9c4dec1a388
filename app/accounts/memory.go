package accounts

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is a Repository kept in process memory.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[int64]Account
	// OnDelete runs after an account is removed, e.g. to drop its tasks.
	OnDelete func(ctx context.Context, ownerID int64)
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[int64]Account)}
}

func (r *MemoryRepository) ByOwner(_ context.Context, ownerID int64) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[ownerID]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (r *MemoryRepository) ByLogin(_ context.Context, login string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.accounts {
		if acc.LoginName == login {
			return acc, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *MemoryRepository) Create(_ context.Context, acc Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[acc.OwnerID]; exists {
		return ErrLoginTaken
	}
	if r.loginUsed(acc.LoginName, 0) {
		return ErrLoginTaken
	}
	if acc.RegisteredAt.IsZero() {
		acc.RegisteredAt = time.Now().UTC()
	}
	r.accounts[acc.OwnerID] = acc
	return nil
}

func (r *MemoryRepository) SetLoggedIn(_ context.Context, ownerID int64, loggedIn bool) error {
	return r.update(ownerID, func(a *Account) error { a.LoggedIn = loggedIn; return nil })
}

func (r *MemoryRepository) SetUsername(_ context.Context, ownerID int64, username string) error {
	return r.update(ownerID, func(a *Account) error { a.Username = username; return nil })
}

func (r *MemoryRepository) SetLogin(_ context.Context, ownerID int64, login string) error {
	return r.update(ownerID, func(a *Account) error {
		if r.loginUsed(login, ownerID) {
			return ErrLoginTaken
		}
		a.LoginName = login
		return nil
	})
}

func (r *MemoryRepository) SetPassword(_ context.Context, ownerID int64, hash string) error {
	return r.update(ownerID, func(a *Account) error { a.PasswordHash = hash; return nil })
}

func (r *MemoryRepository) Delete(ctx context.Context, ownerID int64) error {
	r.mu.Lock()
	if _, ok := r.accounts[ownerID]; !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.accounts, ownerID)
	hook := r.OnDelete
	r.mu.Unlock()
	if hook != nil {
		hook(ctx, ownerID)
	}
	return nil
}

func (r *MemoryRepository) update(ownerID int64, fn func(*Account) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[ownerID]
	if !ok {
		return ErrNotFound
	}
	if err := fn(&acc); err != nil {
		return err
	}
	r.accounts[ownerID] = acc
	return nil
}

// loginUsed must be called with mu held.
func (r *MemoryRepository) loginUsed(login string, except int64) bool {
	for id, acc := range r.accounts {
		if id != except && acc.LoginName == login {
			return true
		}
	}
	return false
}
