// Package accounts stores bot accounts and checks their credentials.
package accounts

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("accounts: not found")
	// ErrLoginTaken is returned when another account already uses the login.
	ErrLoginTaken = errors.New("accounts: login taken")
)

// Account is one registered user. OwnerID is the Telegram id of the user who
// registered it; other chat users may log into it with the password.
type Account struct {
	OwnerID      int64     `db:"owner_telegram_id"`
	LoginName    string    `db:"login_name"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password"`
	LoggedIn     bool      `db:"is_login"`
	RegisteredAt time.Time `db:"registration_date"`
}

// Repository is the account persistence contract.
type Repository interface {
	ByOwner(ctx context.Context, ownerID int64) (Account, error)
	ByLogin(ctx context.Context, login string) (Account, error)
	Create(ctx context.Context, acc Account) error
	SetLoggedIn(ctx context.Context, ownerID int64, loggedIn bool) error
	SetUsername(ctx context.Context, ownerID int64, username string) error
	SetLogin(ctx context.Context, ownerID int64, login string) error
	SetPassword(ctx context.Context, ownerID int64, hash string) error
	// Delete removes the account together with its tasks.
	Delete(ctx context.Context, ownerID int64) error
}
