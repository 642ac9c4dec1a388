package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryLoginUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Create(ctx, Account{OwnerID: 1, LoginName: "anna"}))

	assert.ErrorIs(t, repo.Create(ctx, Account{OwnerID: 2, LoginName: "anna"}), ErrLoginTaken)
	require.NoError(t, repo.Create(ctx, Account{OwnerID: 2, LoginName: "boris"}))
	assert.ErrorIs(t, repo.SetLogin(ctx, 2, "anna"), ErrLoginTaken)
	require.NoError(t, repo.SetLogin(ctx, 1, "anna"))

	acc, err := repo.ByLogin(ctx, "boris")
	require.NoError(t, err)
	assert.Equal(t, int64(2), acc.OwnerID)
	assert.False(t, acc.RegisteredAt.IsZero())
}

func TestMemoryRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	var dropped int64
	repo.OnDelete = func(_ context.Context, ownerID int64) { dropped = ownerID }
	require.NoError(t, repo.Create(ctx, Account{OwnerID: 3, LoginName: "c"}))

	require.NoError(t, repo.Delete(ctx, 3))
	assert.Equal(t, int64(3), dropped)
	_, err := repo.ByOwner(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 3), ErrNotFound)
	assert.ErrorIs(t, repo.SetUsername(ctx, 3, "x"), ErrNotFound)
}
