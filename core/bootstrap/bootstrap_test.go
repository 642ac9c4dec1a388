package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/taskbot/core/config"
	coredatabase "github.com/m3rciful/taskbot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunMigratesBeforeConnecting(t *testing.T) {
	var steps []string
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Migrate: func(context.Context, coredatabase.Config) (coredatabase.MigrationResult, error) {
			steps = append(steps, "migrate")
			return coredatabase.MigrationResult{ToVersion: 1}, nil
		},
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect")
			return &sqlx.DB{}, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"migrate", "connect"}, steps)
	assert.EqualValues(t, 1, res.Migration.ToVersion)
	assert.NotNil(t, res.DB)
}

func TestRunSkipsMigrations(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Config:         &coreconfig.Config{},
		LoggerInit:     noLogger,
		SkipMigrations: true,
		Migrate: func(context.Context, coredatabase.Config) (coredatabase.MigrationResult, error) {
			t.Fatal("migrate must not run")
			return coredatabase.MigrationResult{}, nil
		},
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) { return &sqlx.DB{}, nil },
	})
	require.NoError(t, err)
}

func TestRunStopsOnMigrationFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Migrate: func(context.Context, coredatabase.Config) (coredatabase.MigrationResult, error) {
			return coredatabase.MigrationResult{}, boom
		},
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			t.Fatal("connect must not run")
			return nil, nil
		},
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)
}
