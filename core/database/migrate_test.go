package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrationFilesKeepsUpScriptsSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_tasks.up.sql", "000001_init.up.sql", "000001_init.down.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	assert.Equal(t, []string{"000001_init.up.sql", "000002_tasks.up.sql"}, listMigrationFiles(dir))
}

func TestSelectApplied(t *testing.T) {
	files := []string{"000001_init.up.sql", "000002_tasks.up.sql", "000003_index.up.sql"}
	assert.Equal(t, []string{"000002_tasks.up.sql", "000003_index.up.sql"}, selectApplied(files, 1, 3))
	assert.Empty(t, selectApplied(files, 3, 3))
}

func TestConfigNormalizeAndURL(t *testing.T) {
	cfg := Config{Host: "db", Name: "taskbot", User: "bot", Password: "p@ss"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.Equal(t, "postgres://bot:p%40ss@db:5432/taskbot?sslmode=disable", cfg.URL())

	assert.Error(t, (&Config{Name: "x"}).Normalize())
}
