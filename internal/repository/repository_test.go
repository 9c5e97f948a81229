package repository

import (
	"path/filepath"
	"testing"

	"feather-finance/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB returns a fresh SQLite database with every migration applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "feather.db"),
	}

	m, err := database.NewMigrator(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := database.NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db.DB
}
