// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/univhr/hrcore/internal/db"
	"github.com/univhr/hrcore/internal/db/dsn"
)

// New returns a sqlite database in the test's temp dir with every model migrated.
// A file is used instead of ":memory:" so that all pooled connections share one database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")+"?"+dsn.SQLiteTxLock), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	require.NoError(t, db.Migrate(gdb), "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, errDB := gdb.DB(); errDB == nil {
			_ = sqlDB.Close()
		}
	})

	return gdb
}
