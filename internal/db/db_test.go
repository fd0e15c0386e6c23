package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univhr/hrcore/internal/config"
	"github.com/univhr/hrcore/internal/db/models"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{DB: config.DB{
		GormEngine: config.EngineSQLite,
		Name:       filepath.Join(t.TempDir(), "hrcore.db"),
	}}

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}

	credit := models.LeaveCredit{EmployeeID: 1, LeaveType: models.LeaveVacation, Year: 2025, TotalCredits: 15, UsedCredits: 4}
	require.NoError(t, db.Create(&credit).Error)
	assert.InDelta(t, 11.0, credit.RemainingCredits, 0.001)

	dup := models.LeaveCredit{EmployeeID: 1, LeaveType: models.LeaveVacation, Year: 2025}
	require.Error(t, db.Create(&dup).Error)
}

func TestDialectorUnsupported(t *testing.T) {
	_, err := Dialector(&config.Config{DB: config.DB{GormEngine: "oracle"}})
	require.ErrorIs(t, err, config.ErrUnsupportedGormEngine)
}
