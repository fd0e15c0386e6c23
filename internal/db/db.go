// Package db opens the configured database and migrates the hrcore schema.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/univhr/hrcore/internal/config"
	"github.com/univhr/hrcore/internal/db/dsn"
	"github.com/univhr/hrcore/internal/db/models"
)

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&models.Organization{},
		&models.Department{},
		&models.Program{},
		&models.Position{},
		&models.Employee{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.EmployeeRole{},
		&models.PermissionModule{},
		&models.RBACChangeLog{},
		&models.LeavePolicy{},
		&models.LeaveRequest{},
		&models.LeaveCredit{},
		&models.Setting{},
		&models.Session{},
	}
}

// Dialector returns the gorm dialector for the configured engine.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return gormmysql.Open(dsn.Create(cfg)), nil
	case config.EnginePostgres:
		return postgres.Open(dsn.Create(cfg)), nil
	case config.EngineSQLite, "":
		return sqlite.Open(dsn.Create(cfg)), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnsupportedGormEngine, cfg.DB.GormEngine)
	}
}

// Open connects to the configured database.
// Driver errors are translated so duplicate keys surface as gorm.ErrDuplicatedKey.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	log.Info().Str("engine", cfg.DB.GormEngine).Msg("database connected")

	return db, nil
}

// Migrate creates or updates the schema of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
