package session

import (
	"errors"
	"time"

	mysqlstorage "github.com/gofiber/storage/mysql/v2"
	postgresstorage "github.com/gofiber/storage/postgres/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/univhr/hrcore/internal/config"
	"github.com/univhr/hrcore/internal/db/dsn"
	"github.com/univhr/hrcore/internal/db/models"
)

// Table is the session table created by the mysql and postgres fiber storages.
// It has the drivers' own k/v/e layout and is separate from the migrated
// models.Session table, which GormStorage uses on sqlite.
const Table = "fiber_sessions"

// NewStorage returns the session storage of the configured engine. MySQL and
// PostgreSQL use the fiber storage drivers, SQLite stores sessions through db.
func NewStorage(cfg *config.Config, db *gorm.DB) Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return mysqlstorage.New(mysqlstorage.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         Table,
		})
	case config.EnginePostgres:
		return postgresstorage.New(postgresstorage.Config{
			ConnectionURI: dsn.URI(cfg),
			Table:         Table,
		})
	default:
		return NewGormStorage(db)
	}
}

// GormStorage keeps sessions in the table of models.Session.
type GormStorage struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStorage creates a storage on db.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db, now: time.Now}
}

// Get returns the value of key, nil when it is missing or expired.
func (s *GormStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	var row models.Session

	err := s.db.Where(&models.Session{Key: key}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if !row.ExpiresAt.IsZero() && !row.ExpiresAt.After(s.now()) {
		return nil, s.Delete(key)
	}

	return row.Data, nil
}

// Set stores val under key. A zero exp never expires.
func (s *GormStorage) Set(key string, val []byte, exp time.Duration) error {
	row := models.Session{Key: key, Data: val}
	if exp > 0 {
		row.ExpiresAt = s.now().Add(exp)
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
	}).Create(&row).Error
}

// Delete removes key.
func (s *GormStorage) Delete(key string) error {
	if key == "" {
		return nil
	}

	return s.db.Where(&models.Session{Key: key}).Delete(&models.Session{}).Error
}

// Close is a no-op, the database is owned by the caller.
func (s *GormStorage) Close() error {
	return nil
}
