// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/univhr/hrcore/internal/config"
)

// SQLiteTxLock makes sqlite begin write transactions with a RESERVED lock, so
// concurrent transactions queue on the busy timeout instead of failing on upgrade.
const SQLiteTxLock = "_txlock=immediate"

// Create builds the Data Source Name for the configured gorm engine.
func Create(dbCfg *config.Config) string {
	switch dbCfg.DB.GormEngine {
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			dbCfg.DB.Host,
			dbCfg.DB.Port,
			dbCfg.DB.User,
			dbCfg.DB.Password,
			dbCfg.DB.Name,
		)
		if dbCfg.DB.Extras != "" {
			out += " " + dbCfg.DB.Extras
		}

		return out
	case config.EngineSQLite:
		extras := dbCfg.DB.Extras

		switch {
		case extras == "":
			extras = SQLiteTxLock
		case !strings.Contains(extras, "_txlock="):
			extras = SQLiteTxLock + "&" + extras
		}

		return dbCfg.DB.Name + "?" + extras
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			dbCfg.DB.User,
			dbCfg.DB.Password,
			dbCfg.DB.Host,
			dbCfg.DB.Port,
			dbCfg.DB.Name,
			dbCfg.DB.Extras,
		)
	}
}

// URI builds a postgres connection URI as expected by the postgres session storage.
// Extras are appended as query parameters ("sslmode=disable").
func URI(dbCfg *config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbCfg.DB.User, dbCfg.DB.Password),
		Host:     fmt.Sprintf("%s:%d", dbCfg.DB.Host, dbCfg.DB.Port),
		Path:     "/" + dbCfg.DB.Name,
		RawQuery: dbCfg.DB.Extras,
	}

	return u.String()
}
