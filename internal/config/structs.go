package config

import (
	"time"

	"github.com/univhr/hrcore/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Cache     Cache
	Leave     Leave
	Seed      Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown in seconds
	URL            string  // base url for the webserver
	CheckAliveURI  string  // path answered by the load balancer probe
	Session        Session // session settings
}

// Cache configures the redis backed permission resolver cache.
type Cache struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string // key prefix, e.g. "hrcore"
}

// Leave holds leave workflow settings.
type Leave struct {
	// DefaultYear is the credit year used by the credits command when none is given, 0 means the current year.
	DefaultYear int
	// HRBypassNote is used as supervisor note on hr_direct_approve when no reason was given.
	HRBypassNote string
}

// Seed controls the bootstrap HR administrator created on an empty employee table.
type Seed struct {
	AdminEmployeeID string
	AdminEmail      string
	AdminPassword   string
}
