// Package daemon wires the hrcore services together and runs the web service.
package daemon

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/config"
	"github.com/univhr/hrcore/internal/db"
	"github.com/univhr/hrcore/internal/db/controller/leavesettings"
	"github.com/univhr/hrcore/internal/leave"
	"github.com/univhr/hrcore/internal/rbac"
	"github.com/univhr/hrcore/internal/web"
	"github.com/univhr/hrcore/internal/web/handler"
	"github.com/univhr/hrcore/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	redis      *redis.Client
	sessions   *session.Store
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it is shut down.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	err := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))

	d.close()

	return err
}

func (d *Daemon) close() {
	if err := d.sessions.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close session storage")
	}

	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}

	if sqlDB, err := d.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	ctx := context.Background()

	gdb, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	d := &Daemon{cfg: cfg, db: gdb}

	var opts []rbac.Option

	if cfg.Cache.Enabled {
		if d.redis, err = rbac.DialRedis(ctx, cfg.Cache); err != nil {
			return nil, err
		}

		opts = append(opts, rbac.WithCache(rbac.NewRedisCache(d.redis, cfg.Cache.Prefix, cfg.Cache.TTL)))

		log.Info().Str("addr", cfg.Cache.Addr).Msg("permission cache enabled")
	}

	rbacService := rbac.NewService(gdb, opts...)

	if err = Seed(ctx, cfg, rbacService); err != nil {
		return nil, err
	}

	d.sessions = session.New(session.NewStorage(cfg, gdb), cfg.Webserver.Session.ExpiryTime)

	deps := &handler.Deps{
		Cfg:   cfg,
		RBAC:  rbacService,
		Leave: leave.NewService(rbacService, leavesettings.Settings{HRBypassNote: cfg.Leave.HRBypassNote}),
		Auth:  auth.NewService(rbacService, d.sessions),
	}

	if d.webService, err = web.New(cfg, deps); err != nil {
		return nil, err
	}

	return d, nil
}
