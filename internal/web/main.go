package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/config"
	fiberlogger "github.com/univhr/hrcore/internal/logger/adapter/fiber"
	"github.com/univhr/hrcore/internal/web/handler"
	"github.com/univhr/hrcore/internal/web/handler/leave/credit"
	"github.com/univhr/hrcore/internal/web/handler/leave/request"
	"github.com/univhr/hrcore/internal/web/handler/login"
	"github.com/univhr/hrcore/internal/web/handler/logout"
	"github.com/univhr/hrcore/internal/web/handler/rbac/assignment"
	"github.com/univhr/hrcore/internal/web/handler/rbac/catalog"
	"github.com/univhr/hrcore/internal/web/handler/rbac/permission"
	"github.com/univhr/hrcore/internal/web/handler/rbac/role"
	"github.com/univhr/hrcore/internal/web/handler/settings/workflow"
)

const (
	// APIPath prefixes every JSON route.
	APIPath = "/api"

	// MetricsPath serves the prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: !s.cfg.DevMode})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// Alive reports whether the service still accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// WaitShutdown waits for a termination signal and shuts the service down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown fails the check alive probe for the configured time, unless fast
// shutdown is set, and stops the http server.
func (s *Service) Shutdown() {
	s.alive.Store(false)

	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service and registers every route on it.
func New(cfg *config.Config, deps *handler.Deps) (*Service, error) {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if !deps.Valid() {
		return nil, handler.ErrNilDeps
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Immutable:      true,
			ErrorHandler:   ErrorHandler,
		},
	)

	service := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recoverer.New())
	}

	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: cfg.Webserver.CheckAliveURI,
		CallerLocal:   auth.LocalCallerID,
		ErrorStatus:   StatusCode,
	}))

	app.Get(cfg.Webserver.CheckAliveURI, func(c fiber.Ctx) error {
		if !service.Alive() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
		}

		return c.SendString("alive")
	})
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group(APIPath)

	// init handlers (they register their own routes with permission checks)
	for _, h := range []handler.Service{
		new(login.Service),
		new(logout.Service),
		new(permission.Service),
		new(role.Service),
		new(assignment.Service),
		new(catalog.Service),
		new(request.Service),
		new(credit.Service),
		new(workflow.Service),
	} {
		if err := h.Init(api, deps); err != nil {
			return nil, err
		}
	}

	return service, nil
}
