// Package workflow serves the runtime leave workflow settings.
package workflow

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/leave"
	"github.com/univhr/hrcore/internal/rbac"
	"github.com/univhr/hrcore/internal/web/handler"
)

const (
	// Path is the path of the leave workflow settings.
	Path = "/leave-settings"
)

// Service is the leave settings handler service.
type Service struct {
	handler.Service
	leave *leave.Service
}

// Init initializes the leave settings handler.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.leave = deps.Leave

	r := router.Group(Path, auth.Authenticate(deps.Auth))
	r.Get(handler.RootPath, auth.RequireAnyPermission(rbac.PermSettingsView, rbac.PermSettingsEdit), s.Get)
	r.Put(handler.RootPath, auth.RequirePermission(rbac.PermSettingsEdit), s.Put)

	return nil
}

// Get returns the effective settings.
func (s *Service) Get(c fiber.Ctx) error {
	st, err := s.leave.Settings(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(st)
}

// Put updates the settings. Fields missing from the body keep their current value.
func (s *Service) Put(c fiber.Ctx) error {
	st, err := s.leave.Settings(c.Context())
	if err != nil {
		return err
	}

	if err = handler.Body(c, &st); err != nil {
		return err
	}

	if err = s.leave.SaveSettings(c.Context(), st); err != nil {
		return err
	}

	log.Info().Uint("employee_id", auth.ActorFrom(c).Employee.ID).Msg("leave workflow settings updated")

	return c.JSON(st)
}
