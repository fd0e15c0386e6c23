package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/config"
	"github.com/univhr/hrcore/internal/leave"
	"github.com/univhr/hrcore/internal/rbac"
)

// Deps are the services every handler is initialized with.
type Deps struct {
	Cfg   *config.Config
	RBAC  *rbac.Service
	Leave *leave.Service
	Auth  *auth.Service
}

// Valid reports whether every dependency is set.
func (d *Deps) Valid() bool {
	return d != nil && d.Cfg != nil && d.RBAC != nil && d.Leave != nil && d.Auth != nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, deps *Deps) error
}
