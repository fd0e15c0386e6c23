package auth

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/rbac"
)

const (
	// CookieName is the session cookie set by login.
	CookieName = "session"

	// LocalActor is the fiber locals key of the resolved *rbac.Actor.
	LocalActor = "actor"

	// LocalCallerID is the fiber locals key of the caller's employee id, read by the access log.
	LocalCallerID = "caller_id"

	bearerPrefix = "Bearer "
)

// Token returns the session token of the request: the bearer token of the
// Authorization header, or the session cookie.
func Token(c fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); len(h) > len(bearerPrefix) && strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}

	return c.Cookies(CookieName)
}

// Authenticate creates Fiber middleware that resolves the caller into the locals.
// Requests without a valid session fail with Unauthenticated.
func Authenticate(authService *Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, err := authService.Caller(c.Context(), Token(c))
		if err != nil {
			return err
		}

		c.Locals(LocalActor, actor)
		c.Locals(LocalCallerID, actor.Employee.ID)

		return c.Next()
	}
}

// ActorFrom returns the caller resolved by Authenticate, nil outside of it.
func ActorFrom(c fiber.Ctx) *rbac.Actor {
	actor, _ := c.Locals(LocalActor).(*rbac.Actor)
	return actor
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(permission string) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor == nil {
			return apperr.Unauthenticated("Authentication required")
		}

		if !actor.Has(permission) {
			log.Warn().Uint("employee_id", actor.Employee.ID).Str("permission", permission).
				Msg("employee lacks required permission")

			return apperr.Forbidden("You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(permissions ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor == nil {
			return apperr.Unauthenticated("Authentication required")
		}

		if !actor.HasAny(permissions...) {
			log.Warn().Uint("employee_id", actor.Employee.ID).Strs("permissions", permissions).
				Msg("employee lacks required permissions")

			return apperr.Forbidden("You don't have permission to access this resource")
		}

		return c.Next()
	}
}
