// Package login serves the session endpoints: login, the current caller and
// the password change.
package login

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/config"
	"github.com/univhr/hrcore/internal/web/handler"
)

const (
	// Path is the path of the session endpoints.
	Path = "/auth"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	auth *auth.Service
}

// Credentials is the login request body. Login is an employee id or an email address.
type Credentials struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Init initializes the login handler.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.cfg = deps.Cfg
	s.auth = deps.Auth

	r := router.Group(Path)
	r.Post("/login", s.Post)
	r.Get("/me", auth.Authenticate(s.auth), s.Me)
	r.Post("/password", auth.Authenticate(s.auth), s.Password)

	return nil
}

// Post checks the credentials, opens a session and sets the session cookie.
func (s *Service) Post(c fiber.Ctx) error {
	var in Credentials
	if err := handler.Body(c, &in); err != nil {
		return err
	}

	login := strings.TrimSpace(in.Login)
	if login == "" {
		login = strings.TrimSpace(in.Email)
	}

	if login == "" || in.Password == "" {
		return apperr.Validation("login and password are required")
	}

	token, actor, err := s.auth.Login(c.Context(), login, in.Password)
	if err != nil {
		return err
	}

	ttl := s.auth.Sessions().TTL()

	cookie := &fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     handler.RootPath,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if s.cfg.DevMode {
		cookie.Secure = false
	}

	c.Cookie(cookie)

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_in": int(ttl.Seconds()),
		"employee":   actor.Employee,
		"rbac":       actor.Resolution,
	})
}

// Me returns the caller and its resolved permissions.
func (s *Service) Me(c fiber.Ctx) error {
	actor := auth.ActorFrom(c)

	return c.JSON(fiber.Map{
		"employee": actor.Employee,
		"rbac":     actor.Resolution,
	})
}

// Password changes the password of the caller.
func (s *Service) Password(c fiber.Ctx) error {
	var in passwordChange
	if err := handler.Body(c, &in); err != nil {
		return err
	}

	err := s.auth.Local().ChangePassword(c.Context(), auth.ActorFrom(c).Employee.ID, in.OldPassword, in.NewPassword)

	switch {
	case errors.Is(err, auth.ErrInvalidOldPassword):
		return apperr.Validation("Old password is incorrect").WithField("old_password", "invalid")
	case errors.Is(err, auth.ErrPasswordTooShort):
		return apperr.Validation("Password must be at least %d characters", auth.MinPasswordLength).
			WithField("new_password", "min=8")
	case err != nil:
		return err
	}

	return c.JSON(fiber.Map{"message": "Password changed"})
}
