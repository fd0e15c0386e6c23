package logout

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/web/handler"
	"github.com/univhr/hrcore/internal/web/handler/login"
)

// Service is the logout handler service.
type Service struct {
	handler.Service
	auth *auth.Service
}

// Init initializes the logout handler.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.auth = deps.Auth

	router.Post(login.Path+"/logout", auth.Authenticate(s.auth), s.Logout)

	return nil
}

// Logout ends the session of the request and clears the session cookie.
func (s *Service) Logout(c fiber.Ctx) error {
	if err := s.auth.Logout(auth.Token(c)); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     handler.RootPath,
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{"message": "Logged out"})
}
