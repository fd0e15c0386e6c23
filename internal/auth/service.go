package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/rbac"
	"github.com/univhr/hrcore/internal/web/session"
)

// Service resolves callers: it logs employees in, keeps their sessions and turns
// a session token back into a resolved rbac.Actor.
type Service struct {
	rbac     *rbac.Service
	local    *LocalProvider
	sessions *session.Store
}

// NewService creates a new auth service.
func NewService(rbacService *rbac.Service, sessions *session.Store) *Service {
	return &Service{
		rbac:     rbacService,
		local:    NewLocalProvider(rbacService.DB()),
		sessions: sessions,
	}
}

// Local returns the local password provider.
func (s *Service) Local() *LocalProvider {
	return s.local
}

// Sessions returns the session store.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Login checks the credentials and opens a session. Every credential failure is
// reported as the same Unauthenticated error.
func (s *Service) Login(ctx context.Context, login, password string) (string, *rbac.Actor, error) {
	emp, err := s.local.Authenticate(ctx, login, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrUserAccountDisabled):
			log.Warn().Err(err).Str("login", login).Msg("login refused")
			return "", nil, apperr.Unauthenticated("Invalid credentials")
		default:
			return "", nil, err
		}
	}

	actor, err := s.rbac.Actor(ctx, emp.ID)
	if err != nil {
		return "", nil, err
	}

	token, err := s.sessions.Create(emp.ID)
	if err != nil {
		return "", nil, err
	}

	log.Info().Uint("employee_id", emp.ID).Msg("employee logged in")

	return token, actor, nil
}

// Logout ends the session of token.
func (s *Service) Logout(token string) error {
	return s.sessions.Delete(token)
}

// Caller resolves the employee behind token. Unknown or expired tokens and
// inactive employees are Unauthenticated.
func (s *Service) Caller(ctx context.Context, token string) (*rbac.Actor, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("Authentication required")
	}

	d, err := s.sessions.Read(token)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil, apperr.Unauthenticated("Invalid or expired session")
	}

	if err != nil {
		return nil, err
	}

	actor, err := s.rbac.Actor(ctx, d.EmployeeID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthenticated("Invalid or expired session")
	}

	if err != nil {
		return nil, err
	}

	if !actor.Employee.IsActive {
		return nil, apperr.Unauthenticated("Employee account is disabled")
	}

	return actor, nil
}
