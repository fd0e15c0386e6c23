package rbac

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	permCodePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`) //nolint:gochecknoglobals
	roleCodePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`) //nolint:gochecknoglobals
)

// Service provides the RBAC catalog, assignments, resolver and scope evaluator.
type Service struct {
	db       *gorm.DB
	cache    Cache
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables a resolution cache.
func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithClock replaces time.Now, used by validity window checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new RBAC service.
func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:       db,
		validate: NewValidator(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DB returns the database handle the service works on.
func (s *Service) DB() *gorm.DB {
	return s.db
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// NewValidator returns a validator with the catalog code rules registered:
// "permcode" for lowercase snake case and "rolecode" for uppercase snake case.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("permcode", func(fl validator.FieldLevel) bool {
		return permCodePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("rolecode", func(fl validator.FieldLevel) bool {
		return roleCodePattern.MatchString(fl.Field().String())
	})

	return v
}

// Audit identifies who performs a mutation. It is copied into the change log.
type Audit struct {
	PerformedBy *uint
	IPAddress   string
	Notes       string
}

// toMap converts v to a generic JSON object for the change log.
func toMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	var out map[string]any
	if err = json.Unmarshal(raw, &out); err != nil {
		return nil
	}

	return out
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}

	return *p
}
