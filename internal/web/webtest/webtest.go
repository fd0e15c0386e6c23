// Package webtest runs the REST adapter on a seeded fixture for handler tests.
package webtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/config"
	"github.com/univhr/hrcore/internal/db/controller/leavesettings"
	"github.com/univhr/hrcore/internal/db/models"
	"github.com/univhr/hrcore/internal/leave"
	"github.com/univhr/hrcore/internal/rbac/rbactest"
	"github.com/univhr/hrcore/internal/web"
	"github.com/univhr/hrcore/internal/web/handler"
	"github.com/univhr/hrcore/internal/web/session"
)

// BypassNote is the default HR bypass note of the server.
const BypassNote = "Supervisor approval bypassed by HR"

// Server is the web service on top of an rbactest fixture with its staff created.
type Server struct {
	*rbactest.Fixture
	Staff   *rbactest.Staff
	Cfg     *config.Config
	Auth    *auth.Service
	Leave   *leave.Service
	Service *web.Service
}

// Response is a decoded response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON decodes the body into out.
func (r *Response) JSON(t *testing.T, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, out), string(r.Body))
}

// Map decodes the body as a JSON object.
func (r *Response) Map(t *testing.T) map[string]any {
	t.Helper()

	var out map[string]any
	r.JSON(t, &out)

	return out
}

// New starts a Server.
func New(t *testing.T) *Server {
	t.Helper()

	f := rbactest.New(t)

	cfg := &config.Config{
		Title:   "hrcore",
		DevMode: true,
		Webserver: config.Webserver{
			Port:          8080,
			URL:           "http://localhost:8080",
			CheckAliveURI: "/checkalive",
			Session:       config.Session{ExpiryTime: time.Hour},
		},
		Leave: config.Leave{HRBypassNote: BypassNote},
	}

	sessions := session.New(session.NewGormStorage(f.DB), cfg.Webserver.Session.ExpiryTime)

	s := &Server{
		Fixture: f,
		Staff:   f.Staff(),
		Cfg:     cfg,
		Auth:    auth.NewService(f.RBAC, sessions),
		Leave:   leave.NewService(f.RBAC, leavesettings.Settings{HRBypassNote: BypassNote}),
	}

	svc, err := web.New(cfg, &handler.Deps{Cfg: cfg, RBAC: f.RBAC, Leave: s.Leave, Auth: s.Auth})
	require.NoError(t, err)

	s.Service = svc

	return s
}

// Token opens a session for emp.
func (s *Server) Token(emp *models.Employee) string {
	s.T.Helper()

	token, err := s.Auth.Sessions().Create(emp.ID)
	require.NoError(s.T, err)

	return token
}

// Do sends a request with token as bearer token, when set, and body encoded as JSON, when not nil.
func (s *Server) Do(method, target, token string, body any) *Response {
	s.T.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.Service.App.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(s.T, err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.T, err)

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: raw}
}

// As sends a request on behalf of emp.
func (s *Server) As(emp *models.Employee, method, target string, body any) *Response {
	s.T.Helper()
	return s.Do(method, target, s.Token(emp), body)
}
