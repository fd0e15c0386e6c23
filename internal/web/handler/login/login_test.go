package login_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/web/webtest"
)

const password = "correct horse"

func newServer(t *testing.T) *webtest.Server {
	t.Helper()

	s := webtest.New(t)
	require.NoError(t, s.Auth.Local().SetPassword(s.Ctx, s.Staff.FacA1.ID, password))

	return s
}

func sessionCookie(resp *webtest.Response) *http.Cookie {
	for _, c := range (&http.Response{Header: resp.Header}).Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}

	return nil
}

func TestLogin(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"employee id", map[string]string{"login": "RF-A1", "password": password}, fiber.StatusOK},
		{"email", map[string]string{"email": "rf-a1@example.edu", "password": password}, fiber.StatusOK},
		{"wrong password", map[string]string{"login": "RF-A1", "password": "wrong"}, fiber.StatusUnauthorized},
		{"unknown employee", map[string]string{"login": "nobody", "password": password}, fiber.StatusUnauthorized},
		{"missing password", map[string]string{"login": "RF-A1"}, fiber.StatusBadRequest},
		{"empty body", nil, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.Do(http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.status, resp.Status, string(resp.Body))

			if tt.status != fiber.StatusOK {
				assert.Nil(t, sessionCookie(resp))
				return
			}

			body := resp.Map(t)
			assert.NotEmpty(t, body["token"])

			cookie := sessionCookie(resp)
			require.NotNil(t, cookie)
			assert.Equal(t, body["token"], cookie.Value)
			assert.True(t, cookie.HttpOnly)
		})
	}
}

func TestLoginMessageHidesCause(t *testing.T) {
	s := newServer(t)

	for _, login := range []string{"RF-A1", "nobody"} {
		resp := s.Do(http.MethodPost, "/api/auth/login", "", map[string]string{"login": login, "password": "wrong"})
		assert.Equal(t, "Invalid credentials", resp.Map(t)["error"])
	}
}

func TestMeAndLogout(t *testing.T) {
	s := newServer(t)

	resp := s.Do(http.MethodPost, "/api/auth/login", "", map[string]string{"login": "RF-A1", "password": password})
	require.Equal(t, fiber.StatusOK, resp.Status)

	token, _ := resp.Map(t)["token"].(string)

	var me struct {
		Employee struct {
			ID   uint   `json:"id"`
			Code string `json:"employee_id"`
		} `json:"employee"`
		RBAC struct {
			Permissions []string `json:"permissions"`
			IsHR        bool     `json:"is_hr"`
		} `json:"rbac"`
	}

	resp = s.Do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	resp.JSON(t, &me)

	assert.Equal(t, s.Staff.FacA1.ID, me.Employee.ID)
	assert.Equal(t, "RF-A1", me.Employee.Code)
	assert.Contains(t, me.RBAC.Permissions, "leave_create")
	assert.False(t, me.RBAC.IsHR)

	resp = s.Do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)

	resp = s.Do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
}

func TestPassword(t *testing.T) {
	s := newServer(t)
	token := s.Token(s.Staff.FacA1)

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"wrong old password", map[string]string{"old_password": "wrong", "new_password": "new password"}, fiber.StatusBadRequest},
		{"too short", map[string]string{"old_password": password, "new_password": "short"}, fiber.StatusBadRequest},
		{"changed", map[string]string{"old_password": password, "new_password": "new password"}, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.Do(http.MethodPost, "/api/auth/password", token, tt.body)
			assert.Equal(t, tt.status, resp.Status, string(resp.Body))
		})
	}

	resp := s.Do(http.MethodPost, "/api/auth/login", "", map[string]string{"login": "RF-A1", "password": "new password"})
	assert.Equal(t, fiber.StatusOK, resp.Status)
}
