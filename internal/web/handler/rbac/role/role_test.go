package role_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univhr/hrcore/internal/web/webtest"
)

type roleBody struct {
	ID            uint   `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Level         int    `json:"level"`
	ApprovalScope string `json:"approval_scope"`
	IsSystem      bool   `json:"is_system"`
	EmployeeCount int64  `json:"employee_count"`
	Permissions   []struct {
		PermissionID uint `json:"permission_id"`
		Permission   struct {
			Code string `json:"code"`
		} `json:"permission"`
	} `json:"permissions"`
}

func TestAccess(t *testing.T) {
	s := webtest.New(t)

	tests := []struct {
		name   string
		as     func() string
		method string
		target string
		body   any
		status int
	}{
		{"hr lists", func() string { return s.Token(s.Staff.HR) }, http.MethodGet, "/api/rbac/roles", nil, fiber.StatusOK},
		{"dean lists", func() string { return s.Token(s.Staff.DeanA) }, http.MethodGet, "/api/rbac/roles", nil, fiber.StatusOK},
		{"faculty can not list", func() string { return s.Token(s.Staff.FacA1) }, http.MethodGet, "/api/rbac/roles", nil, fiber.StatusForbidden},
		{
			"dean can not create", func() string { return s.Token(s.Staff.DeanA) }, http.MethodPost, "/api/rbac/roles",
			map[string]any{"code": "LIBRARIAN", "name": "Librarian", "level": 4, "approval_scope": "none"}, fiber.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.Do(tt.method, tt.target, tt.as(), tt.body)
			assert.Equal(t, tt.status, resp.Status, string(resp.Body))
		})
	}
}

func TestList(t *testing.T) {
	s := webtest.New(t)

	var roles []roleBody
	s.As(s.Staff.HR, http.MethodGet, "/api/rbac/roles", nil).JSON(t, &roles)
	require.Len(t, roles, 8)

	var assignable []roleBody
	s.As(s.Staff.HR, http.MethodGet, "/api/rbac/roles/assignable", nil).JSON(t, &assignable)
	require.NotEmpty(t, assignable)
	assert.Equal(t, "HR_ADMIN", assignable[0].Code)

	dean := s.Role("DEAN")

	var detail roleBody
	s.As(s.Staff.HR, http.MethodGet, fmt.Sprintf("/api/rbac/roles/%d", dean.ID), nil).JSON(t, &detail)
	assert.Equal(t, "DEAN", detail.Code)
	assert.Equal(t, int64(2), detail.EmployeeCount)
	assert.NotEmpty(t, detail.Permissions)

	resp := s.As(s.Staff.HR, http.MethodGet, "/api/rbac/roles/9999", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)

	resp = s.As(s.Staff.HR, http.MethodGet, "/api/rbac/roles/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
}

func TestLifecycle(t *testing.T) {
	s := webtest.New(t)

	create := map[string]any{
		"code": "LIBRARIAN", "name": "Librarian", "level": 4, "approval_scope": "none",
	}

	resp := s.As(s.Staff.HR, http.MethodPost, "/api/rbac/roles", create)
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))

	var created roleBody
	resp.JSON(t, &created)
	assert.False(t, created.IsSystem)

	resp = s.As(s.Staff.HR, http.MethodPost, "/api/rbac/roles", create)
	assert.Equal(t, fiber.StatusConflict, resp.Status)
	assert.Equal(t, "integrity", resp.Map(t)["kind"])

	resp = s.As(s.Staff.HR, http.MethodPost, "/api/rbac/roles", map[string]any{"code": "bad code", "name": "X"})
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)

	base := fmt.Sprintf("/api/rbac/roles/%d", created.ID)
	leaveCreate := s.Permission("leave_create")
	leaveViewOwn := s.Permission("leave_view_own")

	resp = s.As(s.Staff.HR, http.MethodPost, base+"/permissions", map[string]any{"permission_id": leaveCreate.ID})
	assert.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	assert.Equal(t, true, resp.Map(t)["created"])

	resp = s.As(s.Staff.HR, http.MethodPost, base+"/permissions", map[string]any{"permission_id": leaveCreate.ID})
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, false, resp.Map(t)["created"])

	var detail roleBody
	resp = s.As(s.Staff.HR, http.MethodPut, base+"/permissions", map[string]any{"permission_ids": []uint{leaveViewOwn.ID}})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	resp.JSON(t, &detail)
	require.Len(t, detail.Permissions, 1)
	assert.Equal(t, "leave_view_own", detail.Permissions[0].Permission.Code)

	resp = s.As(s.Staff.HR, http.MethodDelete, fmt.Sprintf("%s/permissions/%d", base, leaveCreate.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)

	resp = s.As(s.Staff.HR, http.MethodDelete, fmt.Sprintf("%s/permissions/%d", base, leaveViewOwn.ID), nil)
	assert.Equal(t, fiber.StatusNoContent, resp.Status)

	update := map[string]any{"code": "LIBRARIAN", "name": "Head Librarian", "level": 3, "approval_scope": "none"}
	resp = s.As(s.Staff.HR, http.MethodPut, base, update)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	assert.Equal(t, "Head Librarian", resp.Map(t)["name"])

	resp = s.As(s.Staff.HR, http.MethodDelete, base, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.Status)

	resp = s.As(s.Staff.HR, http.MethodGet, base, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
}

func TestDeleteGuards(t *testing.T) {
	s := webtest.New(t)

	resp := s.As(s.Staff.HR, http.MethodDelete, fmt.Sprintf("/api/rbac/roles/%d", s.Role("DEAN").ID), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)
	assert.Equal(t, "System roles cannot be deleted", resp.Map(t)["error"])

	resp = s.As(s.Staff.HR, http.MethodPost, "/api/rbac/roles",
		map[string]any{"code": "TUTOR", "name": "Tutor", "level": 4, "approval_scope": "none"})
	require.Equal(t, fiber.StatusCreated, resp.Status)

	var tutor roleBody
	resp.JSON(t, &tutor)

	s.Assign(s.Staff.FacB1, "TUTOR")

	resp = s.As(s.Staff.HR, http.MethodDelete, fmt.Sprintf("/api/rbac/roles/%d", tutor.ID), nil)
	assert.Equal(t, fiber.StatusConflict, resp.Status)
	assert.Equal(t, "Cannot delete role with active employee assignments", resp.Map(t)["error"])
}

func TestEmployeesAndDuplicate(t *testing.T) {
	s := webtest.New(t)
	dean := s.Role("DEAN")

	var assignments []struct {
		EmployeeID uint `json:"employee_id"`
	}
	s.As(s.Staff.HR, http.MethodGet, fmt.Sprintf("/api/rbac/roles/%d/employees", dean.ID), nil).JSON(t, &assignments)

	ids := []uint{}
	for _, a := range assignments {
		ids = append(ids, a.EmployeeID)
	}

	assert.ElementsMatch(t, []uint{s.Staff.DeanA.ID, s.Staff.DeanB.ID}, ids)

	target := fmt.Sprintf("/api/rbac/roles/%d/duplicate", dean.ID)

	resp := s.As(s.Staff.HR, http.MethodPost, target, map[string]string{"name": "Acting Dean"})
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Equal(t, "name and code are required", resp.Map(t)["error"])

	resp = s.As(s.Staff.HR, http.MethodPost, target, map[string]string{"name": "Acting Dean", "code": "ACTING_DEAN"})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))

	var copied roleBody
	resp.JSON(t, &copied)
	assert.Equal(t, "ACTING_DEAN", copied.Code)
	assert.Equal(t, "department", copied.ApprovalScope)
	assert.False(t, copied.IsSystem)

	var detail roleBody
	s.As(s.Staff.HR, http.MethodGet, fmt.Sprintf("/api/rbac/roles/%d", copied.ID), nil).JSON(t, &detail)

	var original roleBody
	s.As(s.Staff.HR, http.MethodGet, fmt.Sprintf("/api/rbac/roles/%d", dean.ID), nil).JSON(t, &original)
	assert.Len(t, detail.Permissions, len(original.Permissions))
}
