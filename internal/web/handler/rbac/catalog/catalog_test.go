package catalog_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univhr/hrcore/internal/web/webtest"
)

type entry struct {
	Action           string `json:"action"`
	ModelType        string `json:"model_type"`
	PerformedBy      *uint  `json:"performed_by"`
	AffectedEmployee *uint  `json:"affected_employee"`
}

func TestModules(t *testing.T) {
	s := webtest.New(t)

	var modules []struct {
		Code        string `json:"code"`
		Permissions []struct {
			Code string `json:"code"`
		} `json:"permissions"`
	}

	resp := s.As(s.Staff.DeanA, http.MethodGet, "/api/rbac/modules", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	resp.JSON(t, &modules)

	require.Len(t, modules, 7)
	assert.Equal(t, "LEAVE", modules[0].Code)
	assert.NotEmpty(t, modules[0].Permissions)

	resp = s.As(s.Staff.ChairA1, http.MethodGet, "/api/rbac/modules", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)
}

func TestChangeLog(t *testing.T) {
	s := webtest.New(t)

	resp := s.As(s.Staff.HR, http.MethodPost, "/api/rbac/assignments", map[string]any{
		"employee_id": s.Staff.FacA1.ID, "role_id": s.Role("SECRETARY").ID, "notes": "covering the front office",
	})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))

	var entries []entry

	target := fmt.Sprintf("/api/rbac/changelog?action=assign&employee_id=%d", s.Staff.FacA1.ID)
	resp = s.As(s.Staff.VPAA, http.MethodGet, target, nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	resp.JSON(t, &entries)

	// the fixture assignment and the one above, newest first
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].PerformedBy)
	assert.Equal(t, s.Staff.HR.ID, *entries[0].PerformedBy)
	assert.Equal(t, "employee_role", entries[0].ModelType)
	assert.Nil(t, entries[1].PerformedBy)

	s.As(s.Staff.HR, http.MethodGet, target+"&limit=1", nil).JSON(t, &entries)
	assert.Len(t, entries, 1)

	s.As(s.Staff.HR, http.MethodGet, target+"&start=2025-03-03&end=2025-03-03", nil).JSON(t, &entries)
	assert.Len(t, entries, 2)

	s.As(s.Staff.HR, http.MethodGet, target+"&start=2025-03-04", nil).JSON(t, &entries)
	assert.Empty(t, entries)

	resp = s.As(s.Staff.HR, http.MethodGet, "/api/rbac/changelog?start=03/04/2025", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)

	resp = s.As(s.Staff.FacA1, http.MethodGet, "/api/rbac/changelog", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)
}

func TestStats(t *testing.T) {
	s := webtest.New(t)

	var stats struct {
		TotalPermissions int64 `json:"total_permissions"`
		TotalRoles       int64 `json:"total_roles"`
		TotalAssignments int64 `json:"total_assignments"`
		SystemRoles      int64 `json:"system_roles"`
		RolesByLevel     []struct {
			Level int   `json:"level"`
			Count int64 `json:"count"`
		} `json:"roles_by_level"`
	}

	resp := s.As(s.Staff.HR, http.MethodGet, "/api/rbac/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	resp.JSON(t, &stats)

	assert.Equal(t, int64(41), stats.TotalPermissions)
	assert.Equal(t, int64(8), stats.TotalRoles)
	assert.Equal(t, int64(9), stats.TotalAssignments)
	assert.Equal(t, int64(8), stats.SystemRoles)
	require.NotEmpty(t, stats.RolesByLevel)
	assert.Equal(t, -1, stats.RolesByLevel[0].Level)
}

func TestCheck(t *testing.T) {
	s := webtest.New(t)

	tests := []struct {
		name   string
		as     func() string
		body   map[string]any
		status int
		has    bool
		role   string
	}{
		{
			"own permission", func() string { return s.Token(s.Staff.FacA1) },
			map[string]any{"permission": "leave_create"}, fiber.StatusOK, true, "REGULAR_FACULTY",
		},
		{
			"own missing permission", func() string { return s.Token(s.Staff.FacA1) },
			map[string]any{"permission": "rbac_view"}, fiber.StatusOK, false, "",
		},
		{
			"other employee as dean", func() string { return s.Token(s.Staff.DeanA) },
			map[string]any{"employee_id": s.Staff.HR.ID, "permission": "hr_full_access"}, fiber.StatusOK, true, "HR_ADMIN",
		},
		{
			"other employee as faculty", func() string { return s.Token(s.Staff.FacA1) },
			map[string]any{"employee_id": s.Staff.FacA2.ID, "permission": "leave_create"}, fiber.StatusForbidden, false, "",
		},
		{
			"missing permission code", func() string { return s.Token(s.Staff.FacA1) },
			map[string]any{}, fiber.StatusBadRequest, false, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.Do(http.MethodPost, "/api/rbac/check", tt.as(), tt.body)
			require.Equal(t, tt.status, resp.Status, string(resp.Body))

			if tt.status != fiber.StatusOK {
				return
			}

			var got struct {
				HasPermission bool   `json:"has_permission"`
				GrantedByRole string `json:"granted_by_role"`
			}
			resp.JSON(t, &got)

			assert.Equal(t, tt.has, got.HasPermission)
			assert.Equal(t, tt.role, got.GrantedByRole)
		})
	}
}

func TestEmployeePermissions(t *testing.T) {
	s := webtest.New(t)

	var res struct {
		EmployeeID    uint     `json:"employee_id"`
		Permissions   []string `json:"permissions"`
		HighestLevel  int      `json:"highest_level"`
		ApprovalScope string   `json:"approval_scope"`
		CanApprove    bool     `json:"can_approve"`
	}

	resp := s.As(s.Staff.FacA1, http.MethodGet, fmt.Sprintf("/api/rbac/employees/%d/permissions", s.Staff.FacA1.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	resp.JSON(t, &res)
	assert.Equal(t, 3, res.HighestLevel)
	assert.Equal(t, "none", res.ApprovalScope)
	assert.False(t, res.CanApprove)

	resp = s.As(s.Staff.DeanA, http.MethodGet, fmt.Sprintf("/api/rbac/employees/%d/permissions", s.Staff.ChairA1.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	resp.JSON(t, &res)
	assert.Equal(t, "program", res.ApprovalScope)
	assert.True(t, res.CanApprove)

	resp = s.As(s.Staff.FacA1, http.MethodGet, fmt.Sprintf("/api/rbac/employees/%d/permissions", s.Staff.FacA2.ID), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)

	resp = s.As(s.Staff.HR, http.MethodGet, "/api/rbac/employees/9999/permissions", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)

	var byEmail struct {
		Employee struct {
			ID uint `json:"id"`
		} `json:"employee"`
		RBAC struct {
			IsHR bool `json:"is_hr"`
		} `json:"rbac"`
	}

	resp = s.As(s.Staff.DeanA, http.MethodGet, "/api/rbac/employees/permissions?email=hr-1@example.edu", nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	resp.JSON(t, &byEmail)
	assert.Equal(t, s.Staff.HR.ID, byEmail.Employee.ID)
	assert.True(t, byEmail.RBAC.IsHR)

	resp = s.As(s.Staff.HR, http.MethodGet, "/api/rbac/employees/permissions?email=nobody@example.edu", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)

	resp = s.As(s.Staff.FacA1, http.MethodGet, "/api/rbac/employees/permissions?email=hr-1@example.edu", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)

	resp = s.As(s.Staff.FacA1, http.MethodGet, "/api/rbac/employees/permissions", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
}
