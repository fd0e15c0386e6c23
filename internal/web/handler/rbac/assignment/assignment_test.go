package assignment_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univhr/hrcore/internal/web/webtest"
)

type assignmentBody struct {
	ID             uint  `json:"id"`
	EmployeeID     uint  `json:"employee_id"`
	RoleID         uint  `json:"role_id"`
	ProgramScopeID *uint `json:"program_scope_id"`
	IsPrimary      bool  `json:"is_primary"`
	IsActive       bool  `json:"is_active"`
	Role           struct {
		Code string `json:"code"`
	} `json:"role"`
}

func list(t *testing.T, s *webtest.Server, query string) []assignmentBody {
	t.Helper()

	resp := s.As(s.Staff.HR, http.MethodGet, "/api/rbac/assignments"+query, nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	var out []assignmentBody
	resp.JSON(t, &out)

	return out
}

func TestAssignAndRevoke(t *testing.T) {
	s := webtest.New(t)

	in := map[string]any{
		"employee_id":      s.Staff.FacB1.ID,
		"role_id":          s.Role("PROGRAM_CHAIR").ID,
		"program_scope_id": s.ProgB1.ID,
	}

	resp := s.As(s.Staff.DeanA, http.MethodPost, "/api/rbac/assignments", in)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)

	resp = s.As(s.Staff.HR, http.MethodPost, "/api/rbac/assignments", in)
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))

	var created assignmentBody
	resp.JSON(t, &created)
	assert.True(t, created.IsActive)
	assert.False(t, created.IsPrimary)

	resp = s.As(s.Staff.HR, http.MethodPost, "/api/rbac/assignments", in)
	assert.Equal(t, fiber.StatusConflict, resp.Status)
	assert.Equal(t, "integrity", resp.Map(t)["kind"])

	mine := list(t, s, fmt.Sprintf("?employee_id=%d", s.Staff.FacB1.ID))
	require.Len(t, mine, 2)
	assert.Equal(t, "REGULAR_FACULTY", mine[0].Role.Code)

	resp = s.As(s.Staff.HR, http.MethodPost, fmt.Sprintf("/api/rbac/assignments/%d/primary", created.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	mine = list(t, s, fmt.Sprintf("?employee_id=%d", s.Staff.FacB1.ID))
	require.Len(t, mine, 2)
	assert.Equal(t, created.ID, mine[0].ID)
	assert.True(t, mine[0].IsPrimary)
	assert.False(t, mine[1].IsPrimary)

	resp = s.As(s.Staff.HR, http.MethodPut, fmt.Sprintf("/api/rbac/assignments/%d", created.ID),
		map[string]any{"is_active": false, "notes": "on sabbatical"})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	active := list(t, s, fmt.Sprintf("?employee_id=%d&active_only=true", s.Staff.FacB1.ID))
	assert.Len(t, active, 1)

	resp = s.As(s.Staff.HR, http.MethodDelete, fmt.Sprintf("/api/rbac/assignments/%d", created.ID), nil)
	assert.Equal(t, fiber.StatusNoContent, resp.Status)

	resp = s.As(s.Staff.HR, http.MethodDelete, fmt.Sprintf("/api/rbac/assignments/%d", created.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
}

func TestListFilters(t *testing.T) {
	s := webtest.New(t)

	assert.Len(t, list(t, s, ""), 9)
	assert.Len(t, list(t, s, fmt.Sprintf("?role_id=%d", s.Role("DEAN").ID)), 2)

	resp := s.As(s.Staff.DeanA, http.MethodGet, "/api/rbac/assignments", nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)

	resp = s.As(s.Staff.FacA1, http.MethodGet, "/api/rbac/assignments", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)

	resp = s.As(s.Staff.HR, http.MethodGet, "/api/rbac/assignments?employee_id=x", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
}

func TestBulk(t *testing.T) {
	s := webtest.New(t)

	in := map[string]any{
		"role_id":      s.Role("SECRETARY").ID,
		"employee_ids": []uint{s.Staff.FacA1.ID, s.Staff.FacA2.ID, 9999},
	}

	var res struct {
		Created    int    `json:"created"`
		CreatedIDs []uint `json:"created_ids"`
		Errors     []struct {
			EmployeeID uint   `json:"employee_id"`
			Error      string `json:"error"`
		} `json:"errors"`
	}

	resp := s.As(s.Staff.HR, http.MethodPost, "/api/rbac/assignments/bulk", in)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	resp.JSON(t, &res)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, []uint{s.Staff.FacA1.ID, s.Staff.FacA2.ID}, res.CreatedIDs)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, uint(9999), res.Errors[0].EmployeeID)
	assert.Equal(t, "Employee not found", res.Errors[0].Error)

	resp = s.As(s.Staff.HR, http.MethodPost, "/api/rbac/assignments/bulk", in)
	resp.JSON(t, &res)
	assert.Equal(t, 0, res.Created)

	resp = s.As(s.Staff.HR, http.MethodPost, "/api/rbac/assignments/bulk", map[string]any{"role_id": s.Role("SECRETARY").ID})
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
}
