package credit_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univhr/hrcore/internal/db/models"
	"github.com/univhr/hrcore/internal/leave"
	"github.com/univhr/hrcore/internal/web/webtest"
)

const path = "/api/leave-credits"

func allowance(emp *models.Employee, total float64) map[string]any {
	return map[string]any{
		"employee_id": emp.ID, "leave_type": models.LeaveVacation, "year": 2025, "total_credits": total,
	}
}

func TestPut(t *testing.T) {
	s := webtest.New(t)

	tests := []struct {
		name   string
		as     *models.Employee
		body   map[string]any
		status int
	}{
		{"faculty", s.Staff.FacA1, allowance(s.Staff.FacA1, 30), fiber.StatusForbidden},
		{"create", s.Staff.HR, allowance(s.Staff.FacA1, 15), fiber.StatusCreated},
		{"update", s.Staff.DeanA, allowance(s.Staff.FacA1, 10), fiber.StatusOK},
		{"negative", s.Staff.HR, allowance(s.Staff.FacA1, -1), fiber.StatusBadRequest},
		{"unknown employee", s.Staff.HR, allowance(&models.Employee{ID: 9999}, 5), fiber.StatusNotFound},
		{"unknown leave type", s.Staff.HR, map[string]any{
			"employee_id": s.Staff.FacA1.ID, "leave_type": "Holiday Leave", "year": 2025, "total_credits": 5,
		}, fiber.StatusBadRequest},
		{"missing total", s.Staff.HR, map[string]any{"employee_id": s.Staff.FacA1.ID, "year": 2025}, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.As(tt.as, http.MethodPut, path, tt.body)
			assert.Equal(t, tt.status, resp.Status, string(resp.Body))
		})
	}

	var credits []models.LeaveCredit

	resp := s.As(s.Staff.FacA1, http.MethodGet, path, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	resp.JSON(t, &credits)

	require.Len(t, credits, 1)
	assert.Equal(t, 2025, credits[0].Year)
	assert.InDelta(t, 10, credits[0].TotalCredits, 0.001)
	assert.InDelta(t, 10, credits[0].RemainingCredits, 0.001)
}

func TestList(t *testing.T) {
	s := webtest.New(t)

	_, _, err := s.Leave.Ledger().Upsert(s.Ctx, s.Staff.FacA1.ID, models.LeaveVacation, 2025, 15)
	require.NoError(t, err)

	_, _, err = s.Leave.Ledger().Upsert(s.Ctx, s.Staff.FacA1.ID, models.LeaveSick, 2024, 15)
	require.NoError(t, err)

	target := fmt.Sprintf("%s?employee_id=%d", path, s.Staff.FacA1.ID)

	tests := []struct {
		name   string
		as     *models.Employee
		target string
		status int
		rows   int
	}{
		{"self", s.Staff.FacA1, path, fiber.StatusOK, 1},
		{"self other year", s.Staff.FacA1, path + "?year=2024", fiber.StatusOK, 1},
		{"self empty year", s.Staff.FacA1, path + "?year=2023", fiber.StatusOK, 0},
		{"hr", s.Staff.HR, target, fiber.StatusOK, 1},
		{"chair in scope", s.Staff.ChairA1, target, fiber.StatusOK, 1},
		{"chair out of scope", s.Staff.ChairA2, target, fiber.StatusForbidden, 0},
		{"peer", s.Staff.FacA2, target, fiber.StatusForbidden, 0},
		{"bad year", s.Staff.FacA1, path + "?year=soon", fiber.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.As(tt.as, http.MethodGet, tt.target, nil)
			require.Equal(t, tt.status, resp.Status, string(resp.Body))

			if tt.status != fiber.StatusOK {
				return
			}

			var credits []models.LeaveCredit
			resp.JSON(t, &credits)
			assert.Len(t, credits, tt.rows)
		})
	}
}

func TestApplyPolicies(t *testing.T) {
	s := webtest.New(t)

	resp := s.As(s.Staff.HR, http.MethodPost, path+"/apply-policies", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)

	require.NoError(t, s.DB.Create(&[]models.LeavePolicy{
		{LeaveType: models.LeaveVacation, DaysAllowed: 15},
		{LeaveType: models.LeaveSick, DaysAllowed: 15},
	}).Error)

	var report leave.PolicyReport

	resp = s.As(s.Staff.HR, http.MethodPost, path+"/apply-policies", map[string]any{"year": 2025})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	resp.JSON(t, &report)
	assert.Equal(t, leave.PolicyReport{Employees: 9, Created: 18}, report)

	resp = s.As(s.Staff.HR, http.MethodPost, path+"/apply-policies",
		map[string]any{"employee_id": s.Staff.FacA1.ID, "force": true})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	resp.JSON(t, &report)
	assert.Equal(t, leave.PolicyReport{Employees: 1, Updated: 2}, report)

	resp = s.As(s.Staff.FacA1, http.MethodPost, path+"/apply-policies", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)
}
