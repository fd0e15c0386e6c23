package leave_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/db/models"
	"github.com/univhr/hrcore/internal/leave"
	"github.com/univhr/hrcore/internal/rbac/rbactest"
)

func newLedger(t *testing.T) (*rbactest.Fixture, *leave.Ledger) {
	t.Helper()

	f := rbactest.New(t)

	return f, leave.NewLedger(f.DB)
}

func debit(f *rbactest.Fixture, l *leave.Ledger, emp *models.Employee, amount float64) (*models.LeaveCredit, error) {
	var c *models.LeaveCredit

	err := f.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		c, err = l.Debit(tx, emp.ID, models.LeaveVacation, 2025, amount)

		return err
	})

	return c, err
}

func stored(t *testing.T, f *rbactest.Fixture, emp *models.Employee, lt models.LeaveType, year int) models.LeaveCredit {
	t.Helper()

	var c models.LeaveCredit
	require.NoError(t, f.DB.Where("employee_id = ? AND leave_type = ? AND year = ?", emp.ID, lt, year).First(&c).Error)

	return c
}

func TestGetOrInit(t *testing.T) {
	f, l := newLedger(t)
	emp := f.Employee("RF-1", &f.DeptA, &f.ProgA1, models.RankRegularFaculty)

	c, err := l.GetOrInit(f.Ctx, emp.ID, models.LeaveSick, 2025)
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Zero(t, c.TotalCredits)
	assert.Zero(t, c.RemainingCredits)

	again, err := l.GetOrInit(f.Ctx, emp.ID, models.LeaveSick, 2025)
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)

	var n int64
	require.NoError(t, f.DB.Model(&models.LeaveCredit{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	_, err = l.GetOrInit(f.Ctx, 9999, models.LeaveSick, 2025)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = l.GetOrInit(f.Ctx, emp.ID, "Holiday Leave", 2025)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpsert(t *testing.T) {
	f, l := newLedger(t)
	emp := f.Employee("RF-1", &f.DeptA, &f.ProgA1, models.RankRegularFaculty)

	c, created, err := l.Upsert(f.Ctx, emp.ID, models.LeaveVacation, 2025, 15)
	require.NoError(t, err)
	assert.True(t, created)
	assert.InDelta(t, 15, c.RemainingCredits, 0.001)

	_, err = debit(f, l, emp, 4)
	require.NoError(t, err)

	c, created, err = l.Upsert(f.Ctx, emp.ID, models.LeaveVacation, 2025, 10)
	require.NoError(t, err)
	assert.False(t, created)
	assert.InDelta(t, 10, c.TotalCredits, 0.001)
	assert.InDelta(t, 4, c.UsedCredits, 0.001)
	assert.InDelta(t, 6, c.RemainingCredits, 0.001)

	t.Run("below used", func(t *testing.T) {
		_, _, err := l.Upsert(f.Ctx, emp.ID, models.LeaveVacation, 2025, 3)
		require.ErrorIs(t, err, apperr.ErrValidation)

		assert.InDelta(t, 10, stored(t, f, emp, models.LeaveVacation, 2025).TotalCredits, 0.001)
	})

	t.Run("negative", func(t *testing.T) {
		_, _, err := l.Upsert(f.Ctx, emp.ID, models.LeaveVacation, 2025, -1)
		require.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, _, err := l.Upsert(f.Ctx, 9999, models.LeaveVacation, 2025, 5)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestGetOrInitConcurrentFirstCalls(t *testing.T) {
	f, l := newLedger(t)
	emp := f.Employee("RF-1", &f.DeptA, &f.ProgA1, models.RankRegularFaculty)

	const callers = 4

	ids := make([]uint, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			c, err := l.GetOrInit(f.Ctx, emp.ID, models.LeaveBirthday, 2025)
			if err == nil {
				ids[i] = c.ID
			}

			errs[i] = err
		}()
	}

	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var n int64
	require.NoError(t, f.DB.Model(&models.LeaveCredit{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestDebit(t *testing.T) {
	f, l := newLedger(t)
	emp := f.Employee("RF-1", &f.DeptA, &f.ProgA1, models.RankRegularFaculty)

	t.Run("missing row", func(t *testing.T) {
		_, err := debit(f, l, emp, 1)
		require.ErrorIs(t, err, apperr.ErrInsufficientCredits)
		assert.EqualError(t, err, "No leave credit found for Vacation Leave in 2025")
	})

	_, _, err := l.Upsert(f.Ctx, emp.ID, models.LeaveVacation, 2025, 5)
	require.NoError(t, err)

	c, err := debit(f, l, emp, 3)
	require.NoError(t, err)
	assert.InDelta(t, 3, c.UsedCredits, 0.001)
	assert.InDelta(t, 2, c.RemainingCredits, 0.001)

	t.Run("more than remaining", func(t *testing.T) {
		_, err := debit(f, l, emp, 3)
		require.ErrorIs(t, err, apperr.ErrInsufficientCredits)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "2.00", appErr.Fields["remaining_credits"])

		c := stored(t, f, emp, models.LeaveVacation, 2025)
		assert.InDelta(t, 3, c.UsedCredits, 0.001)
		assert.InDelta(t, 2, c.RemainingCredits, 0.001)
	})

	t.Run("exactly remaining", func(t *testing.T) {
		c, err := debit(f, l, emp, 2)
		require.NoError(t, err)
		assert.Zero(t, c.RemainingCredits)
	})

	t.Run("rolled back with the transaction", func(t *testing.T) {
		_, _, err := l.Upsert(f.Ctx, emp.ID, models.LeaveVacation, 2025, 10)
		require.NoError(t, err)

		err = f.DB.Transaction(func(tx *gorm.DB) error {
			if _, err := l.Debit(tx, emp.ID, models.LeaveVacation, 2025, 1); err != nil {
				return err
			}

			return apperr.Conflict("abort")
		})
		require.ErrorIs(t, err, apperr.ErrConflict)

		assert.InDelta(t, 5, stored(t, f, emp, models.LeaveVacation, 2025).UsedCredits, 0.001)
	})
}

func TestBalances(t *testing.T) {
	f, l := newLedger(t)
	emp := f.Employee("RF-1", &f.DeptA, &f.ProgA1, models.RankRegularFaculty)

	for _, lt := range []models.LeaveType{models.LeaveVacation, models.LeaveBirthday, models.LeaveSick} {
		_, _, err := l.Upsert(f.Ctx, emp.ID, lt, 2025, 5)
		require.NoError(t, err)
	}

	_, _, err := l.Upsert(f.Ctx, emp.ID, models.LeaveSick, 2024, 5)
	require.NoError(t, err)

	got, err := l.Balances(f.Ctx, emp.ID, 2025)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.LeaveBirthday, got[0].LeaveType)
	assert.Equal(t, models.LeaveSick, got[1].LeaveType)
	assert.Equal(t, models.LeaveVacation, got[2].LeaveType)
}

func TestApplyPolicies(t *testing.T) {
	f, l := newLedger(t)

	_, err := l.ApplyPolicies(f.Ctx, nil, 2025, false)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	policies := []models.LeavePolicy{
		{LeaveType: models.LeaveVacation, DaysAllowed: 15},
		{LeaveType: models.LeaveSick, DaysAllowed: 15},
		{LeaveType: models.LeaveBirthday, DaysAllowed: 1, ApplicablePositions: []string{string(models.PositionAdministration)}},
	}
	require.NoError(t, f.DB.Create(&policies).Error)

	faculty := f.Employee("RF-1", &f.DeptA, &f.ProgA1, models.RankRegularFaculty)
	officer := f.Employee("AO-1", nil, nil, "")

	report, err := l.ApplyPolicies(f.Ctx, nil, 2025, false)
	require.NoError(t, err)
	assert.Equal(t, leave.PolicyReport{Employees: 2, Created: 5, Skipped: 1}, *report)

	facultyCredits, err := l.Balances(f.Ctx, faculty.ID, 2025)
	require.NoError(t, err)
	assert.Len(t, facultyCredits, 2)

	officerCredits, err := l.Balances(f.Ctx, officer.ID, 2025)
	require.NoError(t, err)
	assert.Len(t, officerCredits, 3)

	t.Run("idempotent", func(t *testing.T) {
		report, err := l.ApplyPolicies(f.Ctx, nil, 2025, false)
		require.NoError(t, err)
		assert.Equal(t, leave.PolicyReport{Employees: 2, Skipped: 6}, *report)
	})

	t.Run("keeps adjusted totals unless forced", func(t *testing.T) {
		_, _, err := l.Upsert(f.Ctx, faculty.ID, models.LeaveVacation, 2025, 20)
		require.NoError(t, err)

		_, err = l.ApplyPolicies(f.Ctx, &faculty.ID, 2025, false)
		require.NoError(t, err)
		assert.InDelta(t, 20, stored(t, f, faculty, models.LeaveVacation, 2025).TotalCredits, 0.001)

		report, err := l.ApplyPolicies(f.Ctx, &faculty.ID, 2025, true)
		require.NoError(t, err)
		assert.Equal(t, leave.PolicyReport{Employees: 1, Updated: 2, Skipped: 1}, *report)
		assert.InDelta(t, 15, stored(t, f, faculty, models.LeaveVacation, 2025).TotalCredits, 0.001)
	})

	t.Run("unknown employee", func(t *testing.T) {
		missing := uint(9999)
		_, err := l.ApplyPolicies(f.Ctx, &missing, 2025, false)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
