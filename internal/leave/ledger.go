package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/db/models"
)

// Ledger is the leave credit ledger, one row per employee, leave type and year.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a ledger on db.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// PolicyReport counts what ApplyPolicies did.
type PolicyReport struct {
	Employees int `json:"employees"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

// forUpdate adds a row lock. SQLite does not know FOR UPDATE; its transactions
// are opened with an immediate lock instead (see dsn.SQLiteTxLock).
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}

	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func creditKey(tx *gorm.DB, employeeID uint, leaveType models.LeaveType, year int) *gorm.DB {
	return tx.Where("employee_id = ? AND leave_type = ? AND year = ?", employeeID, leaveType, year)
}

func checkType(t models.LeaveType) error {
	if !t.Valid() {
		return apperr.Validation("Invalid leave type: %s", t).WithField("leave_type", "oneof")
	}

	return nil
}

// GetOrInit returns the credit row for the key, creating an empty one when absent.
func (l *Ledger) GetOrInit(
	ctx context.Context, employeeID uint, leaveType models.LeaveType, year int,
) (*models.LeaveCredit, error) {
	if err := checkType(leaveType); err != nil {
		return nil, err
	}

	var c models.LeaveCredit

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Employee{}, employeeID).Error; err != nil {
			return apperr.FromDB(err, "Employee")
		}

		err := creditKey(tx, employeeID, leaveType, year).First(&c).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		c = models.LeaveCredit{EmployeeID: employeeID, LeaveType: leaveType, Year: year}

		return tx.Omit(clause.Associations).Create(&c).Error
	})

	// a concurrent first call created the row
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c = models.LeaveCredit{}
		if err = creditKey(l.db.WithContext(ctx), employeeID, leaveType, year).First(&c).Error; err != nil {
			return nil, apperr.FromDB(err, "Leave credit")
		}
	}

	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Upsert sets the total credits of the key, creating the row when absent.
// Used credits are kept. created reports whether a row was inserted.
func (l *Ledger) Upsert(
	ctx context.Context, employeeID uint, leaveType models.LeaveType, year int, total float64,
) (c *models.LeaveCredit, created bool, err error) {
	if err = checkType(leaveType); err != nil {
		return nil, false, err
	}

	if total < 0 {
		return nil, false, apperr.Validation("total_credits must not be negative").WithField("total_credits", "min=0")
	}

	c = &models.LeaveCredit{}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Employee{}, employeeID).Error; err != nil {
			return apperr.FromDB(err, "Employee")
		}

		created, err = upsert(tx, employeeID, leaveType, year, total, true, c)

		return err
	})
	if err != nil {
		return nil, false, err
	}

	return c, created, nil
}

// upsert writes total into the row of the key. An existing row is only changed when overwrite is set.
func upsert(
	tx *gorm.DB, employeeID uint, leaveType models.LeaveType, year int, total float64, overwrite bool,
	c *models.LeaveCredit,
) (bool, error) {
	err := forUpdate(creditKey(tx, employeeID, leaveType, year)).First(c).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		*c = models.LeaveCredit{EmployeeID: employeeID, LeaveType: leaveType, Year: year, TotalCredits: total}
		if err = tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return false, apperr.FromDB(err, "Leave credit")
		}

		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to load leave credit: %w", err)
	case !overwrite:
		return false, nil
	}

	if total < c.UsedCredits {
		return false, apperr.Validation("total_credits (%.2f) is below used credits (%.2f)", total, c.UsedCredits).
			WithField("total_credits", "gtefield=used_credits")
	}

	c.TotalCredits = total
	if err = tx.Omit(clause.Associations).Save(c).Error; err != nil {
		return false, fmt.Errorf("failed to update leave credit: %w", err)
	}

	return false, nil
}

// Debit adds amount to the used credits of the key inside tx. The row is locked
// for the rest of tx. Callers count the debit once tx has committed. Nothing is written when the row is missing or the remaining
// credits do not cover amount.
func (l *Ledger) Debit(
	tx *gorm.DB, employeeID uint, leaveType models.LeaveType, year int, amount float64,
) (*models.LeaveCredit, error) {
	var c models.LeaveCredit

	err := forUpdate(creditKey(tx, employeeID, leaveType, year)).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.InsufficientCredits("No leave credit found for %s in %d", leaveType, year)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load leave credit: %w", err)
	}

	if c.RemainingCredits < amount {
		return nil, apperr.InsufficientCredits("Insufficient leave credits").
			WithField("remaining_credits", fmt.Sprintf("%.2f", c.RemainingCredits))
	}

	c.UsedCredits += amount
	if err = tx.Omit(clause.Associations).Save(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to debit leave credit: %w", err)
	}

	return &c, nil
}

// Balances returns the credit rows of an employee for one year, ordered by leave type.
func (l *Ledger) Balances(ctx context.Context, employeeID uint, year int) ([]models.LeaveCredit, error) {
	var out []models.LeaveCredit

	err := l.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		Order("leave_type").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list leave credits: %w", err)
	}

	return out, nil
}

// ApplyPolicies seeds credit rows of year from the leave policies. A nil
// employeeID applies to every employee. Existing rows are kept unless force is
// set, in which case their total is reset to the policy allowance.
func (l *Ledger) ApplyPolicies(ctx context.Context, employeeID *uint, year int, force bool) (*PolicyReport, error) {
	var policies []models.LeavePolicy
	if err := l.db.WithContext(ctx).Order("leave_type").Find(&policies).Error; err != nil {
		return nil, fmt.Errorf("failed to load leave policies: %w", err)
	}

	if len(policies) == 0 {
		return nil, apperr.NotFound("No leave policies found")
	}

	q := l.db.WithContext(ctx).Preload("Position").Order("id")
	if employeeID != nil {
		q = q.Where("id = ?", *employeeID)
	}

	var employees []models.Employee
	if err := q.Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	if employeeID != nil && len(employees) == 0 {
		return nil, apperr.NotFound("Employee not found")
	}

	report := &PolicyReport{}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range employees {
			emp := &employees[i]
			report.Employees++

			for _, p := range policies {
				if !appliesTo(&p, emp) {
					report.Skipped++
					continue
				}

				var c models.LeaveCredit

				created, err := upsert(tx, emp.ID, p.LeaveType, year, float64(p.DaysAllowed), force, &c)
				if err != nil {
					return err
				}

				switch {
				case created:
					report.Created++
				case force:
					report.Updated++
				default:
					report.Skipped++
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("year", year).
		Int("employees", report.Employees).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Msg("leave policies applied")

	return report, nil
}

// appliesTo reports whether p covers the position type of emp. An empty list covers everyone.
func appliesTo(p *models.LeavePolicy, emp *models.Employee) bool {
	if len(p.ApplicablePositions) == 0 {
		return true
	}

	if emp.Position == nil {
		return false
	}

	for _, t := range p.ApplicablePositions {
		if t == string(emp.Position.Type) {
			return true
		}
	}

	return false
}
