package rbac

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/univhr/hrcore/internal/db/models"
)

const defaultChangeLogLimit = 100

// ChangeLogFilter narrows ListChangeLog. Zero values are ignored.
type ChangeLogFilter struct {
	Start      *time.Time
	End        *time.Time
	Action     models.ChangeAction
	EmployeeID *uint
	Limit      int
}

type change struct {
	action   models.ChangeAction
	model    models.ChangeModel
	id       uint
	prev     any
	next     any
	affected *uint
}

// record writes one change log entry on tx.
func (s *Service) record(tx *gorm.DB, audit Audit, c change) error {
	entry := models.RBACChangeLog{
		Action:             c.action,
		ModelType:          c.model,
		ModelID:            c.id,
		PerformedByID:      audit.PerformedBy,
		AffectedEmployeeID: c.affected,
		PerformedAt:        s.now(),
		IPAddress:          audit.IPAddress,
		Notes:              audit.Notes,
	}

	if c.prev != nil {
		entry.PreviousValue = toMap(c.prev)
	}

	if c.next != nil {
		entry.NewValue = toMap(c.next)
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write change log: %w", err)
	}

	return nil
}

// ListChangeLog returns change log entries, newest first.
func (s *Service) ListChangeLog(ctx context.Context, f ChangeLogFilter) ([]models.RBACChangeLog, error) {
	q := s.db.WithContext(ctx).Order("performed_at DESC").Order("id DESC")

	if f.Start != nil {
		q = q.Where("performed_at >= ?", *f.Start)
	}

	if f.End != nil {
		q = q.Where("performed_at <= ?", *f.End)
	}

	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}

	if f.EmployeeID != nil {
		q = q.Where("affected_employee_id = ?", *f.EmployeeID)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultChangeLogLimit
	}

	var out []models.RBACChangeLog
	if err := q.Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list change log: %w", err)
	}

	return out, nil
}
