// Package leavesettings persists the runtime leave workflow settings.
package leavesettings

import (
	"errors"

	"gorm.io/gorm"

	"github.com/univhr/hrcore/internal/db/controller/setting"
)

// SettingKey is the key used to store the leave workflow settings in the database.
const SettingKey = "leave_workflow"

// Settings are the leave workflow settings editable at runtime.
type Settings struct {
	// HRBypassNote is the supervisor note recorded by hr_direct_approve when HR gives no reason.
	HRBypassNote string `json:"hr_bypass_note" validate:"required,max=255"`
	// RequireReason refuses requests without a reason when set.
	RequireReason bool `json:"require_reason"`
}

// Load loads the settings from the database.
// When nothing has been stored yet the receiver keeps its current values.
func (s *Settings) Load(db *gorm.DB) error {
	err := setting.GetJSON(db, SettingKey, s)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil
	}

	return err
}

// Save saves the settings to the database.
func (s *Settings) Save(db *gorm.DB) error {
	return setting.SetJSON(db, SettingKey, s)
}
