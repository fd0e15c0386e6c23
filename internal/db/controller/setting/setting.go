// Package setting stores named JSON documents in the settings table.
package setting

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/univhr/hrcore/internal/db/models"
)

const nameQueryPattern = "name = ?"

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when a setting name is empty.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

func check(db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	return nil
}

// Get retrieves a setting by its name.
func Get(db *gorm.DB, name string) (*models.Setting, error) {
	if err := check(db, name); err != nil {
		return nil, err
	}

	var s models.Setting
	if err := db.Where(nameQueryPattern, name).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, err
	}

	return &s, nil
}

// GetAll retrieves all settings ordered by name.
func GetAll(db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting
	if err := db.Order("name").Find(&settings).Error; err != nil {
		return nil, err
	}

	return settings, nil
}

// Set creates or replaces the value of a setting.
func Set(db *gorm.DB, name string, value []byte) (*models.Setting, error) {
	if err := check(db, name); err != nil {
		return nil, err
	}

	var s models.Setting

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(nameQueryPattern, name).First(&s).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			s = models.Setting{Name: name, Value: value}
			return tx.Create(&s).Error
		case err != nil:
			return err
		default:
			s.Value = value
			return tx.Save(&s).Error
		}
	})
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Delete removes a setting by name.
func Delete(db *gorm.DB, name string) error {
	if err := check(db, name); err != nil {
		return err
	}

	result := db.Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// GetJSON decodes the named setting into out.
func GetJSON(db *gorm.DB, name string, out any) error {
	s, err := Get(db, name)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(s.Value, out); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", name, err)
	}

	return nil
}

// SetJSON encodes in and stores it under name.
func SetJSON(db *gorm.DB, name string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", name, err)
	}

	_, err = Set(db, name, data)

	return err
}
