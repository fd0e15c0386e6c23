// Package models contains database model definitions.
package models

// Setting is a named JSON document stored in the database.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"uniqueIndex;size:100"`
	Value []byte
}
