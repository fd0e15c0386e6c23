package models

import "time"

// Session is a stored login session, used when no external session store is configured.
type Session struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Data      []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for the Session model.
func (Session) TableName() string {
	return "web_sessions"
}
