package models

import "time"

// Session is a row of the database backed session storage.
type Session struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     []byte
	ExpiresAt int64  `gorm:"index"` // unix seconds, 0 never expires
	UpdatedAt time.Time
}
