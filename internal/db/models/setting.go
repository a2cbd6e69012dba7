// Package models contains the gorm models of the cms.
package models

import "time"

// Setting is a named JSON document in the key/value settings table.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:100"`
	Value     []byte
	UpdatedAt time.Time
}

// All returns every model for auto migration, in dependency order.
func All() []any {
	return []any{
		&Media{},
		&User{},
		&Tool{},
		&AnalyticsEvent{},
		&Setting{},
		&Session{},
	}
}
