// Package analytics provides persistence for analytics events.
package analytics

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/paging"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

var (
	// ErrEventNotFound is returned when an event is not found.
	ErrEventNotFound = errors.New("analytics event not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Query selects events. Zero fields do not filter.
type Query struct {
	// From and To bound createdAt, both inclusive.
	From *time.Time `json:"startDate,omitempty"`
	To   *time.Time `json:"endDate,omitempty"`

	EventType models.EventType `json:"eventType,omitempty"`
	UserID    *uint64          `json:"userId,omitempty"`
	ToolID    *uint64          `json:"toolId,omitempty"`
	SessionID string           `json:"sessionId,omitempty"`
}

func (q Query) apply(tx *gorm.DB) *gorm.DB {
	tx = tx.Model(&models.AnalyticsEvent{})

	if q.From != nil {
		tx = tx.Where("created_at >= ?", q.From.UTC())
	}

	if q.To != nil {
		tx = tx.Where("created_at <= ?", q.To.UTC())
	}

	if q.EventType != "" {
		tx = tx.Where("event_type = ?", q.EventType)
	}

	if q.UserID != nil {
		tx = tx.Where("user_id = ?", *q.UserID)
	}

	if q.ToolID != nil {
		tx = tx.Where("tool_id = ?", *q.ToolID)
	}

	if q.SessionID != "" {
		tx = tx.Where("session_id = ?", q.SessionID)
	}

	return tx
}

// Create stores one event.
func Create(ctx context.Context, db *gorm.DB, e *models.AnalyticsEvent) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Create(e).Error
}

// CreateBatch stores events in one transaction.
func CreateBatch(ctx context.Context, db *gorm.DB, events []*models.AnalyticsEvent) error {
	if db == nil {
		return ErrDBNil
	}

	if len(events) == 0 {
		return nil
	}

	return db.WithContext(ctx).CreateInBatches(events, 100).Error //nolint:mnd
}

// Find returns at most limit events matching q, newest first.
func Find(ctx context.Context, db *gorm.DB, q Query, limit int) ([]models.AnalyticsEvent, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var events []models.AnalyticsEvent

	err := q.apply(db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error

	return events, err
}

// Count returns the number of events matching q, ignoring any fetch cap.
func Count(ctx context.Context, db *gorm.DB, q Query) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := q.apply(db.WithContext(ctx)).Count(&n).Error

	return n, err
}

// List returns one page of events, newest first.
func List(ctx context.Context, db *gorm.DB, q Query, p paging.Params) (*paging.Page[models.AnalyticsEvent], error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return paging.Find[models.AnalyticsEvent](q.apply(db.WithContext(ctx)), p, "created_at DESC, id DESC")
}

// Get retrieves an event by id.
func Get(ctx context.Context, db *gorm.DB, id uint64) (*models.AnalyticsEvent, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var e models.AnalyticsEvent
	if err := db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}

		return nil, err
	}

	return &e, nil
}

// Delete removes an event.
func Delete(ctx context.Context, db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.WithContext(ctx).Delete(&models.AnalyticsEvent{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// DeleteOlderThan removes every event created strictly before cutoff.
// An event created exactly at cutoff is kept.
func DeleteOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&models.AnalyticsEvent{})

	return result.RowsAffected, result.Error
}
