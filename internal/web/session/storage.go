package session

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

// DefaultGCInterval is how often expired rows are removed.
const DefaultGCInterval = 10 * time.Second

// GormStorage is a fiber.Storage on the sessions table of the application database.
type GormStorage struct {
	db   *gorm.DB
	now  func() time.Time
	done chan struct{}
	once sync.Once
}

// NewGormStorage creates the storage and starts its expiry collector. gcInterval <= 0 uses DefaultGCInterval.
func NewGormStorage(db *gorm.DB, gcInterval time.Duration) *GormStorage {
	if gcInterval <= 0 {
		gcInterval = DefaultGCInterval
	}

	s := &GormStorage{db: db, now: time.Now, done: make(chan struct{})}

	go s.gcTicker(gcInterval)

	return s
}

// Get returns the value of key, nil when the key is unknown or expired.
func (s *GormStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	var row models.Session

	err := s.db.Where(&models.Session{Key: key}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if row.ExpiresAt != 0 && row.ExpiresAt <= s.now().Unix() {
		return nil, nil
	}

	return row.Value, nil
}

// Set stores val under key. exp 0 never expires.
func (s *GormStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	row := models.Session{Key: key, Value: val}
	if exp > 0 {
		row.ExpiresAt = s.now().Add(exp).Unix()
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&row).Error
}

// Delete removes key.
func (s *GormStorage) Delete(key string) error {
	if key == "" {
		return nil
	}

	return s.db.Where(&models.Session{Key: key}).Delete(&models.Session{}).Error
}

// Reset removes all sessions.
func (s *GormStorage) Reset() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Session{}).Error
}

// Close stops the expiry collector.
func (s *GormStorage) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// DeleteExpired removes all expired sessions.
func (s *GormStorage) DeleteExpired() (int64, error) {
	res := s.db.Where("expires_at <> 0 AND expires_at <= ?", s.now().Unix()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

func (s *GormStorage) gcTicker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if _, err := s.DeleteExpired(); err != nil {
				log.Error().Err(err).Msg("failed to delete expired sessions")
			}
		}
	}
}
