// Package media provides persistence for media metadata.
package media

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/paging"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

var (
	// ErrMediaNotFound is returned when a media document is not found.
	ErrMediaNotFound = errors.New("media not found")
	// ErrMediaExists is returned for a duplicate filename.
	ErrMediaExists = errors.New("media with this filename already exists")
	// ErrMimeTypeNotAllowed is returned for mime types outside the allowed list.
	ErrMimeTypeNotAllowed = errors.New("mime type not allowed")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter of a media list request.
type Filter struct {
	paging.Params

	Category string
	// MimePrefix matches the start of the mime type, e.g. image/.
	MimePrefix string
	// PublicOnly hides private media.
	PublicOnly bool
	UploadedBy *uint64
}

// List returns one page of media, newest first.
func List(db *gorm.DB, f Filter) (*paging.Page[models.Media], error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := db.Model(&models.Media{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	if f.MimePrefix != "" {
		q = q.Where("mime_type LIKE ?", f.MimePrefix+"%")
	}

	if f.PublicOnly {
		q = q.Where("is_public = ?", true)
	}

	if f.UploadedBy != nil {
		q = q.Where("uploaded_by_id = ?", *f.UploadedBy)
	}

	return paging.Find[models.Media](q, f.Params, "created_at DESC, id DESC")
}

// Get retrieves a media document by id.
func Get(db *gorm.DB, id uint64) (*models.Media, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var m models.Media
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}

		return nil, err
	}

	return &m, nil
}

// Create stores media metadata after checking the mime type and deriving url and sizes.
func Create(db *gorm.DB, m *models.Media) error {
	if db == nil {
		return ErrDBNil
	}

	if err := prepare(m); err != nil {
		return err
	}

	m.ID = 0
	m.DownloadCount = 0

	return translate(db.Create(m).Error)
}

// Update saves all editable fields of an existing media document.
func Update(db *gorm.DB, m *models.Media) error {
	if db == nil {
		return ErrDBNil
	}

	if err := prepare(m); err != nil {
		return err
	}

	result := db.Model(m).Select("*").Omit("id", "created_at", "download_count", "uploaded_by_id").Updates(m)
	if err := translate(result.Error); err != nil {
		return err
	}

	if result.RowsAffected == 0 {
		return ErrMediaNotFound
	}

	return nil
}

// Delete removes a media document.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Media{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrMediaNotFound
	}

	return nil
}

// IncrementDownloads adds one to the download counter.
func IncrementDownloads(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.Media{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrMediaNotFound
	}

	return nil
}

// Count returns the number of media documents.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := db.Model(&models.Media{}).Count(&n).Error

	return n, err
}

func prepare(m *models.Media) error {
	m.MimeType = strings.ToLower(strings.TrimSpace(m.MimeType))

	if !models.AllowedMimeType(m.MimeType) {
		return fmt.Errorf("%w: %s", ErrMimeTypeNotAllowed, m.MimeType)
	}

	if m.Category == "" {
		m.Category = models.MediaOther
	}

	if m.IsPublic == nil {
		public := true
		m.IsPublic = &public
	}

	m.Derive()

	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrMediaExists
	}

	return err
}
