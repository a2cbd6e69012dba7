// Package tool provides persistence for the tools collection.
package tool

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/paging"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
	"github.com/headless-tools/headless-tools-cms/internal/fields"
)

var (
	// ErrToolNotFound is returned when a tool is not found.
	ErrToolNotFound = errors.New("tool not found")
	// ErrToolExists is returned when name or slug is already taken.
	ErrToolExists = errors.New("tool with this name or slug already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter of a tool list request.
type Filter struct {
	paging.Params

	Search   string
	Category string
	Status   string
	Featured *bool
	// Sort is a field name, prefixed by - for descending. Defaults to -createdAt.
	Sort string
}

var sortColumns = map[string]string{ //nolint:gochecknoglobals
	"name":       "name",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"usageCount": "usage_count",
	"rating":     "rating",
}

// Order translates a sort expression into an order clause. Unknown fields fall back to newest first.
func Order(sort string) string {
	dir := "ASC"

	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		sort = sort[1:]
	}

	col, ok := sortColumns[sort]
	if !ok {
		return "created_at DESC, id DESC"
	}

	return col + " " + dir + ", id " + dir
}

// List returns one page of tools matching f.
func List(db *gorm.DB, f Filter) (*paging.Page[models.Tool], error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := db.Model(&models.Tool{})

	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}

	return paging.Find[models.Tool](q, f.Params, Order(f.Sort))
}

// Get retrieves a tool by id.
func Get(db *gorm.DB, id uint64) (*models.Tool, error) {
	return first(db, "id = ?", id)
}

// GetBySlug retrieves a tool by slug.
func GetBySlug(db *gorm.DB, slug string) (*models.Tool, error) {
	return first(db, "slug = ?", slug)
}

func first(db *gorm.DB, query string, arg any) (*models.Tool, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var t models.Tool
	if err := db.Where(query, arg).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrToolNotFound
		}

		return nil, err
	}

	return &t, nil
}

// Create stores a new tool. The slug is derived from the name when empty,
// usage count and rating always start at zero.
func Create(db *gorm.DB, t *models.Tool) error {
	if db == nil {
		return ErrDBNil
	}

	if err := prepare(t); err != nil {
		return err
	}

	t.ID = 0
	t.UsageCount = 0
	t.Rating = 0

	return translate(db.Create(t).Error)
}

// Update saves all fields of an existing tool.
func Update(db *gorm.DB, t *models.Tool) error {
	if db == nil {
		return ErrDBNil
	}

	if err := prepare(t); err != nil {
		return err
	}

	result := db.Model(t).Select("*").Omit("id", "created_at", "usage_count", "rating").Updates(t)
	if err := translate(result.Error); err != nil {
		return err
	}

	if result.RowsAffected == 0 {
		return ErrToolNotFound
	}

	return nil
}

// Delete removes a tool.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Tool{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrToolNotFound
	}

	return nil
}

// IncrementUsage adds one to the usage counter of a tool.
func IncrementUsage(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.Tool{}).Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrToolNotFound
	}

	return nil
}

// Count returns the number of tools.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := db.Model(&models.Tool{}).Count(&n).Error

	return n, err
}

func prepare(t *models.Tool) error {
	if t.Slug == "" {
		slug, err := fields.Slugify(t.Name)
		if err != nil {
			return err
		}

		t.Slug = slug
	}

	if t.Status == "" {
		t.Status = models.ToolActive
	}

	if t.Pricing.Type == "" {
		t.Pricing.Type = models.PricingFree
	}

	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrToolExists
	}

	return err
}
