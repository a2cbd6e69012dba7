// Package user provides persistence for user accounts.
package user

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/paging"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Get retrieves a user by id.
func Get(db *gorm.DB, id uint64) (*models.User, error) {
	return first(db, "id = ?", id)
}

// GetByEmail retrieves a user by email, case insensitive.
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	return first(db, "email = ?", NormalizeEmail(email))
}

func first(db *gorm.DB, query string, arg any) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User
	if err := db.Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &u, nil
}

// List returns one page of users ordered by email.
func List(db *gorm.DB, p paging.Params, role string) (*paging.Page[models.User], error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := db.Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}

	return paging.Find[models.User](q, p, "email ASC")
}

// Create stores a new user. password is the plaintext password, it is hashed here.
func Create(db *gorm.DB, u *models.User, password string) error {
	if db == nil {
		return ErrDBNil
	}

	u.ID = 0
	u.Email = NormalizeEmail(u.Email)
	u.Password = models.HashPassword(password)
	u.LoginCount = 0
	u.LastLoginAt = nil
	u.TOTPEnabled = false
	u.TOTPSecret = ""

	applyDefaults(u)

	return translate(db.Create(u).Error)
}

// Update saves the profile fields of a user. Password, login counters and TOTP are not touched.
func Update(db *gorm.DB, u *models.User) error {
	if db == nil {
		return ErrDBNil
	}

	u.Email = NormalizeEmail(u.Email)
	applyDefaults(u)

	result := db.Model(u).Select("*").
		Omit("id", "created_at", "password", "login_count", "last_login_at", "totp_secret", "totp_enabled").
		Updates(u)
	if err := translate(result.Error); err != nil {
		return err
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetPassword replaces the password hash.
func SetPassword(db *gorm.DB, id uint64, password string) error {
	return updateColumns(db, id, map[string]any{"password": models.HashPassword(password)})
}

// SetTOTP stores the TOTP secret and its enabled flag.
func SetTOTP(db *gorm.DB, id uint64, secret string, enabled bool) error {
	return updateColumns(db, id, map[string]any{"totp_secret": secret, "totp_enabled": enabled})
}

// RecordLogin stamps the login time and increments the login counter.
func RecordLogin(db *gorm.DB, u *models.User) error {
	now := time.Now().UTC()

	if err := updateColumns(db, u.ID, map[string]any{
		"last_login_at": now,
		"login_count":   gorm.Expr("login_count + ?", 1),
	}); err != nil {
		return err
	}

	u.LastLoginAt = &now
	u.LoginCount++

	return nil
}

// Delete removes a user.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Count returns the number of users.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := db.Model(&models.User{}).Count(&n).Error

	return n, err
}

func updateColumns(db *gorm.DB, id uint64, cols map[string]any) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.User{}).Where("id = ?", id).UpdateColumns(cols)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func applyDefaults(u *models.User) {
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	if u.IsActive == nil {
		active := true
		u.IsActive = &active
	}

	if u.Preferences.Theme == "" {
		u.Preferences.Theme = models.ThemeAuto
	}

	if u.Preferences.Language == "" {
		u.Preferences.Language = "zh"
	}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}

	return err
}
