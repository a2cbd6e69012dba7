package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/user"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Credentials is the body of a login request.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// Code is the TOTP code, required when the account has two-factor authentication enabled.
	Code string `json:"code,omitempty"`
}

// Authenticate authenticates a user against the local database and records the login.
func (p *LocalProvider) Authenticate(c Credentials) (*models.User, error) {
	u, err := user.GetByEmail(p.db, c.Email)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !u.Active() {
		return nil, ErrUserAccountDisabled
	}

	if !u.VerifyPassword(c.Password) {
		return nil, ErrInvalidCredentials
	}

	if u.TOTPEnabled {
		if c.Code == "" {
			return nil, ErrTOTPRequired
		}

		if !ValidateTOTP(c.Code, u.TOTPSecret) {
			return nil, ErrInvalidTOTPCode
		}
	}

	if err = user.RecordLogin(p.db, u); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return u, nil
}

// ChangePassword changes a user's password after checking the old one.
func (p *LocalProvider) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	u, err := user.Get(p.db, userID)
	if err != nil {
		return err
	}

	if !u.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	return user.SetPassword(p.db, userID, newPassword)
}

// ResetPassword resets a user's password (admin function).
func (p *LocalProvider) ResetPassword(userID uint64, newPassword string) error {
	return user.SetPassword(p.db, userID, newPassword)
}
