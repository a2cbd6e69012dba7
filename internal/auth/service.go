package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/user"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

// Service provides authentication and authorization functionality.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ActiveUser loads a user that may use the API. Unknown and disabled accounts are reported as errors.
func (s *Service) ActiveUser(userID uint64) (*models.User, error) {
	u, err := user.Get(s.db, userID)
	if err != nil {
		return nil, err
	}

	if !u.Active() {
		return nil, ErrUserAccountDisabled
	}

	return u, nil
}

// HasPermission checks if a user has a specific permission through the role of the account.
// Disabled and unknown users have no permissions.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	u, err := s.ActiveUser(userID)

	switch {
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, ErrUserAccountDisabled):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to load user: %w", err)
	}

	return RoleHasPermission(u.Role, permission), nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(userID uint64, permissions []string) (bool, error) {
	for _, perm := range permissions {
		has, err := s.HasPermission(userID, perm)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// GetUserPermissions retrieves all permissions of a user.
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	u, err := s.ActiveUser(userID)
	if err != nil {
		return nil, err
	}

	return RolePermissions(u.Role), nil
}

// CanAccessUser reports whether actor may read or edit the account with the given id: admins may
// access every account, everyone else only their own.
func CanAccessUser(actor *models.User, id uint64) bool {
	if actor == nil {
		return false
	}

	return actor.ID == id || RoleHasPermission(actor.Role, PermUsersManage)
}
