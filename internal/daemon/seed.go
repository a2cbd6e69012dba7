package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/user"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

// seed creates the configured admin account if the users table is empty.
func seed(cfg *config.Config, db *gorm.DB) error {
	count, err := user.Count(db)
	if err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}

	if count > 0 {
		return nil
	}

	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		log.Warn().Msg("users table is empty and no admin account is configured")

		return nil
	}

	admin := &models.User{
		Email:     cfg.Admin.Email,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
		Role:      models.RoleAdmin,
	}

	if admin.FirstName == "" {
		admin.FirstName = "Admin"
	}

	if admin.LastName == "" {
		admin.LastName = "User"
	}

	if err = user.Create(db, admin, cfg.Admin.Password); err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}

	log.Info().Str("email", admin.Email).Msg("admin account created")

	return nil
}
