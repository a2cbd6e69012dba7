package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// Role is the access role of a user.
type Role string

const (
	// RoleAdmin can manage everything.
	RoleAdmin Role = "admin"
	// RoleEditor can manage tools and read analytics.
	RoleEditor Role = "editor"
	// RoleUser is a registered site user.
	RoleUser Role = "user"
)

// Theme of the user interface preference.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// UserSocial holds the social media handles of a user.
type UserSocial struct {
	Twitter  string `gorm:"size:255" json:"twitter,omitempty"`
	Github   string `gorm:"size:255" json:"github,omitempty"`
	Linkedin string `gorm:"size:255" json:"linkedin,omitempty"`
}

// UserPreferences are per user settings.
type UserPreferences struct {
	Theme              Theme  `gorm:"type:varchar(10);not null;default:'auto'" json:"theme"              validate:"omitempty,oneof=light dark auto"`
	Language           string `gorm:"size:5;not null;default:'zh'"             json:"language"           validate:"omitempty,oneof=zh en"`
	EmailNotifications bool   `gorm:"not null;default:true"                    json:"emailNotifications"`
	MarketingEmails    bool   `gorm:"not null;default:false"                   json:"marketingEmails"`
}

// User represents an account of the cms.
type User struct {
	ID       uint64 `gorm:"primaryKey"                  json:"id"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email" validate:"required,email,max=255"`
	Password string `gorm:"size:255;not null"           json:"-"`

	FirstName string `gorm:"size:100;not null" json:"firstName" validate:"required,max=100"`
	LastName  string `gorm:"size:100;not null" json:"lastName"  validate:"required,max=100"`
	Role      Role   `gorm:"type:varchar(10);not null;default:'user';index" json:"role" validate:"omitempty,oneof=admin editor user"`

	AvatarID *uint64 `json:"avatar,omitempty"`
	Avatar   *Media  `gorm:"foreignKey:AvatarID;constraint:OnDelete:SET NULL" json:"-"`

	Bio     string `gorm:"size:500"  json:"bio,omitempty"     validate:"max=500"`
	Company string `gorm:"size:255"  json:"company,omitempty" validate:"max=255"`
	Website string `gorm:"size:2048" json:"website,omitempty" validate:"omitempty,httpurl"`

	SocialMedia UserSocial      `gorm:"embedded;embeddedPrefix:social_" json:"socialMedia"`
	Preferences UserPreferences `gorm:"embedded;embeddedPrefix:pref_"   json:"preferences"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	// IsActive is a pointer so an explicit false survives gorm's zero value handling on create.
	IsActive *bool `gorm:"not null;default:true" json:"isActive"`

	TOTPSecret  string `gorm:"column:totp_secret;size:64" json:"-"`
	TOTPEnabled bool   `gorm:"column:totp_enabled;not null;default:false" json:"totpEnabled"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the account may log in. Unset means active.
func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword compares password with the stored hash in constant time.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
