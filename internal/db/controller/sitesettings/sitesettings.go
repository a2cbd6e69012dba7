// Package sitesettings stores the site wide settings global as one JSON document.
package sitesettings

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/setting"
)

// SettingKey is the settings table key of the document.
const SettingKey = "site_settings"

// Redacted replaces secrets in public reads.
const Redacted = "********"

type (
	// SiteInfo describes the site.
	SiteInfo struct {
		SiteName        string   `json:"siteName"        validate:"required,max=100"`
		SiteDescription string   `json:"siteDescription" validate:"max=500"`
		SiteURL         string   `json:"siteUrl"         validate:"omitempty,httpurl"`
		Keywords        []string `json:"keywords"`
	}

	// SocialLink is a social media profile of the site.
	SocialLink struct {
		Platform string `json:"platform" validate:"required,oneof=github twitter linkedin weibo wechat qq"`
		URL      string `json:"url"      validate:"omitempty,httpurl"`
		Username string `json:"username"`
	}

	// ContactInfo of the site operator.
	ContactInfo struct {
		Email       string       `json:"email"   validate:"omitempty,email"`
		Phone       string       `json:"phone"`
		Address     string       `json:"address"`
		SocialMedia []SocialLink `json:"socialMedia" validate:"dive"`
	}

	// Umami tracking configuration.
	Umami struct {
		Enabled         bool     `json:"enabled"`
		WebsiteID       string   `json:"websiteId"`
		ScriptURL       string   `json:"scriptUrl"`
		TrackingDomains []string `json:"trackingDomains"`
	}

	// GoogleAnalytics tracking configuration.
	GoogleAnalytics struct {
		Enabled    bool   `json:"enabled"`
		TrackingID string `json:"trackingId"`
	}

	// Analytics groups the external tracking integrations.
	Analytics struct {
		Umami           Umami           `json:"umami"`
		GoogleAnalytics GoogleAnalytics `json:"googleAnalytics"`
	}

	// SMTP server settings.
	SMTP struct {
		Host     string `json:"host"`
		Port     int    `json:"port"   validate:"min=0,max=65535"`
		Secure   bool   `json:"secure"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	// EmailConfig of outgoing mail.
	EmailConfig struct {
		SMTP      SMTP   `json:"smtp"`
		FromEmail string `json:"fromEmail" validate:"omitempty,email"`
		FromName  string `json:"fromName"`
		ReplyTo   string `json:"replyTo"   validate:"omitempty,email"`
	}

	// S3 storage settings.
	S3 struct {
		Bucket          string `json:"bucket"`
		Region          string `json:"region"`
		AccessKeyID     string `json:"accessKeyId"`
		SecretAccessKey string `json:"secretAccessKey"`
	}

	// Cloudinary storage settings.
	Cloudinary struct {
		CloudName string `json:"cloudName"`
		APIKey    string `json:"apiKey"`
		APISecret string `json:"apiSecret"`
	}

	// StorageConfig selects where media binaries live.
	StorageConfig struct {
		Provider   string     `json:"provider" validate:"oneof=local s3 oss cos cloudinary"`
		S3         S3         `json:"s3"`
		Cloudinary Cloudinary `json:"cloudinary"`
	}

	// RateLimiting settings.
	RateLimiting struct {
		Enabled     bool `json:"enabled"`
		WindowMs    int  `json:"windowMs"    validate:"min=0"`
		MaxRequests int  `json:"maxRequests" validate:"min=0"`
	}

	// CORS settings.
	CORS struct {
		AllowedOrigins   []string `json:"allowedOrigins"`
		AllowCredentials bool     `json:"allowCredentials"`
	}

	// SecurityConfig groups rate limiting and cors.
	SecurityConfig struct {
		RateLimiting RateLimiting `json:"rateLimiting"`
		CORS         CORS         `json:"cors"`
	}

	// Features toggles site features.
	Features struct {
		UserRegistration   bool   `json:"userRegistration"`
		GuestAccess        bool   `json:"guestAccess"`
		FileUpload         bool   `json:"fileUpload"`
		APIAccess          bool   `json:"apiAccess"`
		MaintenanceMode    bool   `json:"maintenanceMode"`
		MaintenanceMessage string `json:"maintenanceMessage"`
	}

	// SystemInfo is maintained by the server.
	SystemInfo struct {
		Version     string     `json:"version"`
		LastUpdated *time.Time `json:"lastUpdated,omitempty"`
		Environment string     `json:"environment" validate:"omitempty,oneof=development staging production"`
	}

	// Settings is the site settings global.
	Settings struct {
		SiteInfo       SiteInfo       `json:"siteInfo"`
		ContactInfo    ContactInfo    `json:"contactInfo"`
		Analytics      Analytics      `json:"analytics"`
		EmailConfig    EmailConfig    `json:"emailConfig"`
		StorageConfig  StorageConfig  `json:"storageConfig"`
		SecurityConfig SecurityConfig `json:"securityConfig"`
		Features       Features       `json:"features"`
		SystemInfo     SystemInfo     `json:"systemInfo"`
	}
)

// Default returns the settings used before the first save.
func Default() Settings {
	return Settings{
		SiteInfo: SiteInfo{SiteName: "无头工具站", Keywords: []string{}},
		Analytics: Analytics{
			Umami: Umami{Enabled: true, ScriptURL: "/umami.js", TrackingDomains: []string{}},
		},
		EmailConfig: EmailConfig{
			SMTP: SMTP{Host: "smtp.gmail.com", Port: 587}, //nolint:mnd
		},
		StorageConfig: StorageConfig{
			Provider: "local",
			S3:       S3{Region: "us-east-1"},
		},
		SecurityConfig: SecurityConfig{
			RateLimiting: RateLimiting{Enabled: true, WindowMs: 900000, MaxRequests: 100}, //nolint:mnd
			CORS:         CORS{AllowedOrigins: []string{"*"}, AllowCredentials: true},
		},
		Features: Features{
			UserRegistration: true,
			GuestAccess:      true,
			FileUpload:       true,
			APIAccess:        true,
		},
		SystemInfo: SystemInfo{Version: "1.0.0", Environment: "production"},
	}
}

// Load reads the settings. A missing document yields the defaults.
// Stored values are decoded over the defaults, so fields added later keep their default.
func (s *Settings) Load(db *gorm.DB) error {
	*s = Default()

	row, err := setting.Get(db, SettingKey)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	return json.Unmarshal(row.Value, s)
}

// Save stores the settings and stamps SystemInfo.LastUpdated.
func (s *Settings) Save(db *gorm.DB) error {
	now := time.Now().UTC()
	s.SystemInfo.LastUpdated = &now

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = setting.Set(db, SettingKey, data)

	return err
}

// Redact returns a copy without secrets.
func (s Settings) Redact() Settings {
	mask := func(v string) string {
		if v == "" {
			return ""
		}

		return Redacted
	}

	s.EmailConfig.SMTP.Password = mask(s.EmailConfig.SMTP.Password)
	s.StorageConfig.S3.SecretAccessKey = mask(s.StorageConfig.S3.SecretAccessKey)
	s.StorageConfig.Cloudinary.APISecret = mask(s.StorageConfig.Cloudinary.APISecret)

	return s
}

// KeepSecrets copies secrets from prev where the update carries the redaction marker,
// so a settings document read publicly can be saved back without wiping them.
func (s *Settings) KeepSecrets(prev Settings) {
	if s.EmailConfig.SMTP.Password == Redacted {
		s.EmailConfig.SMTP.Password = prev.EmailConfig.SMTP.Password
	}

	if s.StorageConfig.S3.SecretAccessKey == Redacted {
		s.StorageConfig.S3.SecretAccessKey = prev.StorageConfig.S3.SecretAccessKey
	}

	if s.StorageConfig.Cloudinary.APISecret == Redacted {
		s.StorageConfig.Cloudinary.APISecret = prev.StorageConfig.Cloudinary.APISecret
	}
}
