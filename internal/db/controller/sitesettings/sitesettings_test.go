package sitesettings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headless-tools/headless-tools-cms/internal/db/controller/setting"
	"github.com/headless-tools/headless-tools-cms/internal/db/dbtest"
)

func TestLoadDefaults(t *testing.T) {
	db := dbtest.Open(t)

	var s Settings
	require.NoError(t, s.Load(db))

	assert.Equal(t, "无头工具站", s.SiteInfo.SiteName)
	assert.True(t, s.Analytics.Umami.Enabled)
	assert.Equal(t, "/umami.js", s.Analytics.Umami.ScriptURL)
	assert.Equal(t, 587, s.EmailConfig.SMTP.Port)
	assert.Equal(t, "local", s.StorageConfig.Provider)
	assert.Equal(t, "us-east-1", s.StorageConfig.S3.Region)
	assert.Equal(t, 900000, s.SecurityConfig.RateLimiting.WindowMs)
	assert.Equal(t, []string{"*"}, s.SecurityConfig.CORS.AllowedOrigins)
	assert.True(t, s.Features.APIAccess)
	assert.False(t, s.Features.MaintenanceMode)
	assert.Equal(t, "1.0.0", s.SystemInfo.Version)
	assert.Nil(t, s.SystemInfo.LastUpdated)
}

func TestSaveStampsLastUpdated(t *testing.T) {
	db := dbtest.Open(t)

	s := Default()
	s.SiteInfo.SiteName = "Tools"
	s.EmailConfig.SMTP.Password = "secret"
	require.NoError(t, s.Save(db))

	var loaded Settings
	require.NoError(t, loaded.Load(db))

	assert.Equal(t, "Tools", loaded.SiteInfo.SiteName)
	assert.Equal(t, "secret", loaded.EmailConfig.SMTP.Password)
	require.NotNil(t, loaded.SystemInfo.LastUpdated)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	db := dbtest.Open(t)

	_, err := setting.Set(db, SettingKey, []byte(`{"siteInfo":{"siteName":"Partial"}}`))
	require.NoError(t, err)

	var s Settings
	require.NoError(t, s.Load(db))

	assert.Equal(t, "Partial", s.SiteInfo.SiteName)
	assert.Equal(t, "smtp.gmail.com", s.EmailConfig.SMTP.Host)
}

func TestRedactAndKeepSecrets(t *testing.T) {
	s := Default()
	s.EmailConfig.SMTP.Password = "smtp"
	s.StorageConfig.S3.SecretAccessKey = "s3"

	r := s.Redact()
	assert.Equal(t, Redacted, r.EmailConfig.SMTP.Password)
	assert.Equal(t, Redacted, r.StorageConfig.S3.SecretAccessKey)
	assert.Empty(t, r.StorageConfig.Cloudinary.APISecret, "empty secrets stay empty")
	assert.Equal(t, "smtp", s.EmailConfig.SMTP.Password, "original untouched")

	r.KeepSecrets(s)
	assert.Equal(t, "smtp", r.EmailConfig.SMTP.Password)
	assert.Equal(t, "s3", r.StorageConfig.S3.SecretAccessKey)
}
