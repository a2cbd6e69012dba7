package config

import (
	"time"

	"github.com/headless-tools/headless-tools-cms/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration // lifetime of a login session
	CookieName string        // name of the session cookie
}

// RateLimit settings for the per-IP request limiter.
type RateLimit struct {
	Enabled      bool
	Max          int           // requests per window and IP
	Window       time.Duration // length of the window
	SkipPrefixes []string      // request paths starting with one of these are never limited
}

// Config overall data structure.
type Config struct {
	DevMode     bool   // enable dev mode for development
	Environment string // production, staging or development
	Title       string
	Version     string
	DB          DB
	Log         logger.Log
	Webserver   Webserver
	Analytics   Analytics
	Admin       Admin
	TOTP        TOTP
}

// Webserver implement webserver settings.
type Webserver struct {
	Port         int       // listening port for the webserver
	ShutDownTime int       // wait time for shutdown in seconds
	URL          string    // public base url of the api
	FrontendURL  string    // url of the frontend, used in the api index and CORS
	Secret       string    // server secret, used to sign TOTP enrolment and cookies
	CORSOrigins  []string  // allowed CORS origins
	BodyLimit    int       // max request body size in bytes
	HealthURI    string    // health check uri, excluded from access logs when Log.DisableCheckAlive is set
	Session      Session   // session settings
	RateLimit    RateLimit // rate limiting
}

// Analytics holds the settings of the analytics tracking API and the retention sweep.
type Analytics struct {
	Enabled         bool
	RealTimeEnabled bool
	// RetentionDays is the age in days after which events are deleted. 0 disables the sweep.
	RetentionDays int
	SweepInterval time.Duration

	StatsLimit        int // max events fetched by /analytics/stats
	RealtimeLimit     int // max events fetched by /analytics/realtime
	UserBehaviorLimit int // max events fetched by /analytics/user-behavior
	ToolUsageLimit    int // max events fetched by /analytics/tools/usage
}

// Admin is the account seeded into an empty users table.
type Admin struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// TOTP holds the two-factor authentication settings.
type TOTP struct {
	Issuer string
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return !c.DevMode && c.Environment == EnvProduction
}
