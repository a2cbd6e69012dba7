// Package config handles input from etc/main.toml and its environment overrides.
package config

import (
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvConfigJSON holds a JSON document merged over the TOML config.
	EnvConfigJSON = "HEADLESS_TOOLS_CMS_CONFIG_JSON"
	// EnvPrefix is the prefix of single-key env overrides, e.g. HTC_WEBSERVER_SECRET.
	EnvPrefix = "HTC"

	// EnvProduction hides error details from api clients.
	EnvProduction = "production"
	// EnvStaging is a pre-production deployment.
	EnvStaging = "staging"
	// EnvDevelopment is a local deployment.
	EnvDevelopment = "development"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(path + "main.toml")
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)
	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config json from env")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	t := toml.NewEncoder(&buffer)
	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	out, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err //nolint: wrapcheck
	}

	return string(out) + "\n", nil
}

// validate checks the settings the service cannot start without
// and fills defaults for the optional ones.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.Secret == "" {
		return errors.Wrap(ErrEmptySecret, invalidErrMessage)
	}

	switch c.DB.Engine {
	case "":
		c.DB.Engine = DBEngineSQLite
	case DBEngineMySQL, DBEnginePostgres, DBEngineSQLite:
	default:
		return errors.Wrap(ErrUnknownDBEngine, invalidErrMessage)
	}

	switch c.Environment {
	case "":
		c.Environment = EnvProduction
	case EnvProduction, EnvStaging, EnvDevelopment:
	default:
		return errors.Wrap(ErrUnknownEnvironment, invalidErrMessage)
	}

	setDefaults(c)

	return nil
}

func setDefaults(c *Config) { //nolint:cyclop
	if c.Title == "" {
		c.Title = "headless-tools-cms"
	}

	if c.Version == "" {
		c.Version = "2.0.0"
	}

	if c.DB.Engine == DBEngineSQLite && c.DB.Path == "" {
		c.DB.Path = "headless-tools-cms.db"
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Webserver.HealthURI == "" {
		c.Webserver.HealthURI = "/health"
	}

	if c.Webserver.BodyLimit == 0 {
		c.Webserver.BodyLimit = 4 * 1024 * 1024
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = 2 * time.Hour
	}

	if c.Webserver.Session.CookieName == "" {
		c.Webserver.Session.CookieName = "session"
	}

	if c.Webserver.RateLimit.Max == 0 {
		c.Webserver.RateLimit.Max = 1000
	}

	if c.Webserver.RateLimit.Window == 0 {
		c.Webserver.RateLimit.Window = 15 * time.Minute
	}

	if c.Analytics.SweepInterval == 0 {
		c.Analytics.SweepInterval = 24 * time.Hour
	}

	if c.Analytics.StatsLimit == 0 {
		c.Analytics.StatsLimit = 10000
	}

	if c.Analytics.RealtimeLimit == 0 {
		c.Analytics.RealtimeLimit = 500
	}

	if c.Analytics.UserBehaviorLimit == 0 {
		c.Analytics.UserBehaviorLimit = 1000
	}

	if c.Analytics.ToolUsageLimit == 0 {
		c.Analytics.ToolUsageLimit = 10000
	}

	if c.TOTP.Issuer == "" {
		c.TOTP.Issuer = "HeadlessTools"
	}
}
