package config

import (
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pubctl/internal/audit"
	"pubctl/internal/notification"
)

// Example YAML configuration (pubctl.yaml):
//
// API_URL: https://api.pubctl.dev/v2
// LEGACY_API_URL: https://api.pubctl.dev/legacy
// LEGACY_API: false
// ACCESS_TOKEN: ${PUBCTL_TOKEN}
// REQUEST_TIMEOUT: 30s
// LOG_LEVEL: info
// AUDIT_ENABLED: true
// AUDIT_DB: /var/lib/pubctl/audit.db
// AUDIT_MAX_AGE: 2160h
// AUDIT_MAX_RECORDS: 1000
// notifications:
//   - type: webhook
//     endpoint: https://hooks.example.com/releases
//     token: ${HOOK_TOKEN}
//     on_set: true
//     on_rollback: true
//   - type: slack
//     endpoint: https://hooks.slack.com/services/XXX
//     channel: "#releases"
//     on_rollback: true
//
// Every key can also be set through the environment with a PUBCTL_ prefix,
// e.g. PUBCTL_LEGACY_API=true.

const (
	DefaultAPIURL       = "https://api.pubctl.dev/v2"
	DefaultLegacyAPIURL = "https://api.pubctl.dev/legacy"
	envPrefix           = "PUBCTL"
)

// Config is the top-level configuration struct for the application
type Config struct {
	APIURL         string                            `mapstructure:"API_URL"`
	LegacyAPIURL   string                            `mapstructure:"LEGACY_API_URL"`
	LegacyAPI      bool                              `mapstructure:"LEGACY_API"`
	AccessToken    string                            `mapstructure:"ACCESS_TOKEN"`
	SessionSecret  string                            `mapstructure:"SESSION_SECRET"`
	RequestTimeout string                            `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string                            `mapstructure:"LOG_LEVEL"`
	Verbose        bool                              `mapstructure:"VERBOSE"`
	AuditEnabled   bool                              `mapstructure:"AUDIT_ENABLED"`
	AuditDB        string                            `mapstructure:"AUDIT_DB"`
	AuditMaxAge    string                            `mapstructure:"AUDIT_MAX_AGE"`
	AuditMaxRecs   int                               `mapstructure:"AUDIT_MAX_RECORDS"`
	Notifications  []notification.NotificationConfig `mapstructure:"notifications"`
}

// Timeout returns RequestTimeout as a duration. Validate guarantees it parses.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0
	}
	return d
}

// AuditRetention returns the audit log retention. Validate guarantees the age parses.
func (c *Config) AuditRetention() audit.RetentionConfig {
	age, _ := time.ParseDuration(c.AuditMaxAge)
	return audit.RetentionConfig{MaxAge: age, MaxRecordsPerProject: c.AuditMaxRecs}
}

// flagKeys maps command-line flags onto config keys
var flagKeys = map[string]string{
	"api-url":   "API_URL",
	"legacy":    "LEGACY_API",
	"verbose":   "VERBOSE",
	"log-level": "LOG_LEVEL",
}

var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// ValidateConfig checks URLs, the timeout and the notification targets
func ValidateConfig(c *Config) error {
	if c == nil {
		return nil
	}
	for name, raw := range map[string]string{"API_URL": c.APIURL, "LEGACY_API_URL": c.LegacyAPIURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid %s %q: must be an http(s) URL", name, raw)
		}
	}
	if d, err := time.ParseDuration(c.RequestTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid REQUEST_TIMEOUT %q: must be a positive duration (e.g. 30s)", c.RequestTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q: must be debug, info, warn or error", c.LogLevel)
	}
	if d, err := time.ParseDuration(c.AuditMaxAge); err != nil || d < 0 {
		return fmt.Errorf("invalid AUDIT_MAX_AGE %q: must be a duration, 0 keeps everything", c.AuditMaxAge)
	}
	if c.AuditMaxRecs < 0 {
		return fmt.Errorf("invalid AUDIT_MAX_RECORDS %d: must not be negative", c.AuditMaxRecs)
	}
	for i, n := range c.Notifications {
		if err := n.Validate(); err != nil {
			return fmt.Errorf("notifications[%d]: %w", i, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from file, env, and flags (in that order of precedence)
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	cfgOnce.Do(func() {
		v := viper.New()

		// Set config file if provided
		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("pubctl")
			v.AddConfigPath(".")
			v.AddConfigPath("/etc/pubctl/")
		}
		v.SetConfigType("yaml")

		v.SetEnvPrefix(envPrefix)
		v.AutomaticEnv()

		if flags != nil {
			for flag, key := range flagKeys {
				if f := flags.Lookup(flag); f != nil {
					_ = v.BindPFlag(key, f)
				}
			}
		}

		// Defaults also register every key so AutomaticEnv applies on Unmarshal
		v.SetDefault("API_URL", DefaultAPIURL)
		v.SetDefault("LEGACY_API_URL", DefaultLegacyAPIURL)
		v.SetDefault("LEGACY_API", false)
		v.SetDefault("ACCESS_TOKEN", "")
		v.SetDefault("SESSION_SECRET", "")
		v.SetDefault("REQUEST_TIMEOUT", "30s")
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("VERBOSE", false)
		v.SetDefault("AUDIT_ENABLED", false)
		v.SetDefault("AUDIT_DB", "")
		v.SetDefault("AUDIT_MAX_AGE", "2160h")
		v.SetDefault("AUDIT_MAX_RECORDS", 1000)

		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || configPath != "" {
				cfgErr = fmt.Errorf("failed to read config: %w", err)
				return
			}
		}

		var c Config
		if err := v.Unmarshal(&c); err != nil {
			cfgErr = fmt.Errorf("failed to unmarshal config: %w", err)
			return
		}

		// Expand environment variables in credentials
		c.AccessToken = os.ExpandEnv(c.AccessToken)
		c.SessionSecret = os.ExpandEnv(c.SessionSecret)
		c.AuditDB = os.ExpandEnv(c.AuditDB)
		for i := range c.Notifications {
			c.Notifications[i].Endpoint = os.ExpandEnv(c.Notifications[i].Endpoint)
			c.Notifications[i].Token = os.ExpandEnv(c.Notifications[i].Token)
		}
		if c.Verbose {
			c.LogLevel = "debug"
		}

		if err := ValidateConfig(&c); err != nil {
			cfgErr = fmt.Errorf("invalid config: %w", err)
			return
		}
		cfg = &c
	})
	return cfg, cfgErr
}

// Reset discards the loaded config so the next LoadConfig reads it again
func Reset() {
	cfg = nil
	cfgErr = nil
	cfgOnce = sync.Once{}
}

// GetConfig returns the loaded config singleton
func GetConfig() *Config {
	if cfg == nil {
		panic("config not loaded: call LoadConfig first")
	}
	return cfg
}
