// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port             string
	DBPath           string
	PhoneHashSalt    string
	ResourceDataPath string
	ZipBoundaryPath  string
	SessionTTL       time.Duration
	GreetingMediaURL string
	Admin            AdminConfig
	Twilio           TwilioConfig
}

// AdminConfig gates the alert broadcast endpoint. Empty credentials disable
// the admin routes entirely.
type AdminConfig struct {
	Username string
	Password string
}

// TwilioConfig configures the outbound SMS transport. Empty credentials fall
// back to a log-only transport, which is what you want in development.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBPath:           getEnv("DB_PATH", "./data/chatbot.db"),
		PhoneHashSalt:    getEnv("FIXED_SALT", ""),
		ResourceDataPath: getEnv("RESOURCE_DATA_PATH", "./data/resources_data.csv"),
		ZipBoundaryPath:  getEnv("ZIP_BOUNDARY_PATH", "./data/zipcodes.geojson"),
		SessionTTL:       getEnvDuration("SESSION_TTL", 30*time.Minute),
		GreetingMediaURL: getEnv("GREETING_MEDIA_URL", ""),
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			From:       getEnv("TWILIO_FROM", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.PhoneHashSalt == "" {
		return fmt.Errorf("FIXED_SALT cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.Admin.Username != "" && c.Admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD cannot be empty when ADMIN_USERNAME is set")
	}
	return nil
}

// AdminEnabled returns true when admin credentials are configured.
func (c *Config) AdminEnabled() bool {
	return c.Admin.Username != "" && c.Admin.Password != ""
}

// TwilioEnabled returns true when outbound Twilio credentials are configured.
func (c *Config) TwilioEnabled() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.From != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
		return d
	}
	// Plain integers are treated as minutes.
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return time.Duration(n) * time.Minute
	}
	return fallback
}
