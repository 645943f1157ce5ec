// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Production    EnvCredentials      `yaml:"production"`
	Sandbox       EnvCredentials      `yaml:"sandbox"`
	Migration     MigrationConfig     `yaml:"migration"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Logging       LoggingConfig       `yaml:"logging"`
	TokenDir      string              `yaml:"token_dir"`
}

// EnvCredentials holds the OAuth application credentials for one eBay
// environment. Scopes is a comma-separated list in the file; use ScopeList
// for the parsed form.
type EnvCredentials struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	RefreshToken string `yaml:"refresh_token"`
	Scopes       string `yaml:"scopes"`
}

// ScopeList returns the configured OAuth scopes as a slice, dropping empty
// entries.
func (e *EnvCredentials) ScopeList() []string {
	var scopes []string
	for _, s := range strings.Split(e.Scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// MigrationConfig defines migration run behavior.
type MigrationConfig struct {
	PageSize       int           `yaml:"page_size"`
	InterItemDelay time.Duration `yaml:"inter_item_delay"`
	Marketplace    string        `yaml:"marketplace"`
	Schedule       time.Duration `yaml:"schedule"`
}

// RateLimitConfig defines eBay API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// MetricsConfig defines the health/metrics HTTP listener used in scheduled
// mode.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyMigrationDefaults(&cfg.Migration)
	applyRateLimitDefaults(&cfg.RateLimit)
	applyMetricsDefaults(&cfg.Metrics)
	applyLoggingDefaults(&cfg.Logging)

	if cfg.TokenDir == "" {
		cfg.TokenDir = "."
	}
}

func applyMigrationDefaults(m *MigrationConfig) {
	if m.PageSize == 0 {
		m.PageSize = 10
	}
	if m.InterItemDelay == 0 {
		m.InterItemDelay = time.Second
	}
	if m.Marketplace == "" {
		m.Marketplace = "EBAY_US"
	}
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applyMetricsDefaults(m *MetricsConfig) {
	if m.Addr == "" {
		m.Addr = ":8080"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateCredentials("production", &cfg.Production)...)
	errs = append(errs, validateCredentials("sandbox", &cfg.Sandbox)...)

	if cfg.Migration.PageSize < 0 {
		errs = append(errs, fmt.Errorf("migration.page_size must not be negative"))
	}
	if cfg.Migration.InterItemDelay < 0 {
		errs = append(errs, fmt.Errorf("migration.inter_item_delay must not be negative"))
	}
	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"),
		)
	}

	return errors.Join(errs...)
}

func validateCredentials(name string, c *EnvCredentials) []error {
	var errs []error

	if c.ClientID == "" {
		errs = append(errs, fmt.Errorf("%s.client_id is required", name))
	}
	if c.ClientSecret == "" {
		errs = append(errs, fmt.Errorf("%s.client_secret is required", name))
	}
	if c.RedirectURI == "" {
		errs = append(errs, fmt.Errorf("%s.redirect_uri is required", name))
	}
	if len(c.ScopeList()) == 0 {
		errs = append(errs, fmt.Errorf("%s.scopes is required", name))
	}

	return errs
}
