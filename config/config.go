// Package config loads the ideaswipe server configuration: an optional YAML
// file, then environment overrides, then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration.
type Config struct {
	Port              string        `yaml:"port"`
	LogLevel          string        `yaml:"log_level"`
	DatabaseURL       string        `yaml:"database_url"`
	DatabaseAuthToken string        `yaml:"database_auth_token"`
	SessionSecret     string        `yaml:"session_secret"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	CookieDomain      string        `yaml:"cookie_domain"`
	PublicURL         string        `yaml:"public_url"`
	Google            GoogleConfig  `yaml:"google"`
	StoreTimeout      time.Duration `yaml:"store_timeout"`
	MCPEnabled        bool          `yaml:"mcp_enabled"`
	ObservabilityDB   string        `yaml:"observability_db"`
	RetentionDays     int           `yaml:"retention_days"`

	// TrustedProxies lists the CIDRs or IPs of reverse proxies whose
	// X-Forwarded-For header is believed. Empty: the header is ignored.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// GoogleConfig holds the OAuth client registration.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.defaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = env("PORT", c.Port)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)
	c.DatabaseURL = env("DATABASE_URL", c.DatabaseURL)
	c.DatabaseAuthToken = env("DATABASE_AUTH_TOKEN", c.DatabaseAuthToken)
	c.SessionSecret = env("SESSION_SECRET", c.SessionSecret)
	c.CookieDomain = env("COOKIE_DOMAIN", c.CookieDomain)
	c.PublicURL = env("PUBLIC_URL", c.PublicURL)
	c.Google.ClientID = env("GOOGLE_CLIENT_ID", c.Google.ClientID)
	c.Google.ClientSecret = env("GOOGLE_CLIENT_SECRET", c.Google.ClientSecret)
	c.Google.RedirectURL = env("GOOGLE_REDIRECT_URL", c.Google.RedirectURL)
	c.ObservabilityDB = env("OBSERVABILITY_DB", c.ObservabilityDB)

	var err error
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if c.SessionTTL, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: SESSION_TTL: %w", err)
		}
	}
	if v := os.Getenv("STORE_TIMEOUT"); v != "" {
		if c.StoreTimeout, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: STORE_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("MCP_ENABLED"); v != "" {
		if c.MCPEnabled, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("config: MCP_ENABLED: %w", err)
		}
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		c.TrustedProxies = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.TrustedProxies = append(c.TrustedProxies, p)
			}
		}
	}
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		if c.RetentionDays, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("config: RETENTION_DAYS: %w", err)
		}
	}
	return nil
}

func (c *Config) defaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/ideaswipe.db"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 24 * time.Hour
	}
	if c.PublicURL == "" {
		c.PublicURL = "http://localhost:" + c.Port
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
	if c.ObservabilityDB == "" {
		c.ObservabilityDB = "data/observability.db"
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 30
	}
}

// Validate reports missing credentials. All problems are returned joined.
func (c *Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("session_secret is required"))
	}
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		errs = append(errs, errors.New("google.client_id and google.client_secret are required"))
	}
	if c.Google.RedirectURL == "" {
		errs = append(errs, errors.New("google.redirect_url is required"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
