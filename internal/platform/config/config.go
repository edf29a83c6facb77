package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/martinmanurung/cinecatalog/internal/platform/ratelimit"
)

// Config is the root of the service configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Auth       AuthConfig       `mapstructure:"auth"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	APIKey string       `mapstructure:"api_key"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Users  []UserConfig `mapstructure:"users"`
}

type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	// Empty means issued tokens never expire.
	AccessTokenExpiry string `mapstructure:"access_token_expiry"`
}

// UserConfig declares a login account. Either Password or PasswordHash
// (bcrypt) must be set.
type UserConfig struct {
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	PasswordHash string   `mapstructure:"password_hash"`
	Roles        []string `mapstructure:"roles"`
}

type RateLimitConfig struct {
	Default    string `mapstructure:"default"`
	Login      string `mapstructure:"login"`
	StorageURI string `mapstructure:"storage_uri"`
}

type EnrichmentConfig struct {
	APIKey              string  `mapstructure:"api_key"`
	BaseURL             string  `mapstructure:"base_url"`
	MaxConcurrency      int     `mapstructure:"max_concurrency"`
	MaxConcurrencyLimit int     `mapstructure:"max_concurrency_limit"`
	RequestTimeout      string  `mapstructure:"request_timeout"`
	RequestsPerSecond   float64 `mapstructure:"requests_per_second"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Validate checks required secrets and that every quota and duration parses.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.APIKey) == "" {
		errs = append(errs, errors.New("auth.api_key is required"))
	}
	if strings.TrimSpace(c.Auth.JWT.SecretKey) == "" {
		errs = append(errs, errors.New("auth.jwt.secret_key is required"))
	}
	if _, err := c.Auth.JWT.Expiry(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RateLimit.DefaultQuota(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RateLimit.LoginQuota(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Enrichment.Timeout(); err != nil {
		errs = append(errs, err)
	}
	for i, u := range c.Auth.Users {
		if strings.TrimSpace(u.Username) == "" {
			errs = append(errs, fmt.Errorf("auth.users[%d].username is required", i))
		}
	}
	return errors.Join(errs...)
}

func (c JWTConfig) Expiry() (time.Duration, error) {
	if strings.TrimSpace(c.AccessTokenExpiry) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.AccessTokenExpiry)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("auth.jwt.access_token_expiry: invalid duration %q", c.AccessTokenExpiry)
	}
	return d, nil
}

func (c RateLimitConfig) DefaultQuota() (ratelimit.Quota, error) {
	q, err := ratelimit.ParseQuota(c.Default)
	if err != nil {
		return q, fmt.Errorf("ratelimit.default: %w", err)
	}
	return q, nil
}

func (c RateLimitConfig) LoginQuota() (ratelimit.Quota, error) {
	q, err := ratelimit.ParseQuota(c.Login)
	if err != nil {
		return q, fmt.Errorf("ratelimit.login: %w", err)
	}
	return q, nil
}

func (c EnrichmentConfig) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.RequestTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("enrichment.request_timeout: invalid duration %q", c.RequestTimeout)
	}
	return d, nil
}

// CatalogPath resolves a leading "~" to the user's home directory.
func (c CatalogConfig) CatalogPath() (string, error) {
	p := strings.TrimSpace(c.Path)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p, nil
}
