// Package config loads server settings from the environment and an optional
// dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/guarzo/splitwise-mcp/common"
)

// DefaultEnvFile is read when present; a missing default file is not an error.
const DefaultEnvFile = ".env"

type Config struct {
	APIKey           string `env:"SPLITWISE_API_KEY"`
	OAuthAccessToken string `env:"SPLITWISE_OAUTH_ACCESS_TOKEN"`
	ClientID         string `env:"SPLITWISE_CLIENT_ID"`
	ClientSecret     string `env:"SPLITWISE_CLIENT_SECRET"`
	RefreshToken     string `env:"SPLITWISE_REFRESH_TOKEN"`

	BaseURL string `env:"SPLITWISE_BASE_URL" envDefault:"https://secure.splitwise.com/api/v3.0/"`

	// durations are whole seconds
	CacheTTLSeconds         int `env:"SPLITWISE_CACHE_TTL" envDefault:"86400"`
	ResolverCacheTTLSeconds int `env:"SPLITWISE_RESOLVER_CACHE_TTL" envDefault:"300"`
	HTTPTimeoutSeconds      int `env:"SPLITWISE_HTTP_TIMEOUT" envDefault:"30"`

	MatchThreshold int `env:"SPLITWISE_MATCH_THRESHOLD" envDefault:"70"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads envFile into the process environment (existing variables win),
// parses the configuration and validates it.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !(envFile == DefaultEnvFile && errors.Is(err, fs.ErrNotExist)) {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}
	cfg, err := parse(nil)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse reads environment, or the process environment when it is nil.
func parse(environment map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environment})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks credentials and ranges.
func (c *Config) Validate() error {
	if c.AccessToken() == "" && !c.canRefresh() {
		return errors.New("set SPLITWISE_API_KEY or SPLITWISE_OAUTH_ACCESS_TOKEN (or SPLITWISE_CLIENT_ID, SPLITWISE_CLIENT_SECRET and SPLITWISE_REFRESH_TOKEN)")
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 100 {
		return fmt.Errorf("SPLITWISE_MATCH_THRESHOLD must be between 0 and 100, got %d", c.MatchThreshold)
	}
	if c.CacheTTLSeconds < 0 || c.ResolverCacheTTLSeconds < 0 {
		return errors.New("cache TTLs must not be negative")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("SPLITWISE_HTTP_TIMEOUT must be positive, got %d", c.HTTPTimeoutSeconds)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// AccessToken is the API key, falling back to the OAuth access token.
func (c *Config) AccessToken() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return c.OAuthAccessToken
}

func (c *Config) canRefresh() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Credentials returns what the auth layer needs.
func (c *Config) Credentials() common.Credentials {
	return common.Credentials{
		AccessToken:  c.AccessToken(),
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RefreshToken: c.RefreshToken,
	}
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) ResolverCacheTTL() time.Duration {
	return time.Duration(c.ResolverCacheTTLSeconds) * time.Second
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
