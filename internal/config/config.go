package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"skillswap/internal/constants"
)

// MemoryStorage selects a session-scoped store that is discarded on exit.
const MemoryStorage = "memory"

type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
	Media   MediaConfig   `yaml:"media"`
}

type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 disables throttling
	Burst     int           `yaml:"burst"`
	UserAgent string        `yaml:"user_agent"`
}

type StorageConfig struct {
	Path      string `yaml:"path"` // sqlite file, or "memory"
	Namespace string `yaml:"namespace"`
}

type AuthConfig struct {
	// RefreshSkew renews an access token this long before its exp claim.
	RefreshSkew time.Duration `yaml:"refresh_skew"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

type MediaConfig struct {
	AvatarMaxBytes int64         `yaml:"avatar_max_bytes"`
	AvatarMaxEdge  int           `yaml:"avatar_max_edge"`
	SkillsCacheTTL time.Duration `yaml:"skills_cache_ttl"`
}

// Load reads the config file at path (skipped when path is empty), applies
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SKILLSWAP_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("SKILLSWAP_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SKILLSWAP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SKILLSWAP_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000/api/v1"
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.Timeout == 0 {
		c.API.Timeout = constants.DefaultRequestTimeout
	}
	if c.API.RateLimit > 0 && c.API.Burst == 0 {
		c.API.Burst = 1
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = "skillswap-cli"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultStoragePath()
	}
	if c.Storage.Namespace == "" {
		c.Storage.Namespace = constants.DefaultNamespace
	}
	if c.Auth.RefreshSkew == 0 {
		c.Auth.RefreshSkew = constants.DefaultRefreshSkew
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Media.AvatarMaxBytes == 0 {
		c.Media.AvatarMaxBytes = constants.DefaultAvatarMaxBytes
	}
	if c.Media.AvatarMaxEdge == 0 {
		c.Media.AvatarMaxEdge = constants.DefaultAvatarMaxEdge
	}
	if c.Media.SkillsCacheTTL == 0 {
		c.Media.SkillsCacheTTL = constants.DefaultSkillsCacheTTL
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be an http or https URL")
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url must include a host")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.Auth.RefreshSkew < 0 {
		return fmt.Errorf("auth.refresh_skew must not be negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text")
	}
	if strings.ContainsAny(c.Storage.Namespace, "%_ ") {
		return fmt.Errorf("storage.namespace must not contain '%%', '_' or spaces")
	}
	if c.Media.AvatarMaxBytes < 0 || c.Media.AvatarMaxEdge < 0 {
		return fmt.Errorf("media limits must not be negative")
	}
	return nil
}

// UsesMemoryStorage reports whether credentials are kept for this process only.
func (c *Config) UsesMemoryStorage() bool {
	return c.Storage.Path == MemoryStorage
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "./data/skillswap.db"
	}
	return filepath.Join(dir, "skillswap", "session.db")
}
