package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Bounds of the user-facing dashboard settings.
const (
	MinLookbackHours = 1
	MaxLookbackHours = 168
	MinMaxResults    = 10
	MaxMaxResults    = 1000
)

// Config is the root configuration of the dashboard server.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	TraceStore TraceStoreConfig `mapstructure:"trace_store"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
}

// ServerConfig defines the listen address of the REST surface.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// TraceStoreConfig identifies the trace store workspace and the auth context
// used to acquire bearer tokens for it. The client secret is read only from
// the environment variable named by SecretEnv.
type TraceStoreConfig struct {
	APIURL       string `mapstructure:"api_url"`
	AppID        string `mapstructure:"app_id"`
	TokenURL     string `mapstructure:"token_url"`
	TenantID     string `mapstructure:"tenant_id"`
	ClientID     string `mapstructure:"client_id"`
	SecretEnv    string `mapstructure:"secret_env"`
	ClientSecret string `mapstructure:"-"`
	Scope        string `mapstructure:"scope"`
}

// DashboardConfig carries the session-scoped query settings: lookback window
// and per-query result cap, plus the TTL of the memoized tree cache.
type DashboardConfig struct {
	LookbackHours int           `mapstructure:"lookback_hours"`
	MaxResults    int           `mapstructure:"max_results"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// ResolvedTokenURL substitutes the tenant id into the token endpoint when no
// explicit token URL is configured.
func (c TraceStoreConfig) ResolvedTokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", c.TenantID)
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8082)
	v.SetDefault("trace_store.api_url", "https://api.applicationinsights.io")
	v.SetDefault("trace_store.secret_env", "TRACEDASH_CLIENT_SECRET")
	v.SetDefault("trace_store.scope", "https://api.applicationinsights.io/.default")
	v.SetDefault("dashboard.lookback_hours", MaxLookbackHours)
	v.SetDefault("dashboard.max_results", 50)
	v.SetDefault("dashboard.cache_ttl", time.Minute)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("TRACEDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.TraceStore.ClientSecret = os.Getenv(cfg.TraceStore.SecretEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.TraceStore.AppID == "" {
		return fmt.Errorf("trace_store.app_id is required")
	}
	if c.Dashboard.LookbackHours < MinLookbackHours || c.Dashboard.LookbackHours > MaxLookbackHours {
		return fmt.Errorf(
			"dashboard.lookback_hours must be between %d and %d, got %d",
			MinLookbackHours, MaxLookbackHours, c.Dashboard.LookbackHours,
		)
	}
	if c.Dashboard.MaxResults < MinMaxResults || c.Dashboard.MaxResults > MaxMaxResults {
		return fmt.Errorf(
			"dashboard.max_results must be between %d and %d, got %d",
			MinMaxResults, MaxMaxResults, c.Dashboard.MaxResults,
		)
	}
	return nil
}

// ClampHours bounds a requested lookback window to the allowed range,
// falling back to the configured default when the request carries none.
func (c *Config) ClampHours(hours int) int {
	if hours == 0 {
		return c.Dashboard.LookbackHours
	}
	if hours < MinLookbackHours {
		return MinLookbackHours
	}
	if hours > MaxLookbackHours {
		return MaxLookbackHours
	}
	return hours
}

// ClampLimit bounds a requested result cap to the allowed range, falling
// back to the configured default when the request carries none.
func (c *Config) ClampLimit(limit int) int {
	if limit == 0 {
		return c.Dashboard.MaxResults
	}
	if limit < MinMaxResults {
		return MinMaxResults
	}
	if limit > MaxMaxResults {
		return MaxMaxResults
	}
	return limit
}
