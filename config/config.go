// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jayy-77/openclaw/internal/core"
	"github.com/jayy-77/openclaw/internal/env"
)

// Config holds the application configuration
type Config struct {
	// AgentDir overrides the directory models.json is written to.
	// Empty means resolve it from OPENCLAW_AGENT_DIR, PI_CODING_AGENT_DIR or HOME.
	AgentDir string `mapstructure:"agent_dir"`

	// Models is the explicit provider config merged with environment-derived providers.
	// Provider keys are lowercased by viper.
	Models core.ModelsSection `mapstructure:"models"`

	Store     StoreConfig     `mapstructure:"store"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// StoreConfig selects where models.json is persisted
type StoreConfig struct {
	// Type specifies the backend: "file" (default) or "redis"
	Type string `mapstructure:"type"`

	// Redis configuration (only used when Type is "redis")
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379")
	URL string `mapstructure:"url"`

	// Key is the Redis key holding the document (default: "openclaw:models.json")
	Key string `mapstructure:"key"`

	// TTL is the time-to-live in seconds; 0 keeps the document forever
	TTL int `mapstructure:"ttl"`
}

// DiscoveryConfig controls probing of local model servers
type DiscoveryConfig struct {
	// Enabled turns on Ollama model discovery. Default: false
	Enabled bool `mapstructure:"enabled"`

	// OllamaURL is the server queried for /api/tags
	OllamaURL string `mapstructure:"ollama_url"`

	// Timeout bounds each discovery request
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      string `mapstructure:"port"`
	MasterKey string `mapstructure:"master_key"` // Optional: Master key for authentication
}

// MetricsConfig holds observability configuration for Prometheus metrics
type MetricsConfig struct {
	// Enabled controls whether Prometheus metrics are exposed
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Endpoint is the HTTP path where metrics are exposed
	// Default: "/metrics"
	Endpoint string `mapstructure:"endpoint"`
}

// OpenClawConfig returns the part of the config the resolver consumes
func (c *Config) OpenClawConfig() core.OpenClawConfig {
	models := c.Models
	return core.OpenClawConfig{Models: &models}
}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// ConfigFile is an explicit config path; empty searches ./config/config.yaml and ./config.yaml
	ConfigFile string

	// EnvFile is overlaid on the environment; default ".env", missing file is fine
	EnvFile string

	// Env is the base environment; nil snapshots the process
	Env env.Snapshot
}

// Load reads configuration from file and environment.
// It returns the environment snapshot it used so callers resolve providers from the same view.
func Load(opts LoadOptions) (*Config, env.Snapshot, error) {
	snap := opts.Env
	if snap == nil {
		snap = env.FromOS()
	}
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	snap, err := snap.WithDotenv(envFile)
	if err != nil {
		return nil, nil, err
	}

	v := viper.New()
	v.SetDefault("models.mode", core.ModeMerge)
	v.SetDefault("store.type", "file")
	v.SetDefault("store.redis.key", "openclaw:models.json")
	v.SetDefault("store.redis.ttl", 0)
	v.SetDefault("discovery.enabled", false)
	v.SetDefault("discovery.ollama_url", "http://127.0.0.1:11434")
	v.SetDefault("discovery.timeout", "5s")
	v.SetDefault("server.port", "8080")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.endpoint", "/metrics")

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := applyEnvOverrides(&cfg, snap); err != nil {
		return nil, nil, err
	}
	cfg = expandEnvVars(cfg, snap)

	return &cfg, snap, nil
}

// applyEnvOverrides lets environment variables win over the config file
func applyEnvOverrides(cfg *Config, snap env.Snapshot) error {
	if v, ok := snap.Lookup("OPENCLAW_MODELS_STORE"); ok {
		cfg.Store.Type = v
	}
	if v, ok := snap.Lookup("OPENCLAW_REDIS_URL"); ok {
		cfg.Store.Redis.URL = v
	}
	if v, ok := snap.Lookup("PORT"); ok {
		cfg.Server.Port = v
	}
	if v, ok := snap.Lookup("OPENCLAW_MASTER_KEY"); ok {
		cfg.Server.MasterKey = v
	}
	if v, ok := snap.Lookup("METRICS_ENDPOINT"); ok {
		cfg.Metrics.Endpoint = v
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"OPENCLAW_DISCOVERY", &cfg.Discovery.Enabled},
		{"METRICS_ENABLED", &cfg.Metrics.Enabled},
	}
	for _, b := range bools {
		v, ok := snap.Lookup(b.name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", b.name, v, err)
		}
		*b.dst = parsed
	}
	return nil
}

// expandEnvVars expands environment variable references in configuration values.
// Provider apiKey fields are not expanded: they name a variable, they do not hold its value.
func expandEnvVars(cfg Config, snap env.Snapshot) Config {
	cfg.AgentDir = expandString(cfg.AgentDir, snap)
	cfg.Server.Port = expandString(cfg.Server.Port, snap)
	cfg.Server.MasterKey = expandString(cfg.Server.MasterKey, snap)
	cfg.Metrics.Endpoint = expandString(cfg.Metrics.Endpoint, snap)
	cfg.Store.Type = expandString(cfg.Store.Type, snap)
	cfg.Store.Redis.URL = expandString(cfg.Store.Redis.URL, snap)
	cfg.Store.Redis.Key = expandString(cfg.Store.Redis.Key, snap)
	cfg.Discovery.OllamaURL = expandString(cfg.Discovery.OllamaURL, snap)

	if len(cfg.Models.Providers) > 0 {
		providers := make(map[string]core.ProviderConfig, len(cfg.Models.Providers))
		for name, p := range cfg.Models.Providers {
			p = p.Clone()
			p.BaseURL = expandString(p.BaseURL, snap)
			for k, hv := range p.Headers {
				p.Headers[k] = expandString(hv, snap)
			}
			providers[name] = p
		}
		cfg.Models.Providers = providers
	}

	return cfg
}

// expandString expands references like ${VAR_NAME} or ${VAR_NAME:-default} against snap.
// Unresolved references without a default are left in place.
func expandString(s string, snap env.Snapshot) string {
	if s == "" {
		return s
	}
	return os.Expand(s, func(key string) string {
		varname, defaultValue, hasDefault := strings.Cut(key, ":-")
		if value := snap.Get(varname); value != "" {
			return value
		}
		if hasDefault {
			return defaultValue
		}
		return "${" + key + "}"
	})
}
