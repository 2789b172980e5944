// Package config loads repohealth settings from a YAML file and the
// environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/jmgilman/go/repohealth"
	"github.com/jmgilman/go/repohealth/errors"
	"github.com/jmgilman/go/repohealth/fetch"
	"github.com/jmgilman/go/repohealth/internal/logging"
	"github.com/jmgilman/go/repohealth/quota"
)

// EnvPrefix prefixes every environment override, e.g. REPOHEALTH_CACHE_TTL.
const EnvPrefix = "REPOHEALTH"

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Retry  RetryConfig  `mapstructure:"retry"`
	Quota  QuotaConfig  `mapstructure:"quota"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

// GitHubConfig stores API connection details.
type GitHubConfig struct {
	Token   string        `mapstructure:"token"`    // Default credential
	BaseURL string        `mapstructure:"base_url"` // REST API endpoint
	Timeout time.Duration `mapstructure:"timeout"`  // Per-request timeout
	GHAuth  bool          `mapstructure:"gh_auth"`  // Fall back to the gh CLI session token
}

// CacheConfig stores response cache settings.
type CacheConfig struct {
	TTL    time.Duration `mapstructure:"ttl"`
	Shards int           `mapstructure:"shards"` // 0 selects a single map
	Dedupe bool          `mapstructure:"dedupe"` // Collapse concurrent identical fetches
}

// RetryConfig stores the request retry policy.
type RetryConfig struct {
	MaxAttempts      int           `mapstructure:"max_attempts"`
	Backoff          time.Duration `mapstructure:"backoff"`
	MaxRateLimitWait time.Duration `mapstructure:"max_rate_limit_wait"`
}

// QuotaConfig stores rate-limit monitor settings.
type QuotaConfig struct {
	Threshold int           `mapstructure:"threshold"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MemoSize  int           `mapstructure:"memo_size"`
	MemoTTL   time.Duration `mapstructure:"memo_ttl"`
}

// LogConfig stores logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// ServerConfig stores HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from configPath, or when empty from config.yaml
// in the working directory or $HOME/.repohealth. A missing config file is not
// an error; defaults and environment variables still apply. The token may
// also be supplied through GITHUB_TOKEN.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".repohealth"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to bind token environment")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.WithContext(
				errors.Wrap(err, errors.CodeInvalidConfig, "failed to read config file"), "path", configPath)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "unable to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", repohealth.DefaultBaseURL)
	v.SetDefault("github.timeout", repohealth.DefaultTimeout)
	v.SetDefault("github.gh_auth", false)

	v.SetDefault("cache.ttl", fetch.DefaultTTL)
	v.SetDefault("cache.shards", 0)
	v.SetDefault("cache.dedupe", false)

	v.SetDefault("retry.max_attempts", fetch.DefaultMaxAttempts)
	v.SetDefault("retry.backoff", fetch.DefaultBackoff)
	v.SetDefault("retry.max_rate_limit_wait", fetch.DefaultMaxRateLimitWait)

	v.SetDefault("quota.threshold", quota.DefaultThreshold)
	v.SetDefault("quota.timeout", quota.DefaultTimeout)
	v.SetDefault("quota.memo_size", quota.DefaultMemoSize)
	v.SetDefault("quota.memo_ttl", quota.DefaultMemoTTL)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)

	v.SetDefault("server.addr", ":8080")
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.GitHub.BaseURL == "":
		return invalid("github.base_url", "base URL is required")
	case c.GitHub.Timeout <= 0:
		return invalid("github.timeout", "timeout must be positive")
	case c.Cache.TTL <= 0:
		return invalid("cache.ttl", "cache TTL must be positive")
	case c.Cache.Shards < 0:
		return invalid("cache.shards", "shard count cannot be negative")
	case c.Retry.MaxAttempts < 1:
		return invalid("retry.max_attempts", "max attempts must be at least 1")
	case c.Retry.Backoff <= 0:
		return invalid("retry.backoff", "backoff must be positive")
	case c.Retry.MaxRateLimitWait < 0:
		return invalid("retry.max_rate_limit_wait", "max rate limit wait cannot be negative")
	case c.Quota.Threshold < 0:
		return invalid("quota.threshold", "quota threshold cannot be negative")
	case c.Quota.Timeout <= 0:
		return invalid("quota.timeout", "quota timeout must be positive")
	case c.Quota.MemoSize < 0:
		return invalid("quota.memo_size", "memo size cannot be negative")
	case c.Quota.MemoTTL <= 0:
		return invalid("quota.memo_ttl", "memo TTL must be positive")
	case c.Server.Addr == "":
		return invalid("server.addr", "server address is required")
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "unknown log level")
	}
	if c.Log.Format != logging.FormatConsole && c.Log.Format != logging.FormatJSON {
		return invalid("log.format", "log format must be console or json")
	}

	return nil
}

// ClientOptions translates the configuration into client options.
func (c *Config) ClientOptions(logger zerolog.Logger) []repohealth.Option {
	return []repohealth.Option{
		repohealth.WithBaseURL(c.GitHub.BaseURL),
		repohealth.WithToken(c.GitHub.Token),
		repohealth.WithTimeout(c.GitHub.Timeout),
		repohealth.WithShards(c.Cache.Shards),
		repohealth.WithCacheTTL(c.Cache.TTL),
		repohealth.WithDeduplication(c.Cache.Dedupe),
		repohealth.WithRetryPolicy(c.Retry.MaxAttempts, c.Retry.Backoff, c.Retry.MaxRateLimitWait),
		repohealth.WithQuotaThreshold(c.Quota.Threshold),
		repohealth.WithQuotaTimeout(c.Quota.Timeout),
		repohealth.WithQuotaMemo(c.Quota.MemoSize, c.Quota.MemoTTL),
		repohealth.WithLogger(logger),
	}
}

func invalid(key, message string) error {
	return errors.WithContext(errors.New(errors.CodeInvalidConfig, message), "key", key)
}
