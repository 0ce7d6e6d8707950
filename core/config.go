package core

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the grandkitchen client.
// It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := NewConfig(
//	    WithBaseURL("https://api.gcbk.example"),
//	    WithTimeout(10*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
type Config struct {
	// BaseURL is the API origin, without the versioned prefix
	BaseURL string

	// APIPrefix is the versioned path prefix appended to BaseURL
	APIPrefix string

	// Timeout applies to every API request
	Timeout time.Duration

	// Language selects which localized product fields to prefer
	Language string

	// Store configures session persistence
	Store StoreConfig

	// Retry configures transient-failure retries in the transport
	Retry RetryConfig

	// Logging configuration
	Logging LoggingConfig

	// Telemetry configuration
	Telemetry TelemetryConfig
}

// StoreConfig selects and configures the session store backend
type StoreConfig struct {
	Provider  string // "memory" or "redis"
	RedisURL  string
	Namespace string
}

// RetryConfig controls transport retries for transient failures
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool
}

// LoggingConfig controls the SDK logger
type LoggingConfig struct {
	Level string
}

// TelemetryConfig controls OpenTelemetry tracing
type TelemetryConfig struct {
	Enabled     bool
	ServiceName string
}

// Option configures a Config
type Option func(*Config) error

// DefaultConfig returns a Config with defaults applied
func DefaultConfig() *Config {
	return &Config{
		APIPrefix: DefaultAPIPrefix,
		Timeout:   DefaultTimeout,
		Language:  DefaultLanguage,
		Store: StoreConfig{
			Provider:  "memory",
			Namespace: DefaultStoreNamespace,
		},
		Retry: RetryConfig{
			MaxAttempts:   DefaultRetryAttempts,
			InitialDelay:  DefaultRetryDelay,
			MaxDelay:      DefaultRetryMaxDelay,
			BackoffFactor: DefaultBackoffFactor,
			JitterEnabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "grandkitchen-client",
		},
	}
}

// NewConfig builds a Config from defaults, then environment variables, then
// the given options, and validates the result.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironment()

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironment overlays environment variables onto the config
func (c *Config) applyEnvironment() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvAPIPrefix); v != "" {
		c.APIPrefix = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv(EnvLanguage); v != "" {
		c.Language = v
	}
	if v := os.Getenv(EnvStoreProvider); v != "" {
		c.Store.Provider = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvTelemetry); v != "" {
		c.Telemetry.Enabled = strings.EqualFold(v, "true")
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrMissingConfiguration)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base URL %q is not an absolute URL", ErrInvalidConfiguration, c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfiguration)
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("%w: api prefix must start with /", ErrInvalidConfiguration)
	}

	switch c.Store.Provider {
	case "memory":
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("%w: redis store requires a redis URL", ErrMissingConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown store provider %q", ErrInvalidConfiguration, c.Store.Provider)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry max attempts must be at least 1", ErrInvalidConfiguration)
	}
	return nil
}

// WithBaseURL sets the API origin
func WithBaseURL(baseURL string) Option {
	return func(c *Config) error {
		c.BaseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithAPIPrefix sets the versioned path prefix
func WithAPIPrefix(prefix string) Option {
	return func(c *Config) error {
		c.APIPrefix = prefix
		return nil
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		c.Timeout = timeout
		return nil
	}
}

// WithLanguage sets the preferred response language ("en", "ar")
func WithLanguage(lang string) Option {
	return func(c *Config) error {
		c.Language = lang
		return nil
	}
}

// WithMemoryStore selects the in-process session store
func WithMemoryStore() Option {
	return func(c *Config) error {
		c.Store.Provider = "memory"
		return nil
	}
}

// WithRedisStore selects the Redis session store
func WithRedisStore(redisURL string) Option {
	return func(c *Config) error {
		c.Store.Provider = "redis"
		c.Store.RedisURL = redisURL
		return nil
	}
}

// WithStoreNamespace sets the key namespace for the Redis session store
func WithStoreNamespace(namespace string) Option {
	return func(c *Config) error {
		c.Store.Namespace = namespace
		return nil
	}
}

// WithRetry overrides the transport retry policy
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(c *Config) error {
		c.Retry.MaxAttempts = maxAttempts
		c.Retry.InitialDelay = initialDelay
		return nil
	}
}

// WithLogLevel sets the minimum log level
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logging.Level = level
		return nil
	}
}

// WithTelemetry enables or disables tracing
func WithTelemetry(enabled bool) Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = enabled
		return nil
	}
}

// WithConfigFile overlays a YAML config file. Values set by earlier options
// or the environment are overwritten by the file; later options still win.
// Absent file fields leave the config untouched.
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		var overlay fileOverlay
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return overlay.apply(c)
	}
}

// fileOverlay mirrors Config for YAML decoding. Durations are strings in Go
// duration syntax, and every field is a pointer so absent keys do not clobber
// values set by the environment or earlier options.
type fileOverlay struct {
	BaseURL   *string `yaml:"base_url"`
	APIPrefix *string `yaml:"api_prefix"`
	Timeout   *string `yaml:"timeout"`
	Language  *string `yaml:"language"`

	Store *struct {
		Provider  *string `yaml:"provider"`
		RedisURL  *string `yaml:"redis_url"`
		Namespace *string `yaml:"namespace"`
	} `yaml:"store"`

	Retry *struct {
		MaxAttempts   *int     `yaml:"max_attempts"`
		InitialDelay  *string  `yaml:"initial_delay"`
		MaxDelay      *string  `yaml:"max_delay"`
		BackoffFactor *float64 `yaml:"backoff_factor"`
		JitterEnabled *bool    `yaml:"jitter_enabled"`
	} `yaml:"retry"`

	Logging *struct {
		Level *string `yaml:"level"`
	} `yaml:"logging"`

	Telemetry *struct {
		Enabled     *bool   `yaml:"enabled"`
		ServiceName *string `yaml:"service_name"`
	} `yaml:"telemetry"`
}

func (o *fileOverlay) apply(c *Config) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setDuration := func(dst *time.Duration, src *string) error {
		if src == nil {
			return nil
		}
		d, err := time.ParseDuration(*src)
		if err != nil {
			return fmt.Errorf("%w: invalid duration %q", ErrInvalidConfiguration, *src)
		}
		*dst = d
		return nil
	}

	setString(&c.BaseURL, o.BaseURL)
	setString(&c.APIPrefix, o.APIPrefix)
	setString(&c.Language, o.Language)
	if err := setDuration(&c.Timeout, o.Timeout); err != nil {
		return err
	}

	if o.Store != nil {
		setString(&c.Store.Provider, o.Store.Provider)
		setString(&c.Store.RedisURL, o.Store.RedisURL)
		setString(&c.Store.Namespace, o.Store.Namespace)
	}
	if o.Retry != nil {
		if o.Retry.MaxAttempts != nil {
			c.Retry.MaxAttempts = *o.Retry.MaxAttempts
		}
		if err := setDuration(&c.Retry.InitialDelay, o.Retry.InitialDelay); err != nil {
			return err
		}
		if err := setDuration(&c.Retry.MaxDelay, o.Retry.MaxDelay); err != nil {
			return err
		}
		if o.Retry.BackoffFactor != nil {
			c.Retry.BackoffFactor = *o.Retry.BackoffFactor
		}
		if o.Retry.JitterEnabled != nil {
			c.Retry.JitterEnabled = *o.Retry.JitterEnabled
		}
	}
	if o.Logging != nil {
		setString(&c.Logging.Level, o.Logging.Level)
	}
	if o.Telemetry != nil {
		if o.Telemetry.Enabled != nil {
			c.Telemetry.Enabled = *o.Telemetry.Enabled
		}
		setString(&c.Telemetry.ServiceName, o.Telemetry.ServiceName)
	}
	return nil
}
