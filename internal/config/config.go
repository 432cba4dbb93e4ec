package config

import "time"

// Config is the complete application configuration. Zero values mean
// "use the component default"; packages under internal/core fold their
// own defaults in, so nothing here needs to be set for the tool to run.
type Config struct {
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Retry     RetryConfig     `mapstructure:"retry" yaml:"retry"`
	Watch     WatchConfig     `mapstructure:"watch" yaml:"watch"`
	Cleanup   CleanupConfig   `mapstructure:"cleanup" yaml:"cleanup"`
	Validator ValidatorConfig `mapstructure:"validator" yaml:"validator"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver" yaml:"driver"`
	Path      string `mapstructure:"path" yaml:"path"`
	URL       string `mapstructure:"url" yaml:"url"`
	AuthToken string `mapstructure:"auth_token" yaml:"auth_token"`
}

// CacheConfig sizes the in-memory result cache.
type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
	MaxSize int           `mapstructure:"max_size" yaml:"max_size"`
}

// RateLimitConfig bounds checks per nickname inside a sliding window.
type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests" yaml:"max_requests"`
	Window      time.Duration `mapstructure:"window" yaml:"window"`
}

// RetryConfig hardens store queries. Timeout applies per attempt.
type RetryConfig struct {
	MaxRetries  int           `mapstructure:"max_retries" yaml:"max_retries"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
	Exponential bool          `mapstructure:"exponential" yaml:"exponential"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// WatchConfig tunes the interactive watch mode.
type WatchConfig struct {
	// Debounce is the quiet period after the last keystroke before a
	// check fires.
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// CleanupConfig tunes the background janitor.
type CleanupConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// ValidatorConfig extends validation. The built-in reserved list can be
// extended here but never shrunk.
type ValidatorConfig struct {
	ReservedExtra []string `mapstructure:"reserved_extra" yaml:"reserved_extra"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile" yaml:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is exposed in watch mode
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port" yaml:"port"`
}
