// Package config defines service configuration and its loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - Load errors wrap this package's sentinel kinds.
package config

import (
	"context"
	"net"
	"strconv"
	"time"
)

// Default values.
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 10000
	DefaultMaxBodyBytes = 1 << 20

	DefaultMetricsNamespace = "homeval"
	DefaultMetricsSubsystem = "predictor"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Host is the interface to bind; all interfaces by default.
	Host string `koanf:"host"`

	// Port is the TCP listen port.
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// StrictErrors maps validation failures to 400 and computation failures
	// to 500. When false every error body is sent with 200, as existing
	// clients expect.
	StrictErrors bool `koanf:"strict_errors"`

	// MaxBodyBytes caps the size of a POST /predict body.
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"gt=0"`

	// ReadTimeoutMS and WriteTimeoutMS bound HTTP request handling.
	ReadTimeoutMS  int `koanf:"read_timeout_ms" validate:"gt=0"`
	WriteTimeoutMS int `koanf:"write_timeout_ms" validate:"gt=0"`

	// Metrics naming. Empty bucket lists keep the built-in buckets.
	MetricsNamespace      string            `koanf:"metrics_namespace" validate:"required,promname"`
	MetricsSubsystem      string            `koanf:"metrics_subsystem" validate:"omitempty,promname"`
	MetricsConstLabels    map[string]string `koanf:"metrics_const_labels" validate:"dive,keys,promname,endkeys,required"`
	MetricsLatencyBuckets []float64         `koanf:"metrics_latency_buckets" validate:"omitempty,ascending"`
	MetricsPriceBuckets   []float64         `koanf:"metrics_price_buckets" validate:"omitempty,ascending"`
}

// New creates a Config populated with defaults. Context is accepted to keep
// the project-wide signature convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Host:           DefaultHost,
		Port:           DefaultPort,
		StrictErrors:   false,
		MaxBodyBytes:   DefaultMaxBodyBytes,
		ReadTimeoutMS:  10_000,
		WriteTimeoutMS: 10_000,

		MetricsNamespace: DefaultMetricsNamespace,
		MetricsSubsystem: DefaultMetricsSubsystem,
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReadTimeout returns ReadTimeoutMS as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// WriteTimeout returns WriteTimeoutMS as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}
