package models

import "time"

// Config holds the application configuration
type Config struct {
	Channel  ChannelConfig       `json:"channel"`
	Database DatabaseConfig      `json:"database"`
	Server   ServerConfig        `json:"server"`
	Window   SendingWindowConfig `json:"window"`
	Retry    RetryConfig         `json:"retry"`
	Tracing  TracingConfig       `json:"tracing"`
	LogLevel string              `json:"log_level"`
}

// ChannelConfig holds external messaging channel configuration
type ChannelConfig struct {
	APIBaseURL string        `json:"api_base_url"`
	EventsURL  string        `json:"events_url"`
	APIKey     string        `json:"api_key"`
	Timeout    time.Duration `json:"timeout_ms"`
	RetryCount int           `json:"retry_count"`
}

// DatabaseConfig holds database related configurations
type DatabaseConfig struct {
	Path string `json:"path"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int `json:"port"`
	DispatchIntervalSec int `json:"dispatchIntervalSec"`
}

// RetryConfig holds retry related configurations
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	Enabled        bool    `json:"enabled"`
	UseStdout      bool    `json:"use_stdout"`
}
