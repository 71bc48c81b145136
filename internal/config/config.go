package config

import (
	"time"

	"github.com/vovakirdan/lobbychat/internal/core"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`

	// AllowedOrigins are full origins such as https://chat.example.com.
	// Empty allows any origin.
	AllowedOrigins     []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	MaxMessageBytes    int64    `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	ClientBuffer       int      `mapstructure:"client_buffer" yaml:"client_buffer"`

	Limits core.Limits  `mapstructure:"limits" yaml:"limits"`
	Upload UploadConfig `mapstructure:"upload" yaml:"upload"`
}

// UploadConfig configures the profile picture endpoint.
type UploadConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir"`
	MaxBytes  int64  `mapstructure:"max_bytes" yaml:"max_bytes"`
	URLPrefix string `mapstructure:"url_prefix" yaml:"url_prefix"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":8000",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		LogFormat:          "console",
		MaxMessageBytes:    1 << 20,
		RateLimitPerMinute: 120,
		ClientBuffer:       32,
		Limits:             core.DefaultLimits(),
		Upload: UploadConfig{
			Dir:       "uploads",
			MaxBytes:  5 << 20,
			URLPrefix: "/uploads",
		},
	}
}
