// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultBaseURL is the origin of the Neurosynth term/study API.
const DefaultBaseURL = "https://mil.psy.ntu.edu.tw:5000"

// HTTPConfig holds shared HTTP settings used by every request to the API.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout for a single attempt.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds the retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RetryBaseDelay is the first backoff delay; it doubles per retry.
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay" mapstructure:"retry_base_delay"`
}

// APIConfig holds settings for the remote term/study API.
type APIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the API origin, without a trailing slash.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
}

// ExplorerConfig holds settings for the interactive front ends.
type ExplorerConfig struct {
	// Debounce is the idle period after the last keystroke before a live
	// search is issued (default 400ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce"`

	// RequestTimeout bounds one search, retries included (default 30s).
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// ServeConfig holds settings for the local web UI.
type ServeConfig struct {
	// Addr is the listen address (default "127.0.0.1:8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// Concurrency bounds the panel fetches issued for one page.
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// File, when set, receives log output instead of stderr. The terminal
	// UI only logs when a file is configured.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// Config groups all settings loaded from the config file, environment,
// and flags.
type Config struct {
	API      APIConfig      `json:"api" yaml:"api" mapstructure:"api"`
	Explorer ExplorerConfig `json:"explorer" yaml:"explorer" mapstructure:"explorer"`
	Serve    ServeConfig    `json:"serve" yaml:"serve" mapstructure:"serve"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			HTTPConfig: HTTPConfig{
				Timeout:        60 * time.Second,
				UserAgent:      "neurosynth-explorer/0.1",
				MaxRetries:     3,
				RetryBaseDelay: 2 * time.Second,
			},
			BaseURL: DefaultBaseURL,
		},
		Explorer: ExplorerConfig{
			Debounce:       400 * time.Millisecond,
			RequestTimeout: 30 * time.Second,
		},
		Serve: ServeConfig{
			Addr:        "127.0.0.1:8080",
			Concurrency: 3,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
