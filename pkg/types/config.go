// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used when talking to the conversion API.
type HTTPConfig struct {
	// BaseURL is the root of the conversion API (e.g. "https://api.example.com/").
	// Tool endpoints are resolved relative to it.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the HTTP request timeout. Zero means no client-side timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pdfbuddy/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// APIToken is an optional bearer token. When empty no Authorization
	// header is sent.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty" mapstructure:"api_token"`
}

// ProgressConfig controls the cosmetic progress indicator shown while a
// submission is in flight.
type ProgressConfig struct {
	// Interval is the tick cadence (default 50ms).
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`

	// Step is the percentage added on every tick (default 2).
	Step int `json:"step" yaml:"step" mapstructure:"step"`
}

// OutputConfig holds settings for where downloaded artifacts land.
type OutputConfig struct {
	// Dir is the directory downloads are written to (default ".").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Overwrite allows replacing an existing file with the same name.
	Overwrite bool `json:"overwrite" yaml:"overwrite" mapstructure:"overwrite"`
}

// HistoryConfig holds settings for the local job history database.
type HistoryConfig struct {
	// Path is the sqlite database file. Empty disables history.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxResults is the default number of rows listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// WatchConfig holds settings for the drop-zone watcher.
type WatchConfig struct {
	// Dir is the watched directory.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Settle is how long a dropped file must stay unchanged before it is
	// staged (default 500ms).
	Settle time.Duration `json:"settle" yaml:"settle" mapstructure:"settle"`
}

// Config groups every setting the CLI reads from flags, environment and the
// config file.
type Config struct {
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Progress ProgressConfig `json:"progress" yaml:"progress" mapstructure:"progress"`
	Output   OutputConfig   `json:"output" yaml:"output" mapstructure:"output"`
	History  HistoryConfig  `json:"history" yaml:"history" mapstructure:"history"`
	Watch    WatchConfig    `json:"watch" yaml:"watch" mapstructure:"watch"`

	// LogLevel is a zerolog level name (default "info").
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}
