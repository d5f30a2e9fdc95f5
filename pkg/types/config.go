// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trial-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RegistryConfig holds settings for the registry retrieval stage.
type RegistryConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the registry API base endpoint
	// (default "https://clinicaltrials.gov/api/v2").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// RequestInterval is the minimum delay between consecutive API
	// requests (default 1s).
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval"`

	// PageSize is the number of studies requested per page (default 100,
	// capped at the API maximum of 1000).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxRetries is the number of retry attempts after a transient
	// failure (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// OutputDir is the directory for exported artifacts (default "data/exports").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Format selects the default export format: csv, json, both, yaml,
	// xlsx, or sqlite.
	Format string `json:"format" yaml:"format"`
}
