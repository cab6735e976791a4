// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citation-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EnrichConfig holds settings for the citation enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// DataDir is the directory holding the CSV record tables.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// UnresolvedDir is the directory holding the not-found ledgers, one
	// .txt per .csv in DataDir.
	UnresolvedDir string `json:"unresolved_dir" yaml:"unresolved_dir"`

	// VenueConfigPath points to the YAML document listing top venues.
	VenueConfigPath string `json:"venue_config" yaml:"venue_config"`

	// Provider selects the bibliographic backend: semantic_scholar or openalex.
	Provider string `json:"provider" yaml:"provider"`

	// Concurrency is the worker pool width per batch (default 3).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// BatchSize is the number of records per checkpointed batch (default 10).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// SearchLimit is the number of search candidates considered per title (default 5).
	SearchLimit int `json:"search_limit" yaml:"search_limit"`

	// MaxAttempts bounds retries on rate-limited and transient failures (default 5).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// InterBatchDelay is the pause between batches (default 1s).
	InterBatchDelay time.Duration `json:"inter_batch_delay" yaml:"inter_batch_delay"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// RunLogPath is the SQLite file recording run summaries. Empty disables
	// the journal.
	RunLogPath string `json:"run_log" yaml:"run_log"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ClassifyConfig holds settings for the topic classification stage.
type ClassifyConfig struct {
	AIConfig `yaml:",inline"`

	// DataDir is the directory holding the CSV record tables.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// BatchSize is the number of titles per prompt (default 5).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// SaveInterval is the number of batches between checkpoints (default 10).
	SaveInterval int `json:"save_interval" yaml:"save_interval"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Enrich   EnrichConfig   `json:"enrich" yaml:"enrich"`
	Classify ClassifyConfig `json:"classify" yaml:"classify"`
}
