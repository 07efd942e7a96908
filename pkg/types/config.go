// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by providers that make network
// requests. A zero Timeout means no timeout, matching the engine's default
// unbounded behavior; callers opt into bounded execution.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero disables the timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "newsletter-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourcesConfig holds settings for the source aggregation stage.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	// RSSFeeds lists feed URLs the RSS provider pulls, in order.
	RSSFeeds []string `json:"rss_feeds" yaml:"rss_feeds"`

	// Keywords filters RSS items: an item is kept when its title matches
	// any keyword. Empty disables the filter.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// RecencyWindow drops items older than this. Zero disables the filter.
	RecencyWindow time.Duration `json:"recency_window" yaml:"recency_window"`

	// MaxPerProvider caps how many sources each provider contributes (default 10).
	MaxPerProvider int `json:"max_per_provider" yaml:"max_per_provider"`

	// ArxivCategory is the arXiv category queried (e.g. "cs.AI").
	ArxivCategory string `json:"arxiv_category" yaml:"arxiv_category"`

	// DevtoTag is the dev.to tag queried (e.g. "golang").
	DevtoTag string `json:"devto_tag" yaml:"devto_tag"`

	// EnableRSS controls whether the RSS provider is used.
	EnableRSS bool `json:"enable_rss" yaml:"enable_rss"`

	// EnableArxiv controls whether the arXiv provider is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableDevto controls whether the dev.to provider is used.
	EnableDevto bool `json:"enable_devto" yaml:"enable_devto"`

	// CacheCapacity is the aggregation cache entry cap (0 disables caching).
	CacheCapacity int `json:"cache_capacity" yaml:"cache_capacity"`

	// CacheTTL is how long cached aggregation results stay fresh.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// GenerationConfig holds settings for the generation stage.
type GenerationConfig struct {
	// Model is the generator model identifier, for generators that call an
	// AI API. The built-in template generator ignores it.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for an AI-backed generator.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxSectionSources caps how many allocated sources a section cites (default 5).
	MaxSectionSources int `json:"max_section_sources" yaml:"max_section_sources"`
}

// OrchestratorConfig holds per-call toggles for the generation orchestrator.
type OrchestratorConfig struct {
	// EnableVerification runs the citation verifier after generation.
	EnableVerification bool `json:"enable_verification" yaml:"enable_verification"`

	// EnforceDiversity asks the pre-generation pipeline to block on low
	// allocation diversity.
	EnforceDiversity bool `json:"enforce_diversity" yaml:"enforce_diversity"`

	// SkipValidation bypasses topic validation.
	SkipValidation bool `json:"skip_validation" yaml:"skip_validation"`

	// SkipEnrichment bypasses source enrichment.
	SkipEnrichment bool `json:"skip_enrichment" yaml:"skip_enrichment"`

	// MaxRetries is the number of extra generation attempts after a failure.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ArchiveConfig holds settings for the run-history store.
type ArchiveConfig struct {
	// Dir is the directory containing the archive database.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default cap for history listings (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the engine.
type PipelineConfig struct {
	Sources      SourcesConfig      `json:"sources" yaml:"sources"`
	Generation   GenerationConfig   `json:"generation" yaml:"generation"`
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator"`
	Archive      ArchiveConfig      `json:"archive" yaml:"archive"`
}
