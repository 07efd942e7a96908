// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Stage names one phase of the sequential generation state machine.
type Stage string

const (
	StageInit             Stage = "init"
	StagePreGeneration    Stage = "pre_generation"
	StageSourceAllocation Stage = "source_allocation"
	StageGeneration       Stage = "generation"
	StageVerification     Stage = "verification"
	StageComplete         Stage = "complete"
	StageError            Stage = "error"
)

// TopicValidation records one rejected topic and why it was filtered out.
type TopicValidation struct {
	// Topic is the topic that was rejected.
	Topic Topic `json:"topic" yaml:"topic"`

	// Reason explains the rejection.
	Reason string `json:"reason" yaml:"reason"`
}

// PreGenResult is the outcome of the pre-generation pipeline: topic
// validation, source enrichment, and per-audience source allocation.
type PreGenResult struct {
	// CanProceed reports whether generation may run. When false,
	// BlockReason explains why and the orchestrator stops immediately.
	CanProceed bool `json:"can_proceed" yaml:"can_proceed"`

	// BlockReason explains a refusal to proceed.
	BlockReason string `json:"block_reason,omitempty" yaml:"block_reason,omitempty"`

	// ValidatedTopics are the topics that passed validation.
	ValidatedTopics []Topic `json:"validated_topics" yaml:"validated_topics"`

	// InvalidTopics records rejected topics with reasons.
	InvalidTopics []TopicValidation `json:"invalid_topics,omitempty" yaml:"invalid_topics,omitempty"`

	// Suggestions offers alternatives when topics were rejected.
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`

	// EnrichedSources are the candidate sources gathered for allocation.
	EnrichedSources []CandidateSource `json:"enriched_sources,omitempty" yaml:"enriched_sources,omitempty"`

	// Allocations assigns sources to audience segments.
	Allocations []SourceAllocation `json:"allocations,omitempty" yaml:"allocations,omitempty"`

	// DiversityScore is the 0-100 allocation diversity estimate.
	DiversityScore float64 `json:"diversity_score" yaml:"diversity_score"`
}

// Metrics accumulates timing and counters for one orchestration call.
// A fresh value is created per call; nothing is shared across calls.
type Metrics struct {
	// TotalTime is the wall-clock duration of the whole orchestration.
	TotalTime time.Duration `json:"total_time" yaml:"total_time"`

	// PreGenerationTime is the duration of the pre-generation stage.
	PreGenerationTime time.Duration `json:"pre_generation_time" yaml:"pre_generation_time"`

	// GenerationTime is the duration of the generation stage including retries.
	GenerationTime time.Duration `json:"generation_time" yaml:"generation_time"`

	// VerificationTime is the duration of the verification stage.
	VerificationTime time.Duration `json:"verification_time" yaml:"verification_time"`

	// SourcesFetched counts candidate sources gathered by enrichment.
	SourcesFetched int `json:"sources_fetched" yaml:"sources_fetched"`

	// SourcesAllocated counts sources assigned across all audiences.
	SourcesAllocated int `json:"sources_allocated" yaml:"sources_allocated"`

	// DiversityScore echoes the allocation diversity score.
	DiversityScore float64 `json:"diversity_score" yaml:"diversity_score"`

	// ValidTopics counts topics that passed validation.
	ValidTopics int `json:"valid_topics" yaml:"valid_topics"`

	// FilteredTopics counts topics rejected by validation.
	FilteredTopics int `json:"filtered_topics" yaml:"filtered_topics"`

	// Retries counts generation attempts beyond the first.
	Retries int `json:"retries" yaml:"retries"`
}

// Result is the single value an orchestration call returns. Exactly one of
// {Success true with Newsletter, Success false with Error} holds; Metrics is
// always populated.
type Result struct {
	// Success reports whether a newsletter was generated.
	Success bool `json:"success" yaml:"success"`

	// Newsletter is the generated issue; nil on failure.
	Newsletter *Newsletter `json:"newsletter,omitempty" yaml:"newsletter,omitempty"`

	// Allocations are the source allocations used, when pre-generation ran.
	Allocations []SourceAllocation `json:"allocations,omitempty" yaml:"allocations,omitempty"`

	// PreGeneration is the pre-generation outcome, when that stage ran.
	PreGeneration *PreGenResult `json:"pre_generation,omitempty" yaml:"pre_generation,omitempty"`

	// Verification is the citation check outcome. Advisory: a failed
	// verification never flips Success. Nil when verification was disabled
	// or skipped.
	Verification *NewsletterVerification `json:"verification,omitempty" yaml:"verification,omitempty"`

	// Metrics carries per-stage timings and counters.
	Metrics Metrics `json:"metrics" yaml:"metrics"`

	// Error describes the failure when Success is false.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
