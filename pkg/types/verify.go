// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SectionVerification is the per-audience outcome of citation checking:
// which allocated URLs were actually cited, which citations were never
// allocated, and which allocations went unused.
type SectionVerification struct {
	// AudienceID identifies the section that was checked.
	AudienceID string `json:"audience_id" yaml:"audience_id"`

	// AudienceName is the human-readable segment name.
	AudienceName string `json:"audience_name" yaml:"audience_name"`

	// AllocatedURLs are the URLs assigned to this audience by allocation.
	AllocatedURLs []string `json:"allocated_urls" yaml:"allocated_urls"`

	// CitedURLs are the URLs referenced by the section, from embedded
	// links and the explicit sources list, deduplicated in first-seen order.
	CitedURLs []string `json:"cited_urls" yaml:"cited_urls"`

	// ValidCitations are cited URLs that match an allocated URL.
	ValidCitations []string `json:"valid_citations" yaml:"valid_citations"`

	// UnauthorizedCitations are cited URLs with no matching allocation.
	UnauthorizedCitations []string `json:"unauthorized_citations" yaml:"unauthorized_citations"`

	// MissedAllocations are allocated URLs never cited by the section.
	MissedAllocations []string `json:"missed_allocations" yaml:"missed_allocations"`

	// IsValid is true when at least one valid citation exists, or when
	// nothing was allocated to this audience in the first place.
	IsValid bool `json:"is_valid" yaml:"is_valid"`

	// Issues holds human-readable problem descriptions.
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// DiversityVerification is the cross-section source reuse report.
type DiversityVerification struct {
	// DuplicatedURLs lists normalized URLs cited by more than one audience.
	DuplicatedURLs []string `json:"duplicated_urls" yaml:"duplicated_urls"`

	// UniqueURLCount is the number of distinct cited URLs across sections.
	UniqueURLCount int `json:"unique_url_count" yaml:"unique_url_count"`

	// TotalCitations is the total citation count across all sections.
	TotalCitations int `json:"total_citations" yaml:"total_citations"`

	// DiversityScore is 0-100; 100 means no source reuse across sections.
	DiversityScore float64 `json:"diversity_score" yaml:"diversity_score"`

	// IsValid is true when no URL is cited by more than one audience.
	IsValid bool `json:"is_valid" yaml:"is_valid"`

	// Issues holds human-readable problem descriptions.
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// NewsletterVerification aggregates per-section citation checks and the
// cross-section diversity check for a whole issue.
type NewsletterVerification struct {
	// Sections holds one verification result per audience section.
	Sections []SectionVerification `json:"sections" yaml:"sections"`

	// Diversity is the cross-section reuse report.
	Diversity DiversityVerification `json:"diversity" yaml:"diversity"`

	// IsValid is true when every section is valid and diversity is valid.
	IsValid bool `json:"is_valid" yaml:"is_valid"`

	// Recommendations suggests follow-up actions derived from the failure
	// patterns found (e.g. regenerate sections with no valid citations).
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}
