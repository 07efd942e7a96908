// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PreGenParams carries one pre-generation pipeline invocation's inputs and
// toggles.
type PreGenParams struct {
	Topics    []Topic
	Audiences []Audience

	// SkipValidation accepts all topics unchecked.
	SkipValidation bool

	// SkipEnrichment skips source fetching; allocations come out empty.
	SkipEnrichment bool

	// EnforceDiversity blocks the run when allocation diversity is low.
	EnforceDiversity bool
}

// GenerateParams carries one generation invocation's inputs. Retried
// attempts reuse the identical value.
type GenerateParams struct {
	// Title is the issue title to generate under.
	Title string

	// Topics are the validated topics to cover.
	Topics []Topic

	// Audiences are the segments to write sections for.
	Audiences []Audience

	// Allocations are the sources each section should cite.
	Allocations []SourceAllocation
}
