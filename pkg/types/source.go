// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the newsletter-engine pipeline.
package types

import "time"

// CandidateSource represents a single externally fetched item (article, paper,
// post) eligible for citation in a generated newsletter. Each source carries
// an ID prefixed by the originating provider (e.g. "rss-", "arxiv-") so that
// identifiers stay globally unique without a shared counter.
type CandidateSource struct {
	// ID is the provider-prefixed identifier (e.g. "arxiv-2301.07041").
	ID string `json:"id" yaml:"id"`

	// Title is the item title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the canonical link to the item.
	URL string `json:"url" yaml:"url"`

	// Author is the item author, if the provider reports one.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Publication names the publishing outlet or feed, if known.
	Publication string `json:"publication,omitempty" yaml:"publication,omitempty"`

	// Date is the publication date; zero when the provider omits it.
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`

	// Category is the topical bucket the provider filed this item under
	// (e.g. "ai", "webdev"). Used by allocation for audience affinity.
	Category string `json:"category" yaml:"category"`

	// Summary is a short abstract or description, if available.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// SourceAllocation records which candidate sources were assigned to one
// audience segment. Produced by the pre-generation pipeline and consumed
// read-only by the orchestrator and the citation verifier.
type SourceAllocation struct {
	// AudienceID identifies the audience segment the sources belong to.
	AudienceID string `json:"audience_id" yaml:"audience_id"`

	// Sources lists the candidate sources assigned to this audience.
	Sources []CandidateSource `json:"sources" yaml:"sources"`
}

// URLs returns the URLs of all sources in the allocation, in order.
func (a SourceAllocation) URLs() []string {
	urls := make([]string, 0, len(a.Sources))
	for _, s := range a.Sources {
		urls = append(urls, s.URL)
	}
	return urls
}

// Topic is one subject the newsletter should cover.
type Topic struct {
	// Title is the short topic name (e.g. "retrieval-augmented generation").
	Title string `json:"title" yaml:"title"`

	// Description optionally expands on the angle to take.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Audience is one reader segment the newsletter is written for.
type Audience struct {
	// ID is a stable slug identifying the segment (e.g. "engineers").
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable segment name.
	Name string `json:"name" yaml:"name"`

	// Description characterizes the segment's interests; matched against
	// source categories during allocation.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}
