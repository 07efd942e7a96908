// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SectionSource is an explicit source listed at the end of an audience
// section, separate from any hyperlinks embedded in the section body.
type SectionSource struct {
	// URL is the cited link.
	URL string `json:"url" yaml:"url"`

	// Title is the display title for the link.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// AudienceSection is the portion of a generated newsletter written for one
// audience segment. Content is rich text (HTML or Markdown) and may contain
// embedded hyperlinks in addition to the explicit Sources list.
type AudienceSection struct {
	// AudienceID identifies the segment this section was written for.
	AudienceID string `json:"audience_id" yaml:"audience_id"`

	// AudienceName is the human-readable segment name.
	AudienceName string `json:"audience_name" yaml:"audience_name"`

	// Content is the section body. May embed hyperlinks.
	Content string `json:"content" yaml:"content"`

	// Sources lists the section's explicit citations, if any.
	Sources []SectionSource `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Newsletter is a fully generated issue: a title plus one section per
// audience segment.
type Newsletter struct {
	// Title is the issue title.
	Title string `json:"title" yaml:"title"`

	// Date is the issue date.
	Date time.Time `json:"date" yaml:"date"`

	// Sections holds one entry per audience segment, in generation order.
	Sections []AudienceSection `json:"sections" yaml:"sections"`
}
