// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"fmt"
	"strings"

	"github.com/pdiddy/newsletter-engine/pkg/types"
)

// diversityThreshold is the score below which the whole-newsletter report
// recommends regenerating to reduce source reuse.
const diversityThreshold = 70.0

// maxNamedOffenders caps how many offending URLs an issue message names.
const maxNamedOffenders = 3

// VerifySectionCitations checks one audience section against the allocations
// for its audience: which allocated URLs were cited, which citations were
// never authorized, and which allocations went unused. A section with no
// allocated sources cannot fail the check.
func VerifySectionCitations(section types.AudienceSection, allocations []types.SourceAllocation) types.SectionVerification {
	result := types.SectionVerification{
		AudienceID:   section.AudienceID,
		AudienceName: section.AudienceName,
	}

	for _, alloc := range allocations {
		if alloc.AudienceID == section.AudienceID {
			result.AllocatedURLs = append(result.AllocatedURLs, alloc.URLs()...)
		}
	}

	result.CitedURLs = citedURLs(section)

	allocated := make(map[string]bool, len(result.AllocatedURLs))
	for _, u := range result.AllocatedURLs {
		allocated[NormalizeURL(u)] = true
	}

	citedNorm := make(map[string]bool, len(result.CitedURLs))
	for _, cited := range result.CitedURLs {
		norm := NormalizeURL(cited)
		citedNorm[norm] = true
		if allocated[norm] {
			result.ValidCitations = append(result.ValidCitations, cited)
		} else {
			result.UnauthorizedCitations = append(result.UnauthorizedCitations, cited)
		}
	}

	for _, u := range result.AllocatedURLs {
		if !citedNorm[NormalizeURL(u)] {
			result.MissedAllocations = append(result.MissedAllocations, u)
		}
	}

	result.IsValid = len(result.ValidCitations) > 0 || len(result.AllocatedURLs) == 0
	result.Issues = sectionIssues(result)
	return result
}

// citedURLs returns the deduplicated union of URLs extracted from the
// section body and URLs listed in the explicit sources field, in first-seen
// order. Deduplication is by normalized form.
func citedURLs(section types.AudienceSection) []string {
	var ordered []string
	seen := make(map[string]bool)
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		norm := NormalizeURL(raw)
		if seen[norm] {
			return
		}
		seen[norm] = true
		ordered = append(ordered, raw)
	}

	for _, u := range ExtractURLs(section.Content) {
		add(u)
	}
	for _, s := range section.Sources {
		add(s.URL)
	}
	return ordered
}

func sectionIssues(r types.SectionVerification) []string {
	var issues []string

	if len(r.AllocatedURLs) > 0 && len(r.ValidCitations) == 0 {
		issues = append(issues, fmt.Sprintf(
			"section %q cites none of its %d allocated sources",
			r.AudienceName, len(r.AllocatedURLs)))
	}

	if len(r.UnauthorizedCitations) > 0 {
		issues = append(issues, fmt.Sprintf(
			"section %q cites sources that were not allocated to it: %s",
			r.AudienceName, nameOffenders(r.UnauthorizedCitations)))
	}

	// Unused allocations are a soft warning, and only worth raising when
	// the section had more than one source to choose from.
	if len(r.AllocatedURLs) > 1 && len(r.MissedAllocations) > 0 {
		issues = append(issues, fmt.Sprintf(
			"section %q left %d of %d allocated sources uncited",
			r.AudienceName, len(r.MissedAllocations), len(r.AllocatedURLs)))
	}

	return issues
}

// nameOffenders lists up to maxNamedOffenders URLs, with an ellipsis when
// more exist.
func nameOffenders(urls []string) string {
	if len(urls) <= maxNamedOffenders {
		return strings.Join(urls, ", ")
	}
	return strings.Join(urls[:maxNamedOffenders], ", ") + ", ..."
}

// VerifySourceDiversity checks for source reuse across sections. Each URL
// cited by more than one audience produces an issue, and the diversity score
// drops with the fraction of duplicated URLs.
func VerifySourceDiversity(sections []types.SectionVerification) types.DiversityVerification {
	result := types.DiversityVerification{DiversityScore: 100}

	// normalized URL → audiences citing it, insertion-ordered for
	// deterministic output.
	citedBy := make(map[string][]string)
	var order []string

	for _, sec := range sections {
		result.TotalCitations += len(sec.CitedURLs)
		for _, cited := range sec.CitedURLs {
			norm := NormalizeURL(cited)
			if _, ok := citedBy[norm]; !ok {
				order = append(order, norm)
			}
			if !contains(citedBy[norm], sec.AudienceID) {
				citedBy[norm] = append(citedBy[norm], sec.AudienceID)
			}
		}
	}

	result.UniqueURLCount = len(citedBy)

	for _, norm := range order {
		audiences := citedBy[norm]
		if len(audiences) > 1 {
			result.DuplicatedURLs = append(result.DuplicatedURLs, norm)
			result.Issues = append(result.Issues, fmt.Sprintf(
				"source %s is cited by multiple sections: %s",
				norm, strings.Join(audiences, ", ")))
		}
	}

	if dups := len(result.DuplicatedURLs); dups > 0 {
		score := 100 - float64(dups)/float64(result.UniqueURLCount)*100
		if score < 0 {
			score = 0
		}
		result.DiversityScore = score
	}

	result.IsValid = len(result.DuplicatedURLs) == 0
	return result
}

// VerifyNewsletter runs the per-section citation check for every section,
// then the cross-section diversity check, and derives recommendations from
// the failure patterns found. Overall validity requires every section and
// the diversity check to pass.
func VerifyNewsletter(newsletter *types.Newsletter, allocations []types.SourceAllocation) types.NewsletterVerification {
	result := types.NewsletterVerification{IsValid: true}

	for _, section := range newsletter.Sections {
		sec := VerifySectionCitations(section, allocations)
		if !sec.IsValid {
			result.IsValid = false
		}
		result.Sections = append(result.Sections, sec)
	}

	result.Diversity = VerifySourceDiversity(result.Sections)
	if !result.Diversity.IsValid {
		result.IsValid = false
	}

	result.Recommendations = recommendations(result)
	return result
}

func recommendations(r types.NewsletterVerification) []string {
	var recs []string

	var noValid, unauthorized []string
	for _, sec := range r.Sections {
		if len(sec.AllocatedURLs) > 0 && len(sec.ValidCitations) == 0 {
			noValid = append(noValid, sec.AudienceName)
		}
		if len(sec.UnauthorizedCitations) > 0 {
			unauthorized = append(unauthorized, sec.AudienceName)
		}
	}

	if len(noValid) > 0 {
		recs = append(recs, fmt.Sprintf(
			"Regenerate sections with no valid citations: %s",
			strings.Join(noValid, ", ")))
	}
	if len(unauthorized) > 0 {
		recs = append(recs, fmt.Sprintf(
			"Review sections citing unallocated sources: %s",
			strings.Join(unauthorized, ", ")))
	}
	if r.Diversity.DiversityScore < diversityThreshold {
		recs = append(recs, fmt.Sprintf(
			"Consider regenerating: sources are being reused across sections (diversity score %.0f)",
			r.Diversity.DiversityScore))
	}

	return recs
}

// QuickVerify is a cheap boolean gate: for every audience with a non-empty
// allocation, the matching section must cite at least one allocated URL.
// It skips unauthorized-citation and diversity analysis entirely.
func QuickVerify(newsletter *types.Newsletter, allocations []types.SourceAllocation) bool {
	sections := make(map[string]types.AudienceSection, len(newsletter.Sections))
	for _, sec := range newsletter.Sections {
		sections[sec.AudienceID] = sec
	}

	for _, alloc := range allocations {
		if len(alloc.Sources) == 0 {
			continue
		}
		section, ok := sections[alloc.AudienceID]
		if !ok {
			return false
		}

		allocated := make(map[string]bool, len(alloc.Sources))
		for _, s := range alloc.Sources {
			allocated[NormalizeURL(s.URL)] = true
		}

		found := false
		for _, cited := range citedURLs(section) {
			if allocated[NormalizeURL(cited)] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
