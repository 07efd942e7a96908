// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate renders newsletters from validated topics and per-audience
// source allocations. TemplateGenerator is the deterministic built-in; an
// AI-backed generator satisfies the same orchestrate.Generator interface.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/newsletter-engine/pkg/types"
)

// TemplateGenerator renders one Markdown section per audience, citing the
// sources allocated to it as inline links.
type TemplateGenerator struct {
	maxSectionSources int
	now               func() time.Time
}

// NewTemplate returns a generator that cites at most maxSectionSources
// sources per section (default 5 when <= 0).
func NewTemplate(maxSectionSources int) *TemplateGenerator {
	if maxSectionSources <= 0 {
		maxSectionSources = 5
	}
	return &TemplateGenerator{maxSectionSources: maxSectionSources, now: time.Now}
}

// Generate renders a newsletter with one section per audience. Sections for
// audiences with no allocated sources still render, with an empty reading
// list. Retried calls with identical params produce identical output.
func (g *TemplateGenerator) Generate(ctx context.Context, params types.GenerateParams) (*types.Newsletter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(params.Audiences) == 0 {
		return nil, fmt.Errorf("no audiences to generate sections for")
	}

	sourcesByAudience := make(map[string][]types.CandidateSource)
	for _, alloc := range params.Allocations {
		sourcesByAudience[alloc.AudienceID] = alloc.Sources
	}

	newsletter := &types.Newsletter{
		Title: params.Title,
		Date:  g.now().UTC().Truncate(24 * time.Hour),
	}

	for _, audience := range params.Audiences {
		srcs := sourcesByAudience[audience.ID]
		if len(srcs) > g.maxSectionSources {
			srcs = srcs[:g.maxSectionSources]
		}
		newsletter.Sections = append(newsletter.Sections, types.AudienceSection{
			AudienceID:   audience.ID,
			AudienceName: audience.Name,
			Content:      renderSection(audience, params.Topics, srcs),
			Sources:      sectionSources(srcs),
		})
	}
	return newsletter, nil
}

// renderSection produces the Markdown body for one audience.
func renderSection(audience types.Audience, topics []types.Topic, srcs []types.CandidateSource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## For %s\n\n", audience.Name)

	if len(topics) > 0 {
		b.WriteString("This issue covers: ")
		titles := make([]string, len(topics))
		for i, t := range topics {
			titles[i] = t.Title
		}
		b.WriteString(strings.Join(titles, ", "))
		b.WriteString(".\n\n")
	}

	if len(srcs) == 0 {
		b.WriteString("No new reading this week.\n")
		return b.String()
	}

	b.WriteString("### Recommended reading\n\n")
	for _, src := range srcs {
		fmt.Fprintf(&b, "- [%s](%s)", sourceLabel(src), src.URL)
		if src.Summary != "" {
			fmt.Fprintf(&b, " — %s", firstSentence(src.Summary))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sectionSources(srcs []types.CandidateSource) []types.SectionSource {
	out := make([]types.SectionSource, len(srcs))
	for i, src := range srcs {
		out[i] = types.SectionSource{URL: src.URL, Title: sourceLabel(src)}
	}
	return out
}

func sourceLabel(src types.CandidateSource) string {
	if src.Title != "" {
		return src.Title
	}
	return src.URL
}

// firstSentence truncates a summary at its first period, keeping blurbs short.
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
