// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pregen implements the default pre-generation pipeline: topic
// validation, source enrichment through the aggregator, and per-audience
// source allocation with a diversity estimate. The orchestrator consumes it
// through an interface, so callers can substitute their own pipeline.
package pregen

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/newsletter-engine/pkg/types"
)

// minTopicLength is the shortest topic title accepted by validation.
const minTopicLength = 3

// blockingDiversityScore is the allocation diversity below which the
// pipeline refuses to proceed when diversity enforcement is on.
const blockingDiversityScore = 70.0

// Fetcher gathers candidate sources. Satisfied by sources.Aggregator.
type Fetcher interface {
	FetchAll(ctx context.Context) []types.CandidateSource
}

// Pipeline is the default pre-generation implementation.
type Pipeline struct {
	fetcher        Fetcher
	maxPerAudience int
	w              io.Writer
}

// New returns a pipeline that enriches through fetcher and allocates at most
// maxPerAudience sources per audience (default 5 when <= 0).
func New(fetcher Fetcher, maxPerAudience int, w io.Writer) *Pipeline {
	if maxPerAudience <= 0 {
		maxPerAudience = 5
	}
	return &Pipeline{fetcher: fetcher, maxPerAudience: maxPerAudience, w: w}
}

// Run validates topics, enriches sources, and allocates them to audiences.
// A blocked run (CanProceed false) is not an error; errors are reserved for
// invalid invocations.
func (p *Pipeline) Run(ctx context.Context, params types.PreGenParams) (*types.PreGenResult, error) {
	if len(params.Audiences) == 0 {
		return nil, fmt.Errorf("no audiences provided")
	}

	result := &types.PreGenResult{CanProceed: true, DiversityScore: 100}

	if params.SkipValidation {
		result.ValidatedTopics = params.Topics
	} else {
		result.ValidatedTopics, result.InvalidTopics = validateTopics(params.Topics)
		for _, iv := range result.InvalidTopics {
			result.Suggestions = append(result.Suggestions,
				fmt.Sprintf("Topic %q was rejected (%s); rephrase it or pick a more specific angle", iv.Topic.Title, iv.Reason))
		}
	}

	if len(result.ValidatedTopics) == 0 {
		result.CanProceed = false
		result.BlockReason = "no valid topics to generate from"
		return result, nil
	}

	if params.SkipEnrichment {
		return result, nil
	}

	result.EnrichedSources = p.fetcher.FetchAll(ctx)
	fmt.Fprintf(p.w, "enriched %d candidate sources\n", len(result.EnrichedSources))

	result.Allocations = p.allocate(result.EnrichedSources, params.Audiences)
	result.DiversityScore = allocationDiversity(result.Allocations)

	if params.EnforceDiversity && result.DiversityScore < blockingDiversityScore {
		result.CanProceed = false
		result.BlockReason = fmt.Sprintf(
			"allocation diversity %.0f is below the enforced minimum %.0f",
			result.DiversityScore, blockingDiversityScore)
		result.Suggestions = append(result.Suggestions,
			"Add more feeds or providers so each audience gets distinct sources")
	}

	return result, nil
}

// validateTopics filters out empty, too-short, and duplicate topics.
func validateTopics(topics []types.Topic) ([]types.Topic, []types.TopicValidation) {
	var valid []types.Topic
	var invalid []types.TopicValidation
	seen := make(map[string]bool)

	for _, topic := range topics {
		title := strings.TrimSpace(topic.Title)
		switch {
		case title == "":
			invalid = append(invalid, types.TopicValidation{Topic: topic, Reason: "empty title"})
		case len(title) < minTopicLength:
			invalid = append(invalid, types.TopicValidation{Topic: topic, Reason: "title too short"})
		case seen[strings.ToLower(title)]:
			invalid = append(invalid, types.TopicValidation{Topic: topic, Reason: "duplicate topic"})
		default:
			seen[strings.ToLower(title)] = true
			valid = append(valid, topic)
		}
	}
	return valid, invalid
}

// allocate assigns each source to the audience with the strongest affinity,
// breaking ties toward the audience with the fewest sources so far. Every
// audience gets an allocation entry, possibly empty.
func (p *Pipeline) allocate(srcs []types.CandidateSource, audiences []types.Audience) []types.SourceAllocation {
	allocations := make([]types.SourceAllocation, len(audiences))
	for i, a := range audiences {
		allocations[i] = types.SourceAllocation{AudienceID: a.ID}
	}

	for _, src := range srcs {
		best := -1
		bestScore := -1
		for i, audience := range audiences {
			if len(allocations[i].Sources) >= p.maxPerAudience {
				continue
			}
			score := affinity(src, audience)
			if score > bestScore || (score == bestScore && best >= 0 &&
				len(allocations[i].Sources) < len(allocations[best].Sources)) {
				best, bestScore = i, score
			}
		}
		if best >= 0 {
			allocations[best].Sources = append(allocations[best].Sources, src)
		}
	}
	return allocations
}

// affinity counts word overlap between a source's category/title and an
// audience's name/description, lowercased.
func affinity(src types.CandidateSource, audience types.Audience) int {
	sourceWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(src.Category + " " + src.Title)) {
		sourceWords[w] = true
	}

	score := 0
	for _, w := range strings.Fields(strings.ToLower(audience.Name + " " + audience.Description)) {
		if sourceWords[w] {
			score++
		}
	}
	return score
}

// allocationDiversity scores how little URL overlap exists across audience
// allocations: 100 when every audience's sources are distinct, dropping with
// the fraction of URLs shared between audiences.
func allocationDiversity(allocations []types.SourceAllocation) float64 {
	audiencesByURL := make(map[string]map[string]bool)
	for _, alloc := range allocations {
		for _, src := range alloc.Sources {
			if audiencesByURL[src.URL] == nil {
				audiencesByURL[src.URL] = make(map[string]bool)
			}
			audiencesByURL[src.URL][alloc.AudienceID] = true
		}
	}

	unique := len(audiencesByURL)
	if unique == 0 {
		return 100
	}

	duplicated := 0
	for _, audiences := range audiencesByURL {
		if len(audiences) > 1 {
			duplicated++
		}
	}
	if duplicated == 0 {
		return 100
	}

	score := 100 - float64(duplicated)/float64(unique)*100
	if score < 0 {
		score = 0
	}
	return score
}
