// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate sequences the newsletter generation pipeline:
// pre-generation checks, source allocation, generation with bounded retries,
// and advisory citation verification. The orchestrator's entry point never
// returns an error; every outcome is a typed result carrying metrics.
package orchestrate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/newsletter-engine/internal/verify"
	"github.com/pdiddy/newsletter-engine/pkg/types"
)

// Pipeline runs the pre-generation checks: topic validation, enrichment, and
// source allocation. Satisfied by pregen.Pipeline.
type Pipeline interface {
	Run(ctx context.Context, params types.PreGenParams) (*types.PreGenResult, error)
}

// Generator produces a newsletter from topics, audiences, and allocations.
// Satisfied by generate.TemplateGenerator or any AI-backed implementation.
type Generator interface {
	Generate(ctx context.Context, params types.GenerateParams) (*types.Newsletter, error)
}

// Config holds one run's toggles plus an optional progress callback. The
// callback is invoked synchronously at each stage transition; transitions
// are also mirrored to the orchestrator's log writer.
type Config struct {
	types.OrchestratorConfig

	// Progress, when set, receives each stage transition.
	Progress func(stage types.Stage, message string)
}

// Params carries one orchestration's inputs.
type Params struct {
	// Title is the issue title.
	Title string

	// Topics are the subjects to cover.
	Topics []types.Topic

	// Audiences are the reader segments to write for.
	Audiences []types.Audience
}

// Orchestrator drives the generation state machine. Construct one per
// pipeline/generator pairing; it holds no per-run state, so a single
// orchestrator may serve concurrent runs.
type Orchestrator struct {
	pipeline  Pipeline
	generator Generator
	w         io.Writer
}

// New returns an orchestrator over the given collaborators. Stage
// transitions and warnings are written to w.
func New(pipeline Pipeline, generator Generator, w io.Writer) *Orchestrator {
	return &Orchestrator{pipeline: pipeline, generator: generator, w: w}
}

// Run executes the full state machine: init → pre-generation →
// source-allocation → generation → verification → complete, with error as a
// terminal reachable from any stage. Stages run strictly sequentially. Run
// never returns an error and never panics; unexpected failures become a
// failure result carrying whatever metrics had accumulated.
func (o *Orchestrator) Run(ctx context.Context, params Params, cfg Config) (result types.Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Newsletter = nil
			result.Error = fmt.Sprintf("unexpected failure: %v", r)
			result.Metrics.TotalTime = time.Since(start)
		}
	}()

	progress := func(stage types.Stage, message string) {
		fmt.Fprintf(o.w, "[%s] %s\n", stage, message)
		if cfg.Progress != nil {
			cfg.Progress(stage, message)
		}
	}

	fail := func(stage types.Stage, msg string) types.Result {
		progress(types.StageError, msg)
		result.Success = false
		result.Error = msg
		result.Metrics.TotalTime = time.Since(start)
		return result
	}

	progress(types.StageInit, fmt.Sprintf("starting generation for %d topics, %d audiences",
		len(params.Topics), len(params.Audiences)))

	// Pre-generation. A block here is final: no retry, later stages never run.
	progress(types.StagePreGeneration, "running pre-generation checks")
	preStart := time.Now()
	pre, err := o.pipeline.Run(ctx, types.PreGenParams{
		Topics:           params.Topics,
		Audiences:        params.Audiences,
		SkipValidation:   cfg.SkipValidation,
		SkipEnrichment:   cfg.SkipEnrichment,
		EnforceDiversity: cfg.EnforceDiversity,
	})
	result.Metrics.PreGenerationTime = time.Since(preStart)
	if err != nil {
		return fail(types.StagePreGeneration, fmt.Sprintf("pre-generation failed: %v", err))
	}

	result.PreGeneration = pre
	result.Metrics.ValidTopics = len(pre.ValidatedTopics)
	result.Metrics.FilteredTopics = len(pre.InvalidTopics)
	result.Metrics.SourcesFetched = len(pre.EnrichedSources)

	if !pre.CanProceed {
		return fail(types.StagePreGeneration, pre.BlockReason)
	}

	// Source allocation: the allocations were computed by pre-generation;
	// this stage records them and reports progress.
	result.Allocations = pre.Allocations
	result.Metrics.SourcesAllocated = countAllocated(pre.Allocations)
	result.Metrics.DiversityScore = pre.DiversityScore
	progress(types.StageSourceAllocation, fmt.Sprintf("%d sources allocated across %d audiences (diversity %.0f)",
		result.Metrics.SourcesAllocated, len(pre.Allocations), pre.DiversityScore))

	// Generation, retried with identical parameters and no delay between
	// attempts.
	progress(types.StageGeneration, "generating newsletter")
	genParams := types.GenerateParams{
		Title:       params.Title,
		Topics:      pre.ValidatedTopics,
		Audiences:   params.Audiences,
		Allocations: pre.Allocations,
	}

	// A negative retry count would skip generation entirely; treat it as zero.
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	genStart := time.Now()
	var newsletter *types.Newsletter
	var genErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			result.Metrics.Retries++
			progress(types.StageGeneration, fmt.Sprintf("retrying generation (attempt %d of %d)",
				attempt+1, maxRetries+1))
		}
		newsletter, genErr = o.generator.Generate(ctx, genParams)
		if genErr == nil && newsletter == nil {
			genErr = fmt.Errorf("generator returned no newsletter")
		}
		if genErr == nil {
			break
		}
	}
	result.Metrics.GenerationTime = time.Since(genStart)

	if genErr != nil {
		return fail(types.StageGeneration, fmt.Sprintf("generation failed after %d attempts: %v",
			maxRetries+1, genErr))
	}

	// Verification is advisory: issues are attached to the result but never
	// flip Success.
	if cfg.EnableVerification && len(pre.Allocations) > 0 {
		progress(types.StageVerification, "verifying citations and source diversity")
		verStart := time.Now()
		v := verify.VerifyNewsletter(newsletter, pre.Allocations)
		result.Metrics.VerificationTime = time.Since(verStart)
		result.Verification = &v
		if !v.IsValid {
			progress(types.StageVerification, fmt.Sprintf("verification found issues in %d sections (advisory)",
				invalidSectionCount(v)))
		}
	}

	result.Success = true
	result.Newsletter = newsletter
	result.Metrics.TotalTime = time.Since(start)
	progress(types.StageComplete, fmt.Sprintf("newsletter generated in %v", result.Metrics.TotalTime.Round(time.Millisecond)))
	return result
}

// RunQuick is the fast-iteration preset: skip validation and enrichment,
// no verification, no retries.
func (o *Orchestrator) RunQuick(ctx context.Context, params Params) types.Result {
	return o.Run(ctx, params, Config{
		OrchestratorConfig: types.OrchestratorConfig{
			SkipValidation: true,
			SkipEnrichment: true,
			MaxRetries:     0,
		},
	})
}

// RunFull is the production preset: all checks enabled and one retry.
// progress may be nil.
func (o *Orchestrator) RunFull(ctx context.Context, params Params, progress func(types.Stage, string)) types.Result {
	return o.Run(ctx, params, Config{
		OrchestratorConfig: types.OrchestratorConfig{
			EnableVerification: true,
			EnforceDiversity:   true,
			MaxRetries:         1,
		},
		Progress: progress,
	})
}

func countAllocated(allocations []types.SourceAllocation) int {
	total := 0
	for _, a := range allocations {
		total += len(a.Sources)
	}
	return total
}

func invalidSectionCount(v types.NewsletterVerification) int {
	n := 0
	for _, sec := range v.Sections {
		if !sec.IsValid {
			n++
		}
	}
	return n
}
