// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/newsletter-engine/internal/archive"
	"github.com/pdiddy/newsletter-engine/internal/generate"
	"github.com/pdiddy/newsletter-engine/internal/orchestrate"
	"github.com/pdiddy/newsletter-engine/internal/pregen"
	"github.com/pdiddy/newsletter-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topics...]",
	Short: "Generate a newsletter for the configured audiences",
	Long: `Generate runs the full pipeline: topic validation, source enrichment,
per-audience allocation, section generation, and advisory citation
verification. Each positional argument is one topic title.

Audiences come from a YAML file (a list of id/name/description entries).
The result is written as YAML to --out, or stdout when unset, and the run
is recorded in the archive.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("title", "", "issue title")
	generateCmd.Flags().String("audiences", "audiences.yaml", "YAML file listing the audiences")
	generateCmd.Flags().String("out", "", "write the newsletter YAML here (default stdout)")
	generateCmd.Flags().Bool("quick", false, "fast preset: skip validation, enrichment, and verification")
	generateCmd.Flags().Bool("full", false, "production preset: verification, diversity enforcement, one retry")
	generateCmd.Flags().Bool("verify", false, "run citation verification after generation")
	generateCmd.Flags().Bool("enforce-diversity", false, "block generation when allocation diversity is low")
	generateCmd.Flags().Int("max-retries", 0, "extra generation attempts after a failure")
	generateCmd.Flags().Int("max-section-sources", 5, "maximum sources cited per section")
	generateCmd.Flags().Int("max-per-audience", 5, "maximum sources allocated per audience")
	generateCmd.Flags().String("archive-dir", "archive", "run history directory (empty disables recording)")

	// Provider flags shared with the sources command.
	generateCmd.Flags().StringSlice("feed", nil, "RSS feed URL (repeatable)")
	generateCmd.Flags().StringSlice("keyword", nil, "keep only RSS items whose title matches a keyword (repeatable)")
	generateCmd.Flags().Duration("recency", 0, "drop items older than this (0 = keep all)")
	generateCmd.Flags().Int("max-per-provider", 10, "maximum sources per provider")
	generateCmd.Flags().String("arxiv-category", "", "arXiv category to query (e.g. cs.AI)")
	generateCmd.Flags().String("devto-tag", "", "dev.to tag to query (e.g. golang)")
	generateCmd.Flags().Duration("timeout", 0, "HTTP request timeout (0 = none)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more topic titles")
	}

	audiencesFile, _ := cmd.Flags().GetString("audiences")
	audiences, err := loadAudiences(audiencesFile)
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		title = "Newsletter: " + strings.Join(args, ", ")
	}

	topics := make([]types.Topic, len(args))
	for i, arg := range args {
		topics[i] = types.Topic{Title: arg}
	}

	maxPerAudience, _ := cmd.Flags().GetInt("max-per-audience")
	maxSectionSources, _ := cmd.Flags().GetInt("max-section-sources")

	pipeline := pregen.New(newAggregator(sourcesConfig(cmd)), maxPerAudience, os.Stderr)
	orch := orchestrate.New(pipeline, generate.NewTemplate(maxSectionSources), os.Stderr)

	params := orchestrate.Params{Title: title, Topics: topics, Audiences: audiences}

	quick, _ := cmd.Flags().GetBool("quick")
	full, _ := cmd.Flags().GetBool("full")

	var result types.Result
	switch {
	case quick:
		result = orch.RunQuick(context.Background(), params)
	case full:
		result = orch.RunFull(context.Background(), params, nil)
	default:
		verify, _ := cmd.Flags().GetBool("verify")
		enforce, _ := cmd.Flags().GetBool("enforce-diversity")
		maxRetries, _ := cmd.Flags().GetInt("max-retries")
		result = orch.Run(context.Background(), params, orchestrate.Config{
			OrchestratorConfig: types.OrchestratorConfig{
				EnableVerification: verify,
				EnforceDiversity:   enforce,
				MaxRetries:         maxRetries,
			},
		})
	}

	recordRun(cmd, result)

	if !result.Success {
		if result.PreGeneration != nil {
			for _, s := range result.PreGeneration.Suggestions {
				fmt.Fprintf(os.Stderr, "suggestion: %s\n", s)
			}
		}
		return fmt.Errorf("generation failed: %s", result.Error)
	}

	if result.Verification != nil && !result.Verification.IsValid {
		for _, rec := range result.Verification.Recommendations {
			fmt.Fprintf(os.Stderr, "verification: %s\n", rec)
		}
	}

	return writeNewsletter(cmd, result.Newsletter)
}

// recordRun stores the run in the archive. Archive failures are warnings;
// the generated newsletter is still delivered.
func recordRun(cmd *cobra.Command, result types.Result) {
	archiveDir, _ := cmd.Flags().GetString("archive-dir")
	if archiveDir == "" {
		return
	}
	store, err := archive.NewStore(types.ArchiveConfig{Dir: archiveDir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: archive unavailable: %v\n", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(context.Background(), result); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording run failed: %v\n", err)
	}
}

func writeNewsletter(cmd *cobra.Command, newsletter *types.Newsletter) error {
	data, err := yaml.Marshal(newsletter)
	if err != nil {
		return fmt.Errorf("marshaling newsletter: %w", err)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing newsletter: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	return nil
}

// loadAudiences reads a YAML list of audiences.
func loadAudiences(path string) ([]types.Audience, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading audiences file: %w", err)
	}
	var audiences []types.Audience
	if err := yaml.Unmarshal(data, &audiences); err != nil {
		return nil, fmt.Errorf("parsing audiences file: %w", err)
	}
	if len(audiences) == 0 {
		return nil, fmt.Errorf("audiences file %s lists no audiences", path)
	}
	return audiences, nil
}
