// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/newsletter-engine/internal/verify"
	"github.com/pdiddy/newsletter-engine/pkg/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a newsletter's citations against its source allocations",
	Long: `Verify checks that each newsletter section cites only the sources
allocated to its audience, and that sources are not reused across sections.
Both inputs are YAML files: the newsletter as written by generate, and the
allocations (a list of audience_id/sources entries).

With --quick, verify only reports whether each allocated section cites at
least one of its sources.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("newsletter", "newsletter.yaml", "newsletter YAML file")
	verifyCmd.Flags().String("allocations", "allocations.yaml", "source allocations YAML file")
	verifyCmd.Flags().Bool("quick", false, "pass/fail check only")
	verifyCmd.Flags().Bool("json", false, "output the full report as JSON")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	newsletterFile, _ := cmd.Flags().GetString("newsletter")
	allocationsFile, _ := cmd.Flags().GetString("allocations")

	var newsletter types.Newsletter
	if err := readYAML(newsletterFile, &newsletter); err != nil {
		return err
	}
	var allocations []types.SourceAllocation
	if err := readYAML(allocationsFile, &allocations); err != nil {
		return err
	}

	quick, _ := cmd.Flags().GetBool("quick")
	if quick {
		if !verify.QuickVerify(&newsletter, allocations) {
			return fmt.Errorf("verification failed: a section cites none of its allocated sources")
		}
		fmt.Println("OK")
		return nil
	}

	report := verify.VerifyNewsletter(&newsletter, allocations)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if !report.IsValid {
		return fmt.Errorf("verification failed")
	}
	return nil
}

func printReport(report types.NewsletterVerification) {
	for _, section := range report.Sections {
		status := "ok"
		if !section.IsValid {
			status = "FAIL"
		}
		fmt.Fprintf(os.Stdout, "%-4s  %s: %d cited, %d valid\n",
			status, section.AudienceID, len(section.CitedURLs), len(section.ValidCitations))
		for _, issue := range section.Issues {
			fmt.Fprintf(os.Stdout, "      - %s\n", issue)
		}
	}

	fmt.Fprintf(os.Stdout, "\ndiversity: %.0f (%d unique sources, %d citations)\n",
		report.Diversity.DiversityScore, report.Diversity.UniqueURLCount, report.Diversity.TotalCitations)
	for _, issue := range report.Diversity.Issues {
		fmt.Fprintf(os.Stdout, "  - %s\n", issue)
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(os.Stdout)
		for _, rec := range report.Recommendations {
			fmt.Fprintf(os.Stdout, "recommendation: %s\n", rec)
		}
	}
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
