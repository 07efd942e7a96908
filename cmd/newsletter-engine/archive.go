// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newsletter-engine/internal/archive"
	"github.com/pdiddy/newsletter-engine/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect the generation run history",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generation runs, newest first",
	RunE:  runArchiveList,
}

func init() {
	archiveCmd.PersistentFlags().String("archive-dir", "archive", "run history directory")
	archiveCmd.PersistentFlags().Int("max-results", 20, "maximum runs to list")
	archiveListCmd.Flags().Bool("json", false, "output runs as JSON")

	archiveCmd.AddCommand(archiveListCmd)
	rootCmd.AddCommand(archiveCmd)
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("archive-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	store, err := archive.NewStore(types.ArchiveConfig{Dir: dir, MaxResults: maxResults})
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-20s  %-6s  %-30s  %-8s  %-9s  %s\n",
		"ID", "Created", "OK", "Title", "Sections", "Diversity", "Time")
	for _, run := range runs {
		ok := "yes"
		if !run.Success {
			ok = "no"
		}
		title := run.Title
		if title == "" {
			title = run.Error
		}
		if len(title) > 30 {
			title = title[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-5d  %-20s  %-6s  %-30s  %-8d  %-9.0f  %v\n",
			run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04:05"), ok,
			title, run.Sections, run.DiversityScore,
			time.Duration(run.TotalMillis)*time.Millisecond)
	}
	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}
