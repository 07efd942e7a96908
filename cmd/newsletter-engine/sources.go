// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/newsletter-engine/internal/cache"
	"github.com/pdiddy/newsletter-engine/internal/sources"
	"github.com/pdiddy/newsletter-engine/pkg/types"
)

const defaultUserAgent = "newsletter-engine/0.1"

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Fetch candidate sources from the configured providers",
	Long: `Sources fetches candidate content from RSS feeds, the arXiv API, and the
dev.to API, concurrently, and prints the combined list. A provider failure
is reported as a warning; the remaining providers still contribute.`,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().StringSlice("feed", nil, "RSS feed URL (repeatable)")
	sourcesCmd.Flags().StringSlice("keyword", nil, "keep only RSS items whose title matches a keyword (repeatable)")
	sourcesCmd.Flags().Duration("recency", 0, "drop items older than this (0 = keep all)")
	sourcesCmd.Flags().Int("max-per-provider", 10, "maximum sources per provider")
	sourcesCmd.Flags().String("arxiv-category", "", "arXiv category to query (e.g. cs.AI)")
	sourcesCmd.Flags().String("devto-tag", "", "dev.to tag to query (e.g. golang)")
	sourcesCmd.Flags().Duration("timeout", 0, "HTTP request timeout (0 = none)")
	sourcesCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(sourcesCmd)
}

// sourcesConfig builds the aggregation config from flags, falling back to
// the viper config file for unset flags.
func sourcesConfig(cmd *cobra.Command) types.SourcesConfig {
	feeds, _ := cmd.Flags().GetStringSlice("feed")
	if len(feeds) == 0 {
		feeds = viper.GetStringSlice("sources.rss_feeds")
	}
	keywords, _ := cmd.Flags().GetStringSlice("keyword")
	if len(keywords) == 0 {
		keywords = viper.GetStringSlice("sources.keywords")
	}
	recency, _ := cmd.Flags().GetDuration("recency")
	if recency == 0 {
		recency = viper.GetDuration("sources.recency_window")
	}
	maxPer, _ := cmd.Flags().GetInt("max-per-provider")
	arxivCat, _ := cmd.Flags().GetString("arxiv-category")
	if arxivCat == "" {
		arxivCat = viper.GetString("sources.arxiv_category")
	}
	devtoTag, _ := cmd.Flags().GetString("devto-tag")
	if devtoTag == "" {
		devtoTag = viper.GetString("sources.devto_tag")
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	return types.SourcesConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		RSSFeeds:       feeds,
		Keywords:       keywords,
		RecencyWindow:  recency,
		MaxPerProvider: maxPer,
		ArxivCategory:  arxivCat,
		DevtoTag:       devtoTag,
		EnableRSS:      len(feeds) > 0,
		EnableArxiv:    arxivCat != "",
		EnableDevto:    devtoTag != "",
		CacheCapacity:  viper.GetInt("sources.cache_capacity"),
		CacheTTL:       viper.GetDuration("sources.cache_ttl"),
	}
}

// newAggregator assembles the enabled providers behind one aggregator.
func newAggregator(cfg types.SourcesConfig) *sources.Aggregator {
	var providers []sources.Provider
	if cfg.EnableRSS {
		providers = append(providers, sources.NewRSSProvider(cfg))
	}
	if cfg.EnableArxiv {
		providers = append(providers, sources.NewArxivProvider(cfg))
	}
	if cfg.EnableDevto {
		providers = append(providers, sources.NewDevtoProvider(cfg, secretDefault("devto-api-key", "")))
	}

	var results *cache.Cache
	if cfg.CacheCapacity > 0 {
		ttl := cfg.CacheTTL
		if ttl == 0 {
			ttl = 15 * time.Minute
		}
		results = cache.New(cfg.CacheCapacity, ttl)
	}
	return sources.NewAggregator(providers, results, os.Stderr)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg := sourcesConfig(cmd)
	if !cfg.EnableRSS && !cfg.EnableArxiv && !cfg.EnableDevto {
		return fmt.Errorf("no providers configured: set --feed, --arxiv-category, or --devto-tag")
	}

	agg := newAggregator(cfg)
	srcs := agg.FetchAll(context.Background())

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(srcs)
	}

	if len(srcs) == 0 {
		fmt.Println("No sources found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-50s  %-12s  %s\n", "ID", "Title", "Category", "URL")
	for _, src := range srcs {
		title := src.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-14s  %-50s  %-12s  %s\n", src.ID, title, src.Category, src.URL)
	}
	fmt.Fprintf(os.Stdout, "\n%d sources\n", len(srcs))
	return nil
}
