// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/newsletter-engine/pkg/types"
)

// RSSProvider pulls items from a list of RSS/Atom feeds. Feeds are fetched
// sequentially, not concurrently: several of the configured feeds sit behind
// the same rate-limited hosts, so the fan-out happens at the provider level
// only. A failing feed is skipped and the remaining feeds are still pulled.
type RSSProvider struct {
	Client *http.Client
	Feeds  []string

	// Keywords keeps only items whose title matches any keyword (case
	// insensitive). Empty disables the filter.
	Keywords []string

	// RecencyWindow drops items older than the window. Zero disables it.
	RecencyWindow time.Duration

	// MaxResults caps the total items returned across all feeds.
	MaxResults int

	// now is the clock for recency checks; tests substitute it.
	now func() time.Time
}

// NewRSSProvider builds an RSS provider from the sources configuration.
func NewRSSProvider(cfg types.SourcesConfig) *RSSProvider {
	return &RSSProvider{
		Client:        &http.Client{Timeout: cfg.Timeout},
		Feeds:         cfg.RSSFeeds,
		Keywords:      cfg.Keywords,
		RecencyWindow: cfg.RecencyWindow,
		MaxResults:    cfg.MaxPerProvider,
		now:           time.Now,
	}
}

// Name returns the provider identifier.
func (p *RSSProvider) Name() string { return "rss" }

// Fetch pulls every configured feed in order and returns the filtered items.
// Per-feed errors (network, parse) are swallowed so one broken feed cannot
// abort the rest.
func (p *RSSProvider) Fetch(ctx context.Context) ([]types.CandidateSource, error) {
	max := p.MaxResults
	if max <= 0 {
		max = 10
	}

	parser := gofeed.NewParser()
	var out []types.CandidateSource

	for _, feedURL := range p.Feeds {
		if len(out) >= max {
			break
		}
		feed, err := p.fetchFeed(ctx, parser, feedURL)
		if err != nil {
			continue
		}

		for i, item := range feed.Items {
			if len(out) >= max {
				break
			}
			if !p.keep(item) {
				continue
			}

			src := types.CandidateSource{
				ID:          fmt.Sprintf("rss-%s", itemID(feedURL, item, i)),
				Title:       strings.TrimSpace(item.Title),
				URL:         strings.TrimSpace(item.Link),
				Publication: strings.TrimSpace(feed.Title),
				Category:    "news",
				Summary:     strings.TrimSpace(item.Description),
			}
			if len(item.Authors) > 0 {
				src.Author = strings.TrimSpace(item.Authors[0].Name)
			}
			if t := publishedAt(item); t != nil {
				src.Date = *t
			}
			out = append(out, src)
		}
	}
	return out, nil
}

func (p *RSSProvider) fetchFeed(ctx context.Context, parser *gofeed.Parser, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, feedURL)
	}
	return parser.Parse(resp.Body)
}

// keep applies the keyword and recency filters to one feed item.
func (p *RSSProvider) keep(item *gofeed.Item) bool {
	if len(p.Keywords) > 0 {
		title := strings.ToLower(item.Title)
		matched := false
		for _, kw := range p.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(title, kw) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if p.RecencyWindow > 0 {
		t := publishedAt(item)
		if t == nil {
			return false
		}
		if p.now().Sub(*t) > p.RecencyWindow {
			return false
		}
	}
	return true
}

func publishedAt(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

// itemID prefers the feed item GUID; falls back to a positional key so items
// without GUIDs still get distinct identifiers.
func itemID(feedURL string, item *gofeed.Item, pos int) string {
	if item.GUID != "" {
		return item.GUID
	}
	return fmt.Sprintf("%s#%d", feedURL, pos)
}
