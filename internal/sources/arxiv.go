// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/newsletter-engine/internal/httputil"
	"github.com/pdiddy/newsletter-engine/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivProvider fetches recent preprints from one arXiv category.
type ArxivProvider struct {
	Client *http.Client

	// Category is the arXiv category to query (e.g. "cs.AI").
	Category string

	// MaxResults caps the number of entries requested.
	MaxResults int

	// UserAgent is sent with API requests.
	UserAgent string
}

// NewArxivProvider builds an arXiv provider from the sources configuration.
func NewArxivProvider(cfg types.SourcesConfig) *ArxivProvider {
	return &ArxivProvider{
		Client:     &http.Client{Timeout: cfg.Timeout},
		Category:   cfg.ArxivCategory,
		MaxResults: cfg.MaxPerProvider,
		UserAgent:  cfg.UserAgent,
	}
}

// Name returns the provider identifier.
func (p *ArxivProvider) Name() string { return "arxiv" }

// Fetch queries the arXiv API for the newest submissions in the configured
// category and maps them to candidate sources.
func (p *ArxivProvider) Fetch(ctx context.Context) ([]types.CandidateSource, error) {
	if p.Category == "" {
		return nil, fmt.Errorf("no arXiv category configured")
	}

	max := p.MaxResults
	if max <= 0 {
		max = 10
	}

	url := fmt.Sprintf("%s?search_query=cat:%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, p.Category, max)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var out []types.CandidateSource
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		src := types.CandidateSource{
			ID:          "arxiv-" + arxivID,
			Title:       strings.TrimSpace(entry.Title),
			URL:         "https://arxiv.org/abs/" + arxivID,
			Publication: "arXiv",
			Category:    p.Category,
			Summary:     strings.TrimSpace(entry.Summary),
		}
		if len(entry.Authors) > 0 {
			src.Author = strings.TrimSpace(entry.Authors[0].Name)
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			src.Date = t
		}
		out = append(out, src)
	}
	return out, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
