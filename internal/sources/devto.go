// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/newsletter-engine/internal/httputil"
	"github.com/pdiddy/newsletter-engine/pkg/types"
)

// devtoAPIBase is the dev.to articles endpoint. Declared as a var so tests
// can substitute an httptest server.
var devtoAPIBase = "https://dev.to/api/articles"

// DevtoProvider fetches recent articles for one dev.to tag.
type DevtoProvider struct {
	Client *http.Client

	// Tag is the dev.to tag to query (e.g. "golang").
	Tag string

	// MaxResults caps the number of articles requested.
	MaxResults int

	// UserAgent is sent with API requests.
	UserAgent string

	// APIKey is an optional dev.to API key for higher rate limits.
	APIKey string
}

// NewDevtoProvider builds a dev.to provider from the sources configuration.
// apiKey may be empty.
func NewDevtoProvider(cfg types.SourcesConfig, apiKey string) *DevtoProvider {
	return &DevtoProvider{
		Client:     &http.Client{Timeout: cfg.Timeout},
		Tag:        cfg.DevtoTag,
		MaxResults: cfg.MaxPerProvider,
		UserAgent:  cfg.UserAgent,
		APIKey:     apiKey,
	}
}

// Name returns the provider identifier.
func (p *DevtoProvider) Name() string { return "devto" }

// devtoArticle is the subset of the dev.to articles API payload we consume.
type devtoArticle struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
	User        struct {
		Name string `json:"name"`
	} `json:"user"`
}

// Fetch queries the dev.to articles API for the configured tag.
func (p *DevtoProvider) Fetch(ctx context.Context) ([]types.CandidateSource, error) {
	if p.Tag == "" {
		return nil, fmt.Errorf("no dev.to tag configured")
	}

	max := p.MaxResults
	if max <= 0 {
		max = 10
	}

	url := fmt.Sprintf("%s?tag=%s&per_page=%d", devtoAPIBase, p.Tag, max)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)
	if p.APIKey != "" {
		req.Header.Set("api-key", p.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("dev.to API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dev.to API returned HTTP %d", resp.StatusCode)
	}

	var articles []devtoArticle
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, fmt.Errorf("parsing dev.to response: %w", err)
	}

	var out []types.CandidateSource
	for _, a := range articles {
		src := types.CandidateSource{
			ID:          fmt.Sprintf("devto-%d", a.ID),
			Title:       a.Title,
			URL:         a.URL,
			Author:      a.User.Name,
			Publication: "DEV Community",
			Category:    p.Tag,
			Summary:     a.Description,
		}
		if t, parseErr := time.Parse(time.RFC3339, a.PublishedAt); parseErr == nil {
			src.Date = t
		}
		out = append(out, src)
	}
	return out, nil
}
