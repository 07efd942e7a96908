package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/newsletter-engine/internal/cache"
	"github.com/pdiddy/newsletter-engine/pkg/types"
)

// --- mock provider ---

type mockProvider struct {
	name    string
	sources []types.CandidateSource
	err     error
	panics  bool
	calls   int
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Fetch(_ context.Context) ([]types.CandidateSource, error) {
	m.calls++
	if m.panics {
		panic("provider exploded")
	}
	return m.sources, m.err
}

func namedSources(prefix string, n int) []types.CandidateSource {
	var out []types.CandidateSource
	for i := 0; i < n; i++ {
		out = append(out, types.CandidateSource{
			ID:    fmt.Sprintf("%s-%d", prefix, i),
			Title: fmt.Sprintf("%s item %d", prefix, i),
			URL:   fmt.Sprintf("https://%s.example.com/%d", prefix, i),
		})
	}
	return out
}

// --- Aggregator ---

func TestFetchAllCombinesProviders(t *testing.T) {
	a := NewAggregator([]Provider{
		&mockProvider{name: "p1", sources: namedSources("p1", 2)},
		&mockProvider{name: "p2", sources: namedSources("p2", 3)},
	}, nil, &bytes.Buffer{})

	got := a.FetchAll(context.Background())
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

func TestFetchAllIsolatesProviderFailure(t *testing.T) {
	var buf bytes.Buffer
	a := NewAggregator([]Provider{
		&mockProvider{name: "broken", err: fmt.Errorf("network down")},
		&mockProvider{name: "ok", sources: namedSources("ok", 2)},
	}, nil, &buf)

	got := a.FetchAll(context.Background())
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 from the surviving provider", len(got))
	}
	if !strings.Contains(buf.String(), "warning: provider broken failed") {
		t.Errorf("missing warning, output: %q", buf.String())
	}
}

func TestFetchAllSurvivesProviderPanic(t *testing.T) {
	var buf bytes.Buffer
	a := NewAggregator([]Provider{
		&mockProvider{name: "panicky", panics: true},
		&mockProvider{name: "ok", sources: namedSources("ok", 1)},
	}, nil, &buf)

	got := a.FetchAll(context.Background())
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	if !strings.Contains(buf.String(), "panicky") {
		t.Errorf("missing warning, output: %q", buf.String())
	}
}

func TestFetchAllAllProvidersFail(t *testing.T) {
	a := NewAggregator([]Provider{
		&mockProvider{name: "a", err: fmt.Errorf("down")},
		&mockProvider{name: "b", err: fmt.Errorf("also down")},
	}, nil, &bytes.Buffer{})

	if got := a.FetchAll(context.Background()); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestFetchAllNoDedupAcrossProviders(t *testing.T) {
	shared := types.CandidateSource{ID: "x", URL: "https://example.com/1", Category: "ai"}
	dup := shared
	dup.Category = "webdev"

	a := NewAggregator([]Provider{
		&mockProvider{name: "p1", sources: []types.CandidateSource{shared}},
		&mockProvider{name: "p2", sources: []types.CandidateSource{dup}},
	}, nil, &bytes.Buffer{})

	got := a.FetchAll(context.Background())
	if len(got) != 2 {
		t.Errorf("len = %d, want 2: same URL under different categories is kept", len(got))
	}
}

func TestFetchAllUsesCache(t *testing.T) {
	p := &mockProvider{name: "p1", sources: namedSources("p1", 2)}
	c := cache.New(4, time.Minute)
	a := NewAggregator([]Provider{p}, c, &bytes.Buffer{})

	first := a.FetchAll(context.Background())
	second := a.FetchAll(context.Background())

	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second call served from cache)", p.calls)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Errorf("lens = %d, %d, want 2, 2", len(first), len(second))
	}
}

// --- RSS provider ---

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>Example Feed</title>
  <item>
    <title>Go 1.26 released</title>
    <link>https://example.com/go-release</link>
    <guid>go-release</guid>
    <description>The Go team has released Go 1.26.</description>
    <pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Rust roundup</title>
    <link>https://example.com/rust</link>
    <guid>rust-roundup</guid>
    <pubDate>Mon, 24 Aug 2026 09:00:00 GMT</pubDate>
  </item>
</channel></rss>`

func TestRSSProviderFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleRSS)
	}))
	defer ts.Close()

	p := &RSSProvider{
		Client:     ts.Client(),
		Feeds:      []string{ts.URL},
		MaxResults: 10,
		now:        time.Now,
	}

	got, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "rss-go-release" {
		t.Errorf("ID = %q, want provider-prefixed GUID", got[0].ID)
	}
	if got[0].Publication != "Example Feed" {
		t.Errorf("Publication = %q", got[0].Publication)
	}
	if got[0].URL != "https://example.com/go-release" {
		t.Errorf("URL = %q", got[0].URL)
	}
}

func TestRSSProviderKeywordFilter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleRSS)
	}))
	defer ts.Close()

	p := &RSSProvider{
		Client:     ts.Client(),
		Feeds:      []string{ts.URL},
		Keywords:   []string{"go"},
		MaxResults: 10,
		now:        time.Now,
	}

	got, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 || !strings.Contains(got[0].Title, "Go") {
		t.Errorf("got %v, want only the Go item", got)
	}
}

func TestRSSProviderRecencyWindow(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleRSS)
	}))
	defer ts.Close()

	p := &RSSProvider{
		Client:        ts.Client(),
		Feeds:         []string{ts.URL},
		RecencyWindow: 30 * time.Minute,
		MaxResults:    10,
		// Pretend it is 20 minutes after the first item's pubDate.
		now: func() time.Time {
			return time.Date(2026, 8, 24, 10, 20, 0, 0, time.UTC)
		},
	}

	got, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (older item outside window)", len(got))
	}
	if got[0].ID != "rss-go-release" {
		t.Errorf("kept item = %q, want the recent one", got[0].ID)
	}
}

func TestRSSProviderContinuesAfterBrokenFeed(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleRSS)
	}))
	defer working.Close()

	p := &RSSProvider{
		Client:     working.Client(),
		Feeds:      []string{broken.URL, working.URL},
		MaxResults: 10,
		now:        time.Now,
	}

	got, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch should not fail on a broken sub-feed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 from the working feed", len(got))
	}
}

// --- arXiv provider ---

const sampleArxivXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2608.01234v1</id>
    <title>Scaling Laws Revisited</title>
    <summary>We revisit scaling laws.</summary>
    <published>2026-08-20T12:00:00Z</published>
    <author><name>Ada Example</name></author>
  </entry>
</feed>`

func TestArxivProviderFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sampleArxivXML)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	p := &ArxivProvider{Client: ts.Client(), Category: "cs.AI", MaxResults: 5}
	got, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	s := got[0]
	if s.ID != "arxiv-2608.01234" {
		t.Errorf("ID = %q", s.ID)
	}
	if s.URL != "https://arxiv.org/abs/2608.01234" {
		t.Errorf("URL = %q", s.URL)
	}
	if s.Category != "cs.AI" {
		t.Errorf("Category = %q", s.Category)
	}
	if s.Author != "Ada Example" {
		t.Errorf("Author = %q", s.Author)
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"https://arxiv.org/abs/2301.12345", "2301.12345"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := extractArxivID(tt.input); got != tt.want {
				t.Errorf("extractArxivID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- dev.to provider ---

const sampleDevtoJSON = `[
  {
    "id": 42,
    "title": "Profiling Go services",
    "url": "https://dev.to/example/profiling-go",
    "description": "pprof in anger.",
    "published_at": "2026-08-22T08:30:00Z",
    "user": {"name": "Sam Writer"}
  }
]`

func TestDevtoProviderFetch(t *testing.T) {
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleDevtoJSON)
	}))
	defer ts.Close()

	old := devtoAPIBase
	devtoAPIBase = ts.URL
	defer func() { devtoAPIBase = old }()

	p := &DevtoProvider{Client: ts.Client(), Tag: "golang", MaxResults: 5, APIKey: "sekrit"}
	got, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != "devto-42" {
		t.Errorf("ID = %q", got[0].ID)
	}
	if got[0].Category != "golang" {
		t.Errorf("Category = %q", got[0].Category)
	}
	if gotKey != "sekrit" {
		t.Errorf("api-key header = %q", gotKey)
	}
}

func TestDevtoProviderHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	old := devtoAPIBase
	devtoAPIBase = ts.URL
	defer func() { devtoAPIBase = old }()

	p := &DevtoProvider{Client: ts.Client(), Tag: "golang"}
	if _, err := p.Fetch(context.Background()); err == nil {
		t.Error("expected error on HTTP 503")
	}
}
