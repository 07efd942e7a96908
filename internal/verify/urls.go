// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify checks generated newsletters against their source
// allocations: citation extraction, URL matching, and cross-section
// source diversity scoring.
package verify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// markdownLinkRe matches Markdown links: [label](https://...).
	markdownLinkRe = regexp.MustCompile(`\[[^\]]*\]\((https?://[^)\s]+)\)`)

	// bareURLRe matches URLs appearing in plain text.
	bareURLRe = regexp.MustCompile(`https?://[^\s<>"'\)\]]+`)
)

// ExtractURLs returns every URL referenced by a block of rich text, in
// first-seen order with duplicates removed. It collects explicit link
// targets first (HTML anchors, then Markdown links), then scans for bare
// URLs in the remaining text so that a link target is never counted twice.
func ExtractURLs(content string) []string {
	var ordered []string
	seen := make(map[string]bool)
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			return
		}
		seen[raw] = true
		ordered = append(ordered, raw)
	}

	// HTML anchors. The parser tolerates fragments and plain text, so this
	// is safe to run on Markdown content too.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(content)); err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			if href, ok := sel.Attr("href"); ok && strings.HasPrefix(href, "http") {
				add(href)
			}
		})
	}

	// Markdown link targets.
	for _, m := range markdownLinkRe.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}

	// Bare URLs. The seen set keeps link targets from being double-counted.
	for _, raw := range bareURLRe.FindAllString(content, -1) {
		add(strings.TrimRight(raw, ".,;:!?"))
	}

	return ordered
}

// NormalizeURL reduces a URL to a comparable form: the host is lowercased
// with a leading "www." removed, one trailing slash is stripped from the
// path, and the scheme, remaining path casing, and query string are kept.
// Malformed input falls back to lowercasing the raw string and stripping a
// trailing slash.
//
// The normalization is intentionally shallow: query parameters are not
// reordered and percent-escapes are not decoded, so two differently escaped
// spellings of the same resource will not match.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(strings.ToLower(raw), "/")
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimSuffix(u.Path, "/")

	var b strings.Builder
	if u.Scheme != "" {
		b.WriteString(strings.ToLower(u.Scheme))
		b.WriteString("://")
	}
	b.WriteString(host)
	b.WriteString(path)
	if u.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(u.RawQuery)
	}
	return b.String()
}

// URLsMatch reports whether two URLs refer to the same resource under the
// shallow normalization above.
func URLsMatch(a, b string) bool {
	return NormalizeURL(a) == NormalizeURL(b)
}
