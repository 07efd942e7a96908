// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources gathers candidate newsletter sources from independent
// content providers. Provider failures degrade to fewer sources; aggregation
// itself never fails.
package sources

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/newsletter-engine/internal/cache"
	"github.com/pdiddy/newsletter-engine/pkg/types"
)

// Provider fetches candidate sources from a single upstream. Each provider
// (RSS, arXiv, dev.to) implements this interface per the Strategy pattern.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]types.CandidateSource, error)
}

// Aggregator fans a fetch out to all registered providers and combines the
// results. No deduplication is performed across providers: the same URL may
// legitimately appear twice under different categories.
type Aggregator struct {
	providers []Provider
	cache     *cache.Cache
	w         io.Writer
}

// NewAggregator returns an aggregator over the given providers. Warnings
// about failed providers are written to w. results may be nil to disable
// caching.
func NewAggregator(providers []Provider, results *cache.Cache, w io.Writer) *Aggregator {
	return &Aggregator{providers: providers, cache: results, w: w}
}

// FetchAll invokes every provider concurrently and returns the combined
// candidate list. It never returns an error: a failing provider contributes
// an empty list and a warning line, and any unexpected failure in the
// aggregator itself yields an empty result. The absence of sources is always
// representable as zero results, never as a propagated error.
func (a *Aggregator) FetchAll(ctx context.Context) (combined []types.CandidateSource) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(a.w, "warning: source aggregation failed: %v\n", r)
			combined = nil
		}
	}()

	type providerResult struct {
		name    string
		sources []types.CandidateSource
		err     error
		cached  bool
	}

	ch := make(chan providerResult, len(a.providers))
	var wg sync.WaitGroup

	for _, p := range a.providers {
		if a.cache != nil {
			if hit, ok := a.cache.Get(p.Name()); ok {
				ch <- providerResult{name: p.Name(), sources: hit, cached: true}
				continue
			}
		}
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					ch <- providerResult{name: p.Name(), err: fmt.Errorf("panic: %v", r)}
				}
			}()
			srcs, err := p.Fetch(ctx)
			ch <- providerResult{name: p.Name(), sources: srcs, err: err}
		}(p)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	for pr := range ch {
		if pr.err != nil {
			fmt.Fprintf(a.w, "warning: provider %s failed: %v\n", pr.name, pr.err)
			continue
		}
		if a.cache != nil && !pr.cached {
			a.cache.Put(pr.name, pr.sources)
		}
		combined = append(combined, pr.sources...)
	}
	return combined
}
