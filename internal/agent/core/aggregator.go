package core

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// HybridSearchAggregator fans a query out to every configured search
// provider and merges their results into a bounded, recency-biased list.
type HybridSearchAggregator struct {
	providers  []SearchProvider
	timeout    time.Duration
	maxResults int
	logger     *log.Logger

	// onProviderError, when set, is invoked with the provider name for
	// every swallowed search failure.
	onProviderError func(provider string)
}

// NewHybridSearchAggregator creates an aggregator over the given providers.
func NewHybridSearchAggregator(providers []SearchProvider, timeout time.Duration, maxResults int, logger *log.Logger) *HybridSearchAggregator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[AGG] ", log.LstdFlags)
	}
	return &HybridSearchAggregator{providers: providers, timeout: timeout, maxResults: maxResults, logger: logger}
}

// Search queries all providers concurrently, each bounded by the aggregator
// timeout. Provider failures contribute nothing and never fail the merge.
// Merged results are deduplicated by URL, filtered for recency, ordered so
// dated entries come first, and truncated to the result cap.
func (a *HybridSearchAggregator) Search(ctx context.Context, query string) []SearchResult {
	perProvider := make([][]SearchResult, len(a.providers))

	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p SearchProvider) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			results, err := p.Search(pctx, query)
			if err != nil {
				a.logger.Printf("%s search failed: %v", p.Name(), err)
				if a.onProviderError != nil {
					a.onProviderError(p.Name())
				}
				return
			}
			a.logger.Printf("%s retrieved %d results", p.Name(), len(results))
			perProvider[i] = results
		}(i, p)
	}
	wg.Wait()

	// Concatenate in provider registration order so merge behavior does not
	// depend on which goroutine finished first.
	var combined []SearchResult
	for _, results := range perProvider {
		combined = append(combined, results...)
	}

	merged := a.merge(combined)
	if len(merged) == 0 {
		a.logger.Printf("no valid results from any provider")
	}
	return merged
}

// merge deduplicates by URL and keeps only current-year or undated entries.
// A URL is recorded as seen only when its first occurrence survives the
// recency filter, so a later dated duplicate can still make the cut.
func (a *HybridSearchAggregator) merge(in []SearchResult) []SearchResult {
	seen := make(map[string]bool)
	currentYear := strconv.Itoa(time.Now().Year())

	var out []SearchResult
	for _, r := range in {
		if r.URL == "" || r.URL == SentinelURL || seen[r.URL] {
			continue
		}
		if r.PublishedAt == "" {
			r.PublishedAt = SentinelDate
		}
		if strings.Contains(r.PublishedAt, currentYear) || r.PublishedAt == SentinelDate {
			out = append(out, r)
			seen[r.URL] = true
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt != SentinelDate && out[j].PublishedAt == SentinelDate
	})

	if len(out) > a.maxResults {
		out = out[:a.maxResults]
	}
	return out
}
