package core

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mohammad-safakhou/deepresearch/config"
)

// TavilyClient implements SearchProvider using the Tavily search API.
type TavilyClient struct {
	cfg      config.SearchConfig
	http     *HTTPClient
	endpoint string
}

func (t *TavilyClient) Name() string { return "Tavily" }

func (t *TavilyClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint := t.endpoint
	if endpoint == "" {
		endpoint = "https://api.tavily.com/search"
	}
	year := strconv.Itoa(time.Now().Year())
	body := map[string]any{
		"query":        fmt.Sprintf("%s %s", query, year),
		"max_results":  max1(t.cfg.MaxResults, 5),
		"search_depth": "advanced",
		"start_date":   year + "-01-01",
	}
	headers := map[string]string{"Authorization": "Bearer " + t.cfg.TavilyAPIKey}

	var resp struct {
		Results []struct {
			Title         string `json:"title"`
			Content       string `json:"content"`
			URL           string `json:"url"`
			PublishedDate string `json:"published_date"`
		} `json:"results"`
	}
	if err := t.http.DoJSON(ctx, "POST", endpoint, headers, body, &resp); err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}

	out := make([]SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, SearchResult{
			Title:       orSentinel(r.Title, SentinelTitle),
			Description: orSentinel(r.Content, SentinelDescription),
			URL:         orSentinel(r.URL, SentinelURL),
			PublishedAt: orSentinel(r.PublishedDate, SentinelDate),
			Source:      "Tavily",
			Icon:        "📝",
		})
	}
	return out, nil
}

// SerpAPIClient implements SearchProvider using serpapi.com.
type SerpAPIClient struct {
	cfg      config.SearchConfig
	http     *HTTPClient
	endpoint string
}

func (s *SerpAPIClient) Name() string { return "SerpAPI" }

func (s *SerpAPIClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	base := s.endpoint
	if base == "" {
		base = "https://serpapi.com/search.json"
	}
	year := strconv.Itoa(time.Now().Year())
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s %s", query, year))
	params.Set("api_key", s.cfg.SerpAPIAPIKey)
	params.Set("num", strconv.Itoa(max1(s.cfg.MaxResults, 5)))
	params.Set("tbs", "qdr:m")

	var resp struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
			Date    string `json:"date"`
		} `json:"organic_results"`
	}
	if err := s.http.DoJSON(ctx, "GET", base+"?"+params.Encode(), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("serpapi search: %w", err)
	}

	out := make([]SearchResult, 0, len(resp.OrganicResults))
	for _, r := range resp.OrganicResults {
		out = append(out, SearchResult{
			Title:       orSentinel(r.Title, SentinelTitle),
			Description: orSentinel(r.Snippet, SentinelDescription),
			URL:         orSentinel(r.Link, SentinelURL),
			PublishedAt: orSentinel(r.Date, SentinelDate),
			Source:      "SerpAPI",
			Icon:        "🌐",
		})
	}
	return out, nil
}

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}

func max1(a, def int) int {
	if a > 0 {
		return a
	}
	return def
}
