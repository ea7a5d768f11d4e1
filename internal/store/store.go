package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/deepresearch/config"
	"github.com/mohammad-safakhou/deepresearch/internal/agent/core"
)

// ErrNotFound is returned when a run is not in the archive.
var ErrNotFound = fmt.Errorf("run not found")

// RunArchive persists completed runs in Redis and keeps an in-memory
// full-text index over plan and report text for search.
type RunArchive struct {
	client *redis.Client
	index  bleve.Index
	ttl    time.Duration
}

// indexedRun is the document shape fed to the full-text index.
type indexedRun struct {
	Query  string `json:"query"`
	Plan   string `json:"plan"`
	Report string `json:"report"`
}

// SearchHit is one match from a report search.
type SearchHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// NewRunArchive creates an archive backed by the configured Redis instance.
func NewRunArchive(cfg config.StorageConfig) (*RunArchive, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating report index: %w", err)
	}

	ttl := cfg.RunTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RunArchive{client: client, index: index, ttl: ttl}, nil
}

// SaveRun archives a completed run and indexes its text.
func (a *RunArchive) SaveRun(ctx context.Context, result core.ResearchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	key := fmt.Sprintf("research:run:%s", result.ID)
	if err := a.client.Set(ctx, key, data, a.ttl).Err(); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return a.index.Index(result.ID, indexedRun{
		Query:  result.Query,
		Plan:   result.Plan,
		Report: result.Report,
	})
}

// GetRun retrieves an archived run by ID.
func (a *RunArchive) GetRun(ctx context.Context, id string) (core.ResearchResult, error) {
	key := fmt.Sprintf("research:run:%s", id)
	val, err := a.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return core.ResearchResult{}, ErrNotFound
	}
	if err != nil {
		return core.ResearchResult{}, fmt.Errorf("get run: %w", err)
	}
	var result core.ResearchResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return core.ResearchResult{}, fmt.Errorf("unmarshal run: %w", err)
	}
	return result, nil
}

// SearchRuns performs a full-text query over archived plans and reports and
// returns up to limit run IDs ranked by score.
func (a *RunArchive) SearchRuns(q string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 10
	}
	query := bleve.NewQueryStringQuery(q)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	res, err := a.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search runs: %w", err)
	}
	hits := make([]SearchHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		hits = append(hits, SearchHit{ID: hit.ID, Score: hit.Score})
	}
	return hits, nil
}

// Ping verifies the Redis connection.
func (a *RunArchive) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

// Close releases the Redis connection and the index.
func (a *RunArchive) Close() error {
	if err := a.index.Close(); err != nil {
		return err
	}
	return a.client.Close()
}
