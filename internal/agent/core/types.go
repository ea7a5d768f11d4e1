package core

import (
	"context"
	"time"
)

// StageID identifies a pipeline stage.
type StageID string

const (
	StagePlan   StageID = "plan"
	StageSearch StageID = "search"
	StageReport StageID = "report"
)

// Sentinel field values used when a provider or model omits a field.
const (
	SentinelTitle       = "Untitled"
	SentinelDescription = "No description"
	SentinelURL         = "No URL"
	SentinelDate        = "No date"
)

// SearchResult is the normalized record produced by search providers and by
// the model's structured search output.
type SearchResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
	Icon        string `json:"icon"`
}

// ResearchResult is the final output of a pipeline run: the complete
// plan/results/report triple plus run metadata.
type ResearchResult struct {
	ID             string         `json:"id"`
	Query          string         `json:"query"`
	Plan           string         `json:"plan"`
	Results        []SearchResult `json:"results"`
	Report         string         `json:"report"`
	ProcessingTime time.Duration  `json:"processing_time"`
	CreatedAt      time.Time      `json:"created_at"`
}

// PipelineState tracks per-run stage completion. A stage whose ID is already
// recorded is never re-invoked within the same run.
type PipelineState struct {
	Query           string
	Plan            string
	Results         []SearchResult
	Report          string
	completedStages map[StageID]bool
}

// NewPipelineState creates the per-run state for a query.
func NewPipelineState(query string) *PipelineState {
	return &PipelineState{
		Query:           query,
		completedStages: make(map[StageID]bool),
	}
}

// Completed reports whether a stage has already run.
func (s *PipelineState) Completed(stage StageID) bool {
	return s.completedStages[stage]
}

// MarkCompleted records a stage as done.
func (s *PipelineState) MarkCompleted(stage StageID) {
	s.completedStages[stage] = true
}

// StreamToken is a single element of a model output stream. Err is set on
// the terminal token when the stream failed mid-flight.
type StreamToken struct {
	Delta string
	Err   error
}

// TokenSink receives each surviving stream token before it is appended to
// the stage buffer. Used for live console/SSE display.
type TokenSink func(stage StageID, delta string)

// LLMProvider is the contract for text generation backends.
type LLMProvider interface {
	// Generate generates text and blocks until the full response is available.
	Generate(ctx context.Context, prompt string, model string, options map[string]interface{}) (string, error)

	// GenerateStream generates text as a stream of tokens. The returned
	// channel is closed when the stream ends; a token with Err set signals
	// a mid-stream failure.
	GenerateStream(ctx context.Context, prompt string, model string, options map[string]interface{}) (<-chan StreamToken, error)

	// GetAvailableModels returns available models
	GetAvailableModels() []string

	// GetModelInfo returns information about a specific model
	GetModelInfo(model string) (ModelInfo, error)
}

// ModelInfo contains information about an LLM model
type ModelInfo struct {
	Name         string   `json:"name"`
	Provider     string   `json:"provider"`
	MaxTokens    int      `json:"max_tokens"`
	Capabilities []string `json:"capabilities"`
	Description  string   `json:"description"`
}

// SearchProvider is the contract for web search backends.
type SearchProvider interface {
	// Name returns the provider label stamped on its results.
	Name() string

	// Search searches for recent information about a query.
	Search(ctx context.Context, query string) ([]SearchResult, error)
}
