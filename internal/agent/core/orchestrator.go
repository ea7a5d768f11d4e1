package core

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohammad-safakhou/deepresearch/config"
	"github.com/mohammad-safakhou/deepresearch/internal/agent/telemetry"
)

var orchestratorTracer trace.Tracer = otel.Tracer("deepresearch/internal/agent/orchestrator")

// Console sinks can prefix tokens with stage markers; any marker that leaks
// into the accumulated plan text is scrubbed before storage.
var planMarkerRe = regexp.MustCompile(`\[Plan Stream\]`)

// StagedOrchestrator runs the three-stage research pipeline: plan, search,
// report. Each stage runs exactly once per query; model and provider
// failures degrade to deterministic fallbacks instead of failing the run.
type StagedOrchestrator struct {
	config     *config.Config
	logger     *log.Logger
	telemetry  *telemetry.Telemetry
	llm        LLMProvider
	aggregator *HybridSearchAggregator
	extractor  *StructuredResultExtractor
	fallback   *FallbackPolicy
	sink       TokenSink
}

// NewStagedOrchestrator creates an orchestrator from configuration. It fails
// only on configuration-fatal conditions: no usable LLM provider or no
// search provider with credentials.
func NewStagedOrchestrator(cfg *config.Config, logger *log.Logger, tel *telemetry.Telemetry, sink TokenSink) (*StagedOrchestrator, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}

	llm, err := NewLLMProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	providers := NewSearchProviders(cfg.Search)
	if len(providers) == 0 {
		return nil, fmt.Errorf("no search providers configured")
	}

	aggregator := NewHybridSearchAggregator(providers, cfg.Search.Timeout, cfg.Search.MaxResults,
		log.New(log.Writer(), "[AGG] ", log.LstdFlags))
	if tel != nil {
		aggregator.onProviderError = tel.RecordProviderError
	}

	return &StagedOrchestrator{
		config:     cfg,
		logger:     logger,
		telemetry:  tel,
		llm:        llm,
		aggregator: aggregator,
		extractor:  NewStructuredResultExtractor(),
		fallback:   NewFallbackPolicy(),
		sink:       sink,
	}, nil
}

// LLM exposes the orchestrator's underlying LLM provider.
func (o *StagedOrchestrator) LLM() LLMProvider {
	return o.llm
}

// Run executes the pipeline for a query and returns the complete
// plan/results/report triple. It never fails on upstream errors; every
// stage has a fallback.
func (o *StagedOrchestrator) Run(ctx context.Context, query string) (ResearchResult, error) {
	startTime := time.Now()
	runID := uuid.NewString()

	ctx, span := orchestratorTracer.Start(ctx, "research.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.query", query),
		))
	defer span.End()

	o.logger.Printf("starting run %s for query: %s", runID, query)

	state := NewPipelineState(query)
	fallbackStages := o.runStages(ctx, state)

	result := ResearchResult{
		ID:             runID,
		Query:          query,
		Plan:           state.Plan,
		Results:        state.Results,
		Report:         state.Report,
		ProcessingTime: time.Since(startTime),
		CreatedAt:      time.Now(),
	}

	if o.telemetry != nil {
		o.telemetry.RecordRunEvent(telemetry.RunEvent{
			ID:             runID,
			Query:          query,
			StartTime:      startTime,
			EndTime:        time.Now(),
			ProcessingTime: result.ProcessingTime,
			FallbackStages: fallbackStages,
			ResultCount:    len(result.Results),
		})
	}

	span.SetAttributes(
		attribute.Int("run.result_count", len(result.Results)),
		attribute.Int("run.fallback_count", len(fallbackStages)),
	)
	span.SetStatus(codes.Ok, "completed")
	o.logger.Printf("completed run %s in %v", runID, result.ProcessingTime)

	return result, nil
}

// runStages drives the three stages over the given state, skipping any stage
// already marked complete. It returns the stages that ended on a fallback.
func (o *StagedOrchestrator) runStages(ctx context.Context, state *PipelineState) []string {
	var fallbackStages []string

	if !state.Completed(StagePlan) {
		if o.runPlanStage(ctx, state) {
			fallbackStages = append(fallbackStages, string(StagePlan))
		}
		state.MarkCompleted(StagePlan)
	}

	if !state.Completed(StageSearch) {
		if o.runSearchStage(ctx, state) {
			fallbackStages = append(fallbackStages, string(StageSearch))
		}
		state.MarkCompleted(StageSearch)
	}

	if !state.Completed(StageReport) {
		if o.runReportStage(ctx, state) {
			fallbackStages = append(fallbackStages, string(StageReport))
		}
		state.MarkCompleted(StageReport)
	}

	return fallbackStages
}

// runPlanStage generates the research plan. Returns true when the fallback
// template was used.
func (o *StagedOrchestrator) runPlanStage(ctx context.Context, state *PipelineState) bool {
	buffer := o.streamStage(ctx, StagePlan, o.config.LLM.Routing.Planning, buildPlanPrompt(state.Query))

	plan := strings.TrimSpace(planMarkerRe.ReplaceAllString(buffer, ""))
	if plan == "" {
		o.logger.Printf("no valid plan generated, using fallback")
		state.Plan = o.fallback.Plan(state.Query)
		return true
	}
	state.Plan = plan
	return false
}

// runSearchStage turns the plan into search results. The model's structured
// output is tried first, then a direct provider search, then the synthetic
// fallback result. Returns true only when the synthetic result was used.
func (o *StagedOrchestrator) runSearchStage(ctx context.Context, state *PipelineState) bool {
	buffer := o.streamStage(ctx, StageSearch, o.config.LLM.Routing.Search, buildSearchPrompt(state.Plan, state.Query))

	results, ok := o.extractor.Extract(buffer)
	if !ok || len(results) == 0 {
		o.logger.Printf("no structured results in model output, falling back to direct hybrid search")
		results = o.aggregator.Search(ctx, state.Query)
	}
	if len(results) == 0 {
		o.logger.Printf("no valid results from direct search, using fallback result")
		state.Results = o.fallback.Results(state.Query)
		return true
	}
	state.Results = results
	return false
}

// runReportStage generates the final markdown report. Returns true when the
// fallback template was used.
func (o *StagedOrchestrator) runReportStage(ctx context.Context, state *PipelineState) bool {
	buffer := o.streamStage(ctx, StageReport, o.config.LLM.Routing.Reporting, buildReportPrompt(state.Query, state.Results))

	report := strings.TrimSpace(buffer)
	if report == "" {
		o.logger.Printf("no valid report generated, using fallback")
		state.Report = o.fallback.Report(state.Query)
		return true
	}
	state.Report = report
	return false
}

// streamStage runs one streamed generation and accumulates its tokens. Any
// model error is absorbed and surfaces as an empty buffer so the caller's
// fallback kicks in.
func (o *StagedOrchestrator) streamStage(ctx context.Context, stage StageID, model, prompt string) string {
	stageCtx, stageSpan := orchestratorTracer.Start(ctx, "research."+string(stage),
		trace.WithAttributes(attribute.String("stage.model", model)))
	defer stageSpan.End()

	tokens, err := o.llm.GenerateStream(stageCtx, prompt, model, nil)
	if err != nil {
		o.logger.Printf("%s stage stream failed: %v", stage, err)
		stageSpan.RecordError(err)
		stageSpan.SetStatus(codes.Error, err.Error())
		return ""
	}

	var streamed int64
	acc := NewStreamAccumulator(func(s StageID, delta string) {
		streamed++
		if o.sink != nil {
			o.sink(s, delta)
		}
	})
	buffer, err := acc.Accumulate(stageCtx, stage, tokens)
	if o.telemetry != nil {
		o.telemetry.RecordTokens(streamed)
	}
	if err != nil {
		// A truncated stream is not trusted as stage output; discard the
		// partial buffer so the stage fallback kicks in.
		o.logger.Printf("%s stage stream interrupted: %v", stage, err)
		stageSpan.RecordError(err)
		stageSpan.SetStatus(codes.Error, err.Error())
		return ""
	}

	stageSpan.SetStatus(codes.Ok, "completed")
	return buffer
}
