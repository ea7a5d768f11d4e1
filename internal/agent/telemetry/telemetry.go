package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mohammad-safakhou/deepresearch/config"
)

// Telemetry tracks pipeline run outcomes, both as in-memory counters for
// quick inspection and as Prometheus collectors for scraping.
type Telemetry struct {
	config  config.TelemetryConfig
	logger  *log.Logger
	metrics *Metrics

	registry       *prometheus.Registry
	runsTotal      prometheus.Counter
	stageFallbacks *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
	tokensStreamed prometheus.Counter

	mu sync.RWMutex
}

// Metrics holds run-level counters.
type Metrics struct {
	TotalRuns      int64
	FallbacksUsed  map[string]int64 // stage -> count
	ProviderErrors map[string]int64 // provider -> count
	TokensStreamed int64
	TotalRunTime   time.Duration
}

// RunEvent captures one completed pipeline run.
type RunEvent struct {
	ID             string
	Query          string
	StartTime      time.Time
	EndTime        time.Time
	ProcessingTime time.Duration
	FallbackStages []string
	ResultCount    int
}

// NewTelemetry creates a new telemetry instance with its own Prometheus
// registry.
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	t := &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: &Metrics{
			FallbacksUsed:  make(map[string]int64),
			ProviderErrors: make(map[string]int64),
		},
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deepresearch_runs_total",
			Help: "Total pipeline runs started.",
		}),
		stageFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepresearch_stage_fallbacks_total",
			Help: "Fallback substitutions by pipeline stage.",
		}, []string{"stage"}),
		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepresearch_provider_errors_total",
			Help: "Upstream provider failures by provider.",
		}, []string{"provider"}),
		tokensStreamed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deepresearch_tokens_streamed_total",
			Help: "Stream tokens that survived whitespace filtering.",
		}),
	}

	t.registry.MustRegister(t.runsTotal, t.stageFallbacks, t.providerErrors, t.tokensStreamed)
	return t
}

// Registry returns the Prometheus registry backing this instance.
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

// RecordRunEvent records a completed pipeline run.
func (t *Telemetry) RecordRunEvent(event RunEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.TotalRuns++
	t.metrics.TotalRunTime += event.ProcessingTime
	t.runsTotal.Inc()
	for _, stage := range event.FallbackStages {
		t.metrics.FallbacksUsed[stage]++
		t.stageFallbacks.WithLabelValues(stage).Inc()
	}

	t.logger.Printf("run %s finished in %v with %d results (%d fallbacks)",
		event.ID, event.ProcessingTime, event.ResultCount, len(event.FallbackStages))
}

// RecordProviderError records an upstream provider failure.
func (t *Telemetry) RecordProviderError(provider string) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.ProviderErrors[provider]++
	t.providerErrors.WithLabelValues(provider).Inc()
}

// RecordTokens records stream tokens that passed the whitespace filter.
func (t *Telemetry) RecordTokens(n int64) {
	if !t.config.Enabled || n <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.TokensStreamed += n
	t.tokensStreamed.Add(float64(n))
}

// Snapshot returns a copy of the current counters.
func (t *Telemetry) Snapshot() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := Metrics{
		TotalRuns:      t.metrics.TotalRuns,
		TokensStreamed: t.metrics.TokensStreamed,
		TotalRunTime:   t.metrics.TotalRunTime,
		FallbacksUsed:  make(map[string]int64, len(t.metrics.FallbacksUsed)),
		ProviderErrors: make(map[string]int64, len(t.metrics.ProviderErrors)),
	}
	for k, v := range t.metrics.FallbacksUsed {
		snap.FallbacksUsed[k] = v
	}
	for k, v := range t.metrics.ProviderErrors {
		snap.ProviderErrors[k] = v
	}
	return snap
}
