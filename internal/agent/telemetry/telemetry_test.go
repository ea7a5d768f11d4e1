package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mohammad-safakhou/deepresearch/config"
)

func enabled() config.TelemetryConfig {
	return config.TelemetryConfig{Enabled: true}
}

func TestRecordRunEvent(t *testing.T) {
	tel := NewTelemetry(enabled())
	tel.RecordRunEvent(RunEvent{
		ID:             "run-1",
		Query:          "q",
		ProcessingTime: 2 * time.Second,
		FallbackStages: []string{"plan", "report"},
		ResultCount:    3,
	})

	snap := tel.Snapshot()
	if snap.TotalRuns != 1 {
		t.Fatalf("expected 1 run, got %d", snap.TotalRuns)
	}
	if snap.FallbacksUsed["plan"] != 1 || snap.FallbacksUsed["report"] != 1 {
		t.Fatalf("fallback counters wrong: %+v", snap.FallbacksUsed)
	}
	if got := testutil.ToFloat64(tel.runsTotal); got != 1 {
		t.Fatalf("prometheus runs counter: %v", got)
	}
	if got := testutil.ToFloat64(tel.stageFallbacks.WithLabelValues("plan")); got != 1 {
		t.Fatalf("prometheus fallback counter: %v", got)
	}
}

func TestRecordProviderErrorAndTokens(t *testing.T) {
	tel := NewTelemetry(enabled())
	tel.RecordProviderError("Tavily")
	tel.RecordProviderError("Tavily")
	tel.RecordTokens(42)

	snap := tel.Snapshot()
	if snap.ProviderErrors["Tavily"] != 2 {
		t.Fatalf("provider error counter wrong: %+v", snap.ProviderErrors)
	}
	if snap.TokensStreamed != 42 {
		t.Fatalf("token counter wrong: %d", snap.TokensStreamed)
	}
}

func TestDisabledTelemetryRecordsNothing(t *testing.T) {
	tel := NewTelemetry(config.TelemetryConfig{Enabled: false})
	tel.RecordRunEvent(RunEvent{ID: "x"})
	tel.RecordTokens(10)
	tel.RecordProviderError("SerpAPI")

	snap := tel.Snapshot()
	if snap.TotalRuns != 0 || snap.TokensStreamed != 0 || len(snap.ProviderErrors) != 0 {
		t.Fatalf("disabled telemetry still recorded: %+v", snap)
	}
}
