package core

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestFallbackPlanEmbedsQueryAndYear(t *testing.T) {
	f := NewFallbackPolicy()
	plan := f.Plan("quantum computing")
	if !strings.Contains(plan, "quantum computing") {
		t.Fatalf("plan missing query: %q", plan)
	}
	if !strings.Contains(plan, strconv.Itoa(time.Now().Year())) {
		t.Fatalf("plan missing current year: %q", plan)
	}
	lines := strings.Split(plan, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 numbered steps, got %d: %q", len(lines), plan)
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, strconv.Itoa(i+1)+". ") {
			t.Fatalf("step %d not numbered: %q", i+1, line)
		}
	}
}

func TestFallbackResultsShape(t *testing.T) {
	f := NewFallbackPolicy()
	results := f.Results("ai safety")
	if len(results) != 1 {
		t.Fatalf("expected exactly one synthetic result, got %d", len(results))
	}
	r := results[0]
	if r.Source != "Fallback" || r.Icon != "📚" {
		t.Fatalf("unexpected source/icon: %+v", r)
	}
	if r.URL != SentinelURL || r.PublishedAt != SentinelDate {
		t.Fatalf("expected sentinel url/date: %+v", r)
	}
	if !strings.Contains(r.Title, "ai safety") {
		t.Fatalf("title missing query: %+v", r)
	}
}

func TestFallbackReportSections(t *testing.T) {
	f := NewFallbackPolicy()
	report := f.Report("climate policy")
	for _, section := range []string{
		"# Fallback Report on climate policy",
		"## Introduction",
		"## Key Findings",
		"## Analysis",
		"## Conclusion",
	} {
		if !strings.Contains(report, section) {
			t.Fatalf("report missing %q:\n%s", section, report)
		}
	}
}

func TestFallbackDeterminism(t *testing.T) {
	f := NewFallbackPolicy()
	if f.Plan("q") != f.Plan("q") || f.Report("q") != f.Report("q") {
		t.Fatal("fallback templates must be deterministic")
	}
}
