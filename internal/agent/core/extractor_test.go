package core

import "testing"

func TestExtractWholeBufferArray(t *testing.T) {
	e := NewStructuredResultExtractor()
	buffer := `[{"title":"A","description":"d","url":"https://a.example","published_at":"2025-02-01","source":"Tavily","icon":"📝"}]`
	results, ok := e.Extract(buffer)
	if !ok {
		t.Fatal("expected a match")
	}
	if len(results) != 1 || results[0].Title != "A" || results[0].Source != "Tavily" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestExtractEmbeddedArray(t *testing.T) {
	e := NewStructuredResultExtractor()
	buffer := `Here is what I found:
[{"title":"B","url":"https://b.example"}]
Hope that helps.`
	results, ok := e.Extract(buffer)
	if !ok {
		t.Fatal("expected embedded array match")
	}
	if len(results) != 1 || results[0].Title != "B" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestExtractLeftmostEmbeddedArrayWins(t *testing.T) {
	e := NewStructuredResultExtractor()
	buffer := `noise [{"title":"first"}] more noise [{"title":"second"}]`
	results, ok := e.Extract(buffer)
	if !ok || len(results) != 1 {
		t.Fatalf("expected single leftmost match, got %v %+v", ok, results)
	}
	if results[0].Title != "first" {
		t.Fatalf("expected leftmost array, got %q", results[0].Title)
	}
}

func TestExtractTrailingObjectWrapped(t *testing.T) {
	e := NewStructuredResultExtractor()
	buffer := `The best source is {"title":"C","url":"https://c.example"}`
	results, ok := e.Extract(buffer)
	if !ok {
		t.Fatal("expected trailing object match")
	}
	if len(results) != 1 || results[0].Title != "C" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestExtractSentinelDefaults(t *testing.T) {
	e := NewStructuredResultExtractor()
	results, ok := e.Extract(`[{"source":"SerpAPI"}]`)
	if !ok || len(results) != 1 {
		t.Fatalf("expected one result, got %v %+v", ok, results)
	}
	r := results[0]
	if r.Title != SentinelTitle || r.Description != SentinelDescription ||
		r.URL != SentinelURL || r.PublishedAt != SentinelDate {
		t.Fatalf("sentinel defaults not applied: %+v", r)
	}
	if r.Source != "SerpAPI" {
		t.Fatalf("source not preserved: %+v", r)
	}
}

func TestExtractSkipsNonObjectElements(t *testing.T) {
	e := NewStructuredResultExtractor()
	results, ok := e.Extract(`["junk", {"title":"kept"}, 42]`)
	if !ok {
		t.Fatal("expected a match")
	}
	if len(results) != 1 || results[0].Title != "kept" {
		t.Fatalf("non-object elements not skipped: %+v", results)
	}
}

func TestExtractNoMatch(t *testing.T) {
	e := NewStructuredResultExtractor()
	for _, buffer := range []string{
		"",
		"plain prose with no json at all",
		"[1, 2, 3",
		`{"title":"not trailing"} with trailing prose`,
	} {
		if results, ok := e.Extract(buffer); ok && len(results) > 0 {
			// A lone object followed by prose still has no trailing-object
			// match because the regex anchors at the end of the buffer.
			t.Fatalf("unexpected match for %q: %+v", buffer, results)
		}
	}
}

func TestExtractMalformedArrayIsNoMatch(t *testing.T) {
	e := NewStructuredResultExtractor()
	if _, ok := e.Extract(`[{"title": "broken"`); ok {
		t.Fatal("malformed json should be no match, not an error")
	}
}
