package core

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Model output rarely arrives as clean JSON. The extractor tries three
// shapes in order and takes the first one that parses: the whole buffer as
// an array, the leftmost embedded array of objects, then a trailing object
// treated as a single-element list.
var (
	embeddedArrayRe  = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)
	trailingObjectRe = regexp.MustCompile(`(?s)\{.*?\}\s*$`)
)

// StructuredResultExtractor recovers search result records from a raw model
// output buffer.
type StructuredResultExtractor struct{}

// NewStructuredResultExtractor creates an extractor.
func NewStructuredResultExtractor() *StructuredResultExtractor {
	return &StructuredResultExtractor{}
}

// Extract parses the buffer into search results. It returns ok=false when no
// strategy yields a structural match; parse failures are treated the same as
// no match, never as errors.
func (e *StructuredResultExtractor) Extract(buffer string) ([]SearchResult, bool) {
	trimmed := strings.TrimSpace(buffer)

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		if results, ok := parseResultArray(trimmed); ok {
			return results, true
		}
	}

	if match := embeddedArrayRe.FindString(buffer); match != "" {
		if results, ok := parseResultArray(match); ok {
			return results, true
		}
	}

	if match := trailingObjectRe.FindString(buffer); match != "" {
		var record map[string]interface{}
		if err := json.Unmarshal([]byte(match), &record); err == nil {
			return []SearchResult{normalizeRecord(record)}, true
		}
	}

	return nil, false
}

// parseResultArray decodes a JSON array, keeping object elements and
// skipping anything else.
func parseResultArray(raw string) ([]SearchResult, bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return nil, false
	}
	results := make([]SearchResult, 0, len(elements))
	for _, el := range elements {
		var record map[string]interface{}
		if err := json.Unmarshal(el, &record); err != nil {
			continue
		}
		results = append(results, normalizeRecord(record))
	}
	return results, true
}

// normalizeRecord maps a loose record onto SearchResult, substituting
// sentinels for missing or non-string fields.
func normalizeRecord(record map[string]interface{}) SearchResult {
	return SearchResult{
		Title:       stringField(record, "title", SentinelTitle),
		Description: stringField(record, "description", SentinelDescription),
		URL:         stringField(record, "url", SentinelURL),
		PublishedAt: stringField(record, "published_at", SentinelDate),
		Source:      stringField(record, "source", ""),
		Icon:        stringField(record, "icon", ""),
	}
}

func stringField(record map[string]interface{}, key, def string) string {
	if v, ok := record[key].(string); ok && v != "" {
		return v
	}
	return def
}
