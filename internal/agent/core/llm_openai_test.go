package core

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mohammad-safakhou/deepresearch/config"
)

func openAITestConfig(baseURL string) config.LLMProvider {
	return config.LLMProvider{
		Type:    "openai",
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Models: map[string]config.LLMModel{
			"test": {Name: "test-model", MaxTokens: 100},
		},
	}
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth: %q", auth)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"hello world"}}]}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(openAITestConfig(srv.URL))
	got, err := p.Generate(context.Background(), "say hi", "test", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("unexpected response: %q", got)
	}
}

func TestOpenAIGenerateUnknownModel(t *testing.T) {
	p := NewOpenAIProvider(openAITestConfig("http://127.0.0.1:0"))
	if _, err := p.Generate(context.Background(), "x", "nope", nil); err == nil {
		t.Fatal("expected error for unconfigured model")
	}
}

func TestOpenAIGenerateStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, delta := range []string{"Hel", "lo", " there"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", delta)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := NewOpenAIProvider(openAITestConfig(srv.URL))
	tokens, err := p.GenerateStream(context.Background(), "say hi", "test", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got string
	for tok := range tokens {
		if tok.Err != nil {
			t.Fatalf("unexpected stream error: %v", tok.Err)
		}
		got += tok.Delta
	}
	if got != "Hello there" {
		t.Fatalf("unexpected streamed text: %q", got)
	}
}

func TestOpenAIGenerateStreamBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(openAITestConfig(srv.URL))
	if _, err := p.GenerateStream(context.Background(), "x", "test", nil); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestNewLLMProviderFactory(t *testing.T) {
	if _, err := NewLLMProvider(config.LLMConfig{}); err == nil {
		t.Fatal("expected error with no providers")
	}
	if _, err := NewLLMProvider(config.LLMConfig{Providers: map[string]config.LLMProvider{
		"x": {Type: "llamacpp"},
	}}); err == nil {
		t.Fatal("expected error for unsupported provider type")
	}
	p, err := NewLLMProvider(config.LLMConfig{Providers: map[string]config.LLMProvider{
		"openai": openAITestConfig(""),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*OpenAIProvider); !ok {
		t.Fatalf("unexpected provider type: %T", p)
	}
}
