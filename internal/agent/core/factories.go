package core

import (
	"fmt"
	"time"

	"github.com/mohammad-safakhou/deepresearch/config"
)

// NewLLMProvider creates a new LLM provider based on configuration
func NewLLMProvider(cfg config.LLMConfig) (LLMProvider, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured")
	}

	// Use the first configured provider
	for _, provider := range cfg.Providers {
		switch provider.Type {
		case "openai":
			return NewOpenAIProvider(provider), nil
		default:
			return nil, fmt.Errorf("unsupported LLM provider type: %s", provider.Type)
		}
	}

	return nil, fmt.Errorf("no valid LLM providers found")
}

// NewSearchProviders creates all search providers that have credentials
// configured. Providers without keys are silently skipped.
func NewSearchProviders(cfg config.SearchConfig) []SearchProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpc := NewHTTPClient(timeout, 2, 300*time.Millisecond)

	var providers []SearchProvider
	if cfg.TavilyAPIKey != "" {
		providers = append(providers, &TavilyClient{cfg: cfg, http: httpc})
	}
	if cfg.SerpAPIAPIKey != "" {
		providers = append(providers, &SerpAPIClient{cfg: cfg, http: httpc})
	}
	return providers
}
