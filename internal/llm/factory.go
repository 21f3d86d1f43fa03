package llm

import (
	"context"
	"fmt"
	"strings"
)

// NewClient builds the configured provider and wraps it in a Client.
func NewClient(ctx context.Context, cfg LLMConfig, observer Observer) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewClientWithProvider(cfg, provider, observer), nil
}

func newProvider(ctx context.Context, cfg LLMConfig) (Provider, error) {
	name := cfg.ProviderName()
	switch name {
	case ProviderOpenAI:
		if cfg.APIKey == "" && cfg.Endpoint == "" {
			return nil, fmt.Errorf("%w: openai api key not configured", ErrProviderUnavailable)
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Endpoint), nil

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: anthropic api key not configured", ErrProviderUnavailable)
		}
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.Endpoint), nil

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: gemini api key not configured", ErrProviderUnavailable)
		}
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)

	case ProviderOllama:
		return NewOllamaProvider(cfg.Endpoint, cfg.Model), nil

	case "ollama-openai":
		// Ollama also serves the OpenAI wire format under /v1.
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultOllamaEndpoint
		}
		if !strings.HasSuffix(endpoint, "/v1") {
			endpoint = strings.TrimRight(endpoint, "/") + "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		model := cfg.Model
		if model == "" {
			model = defaultOllamaModel
		}
		p := NewOpenAIProvider(apiKey, model, endpoint).(*openAIProvider)
		p.name = name
		return p, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
