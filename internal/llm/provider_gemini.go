package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

type geminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Provider for the Gemini API. The returned
// provider holds a connection and must be closed.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (Provider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiProvider{client: client, model: model}, nil
}

func (p *geminiProvider) Name() string  { return ProviderGemini }
func (p *geminiProvider) Model() string { return p.model }

func (p *geminiProvider) Complete(ctx context.Context, c Completion) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(float32(c.Temperature))
	if c.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(c.MaxTokens))
	}
	if c.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(c.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(c.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
		break
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini: no response candidates or content")
	}
	return b.String(), nil
}

func (p *geminiProvider) Ping(ctx context.Context) error {
	if _, err := p.client.GenerativeModel(p.model).Info(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return nil
}

func (p *geminiProvider) Close() error {
	return p.client.Close()
}
