package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "classify this", body.Messages[0].Content)
		assert.Equal(t, "Soccer for Emma tomorrow at 3pm", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"action\":\"add\",\"confidence\":\"high\"}"}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", "", srv.URL)
	text, err := p.Complete(context.Background(), Completion{
		System: "classify this",
		Prompt: "Soccer for Emma tomorrow at 3pm",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"action":"add","confidence":"high"}`, text)
	assert.Equal(t, ProviderOpenAI, p.Name())
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider("sk-test", "gpt-4o", srv.URL).Complete(context.Background(), Completion{Prompt: "hi"})
	assert.Error(t, err)
}

func TestAnthropicProvider_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))

		var body struct {
			Model     string `json:"model"`
			System    string `json:"system"`
			MaxTokens int    `json:"max_tokens"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body.Model)
		assert.Equal(t, "system prompt", body.System)
		assert.Equal(t, 200, body.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "[\"Pack bag\"]"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("sk-ant-test", "claude-test", srv.URL)
	text, err := p.Complete(context.Background(), Completion{
		System:    "system prompt",
		Prompt:    "Soccer",
		MaxTokens: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, `["Pack bag"]`, text)
	assert.NoError(t, p.Ping(context.Background()))
	assert.ErrorIs(t, NewAnthropicProvider("", "", "").Ping(context.Background()), ErrProviderUnavailable)
}

func TestNewClient_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	_, err := NewClient(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewClient_MissingKey(t *testing.T) {
	for _, provider := range []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini} {
		cfg := DefaultConfig()
		cfg.Provider = provider
		cfg.APIKey = ""
		_, err := NewClient(context.Background(), cfg, nil)
		assert.ErrorIs(t, err, ErrProviderUnavailable, provider)
	}
}

func TestNewClient_UnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "carrier-pigeon"
	_, err := NewClient(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestNewClient_SelectsProvider(t *testing.T) {
	cases := map[string]string{
		"openai":        ProviderOpenAI,
		"Claude":        ProviderAnthropic,
		"ollama":        ProviderOllama,
		"ollama-openai": "ollama-openai",
	}
	for in, want := range cases {
		cfg := DefaultConfig()
		cfg.Provider = in
		cfg.APIKey = "key"
		c, err := NewClient(context.Background(), cfg, nil)
		require.NoError(t, err, in)
		assert.Equal(t, want, c.Provider().Name(), in)
		assert.NoError(t, c.Close())
	}
}

func TestLogObserver_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	NewLogObserver(logger).OnCallComplete(LLMCallEvent{
		Task:      TaskClassify,
		Provider:  ProviderOpenAI,
		Model:     "gpt-4o-mini",
		LatencyMs: 12,
		Attempts:  2,
		Success:   false,
		ErrorCode: "TIMEOUT",
	})

	out := buf.String()
	assert.Contains(t, out, "msg=llm_call")
	assert.Contains(t, out, "task=classify")
	assert.Contains(t, out, "status=err:TIMEOUT")
	assert.Contains(t, out, "level=WARN")
}
