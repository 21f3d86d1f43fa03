package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// LLMClient provides access to a language model for text generation.
type LLMClient interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available checks whether the model backend is reachable.
	Available(ctx context.Context) bool
}

// Completion is a single provider round-trip with task defaults resolved.
type Completion struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Provider is one model backend. Providers do no retrying of their own.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, c Completion) (string, error)
	Ping(ctx context.Context) error
}

// Client wraps a Provider with per-task timeouts, retries and call events.
type Client struct {
	cfg      LLMConfig
	provider Provider
	observer Observer
}

var _ LLMClient = (*Client)(nil)

// NewClientWithProvider builds a Client around an already constructed
// provider.
func NewClientWithProvider(cfg LLMConfig, provider Provider, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Client{cfg: cfg, provider: provider, observer: observer}
}

// Provider returns the underlying backend.
func (c *Client) Provider() Provider {
	return c.provider
}

func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	taskCfg := c.cfg.Tasks[req.Task]
	temp := taskCfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := taskCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}

	completion := Completion{
		System:      req.SystemPrompt,
		Prompt:      req.UserPrompt,
		Temperature: temp,
		MaxTokens:   maxTok,
	}
	timeout := time.Duration(c.cfg.TaskTimeout(req.Task)) * time.Millisecond

	var lastErr error
	timedOut := false
	attempts := 1 + c.cfg.MaxRetries
	made := 0

	for i := 0; i < attempts; i++ {
		made++
		text, err := c.attempt(ctx, timeout, completion)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(LLMCallEvent{
				Task:      req.Task,
				Provider:  c.provider.Name(),
				Model:     c.provider.Model(),
				LatencyMs: latency,
				Attempts:  made,
				Success:   true,
			})
			return &GenerateResponse{
				Text:      text,
				Model:     c.provider.Model(),
				LatencyMs: latency,
			}, nil
		}
		lastErr = err
		timedOut = errors.Is(err, context.DeadlineExceeded)

		if permanent(ctx, err) {
			timedOut = timedOut || ctx.Err() != nil
			break
		}
	}

	result := finalError(lastErr, timedOut)

	c.observer.OnCallComplete(LLMCallEvent{
		Task:      req.Task,
		Provider:  c.provider.Name(),
		Model:     c.provider.Model(),
		LatencyMs: time.Since(start).Milliseconds(),
		Attempts:  made,
		Success:   false,
		ErrorCode: ErrorCode(result),
	})
	return nil, result
}

// attempt runs one provider call bounded by the per-task timeout.
func (c *Client) attempt(ctx context.Context, timeout time.Duration, completion Completion) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	text, err := c.provider.Complete(ctx, completion)
	if err != nil && ctx.Err() != nil {
		return "", fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return text, err
}

func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.provider.Ping(ctx) == nil
}

// Close releases provider resources, if any.
func (c *Client) Close() error {
	if closer, ok := c.provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
