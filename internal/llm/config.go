package llm

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskClassify  TaskType = "classify"
	TaskExtract   TaskType = "extract"
	TaskResolve   TaskType = "resolve"
	TaskQuery     TaskType = "query"
	TaskPrep      TaskType = "prep"
	TaskRecommend TaskType = "recommend"
)

// Provider names accepted in LLMConfig.Provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem. Fields left
// unset in the environment keep whatever value they already hold, so a
// config file can be layered underneath.
type LLMConfig struct {
	Enabled    bool   `toml:"enabled" env:"FAMCOORD_LLM_ENABLED"`
	LogCalls   bool   `toml:"log_calls" env:"FAMCOORD_LLM_LOG_CALLS"`
	Provider   string `toml:"provider" env:"FAMCOORD_LLM_PROVIDER"`
	Endpoint   string `toml:"endpoint" env:"FAMCOORD_LLM_ENDPOINT"`
	APIKey     string `toml:"-" env:"FAMCOORD_LLM_API_KEY"`
	Model      string `toml:"model" env:"FAMCOORD_LLM_MODEL"`
	TimeoutMs  int    `toml:"timeout_ms" env:"FAMCOORD_LLM_TIMEOUT_MS"`
	MaxRetries int    `toml:"max_retries" env:"FAMCOORD_LLM_MAX_RETRIES"`

	Tasks map[TaskType]TaskConfig `toml:"-"`
}

// taskTimeoutEnv carries the per-task timeout overrides.
type taskTimeoutEnv struct {
	Classify  int `env:"FAMCOORD_LLM_CLASSIFY_TIMEOUT_MS"`
	Extract   int `env:"FAMCOORD_LLM_EXTRACT_TIMEOUT_MS"`
	Resolve   int `env:"FAMCOORD_LLM_RESOLVE_TIMEOUT_MS"`
	Query     int `env:"FAMCOORD_LLM_QUERY_TIMEOUT_MS"`
	Prep      int `env:"FAMCOORD_LLM_PREP_TIMEOUT_MS"`
	Recommend int `env:"FAMCOORD_LLM_RECOMMEND_TIMEOUT_MS"`
}

// providerKeys are the vendor-standard key variables, used when
// FAMCOORD_LLM_API_KEY is not set.
type providerKeys struct {
	OpenAI    string `env:"OPENAI_API_KEY"`
	Anthropic string `env:"ANTHROPIC_API_KEY"`
	Gemini    string `env:"GEMINI_API_KEY"`
}

// DefaultConfig returns an LLMConfig with sensible defaults.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    true,
		LogCalls:   false,
		Provider:   ProviderOpenAI,
		TimeoutMs:  10000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskClassify:  {Temperature: 0.2, MaxTokens: 128, TimeoutMs: 8000},
			TaskExtract:   {Temperature: 0.3, MaxTokens: 512, TimeoutMs: 10000},
			TaskResolve:   {Temperature: 0.2, MaxTokens: 512, TimeoutMs: 10000},
			TaskQuery:     {Temperature: 0.3, MaxTokens: 1024, TimeoutMs: 12000},
			TaskPrep:      {Temperature: 0.5, MaxTokens: 200, TimeoutMs: 8000},
			TaskRecommend: {Temperature: 0.7, MaxTokens: 1500, TimeoutMs: 30000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables on top of
// DefaultConfig.
func LoadConfig() (LLMConfig, error) {
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		return LLMConfig{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto c.
func (c *LLMConfig) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse llm env: %w", err)
	}

	var timeouts taskTimeoutEnv
	if err := env.Parse(&timeouts); err != nil {
		return fmt.Errorf("parse llm task timeouts: %w", err)
	}
	c.setTaskTimeout(TaskClassify, timeouts.Classify)
	c.setTaskTimeout(TaskExtract, timeouts.Extract)
	c.setTaskTimeout(TaskResolve, timeouts.Resolve)
	c.setTaskTimeout(TaskQuery, timeouts.Query)
	c.setTaskTimeout(TaskPrep, timeouts.Prep)
	c.setTaskTimeout(TaskRecommend, timeouts.Recommend)

	if c.APIKey == "" {
		var keys providerKeys
		if err := env.Parse(&keys); err != nil {
			return fmt.Errorf("parse provider keys: %w", err)
		}
		switch c.ProviderName() {
		case ProviderOpenAI:
			c.APIKey = keys.OpenAI
		case ProviderAnthropic:
			c.APIKey = keys.Anthropic
		case ProviderGemini:
			c.APIKey = keys.Gemini
		}
	}
	return nil
}

// ProviderName returns the normalized provider name.
func (c LLMConfig) ProviderName() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	switch p {
	case "claude":
		return ProviderAnthropic
	case "google":
		return ProviderGemini
	case "":
		return ProviderOpenAI
	}
	return p
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func (c *LLMConfig) setTaskTimeout(task TaskType, ms int) {
	if ms <= 0 {
		return
	}
	if c.Tasks == nil {
		c.Tasks = map[TaskType]TaskConfig{}
	}
	tc := c.Tasks[task]
	tc.TimeoutMs = ms
	c.Tasks[task] = tc
}
