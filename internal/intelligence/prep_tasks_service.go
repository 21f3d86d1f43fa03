package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/famcoord/famcoord/internal/llm"
)

const maxPrepTasks = 5

// FallbackPrepTasks is returned when the model's answer cannot be read.
var FallbackPrepTasks = []string{"Pack supplies", "Check time", "Prepare snacks"}

// ErrTitleRequired is returned when no activity title is given.
var ErrTitleRequired = errors.New("activity title is required")

// PrepTaskService suggests a short checklist for an activity.
type PrepTaskService interface {
	Suggest(ctx context.Context, title string) ([]string, error)
}

type prepTaskService struct {
	client  llm.LLMClient
	enabled bool
}

// NewPrepTaskService creates a PrepTaskService. When enabled is false every
// call returns an empty list without contacting the model.
func NewPrepTaskService(client llm.LLMClient, enabled bool) PrepTaskService {
	return &prepTaskService{client: client, enabled: enabled}
}

func (s *prepTaskService) Suggest(ctx context.Context, title string) ([]string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if !s.enabled {
		return []string{}, nil
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskPrep,
		SystemPrompt: prepTasksSystemPrompt,
		UserPrompt:   buildPrepTasksUserPrompt(title),
	})
	if err != nil {
		return nil, fmt.Errorf("llm prep tasks failed: %w", err)
	}

	tasks, err := llm.ExtractJSONArray(resp.Text, validatePrepTasks)
	if err != nil {
		return append([]string(nil), FallbackPrepTasks...), nil
	}
	return cleanPrepTasks(tasks), nil
}

func validatePrepTasks(tasks []string) error {
	if len(cleanPrepTasks(tasks)) == 0 {
		return fmt.Errorf("no tasks")
	}
	return nil
}

func cleanPrepTasks(tasks []string) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == maxPrepTasks {
			break
		}
	}
	return out
}
