package intelligence

import (
	"context"
	"time"

	"github.com/famcoord/famcoord/internal/llm"
)

// Understanding is the text-understanding capability the interpreter
// delegates to. Each method returns the capability's raw text; callers
// recover and re-validate the structure themselves.
type Understanding interface {
	ClassifyIntent(ctx context.Context, text string, today time.Time) (string, error)
	ExtractAddFields(ctx context.Context, text string, memberNames []string, today time.Time) (string, error)
	ResolveEditOrDelete(ctx context.Context, text string, activities []ActivityDescription, isEdit bool, today time.Time) (string, error)
	AnswerQuery(ctx context.Context, text string, activityContext []string, today time.Time) (string, error)
}

// PromptedUnderstanding implements Understanding by prompting an LLM.
type PromptedUnderstanding struct {
	client llm.LLMClient
}

var _ Understanding = (*PromptedUnderstanding)(nil)

// NewPromptedUnderstanding creates an Understanding backed by client.
func NewPromptedUnderstanding(client llm.LLMClient) *PromptedUnderstanding {
	return &PromptedUnderstanding{client: client}
}

func (u *PromptedUnderstanding) ClassifyIntent(ctx context.Context, text string, today time.Time) (string, error) {
	return u.generate(ctx, llm.TaskClassify, buildClassifySystemPrompt(today), text)
}

func (u *PromptedUnderstanding) ExtractAddFields(ctx context.Context, text string, memberNames []string, today time.Time) (string, error) {
	return u.generate(ctx, llm.TaskExtract, buildExtractSystemPrompt(memberNames, today), text)
}

func (u *PromptedUnderstanding) ResolveEditOrDelete(ctx context.Context, text string, activities []ActivityDescription, isEdit bool, today time.Time) (string, error) {
	return u.generate(ctx, llm.TaskResolve, buildResolveSystemPrompt(activities, isEdit, today), text)
}

func (u *PromptedUnderstanding) AnswerQuery(ctx context.Context, text string, activityContext []string, today time.Time) (string, error) {
	return u.generate(ctx, llm.TaskQuery, buildQuerySystemPrompt(activityContext, today), text)
}

func (u *PromptedUnderstanding) generate(ctx context.Context, task llm.TaskType, system, user string) (string, error) {
	resp, err := u.client.Generate(ctx, llm.GenerateRequest{
		Task:         task,
		SystemPrompt: system,
		UserPrompt:   user,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
