package service

import (
	"context"
	"time"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/repository"
)

// SnapshotProvider supplies the roster and activities an instruction is
// interpreted against.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Snapshot is a read-only copy of the household state.
type Snapshot struct {
	Members    []domain.Member
	Activities []domain.Activity
}

type MemberService interface {
	Add(ctx context.Context, m *domain.Member) error
	List(ctx context.Context) ([]domain.Member, error)
	// Remove deletes the member named by id or by name.
	Remove(ctx context.Context, idOrName string) (*domain.Member, error)
}

type ActivityService interface {
	List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error)
	Get(ctx context.Context, id string) (*domain.Activity, error)
	Remove(ctx context.Context, id string) error
}

// InterpretRequest is one instruction. Members and Activities override the
// stored snapshot when non-nil; a zero Today means the current date.
type InterpretRequest struct {
	Text       string
	Today      time.Time
	Members    []domain.Member
	Activities []domain.Activity
}

// Outcome is an interpreted command plus what the caller should do next.
type Outcome struct {
	Command *intelligence.Command       `json:"command"`
	State   intelligence.ExecutionState `json:"state"`
}

// ApplyResult describes the write performed for a command.
type ApplyResult struct {
	Action   intelligence.Action `json:"action"`
	Activity *domain.Activity    `json:"activity,omitempty"`
	// DeletedID is set for deletes.
	DeletedID string `json:"deletedId,omitempty"`
}

type CommandService interface {
	Interpret(ctx context.Context, req InterpretRequest) (*Outcome, error)
	Apply(ctx context.Context, cmd *intelligence.Command) (*ApplyResult, error)
}
