package repository

import (
	"context"

	"github.com/famcoord/famcoord/internal/domain"
)

type MemberRepo interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByName(ctx context.Context, name string) (*domain.Member, error)
	List(ctx context.Context) ([]domain.Member, error)
	Delete(ctx context.Context, id string) error
}

// ActivityFilter narrows List. Zero fields match everything; From and To
// are inclusive YYYY-MM-DD bounds.
type ActivityFilter struct {
	MemberID string
	From     string
	To       string
}

type ActivityRepo interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	GetByCalendarEventID(ctx context.Context, eventID string) (*domain.Activity, error)
	List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
	Update(ctx context.Context, a *domain.Activity) error
	Delete(ctx context.Context, id string) error
}
