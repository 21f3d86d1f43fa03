package service

import (
	"context"
	"fmt"

	"github.com/famcoord/famcoord/internal/repository"
)

type storeSnapshot struct {
	members    repository.MemberRepo
	activities repository.ActivityRepo
}

// NewStoreSnapshot reads the snapshot from the repositories.
func NewStoreSnapshot(members repository.MemberRepo, activities repository.ActivityRepo) SnapshotProvider {
	return &storeSnapshot{members: members, activities: activities}
}

func (s *storeSnapshot) Snapshot(ctx context.Context) (Snapshot, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading members: %w", err)
	}
	activities, err := s.activities.List(ctx, repository.ActivityFilter{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading activities: %w", err)
	}
	return Snapshot{Members: members, Activities: activities}, nil
}
