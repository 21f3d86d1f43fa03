package service

import (
	"context"
	"time"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/repository"
)

type activityService struct {
	activities repository.ActivityRepo
	observer   UseCaseObserver
}

func NewActivityService(activities repository.ActivityRepo, observers ...UseCaseObserver) ActivityService {
	return &activityService{activities: activities, observer: useCaseObserverOrNoop(observers)}
}

func (s *activityService) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	return s.activities.List(ctx, filter)
}

func (s *activityService) Get(ctx context.Context, id string) (*domain.Activity, error) {
	return s.activities.GetByID(ctx, id)
}

func (s *activityService) Remove(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() {
		observe(ctx, s.observer, "activity.remove", start, err, map[string]any{"activity_id": id})
	}()
	return s.activities.Delete(ctx, id)
}
