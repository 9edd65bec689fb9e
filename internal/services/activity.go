package services

import (
	"context"

	"github.com/RainersCode/rugby-team-portal/internal/events"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/google/uuid"
)

// ActivityRepository defines persistence operations for activities.
type ActivityRepository interface {
	List(ctx context.Context, upcoming bool, offset, limit int) ([]types.Activity, int, error)
	Get(ctx context.Context, id string) (types.Activity, error)
	Create(ctx context.Context, activity types.Activity) (types.Activity, error)
	Update(ctx context.Context, activity types.Activity) (types.Activity, error)
	Delete(ctx context.Context, id string) error
}

// ActivityService encapsulates club activity use-cases.
type ActivityService struct {
	repo      ActivityRepository
	publisher *events.Publisher
}

func NewActivityService(repo ActivityRepository, publisher *events.Publisher) *ActivityService {
	return &ActivityService{repo: repo, publisher: publisher}
}

func (s *ActivityService) List(ctx context.Context, upcoming bool, offset, limit int) ([]types.Activity, int, error) {
	return s.repo.List(ctx, upcoming, offset, limit)
}

func (s *ActivityService) Get(ctx context.Context, id string) (types.Activity, error) {
	return s.repo.Get(ctx, id)
}

func (s *ActivityService) Create(ctx context.Context, activity types.Activity) (types.Activity, error) {
	activity.ID = uuid.New().String()

	created, err := s.repo.Create(ctx, activity)
	if err != nil {
		return types.Activity{}, err
	}
	s.publisher.ActivityCreated(ctx, created.ID, created.Title)
	return created, nil
}

func (s *ActivityService) Update(ctx context.Context, activity types.Activity) (types.Activity, error) {
	return s.repo.Update(ctx, activity)
}

func (s *ActivityService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
