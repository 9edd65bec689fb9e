package services

import (
	"context"

	"github.com/RainersCode/rugby-team-portal/internal/events"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/google/uuid"
)

// MatchRepository defines persistence operations for fixtures.
type MatchRepository interface {
	List(ctx context.Context, upcoming bool, offset, limit int) ([]types.Match, int, error)
	Get(ctx context.Context, id string) (types.Match, error)
	Create(ctx context.Context, match types.Match) (types.Match, error)
	Update(ctx context.Context, match types.Match) (types.Match, error)
	Delete(ctx context.Context, id string) error
}

// MatchService encapsulates fixture use-cases.
type MatchService struct {
	repo      MatchRepository
	publisher *events.Publisher
}

func NewMatchService(repo MatchRepository, publisher *events.Publisher) *MatchService {
	return &MatchService{repo: repo, publisher: publisher}
}

func (s *MatchService) List(ctx context.Context, upcoming bool, offset, limit int) ([]types.Match, int, error) {
	return s.repo.List(ctx, upcoming, offset, limit)
}

func (s *MatchService) Get(ctx context.Context, id string) (types.Match, error) {
	return s.repo.Get(ctx, id)
}

func (s *MatchService) Create(ctx context.Context, match types.Match) (types.Match, error) {
	match.ID = uuid.New().String()
	return s.repo.Create(ctx, match)
}

func (s *MatchService) Update(ctx context.Context, match types.Match) (types.Match, error) {
	return s.repo.Update(ctx, match)
}

// RecordResult stores a final score, marks the match played and emits a
// content event.
func (s *MatchService) RecordResult(ctx context.Context, id string, homeScore, awayScore int) (types.Match, error) {
	match, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Match{}, err
	}

	match.HomeScore = homeScore
	match.AwayScore = awayScore
	match.Status = types.MatchPlayed

	updated, err := s.repo.Update(ctx, match)
	if err != nil {
		return types.Match{}, err
	}

	s.publisher.MatchResult(ctx, updated.ID, updated.HomeScore, updated.AwayScore)
	return updated, nil
}

func (s *MatchService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
