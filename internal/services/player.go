package services

import (
	"context"

	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/google/uuid"
)

// PlayerRepository defines persistence operations for the roster.
type PlayerRepository interface {
	List(ctx context.Context, squad string, offset, limit int) ([]types.Player, int, error)
	Get(ctx context.Context, id string) (types.Player, error)
	Create(ctx context.Context, player types.Player) (types.Player, error)
	Update(ctx context.Context, player types.Player) (types.Player, error)
	Delete(ctx context.Context, id string) error
}

// PlayerService encapsulates roster use-cases.
type PlayerService struct {
	repo PlayerRepository
}

func NewPlayerService(repo PlayerRepository) *PlayerService {
	return &PlayerService{repo: repo}
}

func (s *PlayerService) List(ctx context.Context, squad string, offset, limit int) ([]types.Player, int, error) {
	return s.repo.List(ctx, squad, offset, limit)
}

func (s *PlayerService) Get(ctx context.Context, id string) (types.Player, error) {
	return s.repo.Get(ctx, id)
}

func (s *PlayerService) Create(ctx context.Context, player types.Player) (types.Player, error) {
	player.ID = uuid.New().String()
	return s.repo.Create(ctx, player)
}

func (s *PlayerService) Update(ctx context.Context, player types.Player) (types.Player, error) {
	return s.repo.Update(ctx, player)
}

func (s *PlayerService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
