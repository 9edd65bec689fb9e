package services

import (
	"context"

	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/google/uuid"
)

// TrainingRepository defines persistence operations for training programs.
type TrainingRepository interface {
	List(ctx context.Context, publishedOnly bool, offset, limit int) ([]types.TrainingProgram, int, error)
	Get(ctx context.Context, id string) (types.TrainingProgram, error)
	Create(ctx context.Context, program types.TrainingProgram) (types.TrainingProgram, error)
	Update(ctx context.Context, program types.TrainingProgram) (types.TrainingProgram, error)
	Delete(ctx context.Context, id string) error
}

// TrainingService encapsulates training program use-cases.
type TrainingService struct {
	repo TrainingRepository
}

func NewTrainingService(repo TrainingRepository) *TrainingService {
	return &TrainingService{repo: repo}
}

func (s *TrainingService) List(ctx context.Context, publishedOnly bool, offset, limit int) ([]types.TrainingProgram, int, error) {
	return s.repo.List(ctx, publishedOnly, offset, limit)
}

func (s *TrainingService) Get(ctx context.Context, id string) (types.TrainingProgram, error) {
	return s.repo.Get(ctx, id)
}

func (s *TrainingService) Create(ctx context.Context, program types.TrainingProgram) (types.TrainingProgram, error) {
	program.ID = uuid.New().String()
	return s.repo.Create(ctx, program)
}

func (s *TrainingService) Update(ctx context.Context, program types.TrainingProgram) (types.TrainingProgram, error) {
	return s.repo.Update(ctx, program)
}

func (s *TrainingService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
