package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RainersCode/rugby-team-portal/types"
)

// TrainingRepository handles persistence for training programs.
type TrainingRepository struct {
	db *sql.DB
}

func NewTrainingRepository(db *sql.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

const trainingColumns = `id, title, description, level, weeks, published, created_at, updated_at`

func (r *TrainingRepository) List(ctx context.Context, publishedOnly bool, offset, limit int) ([]types.TrainingProgram, int, error) {
	query := `SELECT ` + trainingColumns + ` FROM training_programs`
	countQuery := `SELECT COUNT(*) FROM training_programs`
	if publishedOnly {
		query += ` WHERE published = TRUE`
		countQuery += ` WHERE published = TRUE`
	}
	query += ` ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	programs := make([]types.TrainingProgram, 0, limit)
	for rows.Next() {
		var program types.TrainingProgram
		if err := rows.Scan(
			&program.ID, &program.Title, &program.Description, &program.Level,
			&program.Weeks, &program.Published, &program.CreatedAt, &program.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		programs = append(programs, program)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	return programs, total, nil
}

func (r *TrainingRepository) Get(ctx context.Context, id string) (types.TrainingProgram, error) {
	const query = `SELECT ` + trainingColumns + ` FROM training_programs WHERE id = $1`
	var program types.TrainingProgram
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&program.ID, &program.Title, &program.Description, &program.Level,
		&program.Weeks, &program.Published, &program.CreatedAt, &program.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.TrainingProgram{}, ErrNotFound
		}
		return types.TrainingProgram{}, err
	}
	return program, nil
}

func (r *TrainingRepository) Create(ctx context.Context, program types.TrainingProgram) (types.TrainingProgram, error) {
	now := time.Now()
	program.CreatedAt = now
	program.UpdatedAt = now

	const query = `
		INSERT INTO training_programs (id, title, description, level, weeks, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		program.ID, program.Title, program.Description, program.Level,
		program.Weeks, program.Published, program.CreatedAt, program.UpdatedAt,
	); err != nil {
		return types.TrainingProgram{}, err
	}
	return program, nil
}

func (r *TrainingRepository) Update(ctx context.Context, program types.TrainingProgram) (types.TrainingProgram, error) {
	program.UpdatedAt = time.Now()

	const query = `
		UPDATE training_programs
		SET title = $1,
			description = $2,
			level = $3,
			weeks = $4,
			published = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		program.Title, program.Description, program.Level, program.Weeks,
		program.Published, program.UpdatedAt, program.ID,
	)
	if err != nil {
		return types.TrainingProgram{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.TrainingProgram{}, err
	}
	if affected == 0 {
		return types.TrainingProgram{}, ErrNotFound
	}
	return program, nil
}

func (r *TrainingRepository) Delete(ctx context.Context, id string) error {
	return execExpectingRow(ctx, r.db, `DELETE FROM training_programs WHERE id = $1`, id)
}
