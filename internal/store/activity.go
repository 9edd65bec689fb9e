package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RainersCode/rugby-team-portal/types"
)

// ActivityRepository handles persistence for club activities.
type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `id, title, description, location, starts_at, capacity, created_at, updated_at`

func (r *ActivityRepository) List(ctx context.Context, upcoming bool, offset, limit int) ([]types.Activity, int, error) {
	query := `SELECT ` + activityColumns + ` FROM activities`
	countQuery := `SELECT COUNT(*) FROM activities`
	if upcoming {
		query += ` WHERE starts_at > now()`
		countQuery += ` WHERE starts_at > now()`
	}
	query += ` ORDER BY starts_at OFFSET $1 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	activities := make([]types.Activity, 0, limit)
	for rows.Next() {
		var activity types.Activity
		if err := rows.Scan(
			&activity.ID, &activity.Title, &activity.Description, &activity.Location,
			&activity.StartsAt, &activity.Capacity, &activity.CreatedAt, &activity.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

func (r *ActivityRepository) Get(ctx context.Context, id string) (types.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	var activity types.Activity
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&activity.ID, &activity.Title, &activity.Description, &activity.Location,
		&activity.StartsAt, &activity.Capacity, &activity.CreatedAt, &activity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Activity{}, ErrNotFound
		}
		return types.Activity{}, err
	}
	return activity, nil
}

func (r *ActivityRepository) Create(ctx context.Context, activity types.Activity) (types.Activity, error) {
	now := time.Now()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	const query = `
		INSERT INTO activities (id, title, description, location, starts_at, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		activity.ID, activity.Title, activity.Description, activity.Location,
		activity.StartsAt, activity.Capacity, activity.CreatedAt, activity.UpdatedAt,
	); err != nil {
		return types.Activity{}, err
	}
	return activity, nil
}

func (r *ActivityRepository) Update(ctx context.Context, activity types.Activity) (types.Activity, error) {
	activity.UpdatedAt = time.Now()

	const query = `
		UPDATE activities
		SET title = $1,
			description = $2,
			location = $3,
			starts_at = $4,
			capacity = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		activity.Title, activity.Description, activity.Location, activity.StartsAt,
		activity.Capacity, activity.UpdatedAt, activity.ID,
	)
	if err != nil {
		return types.Activity{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Activity{}, err
	}
	if affected == 0 {
		return types.Activity{}, ErrNotFound
	}
	return activity, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	return execExpectingRow(ctx, r.db, `DELETE FROM activities WHERE id = $1`, id)
}
