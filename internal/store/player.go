package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RainersCode/rugby-team-portal/types"
)

// PlayerRepository handles persistence for the roster.
type PlayerRepository struct {
	db *sql.DB
}

func NewPlayerRepository(db *sql.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `id, name, position, squad, number, height_cm, weight_kg, photo_url, created_at, updated_at`

// List returns players ordered by squad and shirt number. A non-empty squad
// filters to that squad.
func (r *PlayerRepository) List(ctx context.Context, squad string, offset, limit int) ([]types.Player, int, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if squad != "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+playerColumns+` FROM players WHERE squad = $1 ORDER BY number OFFSET $2 LIMIT $3`,
			squad, offset, limit)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+playerColumns+` FROM players ORDER BY squad, number OFFSET $1 LIMIT $2`,
			offset, limit)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	players := make([]types.Player, 0, limit)
	for rows.Next() {
		var player types.Player
		if err := rows.Scan(
			&player.ID, &player.Name, &player.Position, &player.Squad, &player.Number,
			&player.HeightCm, &player.WeightKg, &player.PhotoURL, &player.CreatedAt, &player.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if squad != "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE squad = $1`, squad).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&total)
	}
	if err != nil {
		return nil, 0, err
	}
	return players, total, nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (types.Player, error) {
	const query = `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	var player types.Player
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID, &player.Name, &player.Position, &player.Squad, &player.Number,
		&player.HeightCm, &player.WeightKg, &player.PhotoURL, &player.CreatedAt, &player.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Player{}, ErrNotFound
		}
		return types.Player{}, err
	}
	return player, nil
}

func (r *PlayerRepository) Create(ctx context.Context, player types.Player) (types.Player, error) {
	now := time.Now()
	player.CreatedAt = now
	player.UpdatedAt = now

	const query = `
		INSERT INTO players (id, name, position, squad, number, height_cm, weight_kg, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		player.ID, player.Name, player.Position, player.Squad, player.Number,
		player.HeightCm, player.WeightKg, player.PhotoURL, player.CreatedAt, player.UpdatedAt,
	); err != nil {
		return types.Player{}, err
	}
	return player, nil
}

func (r *PlayerRepository) Update(ctx context.Context, player types.Player) (types.Player, error) {
	player.UpdatedAt = time.Now()

	const query = `
		UPDATE players
		SET name = $1,
			position = $2,
			squad = $3,
			number = $4,
			height_cm = $5,
			weight_kg = $6,
			photo_url = $7,
			updated_at = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(ctx, query,
		player.Name, player.Position, player.Squad, player.Number,
		player.HeightCm, player.WeightKg, player.PhotoURL, player.UpdatedAt, player.ID,
	)
	if err != nil {
		return types.Player{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Player{}, err
	}
	if affected == 0 {
		return types.Player{}, ErrNotFound
	}
	return player, nil
}

func (r *PlayerRepository) Delete(ctx context.Context, id string) error {
	return execExpectingRow(ctx, r.db, `DELETE FROM players WHERE id = $1`, id)
}
