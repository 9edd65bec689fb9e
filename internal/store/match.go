package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RainersCode/rugby-team-portal/types"
)

// MatchRepository handles persistence for fixtures.
type MatchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchColumns = `id, competition, opponent, venue, kickoff_at, home, home_score, away_score, status, created_at, updated_at`

// List returns matches ordered by kickoff. Upcoming filters to fixtures that
// have not kicked off yet.
func (r *MatchRepository) List(ctx context.Context, upcoming bool, offset, limit int) ([]types.Match, int, error) {
	query := `SELECT ` + matchColumns + ` FROM matches`
	countQuery := `SELECT COUNT(*) FROM matches`
	if upcoming {
		query += ` WHERE kickoff_at > now()`
		countQuery += ` WHERE kickoff_at > now()`
	}
	query += ` ORDER BY kickoff_at OFFSET $1 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	matches := make([]types.Match, 0, limit)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, 0, err
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}

func (r *MatchRepository) Get(ctx context.Context, id string) (types.Match, error) {
	const query = `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Match{}, ErrNotFound
		}
		return types.Match{}, err
	}
	return match, nil
}

func (r *MatchRepository) Create(ctx context.Context, match types.Match) (types.Match, error) {
	now := time.Now()
	match.CreatedAt = now
	match.UpdatedAt = now
	if match.Status == "" {
		match.Status = types.MatchScheduled
	}

	const query = `
		INSERT INTO matches (id, competition, opponent, venue, kickoff_at, home, home_score, away_score, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query,
		match.ID, match.Competition, match.Opponent, match.Venue, match.KickoffAt,
		match.Home, match.HomeScore, match.AwayScore, match.Status, match.CreatedAt, match.UpdatedAt,
	); err != nil {
		return types.Match{}, err
	}
	return match, nil
}

func (r *MatchRepository) Update(ctx context.Context, match types.Match) (types.Match, error) {
	match.UpdatedAt = time.Now()

	const query = `
		UPDATE matches
		SET competition = $1,
			opponent = $2,
			venue = $3,
			kickoff_at = $4,
			home = $5,
			home_score = $6,
			away_score = $7,
			status = $8,
			updated_at = $9
		WHERE id = $10`
	result, err := r.db.ExecContext(ctx, query,
		match.Competition, match.Opponent, match.Venue, match.KickoffAt, match.Home,
		match.HomeScore, match.AwayScore, match.Status, match.UpdatedAt, match.ID,
	)
	if err != nil {
		return types.Match{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Match{}, err
	}
	if affected == 0 {
		return types.Match{}, ErrNotFound
	}
	return match, nil
}

func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	return execExpectingRow(ctx, r.db, `DELETE FROM matches WHERE id = $1`, id)
}

func scanMatch(row scanner) (types.Match, error) {
	var match types.Match
	err := row.Scan(
		&match.ID,
		&match.Competition,
		&match.Opponent,
		&match.Venue,
		&match.KickoffAt,
		&match.Home,
		&match.HomeScore,
		&match.AwayScore,
		&match.Status,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	return match, err
}
