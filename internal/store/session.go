package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RainersCode/rugby-team-portal/types"
)

// SessionRepository handles persistence for login sessions. Lookups never
// return expired sessions.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session types.Session) (types.Session, error) {
	session.CreatedAt = time.Now()

	const query = `
		INSERT INTO sessions (id, user_id, refresh_token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.RefreshToken,
		session.ExpiresAt,
		session.CreatedAt,
	); err != nil {
		return types.Session{}, err
	}
	return session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (types.Session, error) {
	const query = `
		SELECT id, user_id, refresh_token, expires_at, created_at
		FROM sessions
		WHERE id = $1 AND expires_at > now()`
	var session types.Session
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshToken,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Session{}, ErrNotFound
		}
		return types.Session{}, err
	}
	return session, nil
}

// Rotate replaces the refresh token and extends the expiry of an unexpired
// session. Rotating an expired or deleted session returns ErrNotFound; a
// rotated-away refresh token is never accepted again.
func (r *SessionRepository) Rotate(ctx context.Context, id, newRefreshToken string, newExpiry time.Time) (types.Session, error) {
	const query = `
		UPDATE sessions
		SET refresh_token = $1,
			expires_at = $2
		WHERE id = $3 AND expires_at > now()
		RETURNING id, user_id, refresh_token, expires_at, created_at`
	var session types.Session
	err := r.db.QueryRowContext(ctx, query, newRefreshToken, newExpiry, id).Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshToken,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Session{}, ErrNotFound
		}
		return types.Session{}, err
	}
	return session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return err
	}
	return nil
}

func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	const query = `DELETE FROM sessions WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return err
	}
	return nil
}

// DeleteExpired removes sessions past their expiry. Intended for a periodic
// cleanup job.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= now()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
