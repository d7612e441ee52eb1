package postgres

import (
	"context"
	"database/sql"
	"time"

	"taskboard/internal/domain"
)

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session row.
func (r *SessionRepo) Create(ctx context.Context, id string, userID int64, username string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, username, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)",
		id, userID, username, expiresAt, time.Now(),
	)
	return err
}

// GetByID retrieves a session by its id.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT id, user_id, username, expires_at, created_at FROM sessions WHERE id = $1",
		id,
	).Scan(&s.ID, &s.UserID, &s.Username, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete deletes a session by id.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id)
	return err
}

// DeleteByUser deletes every session belonging to the user. Login calls
// this before inserting, enforcing single-session-per-user.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = $1", userID)
	return err
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1", time.Now())
	return err
}
