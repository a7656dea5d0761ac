package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/repository/ports"
)

const sessionColumns = `id, user_id, token, created_at, expires_at, is_active`

type SessionRepository struct {
	db *sqlx.DB
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepo(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	const query = `
        INSERT INTO sessions (user_id, token, expires_at, is_active)
        VALUES ($1, $2, $3, true)
        RETURNING ` + sessionColumns
	var session domain.Session
	if err := r.db.QueryRowxContext(ctx, query, userID, token, expiresAt).StructScan(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeactivateSession is idempotent: an unknown or already closed token is not
// an error.
func (r *SessionRepository) DeactivateSession(ctx context.Context, token string) error {
	const query = `
        UPDATE sessions SET is_active = false, expires_at = LEAST(expires_at, NOW())
        WHERE token = $1 AND is_active
    `
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

func (r *SessionRepository) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE token = $1 AND is_active AND expires_at > NOW()`
	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, token); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
