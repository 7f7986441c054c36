package sqlite

import (
	"context"
	"time"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/store"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) (domain.Session, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, token, user_agent, ip_address,
			created_at, expires_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.UserID, s.Token, s.UserAgent, s.IPAddress,
		s.CreatedAt, s.ExpiresAt, s.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Session{}, store.ErrAlreadyExists
		}
		return domain.Session{}, err
	}

	s.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

func (r *sessionsRepo) GetBySessionID(ctx context.Context, sessionID string) (domain.Session, error) {
	var s domain.Session
	err := r.q.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, token, user_agent, ip_address,
			created_at, expires_at, is_active
		FROM sessions WHERE session_id = ? AND is_active = 1`,
		sessionID,
	).Scan(&s.ID, &s.SessionID, &s.UserID, &s.Token, &s.UserAgent, &s.IPAddress,
		&s.CreatedAt, &s.ExpiresAt, &s.IsActive)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) Deactivate(ctx context.Context, sessionID string) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0 WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sessionsRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0 WHERE is_active = 1 AND expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
