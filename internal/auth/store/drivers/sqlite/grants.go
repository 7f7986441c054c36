package sqlite

import (
	"context"
	"time"

	"github.com/querydeck/querydeck/internal/auth/store"
)

type grantsRepo struct {
	q querier
}

// Grant inserts a fresh grant row or reactivates a revoked one in a single
// statement, so concurrent grants cannot race into duplicates. Zero rows
// affected means an active grant already exists.
func (r *grantsRepo) Grant(ctx context.Context, userID int64, dbName string, grantedBy int64, grantedAt time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO database_grants (user_id, db_name, granted_by, granted_at, is_active)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT (user_id, db_name) DO UPDATE SET
			is_active = 1,
			granted_by = excluded.granted_by,
			granted_at = excluded.granted_at
		WHERE database_grants.is_active = 0`,
		userID, dbName, grantedBy, grantedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *grantsRepo) Revoke(ctx context.Context, userID int64, dbName string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE database_grants SET is_active = 0
		WHERE user_id = ? AND db_name = ? AND is_active = 1`,
		userID, dbName,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *grantsRepo) ListActiveDBNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT db_name FROM database_grants
		WHERE user_id = ? AND is_active = 1 ORDER BY db_name`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *grantsRepo) HasActiveGrant(ctx context.Context, userID int64, dbName string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM database_grants
			WHERE user_id = ? AND db_name = ? AND is_active = 1
		)`,
		userID, dbName,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
