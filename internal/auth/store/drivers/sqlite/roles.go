package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/store"
)

type rolesRepo struct {
	q querier
}

func scanRole(row *sql.Row) (domain.Role, error) {
	var (
		r     domain.Role
		perms string
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &perms, &r.CreatedAt); err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	r.Permissions = parsePermissions(perms)
	return r, nil
}

// parsePermissions decodes the JSON permission column. Malformed data
// degrades to an empty map, which denies everything.
func parsePermissions(raw string) map[string]bool {
	perms := make(map[string]bool)
	if err := json.Unmarshal([]byte(raw), &perms); err != nil {
		return map[string]bool{}
	}
	return perms
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id int64) (domain.Role, error) {
	return scanRole(r.q.QueryRowContext(ctx,
		`SELECT id, name, description, permissions, created_at FROM roles WHERE id = ?`, id))
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return scanRole(r.q.QueryRowContext(ctx,
		`SELECT id, name, description, permissions, created_at FROM roles WHERE name = ?`, name))
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) (domain.Role, error) {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return domain.Role{}, err
	}

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO roles (name, description, permissions, created_at) VALUES (?, ?, ?, ?)`,
		role.Name, role.Description, string(perms), role.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Role{}, store.ErrAlreadyExists
		}
		return domain.Role{}, err
	}

	role.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, description, permissions, created_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var (
			role  domain.Role
			perms string
		)
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &perms, &role.CreatedAt); err != nil {
			return nil, err
		}
		role.Permissions = parsePermissions(perms)
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
