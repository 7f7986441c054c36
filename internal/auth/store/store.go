package store

import (
	"context"
	"errors"
	"time"

	"github.com/querydeck/querydeck/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to make nested transactions hard to write by accident.
type Store interface {
	Users() Users
	Roles() Roles
	Sessions() Sessions
	Grants() Grants

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle multi-step writes.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is the login lookup.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail backs the duplicate-email check during registration.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user and returns it with the assigned id.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// UpdateLastLogin stamps last_login and bumps updated_at.
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type Roles interface {
	// GetRoleByID fetches a role by its id.
	GetRoleByID(ctx context.Context, id int64) (domain.Role, error)

	// GetRoleByName fetches a role by name (used by bootstrap and registration).
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// CreateRole inserts a new role and returns it with the assigned id.
	CreateRole(ctx context.Context, r domain.Role) (domain.Role, error)

	// ListAll returns every role in the system.
	ListAll(ctx context.Context) ([]domain.Role, error)
}

type Sessions interface {
	// CreateSession stores a freshly minted session.
	CreateSession(ctx context.Context, s domain.Session) (domain.Session, error)

	// GetBySessionID returns an active session by its opaque id. Expiry is
	// the caller's concern; inactive sessions are not returned.
	GetBySessionID(ctx context.Context, sessionID string) (domain.Session, error)

	// Deactivate flips is_active off for the session, active or not.
	// It reports whether a session with that id existed.
	Deactivate(ctx context.Context, sessionID string) (bool, error)

	// SweepExpired deactivates every active session whose expiry has passed
	// and returns how many were flipped.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type Grants interface {
	// Grant activates access for user to dbName, either inserting a fresh
	// row or reactivating a revoked one. Returns ErrAlreadyExists when an
	// active grant is already in place.
	Grant(ctx context.Context, userID int64, dbName string, grantedBy int64, grantedAt time.Time) error

	// Revoke deactivates an active grant. Returns ErrNotFound when the user
	// has no active grant for dbName.
	Revoke(ctx context.Context, userID int64, dbName string) error

	// ListActiveDBNames returns the db names the user holds active grants
	// for, ordered by name.
	ListActiveDBNames(ctx context.Context, userID int64) ([]string, error)

	// HasActiveGrant reports whether user holds an active grant for dbName.
	HasActiveGrant(ctx context.Context, userID int64, dbName string) (bool, error)
}
