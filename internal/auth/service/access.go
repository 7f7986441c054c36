package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/store"
	"github.com/querydeck/querydeck/pkg/slogx"
)

// AccessService manages which databases a user may reach. Grants are
// admin-only mutations; reads answer for the requesting user themselves.
type AccessService struct {
	Store store.Store
	Auth  *AuthService

	// Now is the clock used for grant timestamps. Defaults to time.Now.
	Now func() time.Time
}

func (s *AccessService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// ActionResult reports the outcome of a grant or revoke.
type ActionResult struct {
	OK      bool
	Message string
}

// Grant gives userID access to dbName. Only admins may grant; a grant that
// is already active is a conflict, not a no-op.
func (s *AccessService) Grant(ctx context.Context, admin domain.User, userID int64, dbName string) ActionResult {
	l := slogx.FromContext(ctx)

	if !s.Auth.CanAccessAdmin(ctx, admin) {
		return ActionResult{OK: false, Message: "Admin access required"}
	}

	err := s.Store.Grants().Grant(ctx, userID, dbName, admin.ID, s.now())
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ActionResult{OK: false, Message: "User already has access to this database"}
		}
		l.Error("failed to grant database access",
			slog.Int64("user_id", userID),
			slog.String("db_name", dbName),
			slog.Any("error", err),
		)
		return ActionResult{OK: false, Message: "Failed to grant database access"}
	}

	l.Info("database access granted",
		slog.Int64("user_id", userID),
		slog.String("db_name", dbName),
		slog.Int64("granted_by", admin.ID),
	)
	return ActionResult{OK: true, Message: "Database access granted successfully"}
}

// Revoke removes userID's access to dbName. Only admins may revoke; revoking
// access the user does not hold is reported as such.
func (s *AccessService) Revoke(ctx context.Context, admin domain.User, userID int64, dbName string) ActionResult {
	l := slogx.FromContext(ctx)

	if !s.Auth.CanAccessAdmin(ctx, admin) {
		return ActionResult{OK: false, Message: "Admin access required"}
	}

	err := s.Store.Grants().Revoke(ctx, userID, dbName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ActionResult{OK: false, Message: "User does not have access to this database"}
		}
		l.Error("failed to revoke database access",
			slog.Int64("user_id", userID),
			slog.String("db_name", dbName),
			slog.Any("error", err),
		)
		return ActionResult{OK: false, Message: "Failed to revoke database access"}
	}

	l.Info("database access revoked",
		slog.Int64("user_id", userID),
		slog.String("db_name", dbName),
		slog.Int64("revoked_by", admin.ID),
	)
	return ActionResult{OK: true, Message: "Database access revoked successfully"}
}

// ListDatabases returns the database names the user holds grants for.
// Superusers can reach everything, so there is nothing meaningful to
// enumerate here and they get an empty list; the catalog itself belongs to
// the query layer, not the auth store.
func (s *AccessService) ListDatabases(ctx context.Context, user domain.User) []string {
	if user.IsSuperuser {
		return []string{}
	}

	names, err := s.Store.Grants().ListActiveDBNames(ctx, user.ID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list database grants",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
		return []string{}
	}
	if names == nil {
		names = []string{}
	}
	return names
}

// CanAccessDatabase reports whether the user may touch dbName. Superusers
// always can; everyone else needs an active grant.
func (s *AccessService) CanAccessDatabase(ctx context.Context, user domain.User, dbName string) bool {
	if user.IsSuperuser {
		return true
	}

	ok, err := s.Store.Grants().HasActiveGrant(ctx, user.ID, dbName)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to check database grant",
			slog.Int64("user_id", user.ID),
			slog.String("db_name", dbName),
			slog.Any("error", err),
		)
		return false
	}
	return ok
}
