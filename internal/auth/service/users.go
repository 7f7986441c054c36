package service

import (
	"context"
	"log/slog"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/store"
	"github.com/querydeck/querydeck/pkg/slogx"
)

// UserService exposes user directory reads.
type UserService struct {
	Store store.Store
	Auth  *AuthService
}

// ListUsers returns every active user, newest first. Non-admins get an
// empty list rather than an error.
func (s *UserService) ListUsers(ctx context.Context, requester domain.User) []domain.User {
	if !s.Auth.CanAccessAdmin(ctx, requester) {
		return []domain.User{}
	}

	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list users", slog.Any("error", err))
		return []domain.User{}
	}

	active := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			active = append(active, u)
		}
	}
	return active
}
