package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func TestCleanupExpiredSessions(t *testing.T) {
	ctx := context.Background()
	auth := seededAuth(t)
	alice := register(t, auth, "alice")

	now := time.Now().UTC()
	mk := func(id string, expiresAt time.Time) {
		_, err := auth.Store.Sessions().CreateSession(ctx, domain.Session{
			SessionID: id,
			UserID:    alice.ID,
			Token:     mustToken(t, auth, alice),
			CreatedAt: now.Add(-48 * time.Hour),
			ExpiresAt: expiresAt,
			IsActive:  true,
		})
		require.NoError(t, err)
	}
	mk("expired-1", now.Add(-time.Hour))
	mk("expired-2", now.Add(-time.Minute))
	mk("live", now.Add(time.Hour))

	hk := service.NewHousekeepingService(auth.Store, slog.Default(), time.Hour)

	count, err := hk.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	_, ok := auth.ResolveSession(ctx, "expired-1")
	require.False(t, ok)
	_, ok = auth.ResolveSession(ctx, "expired-2")
	require.False(t, ok)
	_, ok = auth.ResolveSession(ctx, "live")
	require.True(t, ok)

	t.Run("second sweep finds nothing", func(t *testing.T) {
		count, err := hk.CleanupExpiredSessions(ctx)
		require.NoError(t, err)
		require.Zero(t, count)
	})
}

func TestHousekeepingStartStop(t *testing.T) {
	auth := seededAuth(t)

	hk := service.NewHousekeepingService(auth.Store, slog.Default(), time.Hour)
	hk.Start()
	hk.Stop() // must not hang or race the startup sweep
}

func mustToken(t *testing.T, auth *service.AuthService, user domain.User) string {
	t.Helper()
	token, err := auth.Codec.IssueFor(user.ID, user.Username, user.RoleID, "user", false, time.Hour, time.Now())
	require.NoError(t, err)
	return token
}
