package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, st *Store, username string) domain.User {
	t.Helper()
	ctx := context.Background()

	role, err := st.Roles().GetRoleByName(ctx, "tester")
	if errors.Is(err, store.ErrNotFound) {
		role, err = st.Roles().CreateRole(ctx, domain.Role{
			Name:        "tester",
			Permissions: map[string]bool{"chat": true},
			CreatedAt:   time.Now(),
		})
	}
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	user, err := st.Users().CreateUser(ctx, domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Salt:         "salt",
		RoleID:       role.ID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return user
}

func TestUsersUniqueness(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	require.Positive(t, alice.ID)

	_, err := st.Users().CreateUser(ctx, domain.User{
		Username: "alice",
		Email:    "other@example.com",
		RoleID:   alice.RoleID,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = st.Users().CreateUser(ctx, domain.User{
		Username: "alice2",
		Email:    "alice@example.com",
		RoleID:   alice.RoleID,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersLastLogin(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	require.Nil(t, alice.LastLogin)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.Users().UpdateLastLogin(ctx, alice.ID, at))

	got, err := st.Users().GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	require.WithinDuration(t, at, *got.LastLogin, time.Second)

	require.ErrorIs(t, st.Users().UpdateLastLogin(ctx, 9999, at), store.ErrNotFound)
}

func TestParsePermissions(t *testing.T) {
	t.Parallel()

	t.Run("valid json", func(t *testing.T) {
		perms := parsePermissions(`{"chat": true, "admin": false}`)
		require.True(t, perms["chat"])
		require.False(t, perms["admin"])
	})

	t.Run("malformed json degrades to empty", func(t *testing.T) {
		perms := parsePermissions(`{"chat": tru`)
		require.NotNil(t, perms)
		require.Empty(t, perms)
	})

	t.Run("empty object", func(t *testing.T) {
		require.Empty(t, parsePermissions(`{}`))
	})
}

func TestRolesRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.Roles().CreateRole(ctx, domain.Role{
		Name:        "operator",
		Description: "Keeps the lights on",
		Permissions: map[string]bool{"chat": true, "admin": false},
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	got, err := st.Roles().GetRoleByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "operator", got.Name)
	require.True(t, got.Permissions["chat"])
	require.False(t, got.Permissions["admin"])

	byName, err := st.Roles().GetRoleByName(ctx, "operator")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	_, err = st.Roles().CreateRole(ctx, domain.Role{Name: "operator"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestSessionsLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice")

	now := time.Now().UTC().Truncate(time.Second)
	created, err := st.Sessions().CreateSession(ctx, domain.Session{
		SessionID: "sess-1",
		UserID:    alice.ID,
		Token:     "token",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
		IsActive:  true,
	})
	require.NoError(t, err)
	require.Positive(t, created.ID)

	got, err := st.Sessions().GetBySessionID(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.UserID)

	t.Run("deactivate reports existence and hides the session", func(t *testing.T) {
		existed, err := st.Sessions().Deactivate(ctx, "sess-1")
		require.NoError(t, err)
		require.True(t, existed)

		_, err = st.Sessions().GetBySessionID(ctx, "sess-1")
		require.ErrorIs(t, err, store.ErrNotFound)

		// Idempotent: the row is still there, just inactive.
		existed, err = st.Sessions().Deactivate(ctx, "sess-1")
		require.NoError(t, err)
		require.True(t, existed)
	})

	t.Run("deactivate of unknown id reports absence", func(t *testing.T) {
		existed, err := st.Sessions().Deactivate(ctx, "no-such-session")
		require.NoError(t, err)
		require.False(t, existed)
	})
}

func TestSessionsSweepExpired(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice")

	now := time.Now().UTC().Truncate(time.Second)
	mk := func(id string, expiresAt time.Time) {
		_, err := st.Sessions().CreateSession(ctx, domain.Session{
			SessionID: id,
			UserID:    alice.ID,
			Token:     "token",
			CreatedAt: now.Add(-2 * time.Hour),
			ExpiresAt: expiresAt,
			IsActive:  true,
		})
		require.NoError(t, err)
	}
	mk("expired-1", now.Add(-time.Hour))
	mk("expired-2", now.Add(-time.Minute))
	mk("live", now.Add(time.Hour))

	count, err := st.Sessions().SweepExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	_, err = st.Sessions().GetBySessionID(ctx, "expired-1")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Sessions().GetBySessionID(ctx, "expired-2")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Sessions().GetBySessionID(ctx, "live")
	require.NoError(t, err)

	// A second sweep finds nothing left to flip.
	count, err = st.Sessions().SweepExpired(ctx, now)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestGrantsLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	admin := seedUser(t, st, "root")

	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, st.Grants().Grant(ctx, alice.ID, "sales", admin.ID, now))

	t.Run("double grant conflicts without duplicating", func(t *testing.T) {
		err := st.Grants().Grant(ctx, alice.ID, "sales", admin.ID, now)
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		names, err := st.Grants().ListActiveDBNames(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"sales"}, names)
	})

	t.Run("revoke then re-grant reactivates the same row", func(t *testing.T) {
		require.NoError(t, st.Grants().Revoke(ctx, alice.ID, "sales"))

		has, err := st.Grants().HasActiveGrant(ctx, alice.ID, "sales")
		require.NoError(t, err)
		require.False(t, has)

		require.NoError(t, st.Grants().Grant(ctx, alice.ID, "sales", admin.ID, now.Add(time.Minute)))

		names, err := st.Grants().ListActiveDBNames(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"sales"}, names)
	})

	t.Run("revoke of missing grant reports not found", func(t *testing.T) {
		require.ErrorIs(t, st.Grants().Revoke(ctx, alice.ID, "never-granted"), store.ErrNotFound)
	})

	t.Run("list is ordered by name", func(t *testing.T) {
		require.NoError(t, st.Grants().Grant(ctx, alice.ID, "analytics", admin.ID, now))

		names, err := st.Grants().ListActiveDBNames(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"analytics", "sales"}, names)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Roles().CreateRole(ctx, domain.Role{
			Name:      "ephemeral",
			CreatedAt: time.Now(),
		})
		require.NoError(t, err)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = st.Roles().GetRoleByName(ctx, "ephemeral")
	require.ErrorIs(t, err, store.ErrNotFound)
}
