package service_test

import (
	"context"
	"testing"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/service"
	"github.com/stretchr/testify/require"
)

type accessFixture struct {
	auth   *service.AuthService
	access *service.AccessService
	admin  domain.User
	alice  domain.User
}

func newAccessFixture(t *testing.T) accessFixture {
	t.Helper()
	ctx := context.Background()

	auth := seededAuth(t)
	alice := register(t, auth, "alice")

	admin, err := auth.Store.Users().GetUserByUsername(ctx, "admin")
	require.NoError(t, err)

	return accessFixture{
		auth:   auth,
		access: &service.AccessService{Store: auth.Store, Auth: auth},
		admin:  admin,
		alice:  alice,
	}
}

func TestGrant(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)

	t.Run("admin grants access", func(t *testing.T) {
		result := f.access.Grant(ctx, f.admin, f.alice.ID, "sales")
		require.True(t, result.OK)
		require.Equal(t, "Database access granted successfully", result.Message)
		require.True(t, f.access.CanAccessDatabase(ctx, f.alice, "sales"))
	})

	t.Run("double grant conflicts without mutating", func(t *testing.T) {
		result := f.access.Grant(ctx, f.admin, f.alice.ID, "sales")
		require.False(t, result.OK)
		require.Equal(t, "User already has access to this database", result.Message)

		require.Equal(t, []string{"sales"}, f.access.ListDatabases(ctx, f.alice))
	})

	t.Run("non-admin cannot grant", func(t *testing.T) {
		result := f.access.Grant(ctx, f.alice, f.alice.ID, "finance")
		require.False(t, result.OK)
		require.Equal(t, "Admin access required", result.Message)
		require.False(t, f.access.CanAccessDatabase(ctx, f.alice, "finance"))
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)

	granted := f.access.Grant(ctx, f.admin, f.alice.ID, "sales")
	require.True(t, granted.OK)

	t.Run("admin revokes access", func(t *testing.T) {
		result := f.access.Revoke(ctx, f.admin, f.alice.ID, "sales")
		require.True(t, result.OK)
		require.Equal(t, "Database access revoked successfully", result.Message)
		require.False(t, f.access.CanAccessDatabase(ctx, f.alice, "sales"))
	})

	t.Run("revoking a missing grant reports it", func(t *testing.T) {
		result := f.access.Revoke(ctx, f.admin, f.alice.ID, "never-granted")
		require.False(t, result.OK)
		require.Equal(t, "User does not have access to this database", result.Message)
	})

	t.Run("non-admin cannot revoke", func(t *testing.T) {
		result := f.access.Revoke(ctx, f.alice, f.alice.ID, "sales")
		require.False(t, result.OK)
		require.Equal(t, "Admin access required", result.Message)
	})

	t.Run("re-grant after revoke succeeds", func(t *testing.T) {
		result := f.access.Grant(ctx, f.admin, f.alice.ID, "sales")
		require.True(t, result.OK)
		require.Equal(t, []string{"sales"}, f.access.ListDatabases(ctx, f.alice))
	})
}

func TestListDatabases(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)

	t.Run("empty before any grant", func(t *testing.T) {
		require.Empty(t, f.access.ListDatabases(ctx, f.alice))
	})

	t.Run("lists active grants", func(t *testing.T) {
		require.True(t, f.access.Grant(ctx, f.admin, f.alice.ID, "sales").OK)
		require.True(t, f.access.Grant(ctx, f.admin, f.alice.ID, "analytics").OK)

		require.Equal(t, []string{"analytics", "sales"}, f.access.ListDatabases(ctx, f.alice))
	})

	t.Run("superuser gets an empty list", func(t *testing.T) {
		require.True(t, f.access.Grant(ctx, f.admin, f.admin.ID, "sales").OK)

		// Enumerating every database is the query layer's job; the grant
		// store answers only for users who need grants.
		require.Empty(t, f.access.ListDatabases(ctx, f.admin))
	})
}

func TestCanAccessDatabase(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)

	t.Run("superuser can access anything", func(t *testing.T) {
		require.True(t, f.access.CanAccessDatabase(ctx, f.admin, "whatever"))
	})

	t.Run("regular user needs an active grant", func(t *testing.T) {
		require.False(t, f.access.CanAccessDatabase(ctx, f.alice, "sales"))
		require.True(t, f.access.Grant(ctx, f.admin, f.alice.ID, "sales").OK)
		require.True(t, f.access.CanAccessDatabase(ctx, f.alice, "sales"))
	})
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)
	users := &service.UserService{Store: f.auth.Store, Auth: f.auth}

	t.Run("admin sees active users", func(t *testing.T) {
		list := users.ListUsers(ctx, f.admin)
		require.Len(t, list, 2) // admin + alice
	})

	t.Run("non-admin gets an empty list", func(t *testing.T) {
		require.Empty(t, users.ListUsers(ctx, f.alice))
	})

	t.Run("inactive users are filtered out", func(t *testing.T) {
		role, err := f.auth.Store.Roles().GetRoleByName(ctx, "user")
		require.NoError(t, err)
		_, err = f.auth.Store.Users().CreateUser(ctx, domain.User{
			Username: "ghost",
			Email:    "ghost@example.com",
			RoleID:   role.ID,
			IsActive: false,
		})
		require.NoError(t, err)

		list := users.ListUsers(ctx, f.admin)
		require.Len(t, list, 2)
		for _, u := range list {
			require.NotEqual(t, "ghost", u.Username)
		}
	})
}
