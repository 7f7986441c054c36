package http_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	authhttp "github.com/querydeck/querydeck/internal/auth/http"
	"github.com/querydeck/querydeck/internal/auth/service"
	"github.com/querydeck/querydeck/internal/auth/store/drivers/sqlite"
	"github.com/querydeck/querydeck/pkg/authsdk"
	"github.com/querydeck/querydeck/pkg/httpx"
	"github.com/querydeck/querydeck/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Tests hammer the same loopback address, so the per-IP limits must not
	// interfere.
	wideOpen := httpx.RateLimitConfig{RequestsPerWindow: 100000, Window: time.Minute, Burst: 100000}
	httpx.StrictLimit = wideOpen
	httpx.ModerateLimit = wideOpen
	httpx.LenientLimit = wideOpen

	os.Exit(m.Run())
}

type testEnv struct {
	server *httptest.Server
	sdk    *authsdk.SDKClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	boot := &service.BootstrapService{
		Store:              st,
		AdminUsername:      "admin",
		AdminPassword:      "admin-password",
		AdminEmail:         "admin@example.com",
		PasswordIterations: 1000,
	}
	require.NoError(t, boot.EnsureDefaults(ctx))

	auth := &service.AuthService{
		Store:              st,
		Codec:              jwtx.NewCodec("test-secret", "HS256"),
		TokenTTL:           time.Hour,
		SessionTTL:         24 * time.Hour,
		PasswordMinLength:  8,
		PasswordIterations: 1000,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := authhttp.NewRouter("test", st, logger)
	router.AuthService = auth
	router.AccessService = &service.AccessService{Store: st, Auth: auth}
	router.UserService = &service.UserService{Store: st, Auth: auth}
	router.SessionTTL = 24 * time.Hour
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{
		server: server,
		sdk:    authsdk.NewSDKClient(server.URL),
	}
}

func (e *testEnv) registerAndLogin(t *testing.T, username string) *authsdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := e.sdk.Register(ctx, authsdk.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "long-enough-password",
	})
	require.NoError(t, err)

	session, err := e.sdk.Login(ctx, username, "long-enough-password")
	require.NoError(t, err)
	return session
}

func (e *testEnv) loginAdmin(t *testing.T) *authsdk.Session {
	t.Helper()
	session, err := e.sdk.Login(context.Background(), "admin", "admin-password")
	require.NoError(t, err)
	return session
}

func TestRegisterEndpoint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("creates an account", func(t *testing.T) {
		resp, err := env.sdk.Register(ctx, authsdk.RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "long-enough-password",
			FullName: "Alice",
		})
		require.NoError(t, err)
		require.True(t, resp.Success)
		require.Equal(t, "User registered successfully", resp.Message)
		require.NotNil(t, resp.User)
		require.Equal(t, "alice", resp.User.Username)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := env.sdk.Register(ctx, authsdk.RegisterRequest{
			Username: "alice",
			Email:    "alice2@example.com",
			Password: "long-enough-password",
		})
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusConflict, apiErr.StatusCode)
		require.Equal(t, "Username already exists", apiErr.Message)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, err := env.sdk.Register(ctx, authsdk.RegisterRequest{Username: "bob"})
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("short password rejected with the minimum", func(t *testing.T) {
		_, err := env.sdk.Register(ctx, authsdk.RegisterRequest{
			Username: "bob",
			Email:    "bob@example.com",
			Password: "short",
		})
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		require.Equal(t, "Password must be at least 8 characters long", apiErr.Message)
	})
}

func TestLoginEndpoint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.registerAndLogin(t, "alice")

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		_, err := env.sdk.Login(ctx, "alice", "wrong-password")
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "Invalid username or password", apiErr.Message)
	})

	t.Run("login sets the session cookie", func(t *testing.T) {
		resp, err := http.Post(env.server.URL+"/v1/auth/login", "application/json",
			strings.NewReader(`{"username": "alice", "password": "long-enough-password"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var cookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == authsdk.SessionCookieName {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		require.NotEmpty(t, cookie.Value)
		require.True(t, cookie.HttpOnly)
	})
}

func TestMeEndpoint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	session := env.registerAndLogin(t, "alice")

	t.Run("returns the authenticated user", func(t *testing.T) {
		me, err := session.Me(ctx)
		require.NoError(t, err)
		require.Equal(t, "alice", me.Username)
		require.False(t, me.IsSuperuser)
	})

	t.Run("bearer token alone authenticates", func(t *testing.T) {
		tokenOnly := env.sdk.NewSessionFromToken(session.Token())
		me, err := tokenOnly.Me(ctx)
		require.NoError(t, err)
		require.Equal(t, "alice", me.Username)
	})

	t.Run("no credentials is unauthorized", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, env.server.URL+"/v1/auth/me", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	session := env.registerAndLogin(t, "alice")

	resp, err := session.Logout(ctx)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "Logout successful", resp.Message)

	t.Run("session cookie no longer authenticates", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, env.server.URL+"/v1/auth/me", nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: authsdk.SessionCookieName, Value: session.SessionID()})

		raw, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer raw.Body.Close()
		require.Equal(t, http.StatusUnauthorized, raw.StatusCode)
	})

	t.Run("bearer token still authenticates after logout", func(t *testing.T) {
		tokenOnly := env.sdk.NewSessionFromToken(session.Token())
		me, err := tokenOnly.Me(ctx)
		require.NoError(t, err)
		require.Equal(t, "alice", me.Username)
	})
}

func TestUsersEndpoint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.registerAndLogin(t, "alice")
	admin := env.loginAdmin(t)

	t.Run("admin lists users", func(t *testing.T) {
		users, err := admin.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := alice.ListUsers(ctx)
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		require.Equal(t, "Admin access required", apiErr.Message)
	})
}

func TestDatabaseEndpoints(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.registerAndLogin(t, "alice")
	admin := env.loginAdmin(t)

	aliceID := alice.User().ID

	t.Run("grant and list", func(t *testing.T) {
		resp, err := admin.GrantDatabase(ctx, aliceID, "sales")
		require.NoError(t, err)
		require.Equal(t, "Database access granted successfully", resp.Message)

		dbs, err := alice.ListDatabases(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"sales"}, dbs)
	})

	t.Run("double grant conflicts", func(t *testing.T) {
		_, err := admin.GrantDatabase(ctx, aliceID, "sales")
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusConflict, apiErr.StatusCode)
		require.Equal(t, "User already has access to this database", apiErr.Message)
	})

	t.Run("non-admin cannot grant", func(t *testing.T) {
		_, err := alice.GrantDatabase(ctx, aliceID, "finance")
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})

	t.Run("revoke then revoke again", func(t *testing.T) {
		resp, err := admin.RevokeDatabase(ctx, aliceID, "sales")
		require.NoError(t, err)
		require.Equal(t, "Database access revoked successfully", resp.Message)

		_, err = admin.RevokeDatabase(ctx, aliceID, "sales")
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		require.Equal(t, "User does not have access to this database", apiErr.Message)
	})

	t.Run("superuser sees an empty list", func(t *testing.T) {
		dbs, err := admin.ListDatabases(ctx)
		require.NoError(t, err)
		require.Empty(t, dbs)
	})
}

func TestHealthEndpoints(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	live, err := env.sdk.Livez(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := env.sdk.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}
