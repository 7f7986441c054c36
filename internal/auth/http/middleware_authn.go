package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/querydeck/querydeck/internal/auth/service"
	"github.com/querydeck/querydeck/pkg/authsdk"
	"github.com/querydeck/querydeck/pkg/httpx"
)

// RequireAuth resolves the caller's identity, session cookie first and
// bearer token second, and places the user in the request context. Requests
// that present neither, or only dead credentials, get a 401.
func RequireAuth(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cookie, err := r.Cookie(authsdk.SessionCookieName); err == nil && cookie.Value != "" {
				if user, ok := auth.ResolveSession(ctx, cookie.Value); ok {
					ctx = withUser(ctx, user)
					ctx = withSessionID(ctx, cookie.Value)
					ctx = httpx.WithUserID(ctx, strconv.FormatInt(user.ID, 10))
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
				raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
				if user, ok := auth.ResolveToken(ctx, raw); ok {
					ctx = withUser(ctx, user)
					ctx = httpx.WithUserID(ctx, strconv.FormatInt(user.ID, 10))
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			authsdk.ErrUnauthorized.WriteError(w)
		})
	}
}
