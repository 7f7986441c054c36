package authsdk

import (
	"context"
	"net/http"
)

// Session is an authenticated handle on the service. It presents the session
// cookie when it has one and the bearer token otherwise.
type Session struct {
	client    *SDKClient
	sessionID string
	token     string
	user      *UserInfo
}

func newSession(client *SDKClient, resp LoginResponse) *Session {
	return &Session{
		client:    client,
		sessionID: resp.SessionID,
		token:     resp.Token,
		user:      resp.User,
	}
}

// SessionID returns the opaque session identifier, empty for token-only sessions.
func (s *Session) SessionID() string { return s.sessionID }

// Token returns the bearer token issued at login.
func (s *Session) Token() string { return s.token }

// User returns the identity cached from login, nil for token-only sessions.
func (s *Session) User() *UserInfo { return s.user }

func (s *Session) creds() *credentials {
	return &credentials{sessionID: s.sessionID, token: s.token}
}

// Me fetches the authenticated user's profile.
func (s *Session) Me(ctx context.Context) (*UserInfo, error) {
	var resp MeResponse
	if err := s.client.doJSON(ctx, http.MethodGet, "/v1/auth/me", nil, s.creds(), &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout deactivates the server-side session. The bearer token is untouched
// and remains valid until it expires on its own.
func (s *Session) Logout(ctx context.Context) (*MessageResponse, error) {
	var resp MessageResponse
	if err := s.client.doJSON(ctx, http.MethodPost, "/v1/auth/logout", nil, s.creds(), &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListUsers returns every active user. Admin only.
func (s *Session) ListUsers(ctx context.Context) ([]UserInfo, error) {
	var resp UsersResponse
	if err := s.client.doJSON(ctx, http.MethodGet, "/v1/users", nil, s.creds(), &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ListDatabases returns the databases the authenticated user may access.
func (s *Session) ListDatabases(ctx context.Context) ([]string, error) {
	var resp DatabasesResponse
	if err := s.client.doJSON(ctx, http.MethodGet, "/v1/databases", nil, s.creds(), &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Databases, nil
}

// GrantDatabase gives a user access to a database. Admin only.
func (s *Session) GrantDatabase(ctx context.Context, userID int64, dbName string) (*MessageResponse, error) {
	var resp MessageResponse
	req := GrantRequest{UserID: userID, DBName: dbName}
	if err := s.client.doJSON(ctx, http.MethodPost, "/v1/databases/grant", req, s.creds(), &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RevokeDatabase removes a user's access to a database. Admin only.
func (s *Session) RevokeDatabase(ctx context.Context, userID int64, dbName string) (*MessageResponse, error) {
	var resp MessageResponse
	req := GrantRequest{UserID: userID, DBName: dbName}
	if err := s.client.doJSON(ctx, http.MethodPost, "/v1/databases/revoke", req, s.creds(), &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}
