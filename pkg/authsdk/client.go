// Package authsdk is the typed Go client for the QueryDeck auth service.
// The SDKClient covers unauthenticated operations; a successful Login yields
// a Session for everything behind authentication.
package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the QueryDeck authentication service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new account with the default user role.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", req, nil, &resp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with username and password and returns an
// authenticated Session on success.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*Session, error) {
	var resp LoginResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", req, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, resp), nil
}

// NewSessionFromToken builds a Session around an existing bearer token,
// e.g. one handed over by another system. Such a session authenticates with
// the token alone and cannot be logged out (there is no session id to revoke).
func (c *SDKClient) NewSessionFromToken(token string) *Session {
	return &Session{client: c, token: token}
}

// Livez checks the liveness endpoint.
func (c *SDKClient) Livez(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Readyz checks the readiness endpoint, which verifies the store connection.
func (c *SDKClient) Readyz(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}
