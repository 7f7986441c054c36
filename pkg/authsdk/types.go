package authsdk

import "time"

// SessionCookieName is the cookie the service sets at login and reads back
// on authenticated requests.
const SessionCookieName = "qd_session"

// MessageResponse is the generic outcome envelope for mutations.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserInfo is the public view of a user account. Credential material is
// never serialized.
type UserInfo struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	RoleID      int64      `json:"role_id"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RegisterRequest is the body of POST /v1/auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RegisterResponse is returned from POST /v1/auth/register.
type RegisterResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    *UserInfo `json:"user,omitempty"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned from POST /v1/auth/login. SessionID is also set
// as the session cookie; Token may be used as a bearer credential on its own.
type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	SessionID string    `json:"session_id,omitempty"`
	Token     string    `json:"token,omitempty"`
	User      *UserInfo `json:"user,omitempty"`
}

// MeResponse is returned from GET /v1/auth/me.
type MeResponse struct {
	Success bool     `json:"success"`
	User    UserInfo `json:"user"`
}

// UsersResponse is returned from GET /v1/users.
type UsersResponse struct {
	Success bool       `json:"success"`
	Users   []UserInfo `json:"users"`
}

// DatabasesResponse is returned from GET /v1/databases.
type DatabasesResponse struct {
	Success   bool     `json:"success"`
	Databases []string `json:"databases"`
}

// GrantRequest is the body of POST /v1/databases/grant and /v1/databases/revoke.
type GrantRequest struct {
	UserID int64  `json:"user_id"`
	DBName string `json:"db_name"`
}

// HealthResponse is returned from the health endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}
