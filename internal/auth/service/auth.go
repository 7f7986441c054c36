package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/store"
	"github.com/querydeck/querydeck/pkg/cryptox"
	"github.com/querydeck/querydeck/pkg/jwtx"
	"github.com/querydeck/querydeck/pkg/slogx"
)

// AuthService owns credential verification, token issuance and the session
// lifecycle. Every operation returns a result value rather than an error:
// infrastructure failures are logged and degrade to a denial, so callers
// never have to distinguish "wrong password" from "database down".
type AuthService struct {
	Store store.Store
	Codec *jwtx.Codec

	TokenTTL           time.Duration
	SessionTTL         time.Duration
	PasswordMinLength  int
	PasswordIterations int

	// Now is the clock used for all timestamps. Defaults to time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// RegisterRequest carries the self-service registration input.
type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FullName  string
	AvatarURL string
}

// RegisterResult reports the outcome of a registration attempt.
type RegisterResult struct {
	OK      bool
	Message string
	User    domain.User
}

func registerFailure(msg string) RegisterResult {
	return RegisterResult{OK: false, Message: msg}
}

// Register creates a new account with the default `user` role. Checks run in
// a fixed order so callers see stable messages: password length, username
// collision, email collision, role lookup, then the insert itself.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) RegisterResult {
	l := slogx.FromContext(ctx)

	if len(req.Password) < s.PasswordMinLength {
		return registerFailure(fmt.Sprintf("Password must be at least %d characters long", s.PasswordMinLength))
	}

	if _, err := s.Store.Users().GetUserByUsername(ctx, req.Username); err == nil {
		return registerFailure("Username already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		l.Error("registration username lookup failed", slog.Any("error", err))
		return registerFailure("Registration failed")
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, req.Email); err == nil {
		return registerFailure("Email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		l.Error("registration email lookup failed", slog.Any("error", err))
		return registerFailure("Registration failed")
	}

	role, err := s.Store.Roles().GetRoleByName(ctx, "user")
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Error("default user role missing, bootstrap did not run?")
			return registerFailure("Default user role not found")
		}
		l.Error("registration role lookup failed", slog.Any("error", err))
		return registerFailure("Registration failed")
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		l.Error("failed to generate salt", slog.Any("error", err))
		return registerFailure("Registration failed")
	}

	now := s.now()
	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: cryptox.HashPassword(req.Password, salt, s.PasswordIterations),
		Salt:         salt,
		FullName:     req.FullName,
		AvatarURL:    req.AvatarURL,
		RoleID:       role.ID,
		IsActive:     true,
		IsSuperuser:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent registration.
			return registerFailure("Username already exists")
		}
		l.Error("failed to create user", slog.Any("error", err))
		return registerFailure("Registration failed")
	}

	l.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return RegisterResult{OK: true, Message: "User registered successfully", User: user}
}

// LoginRequest carries a credential login attempt plus client metadata
// recorded on the session.
type LoginRequest struct {
	Username  string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginResult reports the outcome of an authentication attempt. On success
// SessionID and Token carry the two credentials the client may use.
type LoginResult struct {
	OK        bool
	Message   string
	SessionID string
	Token     string
	User      domain.User
}

func loginFailure(msg string) LoginResult {
	return LoginResult{OK: false, Message: msg}
}

// Authenticate verifies credentials, mints a token and opens a session.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, req LoginRequest) LoginResult {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("login user lookup failed", slog.Any("error", err))
		}
		return loginFailure("Invalid username or password")
	}

	if !user.IsActive {
		l.Info("login rejected, account disabled", slog.Int64("user_id", user.ID))
		return loginFailure("User account is disabled")
	}

	if !cryptox.VerifyPassword(req.Password, user.Salt, user.PasswordHash, s.PasswordIterations) {
		l.Info("login rejected, bad password", slog.String("username", req.Username))
		return loginFailure("Invalid username or password")
	}

	roleName := ""
	if role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID); err == nil {
		roleName = role.Name
	} else {
		l.Warn("role lookup failed during login", slog.Int64("role_id", user.RoleID), slog.Any("error", err))
	}

	now := s.now()
	token, err := s.Codec.IssueFor(user.ID, user.Username, user.RoleID, roleName, user.IsSuperuser, s.TokenTTL, now)
	if err != nil {
		l.Error("failed to sign token", slog.Any("error", err))
		return loginFailure("Failed to create session")
	}

	sessionID, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		l.Error("failed to generate session id", slog.Any("error", err))
		return loginFailure("Failed to create session")
	}

	_, err = s.Store.Sessions().CreateSession(ctx, domain.Session{
		SessionID: sessionID,
		UserID:    user.ID,
		Token:     token,
		UserAgent: req.UserAgent,
		IPAddress: req.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(s.SessionTTL),
		IsActive:  true,
	})
	if err != nil {
		l.Error("failed to create session", slog.Any("error", err))
		return loginFailure("Failed to create session")
	}

	// Best effort: a failed stamp doesn't invalidate the login.
	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		l.Warn("failed to update last_login", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}
	user.LastLogin = &now

	l.Info("user authenticated",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return LoginResult{
		OK:        true,
		Message:   "Authentication successful",
		SessionID: sessionID,
		Token:     token,
		User:      user,
	}
}

// ResolveSession turns an opaque session id into an authenticated user.
// Expired sessions are treated as absent without waiting for the sweeper.
// A session whose embedded token no longer verifies is deactivated on the
// spot so it stops being presented.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (domain.User, bool) {
	l := slogx.FromContext(ctx)

	session, err := s.Store.Sessions().GetBySessionID(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("session lookup failed", slog.Any("error", err))
		}
		return domain.User{}, false
	}

	if session.ExpiredAt(s.now()) {
		return domain.User{}, false
	}

	if _, err := s.Codec.Verify(session.Token); err != nil {
		l.Warn("session carries an unverifiable token, deactivating",
			slog.Int64("user_id", session.UserID),
			slog.Any("error", err),
		)
		if _, derr := s.Store.Sessions().Deactivate(ctx, sessionID); derr != nil {
			l.Error("failed to deactivate bad session", slog.Any("error", derr))
		}
		return domain.User{}, false
	}

	user, err := s.Store.Users().GetUserByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("session user lookup failed", slog.Any("error", err))
		}
		return domain.User{}, false
	}
	if !user.IsActive {
		return domain.User{}, false
	}

	return user, true
}

// ResolveToken authenticates a bearer token on its own. The token is trusted
// for its full lifetime once issued; it is not cross-checked against any
// session state.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (domain.User, bool) {
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.Verify(token)
	if err != nil {
		return domain.User{}, false
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("token user lookup failed", slog.Any("error", err))
		}
		return domain.User{}, false
	}
	if !user.IsActive {
		return domain.User{}, false
	}

	return user, true
}

// LogoutResult reports the outcome of a logout attempt.
type LogoutResult struct {
	OK      bool
	Message string
}

// Logout deactivates the session. Deactivation is idempotent, so a repeated
// logout still succeeds; only an id that never existed reports absence.
func (s *AuthService) Logout(ctx context.Context, sessionID string) LogoutResult {
	l := slogx.FromContext(ctx)

	existed, err := s.Store.Sessions().Deactivate(ctx, sessionID)
	if err != nil {
		l.Error("failed to deactivate session", slog.Any("error", err))
		return LogoutResult{OK: false, Message: "Session not found"}
	}
	if !existed {
		return LogoutResult{OK: false, Message: "Session not found"}
	}
	return LogoutResult{OK: true, Message: "Logout successful"}
}

// HasPermission evaluates a single capability for the user. Superusers pass
// every check. Anything that prevents a definitive answer (missing role,
// malformed permission data, storage failure) denies.
func (s *AuthService) HasPermission(ctx context.Context, user domain.User, permission string) bool {
	if user.IsSuperuser {
		return true
	}

	role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Error("permission role lookup failed",
				slog.Int64("role_id", user.RoleID),
				slog.Any("error", err),
			)
		}
		return false
	}

	return role.Has(permission)
}

// CanAccessAdmin reports whether the user may perform administrative actions.
func (s *AuthService) CanAccessAdmin(ctx context.Context, user domain.User) bool {
	return s.HasPermission(ctx, user, domain.PermissionAdmin)
}

// CanAccessConstruct reports whether the user may use construct features.
func (s *AuthService) CanAccessConstruct(ctx context.Context, user domain.User) bool {
	return s.HasPermission(ctx, user, domain.PermissionConstruct)
}
