package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/service"
	"github.com/querydeck/querydeck/pkg/authsdk"
	"github.com/querydeck/querydeck/pkg/httpx"
)

// userInfo converts a domain user into its public API shape.
func userInfo(u domain.User) authsdk.UserInfo {
	return authsdk.UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		AvatarURL:   u.AvatarURL,
		RoleID:      u.RoleID,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}
}

type RegisterHandler struct {
	Auth *service.AuthService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}

	result := h.Auth.Register(r.Context(), service.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
	})
	if !result.OK {
		status := http.StatusBadRequest
		switch result.Message {
		case "Username already exists", "Email already exists":
			status = http.StatusConflict
		case "Registration failed", "Default user role not found":
			status = http.StatusInternalServerError
		}
		httpx.WriteJSON(w, status, authsdk.MessageResponse{Success: false, Message: result.Message})
		return
	}

	user := userInfo(result.User)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		Success: true,
		Message: result.Message,
		User:    &user,
	})
}

type LoginHandler struct {
	Auth       *service.AuthService
	SessionTTL time.Duration
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}

	result := h.Auth.Authenticate(r.Context(), service.LoginRequest{
		Username:  req.Username,
		Password:  req.Password,
		UserAgent: r.UserAgent(),
		IPAddress: httpx.IPKeyExtractor(r),
	})
	if !result.OK {
		status := http.StatusUnauthorized
		if result.Message == "Failed to create session" {
			status = http.StatusInternalServerError
		}
		httpx.WriteJSON(w, status, authsdk.MessageResponse{Success: false, Message: result.Message})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.SessionCookieName,
		Value:    result.SessionID,
		Path:     "/",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	user := userInfo(result.User)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Success:   true,
		Message:   result.Message,
		SessionID: result.SessionID,
		Token:     result.Token,
		User:      &user,
	})
}

type LogoutHandler struct {
	Auth *service.AuthService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Clear the cookie regardless of the outcome below.
	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	sessionID := SessionIDFromContext(ctx)
	if sessionID == "" {
		// Bearer-only request, nothing server-side to revoke.
		httpx.WriteJSON(w, http.StatusNotFound, authsdk.MessageResponse{
			Success: false,
			Message: "Session not found",
		})
		return
	}

	result := h.Auth.Logout(ctx, sessionID)
	if !result.OK {
		httpx.WriteJSON(w, http.StatusNotFound, authsdk.MessageResponse{
			Success: false,
			Message: result.Message,
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: result.Message})
}

type MeHandler struct{}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
		Success: true,
		User:    userInfo(user),
	})
}
