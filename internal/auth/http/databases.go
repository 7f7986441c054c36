package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/querydeck/querydeck/internal/auth/domain"
	"github.com/querydeck/querydeck/internal/auth/service"
	"github.com/querydeck/querydeck/pkg/authsdk"
	"github.com/querydeck/querydeck/pkg/httpx"
)

type DatabasesHandler struct {
	Access *service.AccessService
}

// HandleList returns the databases the authenticated user may access.
func (h *DatabasesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.DatabasesResponse{
		Success:   true,
		Databases: h.Access.ListDatabases(ctx, user),
	})
}

// HandleGrant gives a user access to a database. Admin only.
func (h *DatabasesHandler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Access.Grant)
}

// HandleRevoke removes a user's access to a database. Admin only.
func (h *DatabasesHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Access.Revoke)
}

type accessMutation func(ctx context.Context, admin domain.User, userID int64, dbName string) service.ActionResult

func (h *DatabasesHandler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	op accessMutation,
) {
	ctx := r.Context()

	admin, ok := UserFromContext(ctx)
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req authsdk.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}
	if req.UserID <= 0 || req.DBName == "" {
		authsdk.ErrBadRequest.WriteError(w)
		return
	}

	result := op(ctx, admin, req.UserID, req.DBName)
	if !result.OK {
		status := http.StatusInternalServerError
		switch result.Message {
		case "Admin access required":
			status = http.StatusForbidden
		case "User already has access to this database":
			status = http.StatusConflict
		case "User does not have access to this database":
			status = http.StatusNotFound
		}
		httpx.WriteJSON(w, status, authsdk.MessageResponse{Success: false, Message: result.Message})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: result.Message})
}
