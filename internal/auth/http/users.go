package http

import (
	"net/http"

	"github.com/querydeck/querydeck/internal/auth/service"
	"github.com/querydeck/querydeck/pkg/authsdk"
	"github.com/querydeck/querydeck/pkg/httpx"
)

type UsersHandler struct {
	Auth  *service.AuthService
	Users *service.UserService
}

func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requester, ok := UserFromContext(ctx)
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}
	if !h.Auth.CanAccessAdmin(ctx, requester) {
		authsdk.ErrForbidden.WriteError(w)
		return
	}

	users := h.Users.ListUsers(ctx, requester)
	infos := make([]authsdk.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, userInfo(u))
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UsersResponse{Success: true, Users: infos})
}
