package userhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"vulcanhr/internal/domain/auth"
	"vulcanhr/internal/domain/user"
	"vulcanhr/internal/requestctx"
	"vulcanhr/internal/transport/http/api"
	"vulcanhr/internal/transport/http/middleware"
	"vulcanhr/internal/vulcandb"
)

type Handler struct {
	DB *vulcandb.DB
}

func NewHandler(db *vulcandb.DB) *Handler {
	return &Handler{DB: db}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/", h.HandleList)
		r.With(middleware.RequireUser).Put("/", h.HandleSave)
	})
}

// HandleList returns the roster with password hashes stripped.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	users := h.DB.Users()
	out := make([]user.User, 0, len(users))
	for _, u := range users {
		u.Password = ""
		out = append(out, u)
	}
	api.Success(w, out, requestctx.ID(r.Context()))
}

// HandleSave replaces the user roster. Plaintext passwords in the payload
// are hashed before storage; already hashed values pass through so a
// read-modify-write of the roster does not destroy credentials.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	if !canManageUsers(caller.Role) {
		api.Fail(w, http.StatusForbidden, "forbidden", "role may not manage users", requestctx.ID(r.Context()))
		return
	}

	var list []user.User
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.ID(r.Context()))
		return
	}
	for i, u := range list {
		if u.Username == "" || !user.ValidRole(u.Role) {
			api.Fail(w, http.StatusBadRequest, "invalid_user", "every user needs a username and a known role", requestctx.ID(r.Context()))
			return
		}
		if u.Password != "" && !isBcryptHash(u.Password) {
			hash, err := auth.HashPassword(u.Password)
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to hash password", requestctx.ID(r.Context()))
				return
			}
			list[i].Password = hash
		}
	}

	if err := h.DB.SaveUsers(r.Context(), list); err != nil {
		if errors.Is(err, vulcandb.ErrInvalidUser) || errors.Is(err, vulcandb.ErrInvalidPayload) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestctx.ID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "store_error", "failed to save users", requestctx.ID(r.Context()))
		return
	}
	api.Success(w, map[string]int{"saved": len(list)}, requestctx.ID(r.Context()))
}

func canManageUsers(role string) bool {
	return role == user.RoleRRHH || role == user.RoleDirector
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
