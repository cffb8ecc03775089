package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"vulcanhr/internal/domain/auth"
	"vulcanhr/internal/domain/user"
	"vulcanhr/internal/requestctx"
	"vulcanhr/internal/transport/http/api"
	"vulcanhr/internal/vulcandb"
)

type Handler struct {
	DB       *vulcandb.DB
	Secret   string
	TokenTTL time.Duration
}

func NewHandler(db *vulcandb.DB, secret string, ttl time.Duration) *Handler {
	return &Handler{DB: db, Secret: secret, TokenTTL: ttl}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token        string    `json:"token"`
	User         user.User `json:"user"`
	FirstLogin   bool      `json:"firstLogin"`
	CloudWarning string    `json:"cloudWarning,omitempty"`
}

// HandleLogin authenticates a roster user. Seeded accounts start with an
// empty password; the first password presented for such an account is
// adopted as the account password.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.ID(r.Context()))
		return
	}
	if payload.Username == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "username and password are required", requestctx.ID(r.Context()))
		return
	}

	account, ok := findUser(h.DB.Users(), payload.Username)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.ID(r.Context()))
		return
	}

	firstLogin := account.Password == ""
	if firstLogin {
		hash, err := auth.HashPassword(payload.Password)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to set password", requestctx.ID(r.Context()))
			return
		}
		account.Password = hash
		if err := h.DB.UpdateUser(r.Context(), account); err != nil {
			api.Fail(w, http.StatusInternalServerError, "store_error", "failed to persist password", requestctx.ID(r.Context()))
			return
		}
		slog.Info("first login password set", "username", account.Username)
	} else if err := auth.CheckPassword(account.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.ID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{Username: account.Username, Role: account.Role}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.ID(r.Context()))
		return
	}

	account.Password = ""
	api.Success(w, loginResponse{
		Token:        token,
		User:         account,
		FirstLogin:   firstLogin,
		CloudWarning: h.DB.LastCloudError(),
	}, requestctx.ID(r.Context()))
}

func findUser(list []user.User, username string) (user.User, bool) {
	for _, u := range list {
		if u.Username == username {
			return u, true
		}
	}
	return user.User{}, false
}
