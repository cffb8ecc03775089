package synchandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vulcanhr/internal/broadcast"
	"vulcanhr/internal/requestctx"
	"vulcanhr/internal/transport/http/api"
	"vulcanhr/internal/transport/http/middleware"
	"vulcanhr/internal/vulcandb"
)

type Handler struct {
	DB  *vulcandb.DB
	Hub *broadcast.Hub
}

func NewHandler(db *vulcandb.DB, hub *broadcast.Hub) *Handler {
	return &Handler{DB: db, Hub: hub}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sync", func(r chi.Router) {
		r.With(middleware.RequireUser).Post("/push", h.HandlePush)
		r.With(middleware.RequireUser).Get("/status", h.HandleStatus)
		r.With(middleware.RequireUser).Get("/backup", h.HandleExportBackup)
		r.With(middleware.RequireUser).Post("/backup", h.HandleImportBackup)
		r.With(middleware.RequireUser).Get("/events", h.HandleEvents)
	})
}

type statusResponse struct {
	Synced    bool   `json:"synced"`
	LastError string `json:"lastError,omitempty"`
}

// HandlePush replays every local collection to the cloud mirror.
func (h *Handler) HandlePush(w http.ResponseWriter, r *http.Request) {
	ok := h.DB.ForceCloudSync(r.Context())
	api.Success(w, statusResponse{Synced: ok, LastError: h.DB.LastCloudError()}, requestctx.ID(r.Context()))
}

// HandleStatus runs the cloud diagnostic probe.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.DB.CloudStatus(r.Context()), requestctx.ID(r.Context()))
}

type backupResponse struct {
	Code string `json:"code"`
}

type restoreRequest struct {
	Code string `json:"code"`
}

// HandleExportBackup returns the full dataset as a portable backup code.
func (h *Handler) HandleExportBackup(w http.ResponseWriter, r *http.Request) {
	code, err := h.DB.ExportBackup()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "backup_error", "failed to export backup", requestctx.ID(r.Context()))
		return
	}
	api.Success(w, backupResponse{Code: code}, requestctx.ID(r.Context()))
}

// HandleImportBackup restores the dataset from a backup code. A code that
// fails to decode leaves every collection untouched.
func (h *Handler) HandleImportBackup(w http.ResponseWriter, r *http.Request) {
	var payload restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.ID(r.Context()))
		return
	}
	if err := h.DB.ImportBackup(r.Context(), payload.Code); err != nil {
		if errors.Is(err, vulcandb.ErrBadBackupCode) {
			api.Fail(w, http.StatusBadRequest, "invalid_backup", "backup code is not valid", requestctx.ID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "store_error", "failed to restore backup", requestctx.ID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"restored": true}, requestctx.ID(r.Context()))
}

// HandleEvents streams collection change notifications as server-sent
// events so other browser tabs can refresh without polling.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Fail(w, http.StatusInternalServerError, "stream_error", "streaming unsupported", requestctx.ID(r.Context()))
		return
	}

	sub := h.Hub.Subscribe()
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub.Events():
			if !open {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}
