package employeehandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vulcanhr/internal/bulkimport"
	"vulcanhr/internal/domain/employee"
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
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/", h.HandleList)
		r.With(middleware.RequireUser).Put("/", h.HandleSave)
		r.With(middleware.RequireUser).Delete("/{id}", h.HandleDelete)
		r.With(middleware.RequireUser).Post("/import", h.HandleImport)
	})
}

// HandleList returns the employees visible to the caller. Management
// roles see the whole roster, supervisors only their direct reports.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.GetUser(r.Context())
	visible := employee.Visible(h.DB.Employees(), viewer)
	api.Success(w, visible, requestctx.ID(r.Context()))
}

// HandleSave replaces the employee collection. The full list semantics
// match the evaluation views, which edit employees in place and write the
// whole set back.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var list []employee.Employee
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.ID(r.Context()))
		return
	}
	for _, e := range list {
		if e.ID == "" || e.Name == "" {
			api.Fail(w, http.StatusBadRequest, "invalid_employee", "every employee needs an id and a name", requestctx.ID(r.Context()))
			return
		}
	}
	if err := h.DB.SaveEmployees(r.Context(), list); err != nil {
		if errors.Is(err, vulcandb.ErrInvalidPayload) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestctx.ID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "store_error", "failed to save employees", requestctx.ID(r.Context()))
		return
	}
	api.Success(w, list, requestctx.ID(r.Context()))
}

// HandleDelete removes one employee and every evaluation attached to it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.GetUser(r.Context())
	if !canManageRoster(viewer.Role) {
		api.Fail(w, http.StatusForbidden, "forbidden", "role may not delete employees", requestctx.ID(r.Context()))
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.DB.DeleteEmployee(r.Context(), id); err != nil {
		api.Fail(w, http.StatusInternalServerError, "store_error", "failed to delete employee", requestctx.ID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"deleted": id}, requestctx.ID(r.Context()))
}

// HandleImport appends employees parsed from an uploaded CSV to the
// roster. Rejected rows are reported alongside the accepted count; a bad
// row never blocks the rest of the file.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.GetUser(r.Context())
	if !canManageRoster(viewer.Role) {
		api.Fail(w, http.StatusForbidden, "forbidden", "role may not import employees", requestctx.ID(r.Context()))
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "read_error", "failed to read upload", requestctx.ID(r.Context()))
		return
	}
	result, err := bulkimport.Parse(data)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_csv", err.Error(), requestctx.ID(r.Context()))
		return
	}

	if len(result.Employees) > 0 {
		merged := append(h.DB.Employees(), result.Employees...)
		if err := h.DB.SaveEmployees(r.Context(), merged); err != nil {
			api.Fail(w, http.StatusInternalServerError, "store_error", "failed to save imported employees", requestctx.ID(r.Context()))
			return
		}
	}
	api.Success(w, map[string]any{
		"imported": len(result.Employees),
		"issues":   result.Issues,
	}, requestctx.ID(r.Context()))
}

func canManageRoster(role string) bool {
	return user.SeesAllEmployees(role)
}
