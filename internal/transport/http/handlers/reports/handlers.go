package reporthandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/reports"
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
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/evaluations/{id}/pdf", h.HandleEvaluationPDF)
		r.With(middleware.RequireUser).Get("/employees.csv", h.HandleEmployeesCSV)
	})
}

// HandleEvaluationPDF renders one evaluation as a downloadable PDF.
func (h *Handler) HandleEvaluationPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, ev := range h.DB.Evaluations() {
		if ev.ID != id {
			continue
		}
		emp := findEmployee(h.DB.Employees(), ev.EmployeeID)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="evaluacion.pdf"`)
		if err := reports.EvaluationPDF(w, ev, emp); err != nil {
			slog.Warn("pdf render failed", "evaluation", id, "err", err)
		}
		return
	}
	api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", requestctx.ID(r.Context()))
}

// HandleEmployeesCSV exports the caller's visible employees as CSV.
func (h *Handler) HandleEmployeesCSV(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.GetUser(r.Context())
	visible := employee.Visible(h.DB.Employees(), viewer)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="empleados.csv"`)
	if err := reports.EmployeesCSV(w, visible); err != nil {
		slog.Warn("csv export failed", "err", err)
	}
}

func findEmployee(list []employee.Employee, id string) employee.Employee {
	for _, e := range list {
		if e.ID == id {
			return e
		}
	}
	return employee.Employee{}
}
