package evaluationhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vulcanhr/internal/domain/evaluation"
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
	r.Route("/evaluations", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/", h.HandleList)
		r.With(middleware.RequireUser).Post("/", h.HandleSubmit)
		r.With(middleware.RequireUser).Post("/{id}/bonus", h.HandleBonus)
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.DB.Evaluations(), requestctx.ID(r.Context()))
}

// HandleSubmit records one monthly evaluation. Derived fields are always
// recomputed server side, and a prior evaluation for the same employee
// and period is replaced rather than duplicated.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload evaluation.FullEvaluation
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.ID(r.Context()))
		return
	}
	if payload.EmployeeID == "" || payload.Month == "" || payload.Year == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_evaluation", "employeeId, month and year are required", requestctx.ID(r.Context()))
		return
	}
	if len(payload.Criteria) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_evaluation", "at least one criterion is required", requestctx.ID(r.Context()))
		return
	}
	for _, c := range payload.Criteria {
		if c.Score < 1 || c.Score > 5 {
			api.Fail(w, http.StatusBadRequest, "invalid_evaluation", "criterion scores must be between 1 and 5", requestctx.ID(r.Context()))
			return
		}
	}

	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}
	payload.BonusCondition = ""
	payload.AuthorizedBy = ""
	payload.SalaryIncrease = ""
	evaluation.Finalize(&payload)

	current := h.DB.Evaluations()
	next := make([]evaluation.FullEvaluation, 0, len(current)+1)
	for _, e := range current {
		if e.SamePeriod(payload) {
			continue
		}
		next = append(next, e)
	}
	next = append(next, payload)

	if err := h.DB.SaveEvaluations(r.Context(), next); err != nil {
		api.Fail(w, http.StatusInternalServerError, "store_error", "failed to save evaluation", requestctx.ID(r.Context()))
		return
	}

	h.markLastEvaluation(r, payload)
	api.Created(w, payload, requestctx.ID(r.Context()))
}

type bonusRequest struct {
	Decision string `json:"decision"`
}

// HandleBonus resolves a pending bonus authorization.
func (h *Handler) HandleBonus(w http.ResponseWriter, r *http.Request) {
	approver, _ := middleware.GetUser(r.Context())

	var payload bonusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.ID(r.Context()))
		return
	}

	workflow := evaluation.NewWorkflow(h.DB)
	err := workflow.Resolve(r.Context(), chi.URLParam(r, "id"), approver, payload.Decision)
	switch {
	case err == nil:
		api.Success(w, map[string]string{"decision": payload.Decision}, requestctx.ID(r.Context()))
	case errors.Is(err, evaluation.ErrNotAuthorized):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestctx.ID(r.Context()))
	case errors.Is(err, evaluation.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestctx.ID(r.Context()))
	case errors.Is(err, evaluation.ErrNotPending), errors.Is(err, evaluation.ErrBadDecision):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), requestctx.ID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, "store_error", "failed to resolve bonus", requestctx.ID(r.Context()))
	}
}

// markLastEvaluation stamps the evaluated period on the employee record.
// Failure here is logged by the store layer and never fails the submit.
func (h *Handler) markLastEvaluation(r *http.Request, ev evaluation.FullEvaluation) {
	employees := h.DB.Employees()
	for i := range employees {
		if employees[i].ID != ev.EmployeeID {
			continue
		}
		employees[i].LastEvaluation = ev.Month + " " + ev.Year
		_ = h.DB.SaveEmployees(r.Context(), employees)
		return
	}
}
