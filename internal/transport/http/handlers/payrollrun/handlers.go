package payrollrunhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dailysettle/internal/domain/settlement"
	"dailysettle/internal/platform/jobs"
	"dailysettle/internal/transport/http/api"
	"dailysettle/internal/transport/http/middleware"
	"dailysettle/internal/transport/http/shared"
)

type Handler struct {
	Jobs     *jobs.Service
	Location *time.Location
}

func NewHandler(jobService *jobs.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Jobs: jobService, Location: loc}
}

type runRequest struct {
	Date  string `json:"date"`
	Async bool   `json:"async"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll-runs", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleRun)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 20, 50)
	api.Success(w, shared.Page(h.Jobs.History(), page), middleware.GetRequestID(r.Context()))
}

// handleRun triggers the payroll run for one business day, defaulting to
// yesterday.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload runRequest
	if !shared.DecodeOptionalJSON(w, r, &payload, reqID) {
		return
	}
	date := jobs.PreviousDay(time.Now(), h.Location)
	if payload.Date != "" {
		v := shared.NewValidator()
		parsed, err := shared.ParseDateIn(payload.Date, h.Location)
		if err != nil {
			v.Add("date", "must be a valid date in YYYY-MM-DD format")
		}
		if v.Reject(w, reqID) {
			return
		}
		date = parsed
	}

	if payload.Async {
		h.Jobs.EnqueuePayrollRun(date)
		api.Accepted(w, map[string]any{"date": date.Format("2006-01-02"), "status": "queued"}, reqID)
		return
	}

	summary, err := h.Jobs.RunPayrollNow(r.Context(), date)
	if err != nil {
		if errors.Is(err, settlement.ErrNoReportSource) {
			api.Fail(w, http.StatusServiceUnavailable, "source_unavailable", "report storage is not configured", reqID)
			return
		}
		slog.Error("payroll run failed", "date", date.Format("2006-01-02"), "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "payroll_run_failed", "payroll run failed", reqID)
		return
	}
	api.Success(w, summary, reqID)
}
