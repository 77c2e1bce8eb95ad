package settlementhandler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dailysettle/internal/domain/settlement"
	"dailysettle/internal/export"
	"dailysettle/internal/platform/metrics"
	"dailysettle/internal/transport/http/api"
	"dailysettle/internal/transport/http/middleware"
	"dailysettle/internal/transport/http/shared"
)

const (
	maxBatchReports = 500
	maxResolveItems = 1000

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	cardOwners       = []string{settlement.CardOwnerCompany, settlement.CardOwnerOwn}
	returnFeeMethods = []string{settlement.ReturnFeeNone, settlement.ReturnFeeAppTicket, settlement.ReturnFeeCashToDriver}
	fuelPayers       = []string{settlement.FuelPaidByCompanyCash, settlement.FuelPaidByOther}
)

type Handler struct {
	Service  *settlement.Service
	Metrics  *metrics.Collector
	Location *time.Location
}

func NewHandler(service *settlement.Service, collector *metrics.Collector, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Service: service, Metrics: collector, Location: loc}
}

type computeRequest struct {
	Entries []settlement.TripEntry     `json:"entries"`
	Params  settlement.DailyParameters `json:"params"`
}

type computeResponse struct {
	Totals     settlement.Totals `json:"totals"`
	EntryKinds []string          `json:"entryKinds"`
}

type reportPayload struct {
	ID         string                     `json:"id"`
	DriverID   string                     `json:"driverId"`
	DriverName string                     `json:"driverName"`
	Date       string                     `json:"date"`
	Params     settlement.DailyParameters `json:"params"`
	Entries    []settlement.TripEntry     `json:"entries"`
}

type batchRequest struct {
	Reports []reportPayload `json:"reports"`
}

type slipRequest struct {
	Report reportPayload `json:"report"`
}

type batchResult struct {
	ReportID string             `json:"reportId"`
	DriverID string             `json:"driverId"`
	Totals   *settlement.Totals `json:"totals,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type batchResponse struct {
	Summary settlement.BatchSummary `json:"summary"`
	Results []batchResult           `json:"results"`
}

type resolveRequest struct {
	Labels []string `json:"labels"`
}

type resolvedLabel struct {
	Raw         string                   `json:"raw"`
	Method      settlement.PaymentMethod `json:"method"`
	Known       bool                     `json:"known"`
	CompanySide bool                     `json:"companySide"`
	SpecialUber string                   `json:"specialUber,omitempty"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settlements", func(r chi.Router) {
		r.Post("/compute", h.handleCompute)
		r.Post("/batch", h.handleBatch)
		r.Post("/export/xlsx", h.handleExportXLSX)
		r.Post("/export/pdf", h.handleExportPDF)
		r.Get("/reports/{reportID}", h.handleStoredReport)
		r.Get("/policy", h.handlePolicy)
	})
	r.Get("/payment-methods", h.handleListMethods)
	r.Post("/payment-methods/resolve", h.handleResolve)
}

func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload computeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	validateDay(v, "", payload.Entries, payload.Params)
	if v.Reject(w, reqID) {
		return
	}

	totals := settlement.Compute(payload.Entries, payload.Params, h.Service.Policy())
	if err := totals.Check(); err != nil {
		h.failInvariant(w, reqID, err)
		return
	}
	h.recordSettlements(1, 0)

	kinds := make([]string, len(payload.Entries))
	for i, entry := range payload.Entries {
		kinds[i] = entry.Kind().String()
	}
	api.Success(w, computeResponse{Totals: totals, EntryKinds: kinds}, reqID)
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	summary, ok := h.runBatch(w, r, reqID)
	if !ok {
		return
	}
	results := make([]batchResult, len(summary.Results))
	for i, result := range summary.Results {
		results[i] = batchResult{ReportID: result.Report.ID, DriverID: result.Report.DriverID}
		if result.Err != nil {
			results[i].Error = result.Err.Error()
			continue
		}
		totals := result.Totals
		results[i].Totals = &totals
	}
	api.Success(w, batchResponse{Summary: summary, Results: results}, reqID)
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	summary, ok := h.runBatch(w, r, reqID)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, summary); err != nil {
		slog.Error("xlsx export failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build workbook", reqID)
		return
	}
	writeAttachment(w, xlsxContentType, "settlements.xlsx", buf.Bytes())
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload slipRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	report := h.toReport(v, "report", payload.Report)
	if v.Reject(w, reqID) {
		return
	}

	totals := settlement.Compute(report.Entries, report.Params, h.Service.Policy())
	if err := totals.Check(); err != nil {
		h.failInvariant(w, reqID, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteSlip(&buf, report, totals); err != nil {
		slog.Error("pdf export failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render slip", reqID)
		return
	}
	name := "settlement.pdf"
	if report.ID != "" {
		name = "settlement-" + sanitizeFilename(report.ID) + ".pdf"
	}
	writeAttachment(w, "application/pdf", name, buf.Bytes())
}

func (h *Handler) handleStoredReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	reportID := strings.TrimSpace(chi.URLParam(r, "reportID"))
	result, err := h.Service.ComputeReport(r.Context(), reportID)
	switch {
	case err == nil:
	case errors.Is(err, settlement.ErrNoReportSource):
		api.Fail(w, http.StatusServiceUnavailable, "source_unavailable", "report storage is not configured", reqID)
		return
	case errors.Is(err, settlement.ErrReportNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "daily report not found", reqID)
		return
	case errors.Is(err, settlement.ErrInvalidEntry), errors.Is(err, settlement.ErrInvalidParameters):
		h.recordSettlements(0, 1)
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_report", err.Error(), reqID)
		return
	case errors.Is(err, settlement.ErrInvariantViolated):
		h.failInvariant(w, reqID, err)
		return
	default:
		slog.Error("stored report compute failed", "reportId", reportID, "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to load report", reqID)
		return
	}
	h.recordSettlements(1, 0)
	api.Success(w, map[string]any{"report": result.Report, "totals": result.Totals}, reqID)
}

func (h *Handler) handlePolicy(w http.ResponseWriter, r *http.Request) {
	policy := h.Service.Policy()
	api.Success(w, map[string]any{
		"returnFeeCoverage": policy.ReturnFeeCoverage,
		"commissionRates":   policy.CommissionRates,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListMethods(w http.ResponseWriter, r *http.Request) {
	out := make([]resolvedLabel, 0, len(settlement.Methods))
	for _, method := range settlement.Methods {
		out = append(out, resolvedLabel{Raw: string(method), Method: method, Known: true, CompanySide: method.CompanySide()})
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload resolveRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	if len(payload.Labels) > maxResolveItems {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "labels", Reason: fmt.Sprintf("at most %d labels per request", maxResolveItems)}})
		return
	}
	out := make([]resolvedLabel, len(payload.Labels))
	for i, raw := range payload.Labels {
		method := settlement.ResolvePaymentMethod(raw)
		out[i] = resolvedLabel{
			Raw:         raw,
			Method:      method,
			Known:       method.Known(),
			CompanySide: method.CompanySide(),
			SpecialUber: settlement.SpecialUberKind(raw),
		}
	}
	api.Success(w, out, reqID)
}

// runBatch decodes a batch payload and computes it. Reports that fail entry
// validation come back as rejected results rather than failing the request.
func (h *Handler) runBatch(w http.ResponseWriter, r *http.Request, reqID string) (settlement.BatchSummary, bool) {
	var payload batchRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return settlement.BatchSummary{}, false
	}
	v := shared.NewValidator()
	if len(payload.Reports) == 0 {
		v.Add("reports", "at least one report is required")
	}
	if len(payload.Reports) > maxBatchReports {
		v.Add("reports", fmt.Sprintf("at most %d reports per request", maxBatchReports))
	}
	reports := make([]settlement.Report, 0, len(payload.Reports))
	for i, p := range payload.Reports {
		reports = append(reports, h.toReport(v, fmt.Sprintf("reports[%d]", i), p))
	}
	if v.Reject(w, reqID) {
		return settlement.BatchSummary{}, false
	}

	summary, err := h.Service.RunReports(r.Context(), reports)
	if err != nil {
		slog.Warn("batch compute aborted", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusServiceUnavailable, "batch_aborted", "batch computation aborted", reqID)
		return settlement.BatchSummary{}, false
	}
	h.recordSettlements(summary.ReportCount-summary.FailedCount, summary.FailedCount)
	return summary, true
}

// toReport checks only the report envelope; entry problems are left to the
// batch so one bad report does not reject its neighbours.
func (h *Handler) toReport(v *shared.Validator, field string, p reportPayload) settlement.Report {
	report := settlement.Report{
		ID:         strings.TrimSpace(p.ID),
		DriverID:   strings.TrimSpace(p.DriverID),
		DriverName: strings.TrimSpace(p.DriverName),
		Params:     p.Params,
		Entries:    p.Entries,
	}
	if strings.TrimSpace(p.Date) != "" {
		date, err := shared.ParseDateIn(strings.TrimSpace(p.Date), h.Location)
		if err != nil {
			v.Add(field+".date", "must be a valid date in YYYY-MM-DD format")
		}
		report.Date = date
	}
	if field == "report" {
		validateDay(v, field, p.Entries, p.Params)
	}
	return report
}

func validateDay(v *shared.Validator, prefix string, entries []settlement.TripEntry, params settlement.DailyParameters) {
	join := func(field string) string {
		if prefix == "" {
			return field
		}
		return prefix + "." + field
	}
	for i, entry := range entries {
		v.AddIssues(join(fmt.Sprintf("entries[%d]", i)), entry.Issues())
	}
	v.NonNegative(join("params.depositAmount"), params.DepositAmount)
	v.NonNegative(join("params.etcReturnFeeClaimed"), params.EtcReturnFeeClaimed)
	v.NonNegative(join("params.fuelAmount"), params.FuelAmount)
	v.Enum(join("params.etcEmptyCardOwner"), params.EtcEmptyCardOwner, cardOwners, "must be company or own")
	v.Enum(join("params.etcReturnFeeMethod"), params.EtcReturnFeeMethod, returnFeeMethods, "must be none, app_ticket or cash_to_driver")
	v.Enum(join("params.fuelPaidBy"), params.FuelPaidBy, fuelPayers, "must be company_cash or other")
}

func (h *Handler) failInvariant(w http.ResponseWriter, reqID string, err error) {
	slog.Error("settlement invariant violated", "err", err, "requestId", reqID)
	api.Fail(w, http.StatusInternalServerError, "invariant_violated", "settlement totals failed their consistency check", reqID)
}

func (h *Handler) recordSettlements(computed, rejected int) {
	if h.Metrics != nil {
		h.Metrics.RecordSettlements(computed, rejected)
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Warn("write attachment failed", "err", err)
	}
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
