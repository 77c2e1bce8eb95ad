package payrollrunhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailysettle/internal/domain/settlement"
	"dailysettle/internal/platform/jobs"
	"dailysettle/internal/transport/http/middleware"
)

type daySource struct {
	reports []settlement.Report
}

func (s daySource) ListReportsByDate(_ context.Context, date time.Time) ([]settlement.Report, error) {
	var out []settlement.Report
	for _, report := range s.reports {
		if report.Date.Equal(date) {
			out = append(out, report)
		}
	}
	return out, nil
}

func (s daySource) GetReport(context.Context, string) (settlement.Report, error) {
	return settlement.Report{}, settlement.ErrReportNotFound
}

func setup(t *testing.T, source settlement.ReportSource) (http.Handler, *jobs.Service) {
	t.Helper()
	svc := jobs.New(settlement.NewService(source, settlement.DefaultPolicy(), 2), "", time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, svc.Start(ctx))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Route("/api/v1", NewHandler(svc, time.UTC).RegisterRoutes)
	return router, svc
}

func call(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRunPayrollForDate(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	source := daySource{reports: []settlement.Report{{
		ID:      "r1",
		Date:    day,
		Params:  settlement.DailyParameters{DepositAmount: 3000},
		Entries: []settlement.TripEntry{{MeterFee: 3000, PaymentMethodRaw: "cash"}},
	}}}
	router, _ := setup(t, source)

	rec := call(router, http.MethodPost, "/api/v1/payroll-runs/", `{"date": "2025-03-14"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var env struct {
		Data settlement.BatchSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 1, env.Data.ReportCount)
	assert.Equal(t, 3000, env.Data.PayrollTotal)
	assert.NotEmpty(t, env.Data.RunID)

	rec = call(router, http.MethodGet, "/api/v1/payroll-runs/?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Data []jobs.RunRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Data, 1)
	assert.Equal(t, "completed", history.Data[0].Status)
}

func TestRunPayrollAsync(t *testing.T) {
	router, svc := setup(t, daySource{})
	rec := call(router, http.MethodPost, "/api/v1/payroll-runs/", `{"date": "2025-03-14", "async": true}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Eventually(t, func() bool { return len(svc.History()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunPayrollValidation(t *testing.T) {
	router, _ := setup(t, daySource{})
	rec := call(router, http.MethodPost, "/api/v1/payroll-runs/", `{"date": "yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestRunPayrollWithoutSource(t *testing.T) {
	router, _ := setup(t, nil)
	rec := call(router, http.MethodPost, "/api/v1/payroll-runs/", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRunPayrollEmptyBodyDefaultsToPreviousDay(t *testing.T) {
	router, _ := setup(t, daySource{})
	rec := call(router, http.MethodPost, "/api/v1/payroll-runs/", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Data settlement.BatchSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Zero(t, env.Data.ReportCount)
	assert.False(t, env.Data.Date.IsZero())
	assert.True(t, env.Data.Date.Before(time.Now()))
}
