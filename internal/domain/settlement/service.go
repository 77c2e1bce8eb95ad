package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dailysettle/internal/requestctx"
)

type Service struct {
	source      ReportSource
	policy      Policy
	concurrency int
}

func NewService(source ReportSource, policy Policy, concurrency int) *Service {
	return &Service{source: source, policy: policy, concurrency: concurrency}
}

func (s *Service) Policy() Policy {
	return s.policy
}

// ComputeReport loads one stored report and computes it.
func (s *Service) ComputeReport(ctx context.Context, reportID string) (Result, error) {
	if s.source == nil {
		return Result{}, fmt.Errorf("compute report %s: %w", reportID, ErrNoReportSource)
	}
	report, err := s.source.GetReport(ctx, reportID)
	if err != nil {
		return Result{}, fmt.Errorf("load report %s: %w", reportID, err)
	}
	result := computeOne(report, s.policy)
	return result, result.Err
}

// RunDate computes every report of a day. Reports that fail validation are
// counted and logged; they never abort the run.
func (s *Service) RunDate(ctx context.Context, date time.Time) (BatchSummary, error) {
	if s.source == nil {
		return BatchSummary{}, fmt.Errorf("payroll run: %w", ErrNoReportSource)
	}
	runID := requestctx.GetRunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	start := time.Now()
	reports, err := s.source.ListReportsByDate(ctx, date)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("list reports for %s: %w", date.Format("2006-01-02"), err)
	}

	summary, err := s.RunReports(ctx, reports)
	if err != nil {
		return BatchSummary{}, err
	}
	summary.RunID = runID
	summary.Date = date
	slog.Info("payroll run finished",
		"runId", runID,
		"date", date.Format("2006-01-02"),
		"reports", summary.ReportCount,
		"failed", summary.FailedCount,
		"payrollTotal", summary.PayrollTotal,
		"durationMs", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

// RunReports computes reports that were supplied directly.
func (s *Service) RunReports(ctx context.Context, reports []Report) (BatchSummary, error) {
	results, err := ComputeBatch(ctx, reports, s.policy, s.concurrency)
	if err != nil {
		return BatchSummary{}, err
	}
	for _, result := range results {
		if result.Err != nil {
			slog.Warn("report rejected", "reportId", result.Report.ID, "driverId", result.Report.DriverID, "err", result.Err)
		}
	}
	return Summarize(results), nil
}
