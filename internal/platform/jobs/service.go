package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"dailysettle/internal/domain/settlement"
	"dailysettle/internal/platform/metrics"
	"dailysettle/internal/requestctx"
)

const (
	JobPayrollRun = "payroll_run"

	historyLimit = 50
)

// PayrollRunner computes every daily report of one business day.
type PayrollRunner interface {
	RunDate(ctx context.Context, date time.Time) (settlement.BatchSummary, error)
}

// RunRecord is the outcome of one job execution, kept in memory.
type RunRecord struct {
	ID          string    `json:"id"`
	Type        string    `json:"jobType"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	Details     any       `json:"details,omitempty"`
	Error       string    `json:"error,omitempty"`
}

type Service struct {
	Runner   PayrollRunner
	Schedule string
	Location *time.Location
	Metrics  *metrics.Collector
	// AfterRun receives every successful payroll summary, e.g. to write
	// the day's workbook.
	AfterRun func(context.Context, settlement.BatchSummary) error

	queue   chan job
	cron    *cron.Cron
	mu      sync.Mutex
	history []RunRecord
	now     func() time.Time
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(runner PayrollRunner, schedule string, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		Runner:   runner,
		Schedule: schedule,
		Location: loc,
		queue:    make(chan job, 16),
		now:      time.Now,
	}
}

// Start launches the worker and, when a schedule is configured, the nightly
// payroll run for the previous business day. Both stop with ctx.
func (s *Service) Start(ctx context.Context) error {
	go s.worker(ctx)
	if s.Schedule == "" {
		return nil
	}
	s.cron = cron.New(cron.WithLocation(s.Location), cron.WithSeconds())
	if _, err := s.cron.AddFunc(s.Schedule, func() {
		s.EnqueuePayrollRun(PreviousDay(s.now(), s.Location))
	}); err != nil {
		return fmt.Errorf("invalid payroll run schedule %q: %w", s.Schedule, err)
	}
	s.cron.Start()
	slog.Info("payroll run scheduled", "schedule", s.Schedule, "location", s.Location.String())
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
	return nil
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) EnqueuePayrollRun(date time.Time) {
	s.Enqueue(JobPayrollRun, s.payrollRun(date))
}

func (s *Service) RunPayrollNow(ctx context.Context, date time.Time) (settlement.BatchSummary, error) {
	details, err := s.RunNow(ctx, JobPayrollRun, s.payrollRun(date))
	summary, _ := details.(settlement.BatchSummary)
	return summary, err
}

// History returns the most recent runs, newest first.
func (s *Service) History() []RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunRecord, len(s.history))
	for i, record := range s.history {
		out[len(s.history)-1-i] = record
	}
	return out
}

func (s *Service) payrollRun(date time.Time) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		if s.Runner == nil {
			return nil, fmt.Errorf("payroll run: no runner configured")
		}
		summary, err := s.Runner.RunDate(ctx, date)
		if s.Metrics != nil {
			s.Metrics.RecordPayrollRun(err)
			if err == nil {
				s.Metrics.RecordSettlements(summary.ReportCount-summary.FailedCount, summary.FailedCount)
			}
		}
		if err != nil {
			return nil, err
		}
		if s.AfterRun != nil {
			if err := s.AfterRun(ctx, summary); err != nil {
				return summary, fmt.Errorf("after payroll run: %w", err)
			}
		}
		return summary, nil
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	record := RunRecord{ID: uuid.NewString(), Type: j.Type, Status: "running", StartedAt: s.now()}

	details, err := j.Run(requestctx.WithRunID(ctx, record.ID))
	record.Status = "completed"
	if err != nil {
		record.Status = "failed"
		record.Error = err.Error()
	}
	record.Details = details
	record.CompletedAt = s.now()

	s.mu.Lock()
	s.history = append(s.history, record)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
	s.mu.Unlock()
	return details, err
}

// PreviousDay is midnight of the day before now, in loc.
func PreviousDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()-1, 0, 0, 0, 0, loc)
}
