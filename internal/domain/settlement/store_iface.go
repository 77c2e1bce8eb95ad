package settlement

import (
	"context"
	"time"
)

// ReportSource supplies daily reports owned by the surrounding system.
type ReportSource interface {
	ListReportsByDate(ctx context.Context, date time.Time) ([]Report, error)
	GetReport(ctx context.Context, reportID string) (Report, error)
}
