// Command payrollrun computes every daily report of one business day from
// the report database and writes the settlement workbook.
//
//	payrollrun -date 2025-03-14 -out ./exports
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dailysettle/internal/domain/settlement"
	"dailysettle/internal/export"
	"dailysettle/internal/platform/config"
	"dailysettle/internal/platform/db"
	"dailysettle/internal/platform/jobs"
	"dailysettle/internal/platform/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("payroll run failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)

	fs := flag.NewFlagSet("payrollrun", flag.ContinueOnError)
	dateFlag := fs.String("date", "", "business day to settle (YYYY-MM-DD, default yesterday)")
	outDir := fs.String("out", cfg.ExportDir, "directory for the xlsx workbook")
	concurrency := fs.Int("concurrency", cfg.BatchConcurrency, "reports computed in parallel")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *concurrency <= 0 {
		return errors.New("-concurrency must be positive")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	date, err := businessDay(*dateFlag, time.Now(), loc)
	if err != nil {
		return err
	}
	policy, err := settlement.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer pool.Close()

	svc := settlement.NewService(settlement.NewStore(pool), policy, *concurrency)
	summary, err := svc.RunDate(ctx, date)
	if err != nil {
		return err
	}
	path, err := export.SaveWorkbook(*outDir, summary)
	if err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	slog.Info("workbook written", "path", path, "reports", summary.ReportCount, "failed", summary.FailedCount)
	if summary.FailedCount > 0 {
		return fmt.Errorf("%d of %d reports rejected", summary.FailedCount, summary.ReportCount)
	}
	return nil
}

func businessDay(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return jobs.PreviousDay(now, loc), nil
	}
	date, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -date %q: want YYYY-MM-DD", raw)
	}
	return date, nil
}
