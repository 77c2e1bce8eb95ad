package settlement

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ComputeBatch computes each report independently with at most concurrency
// reports in flight. Results keep the input order; an invalid report is
// recorded on its Result and does not stop the others.
func ComputeBatch(ctx context.Context, reports []Report, policy Policy, concurrency int) ([]Result, error) {
	results := make([]Result, len(reports))
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i := range reports {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = computeOne(reports[i], policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func computeOne(report Report, policy Policy) Result {
	result := Result{Report: report}
	if err := ValidateInput(report.Entries, report.Params); err != nil {
		result.Err = err
		return result
	}
	result.Totals = Compute(report.Entries, report.Params, policy)
	if err := result.Totals.Check(); err != nil {
		result.Err = err
	}
	return result
}

// Summarize folds batch results into run-level totals.
func Summarize(results []Result) BatchSummary {
	summary := BatchSummary{ReportCount: len(results), Results: results}
	for _, result := range results {
		if result.Err != nil {
			summary.FailedCount++
			continue
		}
		summary.SalesTotal += result.Totals.Payroll.Sales
		summary.PayrollTotal += result.Totals.Payroll.Total
		summary.EtcRefund += result.Totals.Payroll.EtcRefund
	}
	return summary
}
