package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	settlementsComputed uint64
	settlementsRejected uint64
	payrollRuns         uint64
	payrollRunFailures  uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordSettlements counts reports computed and rejected by one call.
func (c *Collector) RecordSettlements(computed, rejected int) {
	if computed > 0 {
		atomic.AddUint64(&c.settlementsComputed, uint64(computed))
	}
	if rejected > 0 {
		atomic.AddUint64(&c.settlementsRejected, uint64(rejected))
	}
}

func (c *Collector) RecordPayrollRun(err error) {
	atomic.AddUint64(&c.payrollRuns, 1)
	if err != nil {
		atomic.AddUint64(&c.payrollRunFailures, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":            total,
		"errorsTotal":              errs,
		"rateLimitedTotal":         limited,
		"avgDurationMs":            avg,
		"totalDurationMs":          totalMs,
		"settlementsComputedTotal": atomic.LoadUint64(&c.settlementsComputed),
		"settlementsRejectedTotal": atomic.LoadUint64(&c.settlementsRejected),
		"payrollRunsTotal":         atomic.LoadUint64(&c.payrollRuns),
		"payrollRunFailuresTotal":  atomic.LoadUint64(&c.payrollRunFailures),
	}
}
