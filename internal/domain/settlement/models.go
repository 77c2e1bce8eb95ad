package settlement

import "time"

// Report is one driver's daily report as supplied by the surrounding system.
type Report struct {
	ID         string          `json:"id"`
	DriverID   string          `json:"driverId"`
	DriverName string          `json:"driverName"`
	Date       time.Time       `json:"date"`
	Params     DailyParameters `json:"params"`
	Entries    []TripEntry     `json:"entries"`
}

// Result pairs a report with its totals, or the reason it was rejected.
type Result struct {
	Report Report `json:"report"`
	Totals Totals `json:"totals"`
	Err    error  `json:"-"`
}

func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// BatchSummary aggregates a payroll run over many reports.
type BatchSummary struct {
	RunID        string    `json:"runId"`
	Date         time.Time `json:"date"`
	ReportCount  int       `json:"reportCount"`
	FailedCount  int       `json:"failedCount"`
	SalesTotal   int       `json:"salesTotal"`
	PayrollTotal int       `json:"payrollTotal"`
	EtcRefund    int       `json:"etcRefundTotal"`
	Results      []Result  `json:"-"`
}
