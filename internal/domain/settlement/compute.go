package settlement

import "fmt"

// Totals is everything one recomputation pass derives from a report.
type Totals struct {
	Sales           Sales              `json:"sales"`
	Etc             EtcLedger          `json:"etc"`
	Reconciliation  Reconciliation     `json:"reconciliation"`
	Payroll         Payroll            `json:"payroll"`
	Commission      []MethodCommission `json:"commission"`
	CommissionTotal int                `json:"commissionTotal"`
}

// Compute derives the totals from scratch. It keeps no state between calls
// and does not validate; callers reject malformed input with ValidateInput.
func Compute(entries []TripEntry, params DailyParameters, policy Policy) Totals {
	ledger := ComputeEtcLedger(entries, params, policy)
	sales := AggregateSales(entries)
	rec := Reconcile(params, sales, ledger)
	commission, commissionTotal := Commission(sales, policy)
	return Totals{
		Sales:           sales,
		Etc:             ledger,
		Reconciliation:  rec,
		Payroll:         ComputePayroll(sales, rec),
		Commission:      commission,
		CommissionTotal: commissionTotal,
	}
}

// ValidateInput checks every entry and the parameters, reporting the first
// failing entry by position.
func ValidateInput(entries []TripEntry, params DailyParameters) error {
	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return params.Validate()
}

// Check verifies the cross-cutting properties every pass must satisfy.
func (t Totals) Check() error {
	s := t.Sales
	if got := s.MethodSum() - s.EtcCredited + s.UnresolvedMeter + s.SpecialUberSum + s.CharterCashTotal + s.CharterUncollectedTotal; got != s.SalesTotal {
		return fmt.Errorf("%w: sales conservation %d != %d", ErrInvariantViolated, got, s.SalesTotal)
	}
	p := t.Payroll
	if got := p.Sales + p.Advance + p.EtcRefund + p.OverShortToDriver; got != p.Total {
		return fmt.Errorf("%w: payroll reconciliation %d != %d", ErrInvariantViolated, got, p.Total)
	}
	nonNegative := map[string]int{
		"actualEtcCompanyToDriver":     t.Etc.ActualCompanyToDriver,
		"driverEmptyEtcDeductionTotal": t.Etc.DriverEmptyEtcDeductionTotal,
		"overShortToDriver":            p.OverShortToDriver,
		"overShortToCompany":           p.OverShortToCompany,
	}
	for name, value := range nonNegative {
		if value < 0 {
			return fmt.Errorf("%w: %s is negative (%d)", ErrInvariantViolated, name, value)
		}
	}
	return nil
}
