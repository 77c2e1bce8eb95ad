package settlement

// Payroll is the payable figure and the line items it is built from.
type Payroll struct {
	Sales              int `json:"sales"`
	Advance            int `json:"advance"`
	EtcRefund          int `json:"etcRefund"`
	OverShortToDriver  int `json:"overShortToDriver"`
	OverShortToCompany int `json:"overShortToCompany"`
	Total              int `json:"total"`
}

func ComputePayroll(sales Sales, rec Reconciliation) Payroll {
	payroll := Payroll{
		Sales:              sales.SalesTotal,
		Advance:            sales.AdvanceTotal,
		EtcRefund:          rec.EtcNet,
		OverShortToDriver:  max(0, rec.ImbalanceBase),
		OverShortToCompany: max(0, -rec.ImbalanceBase),
	}
	payroll.Total = payroll.Sales + payroll.Advance + payroll.EtcRefund + payroll.OverShortToDriver
	return payroll
}
