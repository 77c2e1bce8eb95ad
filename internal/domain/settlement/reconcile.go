package settlement

// Reconciliation compares the cash handed in with the cash the driver was
// expected to hold.
type Reconciliation struct {
	DepositAmount int `json:"depositAmount"`
	ExpectedCash  int `json:"expectedCash"`
	ImbalanceBase int `json:"imbalanceBase"`
	EtcNet        int `json:"etcNet"`
	Imbalance     int `json:"imbalance"`
	// ImbalanceAdjusted is for display: fuel bought with company cash
	// explains part of a shortfall but is not owed to anyone.
	ImbalanceAdjusted int `json:"imbalanceAdjusted"`
}

func Reconcile(params DailyParameters, sales Sales, ledger EtcLedger) Reconciliation {
	expected := sales.ByMethod[MethodCash] + sales.CharterCashTotal
	base := params.DepositAmount - expected
	etcNet := ledger.ActualCompanyToDriver

	rec := Reconciliation{
		DepositAmount: params.DepositAmount,
		ExpectedCash:  expected,
		ImbalanceBase: base,
		EtcNet:        etcNet,
		Imbalance:     base + etcNet,
	}
	rec.ImbalanceAdjusted = rec.Imbalance
	if params.FuelAmount > 0 && params.FuelPaidBy == FuelPaidByCompanyCash {
		rec.ImbalanceAdjusted += params.FuelAmount
	}
	return rec
}
