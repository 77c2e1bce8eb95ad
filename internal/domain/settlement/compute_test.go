package settlement

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCashFare(t *testing.T) {
	entries := []TripEntry{{MeterFee: 3000, PaymentMethodRaw: "cash"}}

	totals := Compute(entries, DailyParameters{DepositAmount: 3000}, DefaultPolicy())
	require.NoError(t, totals.Check())
	assert.Equal(t, 3000, totals.Sales.SalesTotal)
	assert.Equal(t, 3000, totals.Sales.ByMethod[MethodCash])
	assert.Equal(t, 0, totals.Payroll.OverShortToDriver)
	assert.Equal(t, 3000, totals.Payroll.Total)

	over := Compute(entries, DailyParameters{DepositAmount: 3500}, DefaultPolicy())
	assert.Equal(t, 500, over.Payroll.OverShortToDriver)
	assert.Equal(t, 3000+over.Payroll.OverShortToDriver, over.Payroll.Total)
}

func TestComputeDriverFrontedTollOnUber(t *testing.T) {
	entries := []TripEntry{{
		MeterFee:             2000,
		PaymentMethodRaw:     "uber",
		EtcRidingAmount:      1500,
		EtcRidingChargeParty: "driver",
	}}

	totals := Compute(entries, DailyParameters{}, DefaultPolicy())
	require.NoError(t, totals.Check())
	assert.Equal(t, 1500, totals.Etc.ActualCompanyToDriver)
	assert.Equal(t, 3500, totals.Sales.ByMethod[MethodUber])
	assert.Equal(t, 2000, totals.Sales.MeterOnlyTotal)
	assert.Equal(t, 1500, totals.Sales.EtcCredited)
	assert.Equal(t, 2000, totals.Sales.SalesTotal)
	assert.Equal(t, 1500, totals.Reconciliation.EtcNet)
	assert.Equal(t, 1500, totals.Payroll.EtcRefund)
	// the fronted toll reaches payroll once, through the refund
	assert.Equal(t, 3500, totals.Payroll.Total)
}

func TestComputeUnresolvedFareIsPaid(t *testing.T) {
	entries := []TripEntry{{MeterFee: 4000, PaymentMethodRaw: "paypal"}}

	totals := Compute(entries, DailyParameters{}, DefaultPolicy())
	require.NoError(t, totals.Check())
	assert.Equal(t, 4000, totals.Sales.MeterOnlyTotal)
	assert.Equal(t, 4000, totals.Sales.SalesTotal)
	assert.Equal(t, 4000, totals.Payroll.Total)
	assert.Equal(t, Tally{Count: 1, Total: 4000}, totals.Sales.Unresolved)
}

func TestComputeReturnFeeCoverage(t *testing.T) {
	entries := []TripEntry{{EtcEmptyAmount: 3000, EtcEmptyChargeParty: "driver"}}
	params := DailyParameters{
		EtcEmptyCardOwner:   "own",
		EtcReturnFeeMethod:  "app_ticket",
		EtcReturnFeeClaimed: 2000,
	}

	totals := Compute(entries, params, DefaultPolicy())
	require.NoError(t, totals.Check())
	assert.Equal(t, 1000, totals.Etc.DriverEmptyEtcDeductionTotal)
}

func TestComputeCharterCash(t *testing.T) {
	entries := []TripEntry{{
		IsCharter:            true,
		CharterAmount:        8000,
		CharterPaymentMethod: "jpy_cash",
		MeterFee:             6000,
		PaymentMethodRaw:     "cash",
	}}

	totals := Compute(entries, DailyParameters{DepositAmount: 8000}, DefaultPolicy())
	require.NoError(t, totals.Check())
	assert.Equal(t, 8000, totals.Sales.CharterCashTotal)
	assert.Zero(t, totals.Sales.MethodSum())
	assert.Zero(t, totals.Sales.MeterOnlyTotal)
	assert.Equal(t, 0, totals.Reconciliation.ImbalanceBase)
	assert.Equal(t, 8000, totals.Payroll.Total)
}

func TestComputeCashOnlyFallback(t *testing.T) {
	entries := []TripEntry{
		{EtcEmptyAmount: 1200, EtcEmptyChargeParty: "driver"},
		{EtcEmptyAmount: 800, EtcEmptyChargeParty: "driver", MeterFee: 2000, PaymentMethodRaw: "didi"},
	}
	params := DailyParameters{
		EtcEmptyCardOwner:   "company",
		EtcReturnFeeMethod:  "none",
		EtcReturnFeeClaimed: 5000,
	}
	totals := Compute(entries, params, DefaultPolicy())
	assert.Equal(t, totals.Etc.DriverEmpty, totals.Etc.DriverEmptyEtcDeductionTotal)
	assert.Equal(t, 2000, totals.Etc.DriverEmptyEtcDeductionTotal)
}

func TestComputeFuelAdjustsDisplayOnly(t *testing.T) {
	entries := []TripEntry{{MeterFee: 3000, PaymentMethodRaw: "cash"}}
	params := DailyParameters{DepositAmount: 1000, FuelAmount: 1500, FuelPaidBy: "company_cash"}

	totals := Compute(entries, params, DefaultPolicy())
	assert.Equal(t, -2000, totals.Reconciliation.ImbalanceBase)
	assert.Equal(t, -2000, totals.Reconciliation.Imbalance)
	assert.Equal(t, -500, totals.Reconciliation.ImbalanceAdjusted)
	assert.Equal(t, 2000, totals.Payroll.OverShortToCompany)
	assert.Zero(t, totals.Payroll.OverShortToDriver)
	assert.Equal(t, 3000, totals.Payroll.Total)

	params.FuelPaidBy = "other"
	other := Compute(entries, params, DefaultPolicy())
	assert.Equal(t, other.Reconciliation.Imbalance, other.Reconciliation.ImbalanceAdjusted)
	assert.Equal(t, totals.Payroll, other.Payroll)
}

func TestComputeImbalanceIncludesEtcRefund(t *testing.T) {
	entries := []TripEntry{
		{MeterFee: 4000, PaymentMethodRaw: "cash"},
		{MeterFee: 2000, PaymentMethodRaw: "credit_card", EtcRidingAmount: 600, EtcRidingChargeParty: "driver"},
	}
	totals := Compute(entries, DailyParameters{DepositAmount: 3800}, DefaultPolicy())
	require.NoError(t, totals.Check())
	assert.Equal(t, 4000, totals.Reconciliation.ExpectedCash)
	assert.Equal(t, -200, totals.Reconciliation.ImbalanceBase)
	assert.Equal(t, 400, totals.Reconciliation.Imbalance)
	assert.Equal(t, 200, totals.Payroll.OverShortToCompany)
	assert.Equal(t, 6600+600, totals.Payroll.Total)
}

func TestExclusionFlagsContributeNothing(t *testing.T) {
	base := []TripEntry{
		{MeterFee: 3000, PaymentMethodRaw: "cash"},
		{MeterFee: 2000, PaymentMethodRaw: "uber", EtcRidingAmount: 1500, EtcRidingChargeParty: "driver"},
	}
	params := DailyParameters{DepositAmount: 2500}
	want := Compute(base, params, DefaultPolicy())

	extra := TripEntry{
		MeterFee:             9000,
		PaymentMethodRaw:     "didi",
		IsCharter:            false,
		EtcRidingAmount:      700,
		EtcRidingChargeParty: "customer",
		EtcEmptyAmount:       500,
		EtcEmptyChargeParty:  "driver",
	}
	flags := map[string]func(*TripEntry){
		"deleted": func(e *TripEntry) { e.IsDeleted = true },
		"pending": func(e *TripEntry) { e.IsPending = true },
		"advance": func(e *TripEntry) { e.IsAdvance = true },
	}
	for name, set := range flags {
		t.Run(name, func(t *testing.T) {
			row := extra
			set(&row)
			got := Compute(append(append([]TripEntry{}, base...), row), params, DefaultPolicy())
			assert.Equal(t, want, got)
		})
	}
}

func TestToggleExclusionFlagRestoresTotals(t *testing.T) {
	entries := []TripEntry{
		{MeterFee: 3000, PaymentMethodRaw: "cash"},
		{MeterFee: 1800, PaymentMethodRaw: "kyokushin", EtcRidingAmount: 900, EtcRidingChargeParty: "driver"},
	}
	params := DailyParameters{DepositAmount: 3000}
	original := Compute(entries, params, DefaultPolicy())

	entries[1].IsPending = true
	pending := Compute(entries, params, DefaultPolicy())
	assert.NotEqual(t, original.Payroll, pending.Payroll)

	entries[1].IsPending = false
	assert.Equal(t, original, Compute(entries, params, DefaultPolicy()))
}

func TestComputeIsOrderIndependent(t *testing.T) {
	entries := []TripEntry{
		{MeterFee: 3000, PaymentMethodRaw: "cash"},
		{MeterFee: 2000, PaymentMethodRaw: "uber", EtcRidingAmount: 1500, EtcRidingChargeParty: "driver"},
		{IsCharter: true, CharterAmount: 5000, CharterPaymentMethod: "to_company"},
	}
	reversed := []TripEntry{entries[2], entries[1], entries[0]}
	a := Compute(entries, DailyParameters{DepositAmount: 1000}, DefaultPolicy())
	b := Compute(reversed, DailyParameters{DepositAmount: 1000}, DefaultPolicy())
	assert.Equal(t, a.Sales, b.Sales)
	assert.Equal(t, a.Payroll, b.Payroll)
	assert.Equal(t, a.Reconciliation, b.Reconciliation)
}

func TestComputeInvariantsHoldForGeneratedReports(t *testing.T) {
	rng := rand.New(rand.NewPCG(20251019, 7))
	for i := 0; i < 500; i++ {
		entries := randomEntries(rng)
		params := randomParams(rng)
		totals := Compute(entries, params, DefaultPolicy())
		require.NoError(t, totals.Check(), "iteration %d", i)

		s := totals.Sales
		assert.Equal(t, s.SalesTotal, s.MeterOnlyTotal+s.SpecialUberSum+s.CharterCashTotal+s.CharterUncollectedTotal)
		assert.Equal(t, s.SalesTotal, s.MethodSum()-s.EtcCredited+s.UnresolvedMeter+s.SpecialUberSum+s.CharterCashTotal+s.CharterUncollectedTotal)
		p := totals.Payroll
		assert.Equal(t, p.Total, p.Sales+p.Advance+p.EtcRefund+p.OverShortToDriver)
		assert.GreaterOrEqual(t, totals.Etc.ActualCompanyToDriver, 0)
		assert.GreaterOrEqual(t, totals.Etc.DriverEmptyEtcDeductionTotal, 0)
		assert.GreaterOrEqual(t, p.OverShortToDriver, 0)
		assert.GreaterOrEqual(t, p.OverShortToCompany, 0)
		assert.Equal(t, p.OverShortToDriver-p.OverShortToCompany, totals.Reconciliation.ImbalanceBase)
	}
}

func TestCheckReportsViolations(t *testing.T) {
	totals := Compute([]TripEntry{{MeterFee: 1000, PaymentMethodRaw: "cash"}}, DailyParameters{}, DefaultPolicy())
	totals.Sales.SalesTotal++
	err := totals.Check()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariantViolated))

	totals = Compute(nil, DailyParameters{}, DefaultPolicy())
	totals.Payroll.Total = 1
	assert.ErrorIs(t, totals.Check(), ErrInvariantViolated)
}

func TestValidateInputReportsEntryPosition(t *testing.T) {
	err := ValidateInput([]TripEntry{{MeterFee: 1}, {CharterAmount: -1}}, DailyParameters{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Contains(t, err.Error(), "entry 1")

	err = ValidateInput(nil, DailyParameters{DepositAmount: -10})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

var (
	rawMethods = []string{
		"cash", "uber", "didi", "go", "credit_card", "kyokushin", "omron", "kyotoshi", "barcode",
		"uber_cash", "Uber（現金）", "PayPay", "uber_reservation", "uber_tip", "uber_promotion",
		"bitcoin", "", "------", "advance",
	}
	parties        = []string{"company", "driver", "customer", "", "ドライバー", "nobody"}
	charterMethods = []string{"jpy_cash", "rmb_cash", "self_wechat", "boss_wechat", "to_company", "bank_transfer", "", "invoice"}
	returnMethods  = []string{"none", "app_ticket", "cash_to_driver", ""}
)

func randomEntries(rng *rand.Rand) []TripEntry {
	n := rng.IntN(30)
	entries := make([]TripEntry, 0, n)
	for range n {
		entries = append(entries, TripEntry{
			MeterFee:             rng.IntN(4) * rng.IntN(8000),
			PaymentMethodRaw:     rawMethods[rng.IntN(len(rawMethods))],
			IsCharter:            rng.IntN(6) == 0,
			CharterAmount:        rng.IntN(20000),
			CharterPaymentMethod: charterMethods[rng.IntN(len(charterMethods))],
			IsAdvance:            rng.IntN(10) == 0,
			AdvanceAmount:        rng.IntN(3000),
			IsPending:            rng.IntN(10) == 0,
			IsDeleted:            rng.IntN(10) == 0,
			EtcRidingAmount:      rng.IntN(2) * rng.IntN(3000),
			EtcEmptyAmount:       rng.IntN(2) * rng.IntN(3000),
			EtcRidingChargeParty: parties[rng.IntN(len(parties))],
			EtcEmptyChargeParty:  parties[rng.IntN(len(parties))],
		})
	}
	return entries
}

func randomParams(rng *rand.Rand) DailyParameters {
	owner := CardOwnerCompany
	if rng.IntN(2) == 0 {
		owner = CardOwnerOwn
	}
	fuelPaidBy := FuelPaidByOther
	if rng.IntN(2) == 0 {
		fuelPaidBy = FuelPaidByCompanyCash
	}
	return DailyParameters{
		DepositAmount:       rng.IntN(60000),
		EtcEmptyCardOwner:   owner,
		EtcReturnFeeMethod:  returnMethods[rng.IntN(len(returnMethods))],
		EtcReturnFeeClaimed: rng.IntN(5000),
		FuelAmount:          rng.IntN(2) * rng.IntN(6000),
		FuelPaidBy:          fuelPaidBy,
	}
}
