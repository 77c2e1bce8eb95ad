package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateSalesSpecialUberBuckets(t *testing.T) {
	entries := []TripEntry{
		{MeterFee: 1000, PaymentMethodRaw: "uber_reservation"},
		{MeterFee: 300, PaymentMethodRaw: "uber_tip"},
		{MeterFee: 200, PaymentMethodRaw: "uber_tip"},
		{MeterFee: 500, PaymentMethodRaw: "uber_promotion", EtcRidingAmount: 700, EtcRidingChargeParty: ChargeCustomer},
	}

	sales := AggregateSales(entries)
	assert.Equal(t, Tally{Count: 1, Total: 1000}, sales.UberReservation)
	assert.Equal(t, Tally{Count: 2, Total: 500}, sales.UberTip)
	assert.Equal(t, Tally{Count: 1, Total: 500}, sales.UberPromotion)
	assert.Equal(t, 2000, sales.SpecialUberSum)
	assert.Zero(t, sales.MeterOnlyTotal)
	assert.Zero(t, sales.ByMethod[MethodUber])
	assert.Equal(t, 2000, sales.SalesTotal)
}

func TestAggregateSalesCharterClassification(t *testing.T) {
	tests := []struct {
		method      string
		cash        int
		uncollected int
		unresolved  int
	}{
		{CharterJPYCash, 8000, 0, 0},
		{CharterRMBCash, 8000, 0, 0},
		{CharterSelfWechat, 8000, 0, 0},
		{CharterBossWechat, 8000, 0, 0},
		{CharterToCompany, 0, 8000, 0},
		{CharterBankTransfer, 0, 8000, 0},
		{"", 0, 8000, 0},
		{"invoice", 0, 0, 8000},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			sales := AggregateSales([]TripEntry{{
				IsCharter:            true,
				MeterFee:             4000,
				CharterAmount:        8000,
				CharterPaymentMethod: tt.method,
				PaymentMethodRaw:     "cash",
			}})
			assert.Equal(t, tt.cash, sales.CharterCashTotal)
			assert.Equal(t, tt.uncollected, sales.CharterUncollectedTotal)
			assert.Equal(t, tt.unresolved, sales.Unresolved.Total)
			assert.Zero(t, sales.MeterOnlyTotal)
			assert.Zero(t, sales.MethodSum())
		})
	}
}

func TestAggregateSalesZeroChargeCharterIsIgnored(t *testing.T) {
	sales := AggregateSales([]TripEntry{{IsCharter: true, CharterPaymentMethod: CharterJPYCash}})
	assert.Zero(t, sales.SalesTotal)
	assert.Zero(t, sales.Unresolved.Count)
}

func TestAggregateSalesAdvanceOnlyFeedsAdvanceTotal(t *testing.T) {
	entries := []TripEntry{
		{IsAdvance: true, AdvanceAmount: 1200, MeterFee: 999, PaymentMethodRaw: "cash"},
		{PaymentMethodRaw: "advance", AdvanceAmount: 800},
		{IsAdvance: true, IsPending: true, AdvanceAmount: 5000},
		{IsAdvance: true, IsDeleted: true, AdvanceAmount: 7000},
	}
	sales := AggregateSales(entries)
	assert.Equal(t, 2000, sales.AdvanceTotal)
	assert.Zero(t, sales.SalesTotal)
	assert.Zero(t, sales.ByMethod[MethodCash])
}

func TestAggregateSalesUnresolvedFareStillCountsAsSales(t *testing.T) {
	sales := AggregateSales([]TripEntry{
		{MeterFee: 2500, PaymentMethodRaw: "bitcoin"},
		{MeterFee: 4000, PaymentMethodRaw: "paypal", EtcRidingAmount: 300, EtcRidingChargeParty: ChargeCustomer},
		{MeterFee: 1000, PaymentMethodRaw: "cash"},
	})
	assert.Equal(t, Tally{Count: 2, Total: 6800}, sales.Unresolved)
	assert.Equal(t, 6500, sales.UnresolvedMeter)
	assert.Equal(t, 7500, sales.MeterOnlyTotal)
	assert.Equal(t, 7500, sales.SalesTotal)
	assert.Equal(t, 1000, sales.MethodSum())
	_, ok := sales.ByMethod["bitcoin"]
	assert.False(t, ok)
}

func TestAggregateSalesTollOnSpecialUberRowWithoutFare(t *testing.T) {
	sales := AggregateSales([]TripEntry{{
		PaymentMethodRaw:     "uber_tip",
		EtcRidingAmount:      700,
		EtcRidingChargeParty: ChargeCustomer,
	}})
	assert.Equal(t, 700, sales.ByMethod[MethodUber])
	assert.Equal(t, 700, sales.EtcCredited)
	assert.Zero(t, sales.Unresolved.Count)
	assert.Zero(t, sales.UberTip.Count)
	assert.Zero(t, sales.SalesTotal)
}

func TestAggregateSalesTollOnlyRowCreditsMethod(t *testing.T) {
	sales := AggregateSales([]TripEntry{{
		PaymentMethodRaw:    "go",
		EtcEmptyAmount:      450,
		EtcEmptyChargeParty: ChargeCustomer,
	}})
	assert.Equal(t, 450, sales.ByMethod[MethodGo])
	assert.Equal(t, 450, sales.EtcCredited)
	assert.Zero(t, sales.MeterOnlyTotal)
	assert.Zero(t, sales.SalesTotal)
}

func TestAggregateSalesMapHasEveryCatalogKey(t *testing.T) {
	sales := AggregateSales(nil)
	for _, method := range Methods {
		amount, ok := sales.ByMethod[method]
		assert.True(t, ok, "missing %s", method)
		assert.Zero(t, amount)
	}
}
