package settlement

// EtcLine is one row of the toll detail table.
type EtcLine struct {
	Index         int    `json:"index"`
	RideTime      string `json:"rideTime"`
	PaymentMethod string `json:"paymentMethod"`
	Riding        int    `json:"riding"`
	Empty         int    `json:"empty"`
	Total         int    `json:"total"`
}

// EtcLedger splits the day's tolls between company, driver and customer and
// derives the amounts that move between company and driver.
type EtcLedger struct {
	Company  int `json:"etcCompany"`
	Driver   int `json:"etcDriver"`
	Customer int `json:"etcCustomer"`

	RidingTotal  int `json:"etcRidingTotal"`
	EmptyTotal   int `json:"etcEmptyTotal"`
	OverallTotal int `json:"etcTotalOverall"`

	DriverEmpty                  int `json:"driverEmptyEtc"`
	ActualCompanyToDriver        int `json:"actualEtcCompanyToDriver"`
	DriverEmptyEtcDeductionTotal int `json:"driverEmptyEtcDeductionTotal"`
	DriverToCompany              int `json:"etcDriverToCompany"`

	SalesTotal int                   `json:"etcSalesTotal"`
	ByMethod   map[PaymentMethod]int `json:"etcByMethod"`
	Lines      []EtcLine             `json:"lines"`
}

// EtcForSales is the toll amount of one row that is booked as revenue:
// customer-borne legs, plus a driver-fronted ride leg whose fare the company
// collected.
func EtcForSales(entry TripEntry) int {
	amount := 0
	if entry.EtcRidingAmount > 0 {
		switch entry.RidingParty() {
		case ChargeCustomer:
			amount += entry.EtcRidingAmount
		case ChargeDriver:
			if ResolvePaymentMethod(entry.PaymentMethodRaw).CompanySide() {
				amount += entry.EtcRidingAmount
			}
		}
	}
	if entry.EtcEmptyAmount > 0 && entry.EmptyParty() == ChargeCustomer {
		amount += entry.EtcEmptyAmount
	}
	return amount
}

// ComputeEtcLedger runs over billable rows only.
func ComputeEtcLedger(entries []TripEntry, params DailyParameters, policy Policy) EtcLedger {
	ledger := EtcLedger{ByMethod: make(map[PaymentMethod]int, len(Methods))}
	refund := 0

	for i, entry := range entries {
		if kind := entry.Kind(); kind != KindActive && kind != KindCharter {
			continue
		}
		ride, empty := entry.EtcRidingAmount, entry.EtcEmptyAmount
		rideParty, emptyParty := entry.RidingParty(), entry.EmptyParty()
		method := ResolvePaymentMethod(entry.PaymentMethodRaw)

		ledger.RidingTotal += ride
		ledger.EmptyTotal += empty
		if ride > 0 {
			ledger.addToBucket(rideParty, ride)
		}
		if empty > 0 {
			ledger.addToBucket(emptyParty, empty)
			if emptyParty == ChargeDriver {
				ledger.DriverEmpty += empty
			}
		}

		if ride > 0 && rideParty == ChargeDriver && method.CompanySide() {
			refund += ride
		}

		forSales := EtcForSales(entry)
		ledger.SalesTotal += forSales
		if forSales > 0 && method.Known() {
			ledger.ByMethod[method] += forSales
		}

		if ride > 0 || empty > 0 {
			ledger.Lines = append(ledger.Lines, EtcLine{
				Index:         i,
				RideTime:      entry.RideTime,
				PaymentMethod: entry.PaymentMethodRaw,
				Riding:        ride,
				Empty:         empty,
				Total:         ride + empty,
			})
		}
	}

	ledger.OverallTotal = ledger.RidingTotal + ledger.EmptyTotal
	ledger.ActualCompanyToDriver = max(0, refund)
	ledger.DriverToCompany = max(0, ledger.Driver-ledger.ActualCompanyToDriver)

	deduction := ledger.DriverEmpty
	if params.CardOwner() == CardOwnerOwn && policy.coversReturnFee(params.ReturnFeeMethod()) {
		deduction -= min(ledger.DriverEmpty, params.EtcReturnFeeClaimed)
	}
	ledger.DriverEmptyEtcDeductionTotal = max(0, deduction)
	return ledger
}

func (l *EtcLedger) addToBucket(party string, amount int) {
	switch party {
	case ChargeDriver:
		l.Driver += amount
	case ChargeCustomer:
		l.Customer += amount
	default:
		l.Company += amount
	}
}
