package settlement

// Tally is a count/total pair for the fee-only special Uber buckets.
type Tally struct {
	Count int `json:"count"`
	Total int `json:"total"`
}

func (t *Tally) add(amount int) {
	t.Count++
	t.Total += amount
}

// Sales is the per-channel breakdown of one day's revenue.
type Sales struct {
	ByMethod       map[PaymentMethod]int `json:"byMethod"`
	MeterOnlyTotal int                   `json:"meterOnlyTotal"`
	EtcCredited    int                   `json:"etcCredited"`

	UberReservation Tally `json:"uberReservation"`
	UberTip         Tally `json:"uberTip"`
	UberPromotion   Tally `json:"uberPromotion"`
	SpecialUberSum  int   `json:"specialUberSum"`

	CharterCashTotal        int `json:"charterCashTotal"`
	CharterUncollectedTotal int `json:"charterUncollectedTotal"`

	AdvanceTotal int `json:"advanceTotal"`

	// Unresolved counts amounts that no bucket accepted: unknown payment
	// labels and unknown charter settlement methods.
	Unresolved Tally `json:"unresolved"`
	// UnresolvedMeter is the part of MeterOnlyTotal with no method bucket.
	UnresolvedMeter int `json:"unresolvedMeter"`

	SalesTotal int `json:"salesTotal"`
}

// MethodSum is the sum of the per-method map.
func (s Sales) MethodSum() int {
	total := 0
	for _, amount := range s.ByMethod {
		total += amount
	}
	return total
}

// AggregateSales credits every participating row to exactly one sales track.
func AggregateSales(entries []TripEntry) Sales {
	sales := Sales{ByMethod: make(map[PaymentMethod]int, len(Methods))}
	for _, method := range Methods {
		sales.ByMethod[method] = 0
	}

	for _, entry := range entries {
		switch entry.Kind() {
		case KindDeleted, KindPending:
			continue
		case KindAdvance:
			sales.AdvanceTotal += entry.AdvanceAmount
		case KindCharter:
			sales.addCharter(entry)
		case KindActive:
			sales.addFare(entry)
		}
	}

	// Tolls stay out of the sales total; payroll adds the refund separately.
	sales.SalesTotal = sales.MeterOnlyTotal +
		sales.SpecialUberSum +
		sales.CharterCashTotal +
		sales.CharterUncollectedTotal
	return sales
}

func (s *Sales) addFare(entry TripEntry) {
	fee := entry.MeterFee
	forSales := EtcForSales(entry)
	method := ResolvePaymentMethod(entry.PaymentMethodRaw)

	if fee > 0 {
		if kind := SpecialUberKind(entry.PaymentMethodRaw); kind != "" {
			s.SpecialUberSum += fee
			switch kind {
			case SpecialUberReservation:
				s.UberReservation.add(fee)
			case SpecialUberTip:
				s.UberTip.add(fee)
			case SpecialUberPromotion:
				s.UberPromotion.add(fee)
			}
			return
		}
		s.MeterOnlyTotal += fee
		if !method.Known() {
			s.UnresolvedMeter += fee
			s.Unresolved.add(fee + forSales)
			return
		}
		s.ByMethod[method] += fee + forSales
		s.EtcCredited += forSales
		return
	}

	if forSales <= 0 {
		return
	}
	if !method.Known() {
		s.Unresolved.add(forSales)
		return
	}
	s.ByMethod[method] += forSales
	s.EtcCredited += forSales
}

func (s *Sales) addCharter(entry TripEntry) {
	amount := entry.CharterAmount
	if amount <= 0 {
		return
	}
	if _, ok := charterCashMethods[entry.CharterPaymentMethod]; ok {
		s.CharterCashTotal += amount
		return
	}
	if _, ok := charterUncollectedMethods[entry.CharterPaymentMethod]; ok {
		s.CharterUncollectedTotal += amount
		return
	}
	s.Unresolved.add(amount)
}
