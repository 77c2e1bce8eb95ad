package settlement

import "github.com/shopspring/decimal"

// MethodCommission is the platform fee owed on one channel's sales.
type MethodCommission struct {
	Method PaymentMethod `json:"method"`
	Gross  int           `json:"gross"`
	Rate   string        `json:"rate"`
	Fee    int           `json:"fee"`
	Net    int           `json:"net"`
}

// Commission applies the policy rates to the per-method sales, rounding each
// fee half-even to the yen.
func Commission(sales Sales, policy Policy) ([]MethodCommission, int) {
	out := make([]MethodCommission, 0, len(Methods))
	total := 0
	for _, method := range Methods {
		gross := sales.ByMethod[method]
		rate := policy.rate(method)
		fee := int(decimal.NewFromInt(int64(gross)).Mul(rate).RoundBank(0).IntPart())
		out = append(out, MethodCommission{
			Method: method,
			Gross:  gross,
			Rate:   rate.String(),
			Fee:    fee,
			Net:    gross - fee,
		})
		total += fee
	}
	return out, total
}
