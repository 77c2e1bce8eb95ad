package settlement

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Policy holds the operator-tunable parts of the settlement rules.
type Policy struct {
	// ReturnFeeCoverage lists return-fee methods that offset tolls the driver
	// fronted on their own card.
	ReturnFeeCoverage []string `yaml:"return_fee_coverage"`
	// CommissionRates maps payment methods to the platform fee rate.
	CommissionRates map[PaymentMethod]string `yaml:"commission_rates"`
}

func DefaultPolicy() Policy {
	rates := map[PaymentMethod]string{MethodCash: "0"}
	for _, method := range Methods {
		if method.CompanySide() {
			rates[method] = "0.05"
		}
	}
	return Policy{
		ReturnFeeCoverage: []string{ReturnFeeCashToDriver, ReturnFeeAppTicket},
		CommissionRates:   rates,
	}
}

// LoadPolicy reads a YAML policy file over the defaults. An empty path
// returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	var file Policy
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if file.ReturnFeeCoverage != nil {
		policy.ReturnFeeCoverage = file.ReturnFeeCoverage
	}
	for method, rate := range file.CommissionRates {
		policy.CommissionRates[method] = rate
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

func (p Policy) Validate() error {
	for method, rate := range p.CommissionRates {
		if !method.Known() {
			return fmt.Errorf("commission rate for unknown payment method %q", method)
		}
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			return fmt.Errorf("commission rate for %s: %w", method, err)
		}
		if parsed.IsNegative() || parsed.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("commission rate for %s must be between 0 and 1", method)
		}
	}
	return nil
}

func (p Policy) coversReturnFee(method string) bool {
	for _, candidate := range p.ReturnFeeCoverage {
		if candidate == method {
			return true
		}
	}
	return false
}

func (p Policy) rate(method PaymentMethod) decimal.Decimal {
	raw, ok := p.CommissionRates[method]
	if !ok {
		return decimal.Zero
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return parsed
}
