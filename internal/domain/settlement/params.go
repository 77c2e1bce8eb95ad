package settlement

import (
	"fmt"
	"strings"
)

// DailyParameters is the day-level settlement configuration of one report.
type DailyParameters struct {
	DepositAmount       int    `json:"depositAmount"`
	EtcEmptyCardOwner   string `json:"etcEmptyCardOwner"`
	EtcReturnFeeMethod  string `json:"etcReturnFeeMethod"`
	EtcReturnFeeClaimed int    `json:"etcReturnFeeClaimed"`
	FuelAmount          int    `json:"fuelAmount"`
	FuelPaidBy          string `json:"fuelPaidBy"`
}

// CardOwner defaults to the company card when the form left it blank.
func (p DailyParameters) CardOwner() string {
	if strings.TrimSpace(p.EtcEmptyCardOwner) == CardOwnerOwn {
		return CardOwnerOwn
	}
	return CardOwnerCompany
}

func (p DailyParameters) ReturnFeeMethod() string {
	method := strings.TrimSpace(p.EtcReturnFeeMethod)
	if method == "" {
		return ReturnFeeNone
	}
	return method
}

func (p DailyParameters) Validate() error {
	var issues []string
	if p.DepositAmount < 0 {
		issues = append(issues, "depositAmount: must not be negative")
	}
	if p.EtcReturnFeeClaimed < 0 {
		issues = append(issues, "etcReturnFeeClaimed: must not be negative")
	}
	if p.FuelAmount < 0 {
		issues = append(issues, "fuelAmount: must not be negative")
	}
	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidParameters, strings.Join(issues, "; "))
}
