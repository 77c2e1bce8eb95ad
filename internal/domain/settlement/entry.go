package settlement

import (
	"fmt"
	"regexp"
	"strings"
)

// TripEntry is one row of a driver's daily trip log.
type TripEntry struct {
	RideTime             string `json:"rideTime,omitempty"`
	MeterFee             int    `json:"meterFee"`
	PaymentMethodRaw     string `json:"paymentMethod"`
	IsCharter            bool   `json:"isCharter"`
	CharterAmount        int    `json:"charterAmount"`
	CharterPaymentMethod string `json:"charterPaymentMethod"`
	IsAdvance            bool   `json:"isAdvance"`
	AdvanceAmount        int    `json:"advanceAmount"`
	IsPending            bool   `json:"isPending"`
	IsDeleted            bool   `json:"isDeleted"`
	EtcRidingAmount      int    `json:"etcRidingAmount"`
	EtcEmptyAmount       int    `json:"etcEmptyAmount"`
	EtcRidingChargeParty string `json:"etcRidingChargeParty"`
	EtcEmptyChargeParty  string `json:"etcEmptyChargeParty"`
	Note                 string `json:"note,omitempty"`
}

// EntryKind is the settlement track a row belongs to. The boolean flags on
// TripEntry collapse into exactly one kind.
type EntryKind int

const (
	KindActive EntryKind = iota
	KindCharter
	KindAdvance
	KindPending
	KindDeleted
)

func (k EntryKind) String() string {
	switch k {
	case KindActive:
		return "active"
	case KindCharter:
		return "charter"
	case KindAdvance:
		return "advance"
	case KindPending:
		return "pending"
	case KindDeleted:
		return "deleted"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kind resolves the flags with precedence deleted > pending > advance > charter.
func (e TripEntry) Kind() EntryKind {
	switch {
	case e.IsDeleted:
		return KindDeleted
	case e.IsPending:
		return KindPending
	case e.IsAdvance || isAdvanceLabel(e.PaymentMethodRaw):
		return KindAdvance
	case e.IsCharter:
		return KindCharter
	}
	return KindActive
}

func isAdvanceLabel(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == RawAdvance || strings.Contains(trimmed, "立替")
}

// RidingParty is the normalised charge party of the ride leg.
func (e TripEntry) RidingParty() string {
	return NormalizeChargeParty(e.EtcRidingChargeParty)
}

// EmptyParty is the normalised charge party of the empty (return) leg.
func (e TripEntry) EmptyParty() string {
	return NormalizeChargeParty(e.EtcEmptyChargeParty)
}

// NormalizeChargeParty accepts the canonical keys and the Japanese form
// labels. Anything else means nobody personally fronted the toll.
func NormalizeChargeParty(raw string) string {
	v := strings.TrimSpace(raw)
	switch v {
	case ChargeDriver, ChargeCompany, ChargeCustomer:
		return v
	}
	switch {
	case strings.Contains(v, "ドライバー"):
		return ChargeDriver
	case strings.Contains(v, "お客様"):
		return ChargeCustomer
	}
	return ChargeCompany
}

var rideTimePattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Validate rejects rows that could only have bypassed the entry form.
func (e TripEntry) Validate() error {
	issues := e.Issues()
	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidEntry, strings.Join(issues, "; "))
}

// Issues lists field problems as "field: reason" pairs.
func (e TripEntry) Issues() []string {
	var issues []string
	amounts := []struct {
		field string
		value int
	}{
		{"meterFee", e.MeterFee},
		{"charterAmount", e.CharterAmount},
		{"advanceAmount", e.AdvanceAmount},
		{"etcRidingAmount", e.EtcRidingAmount},
		{"etcEmptyAmount", e.EtcEmptyAmount},
	}
	for _, amount := range amounts {
		if amount.value < 0 {
			issues = append(issues, amount.field+": must not be negative")
		}
	}
	if e.RideTime != "" && !rideTimePattern.MatchString(strings.TrimSpace(e.RideTime)) {
		issues = append(issues, "rideTime: must be HH:MM")
	}
	return issues
}

// Participating keeps rows that are neither deleted nor pending.
func Participating(entries []TripEntry) []TripEntry {
	out := make([]TripEntry, 0, len(entries))
	for _, entry := range entries {
		if kind := entry.Kind(); kind == KindDeleted || kind == KindPending {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Billable keeps rows that take part in sales and ETC aggregation.
func Billable(entries []TripEntry) []TripEntry {
	out := make([]TripEntry, 0, len(entries))
	for _, entry := range entries {
		if kind := entry.Kind(); kind == KindActive || kind == KindCharter {
			out = append(out, entry)
		}
	}
	return out
}
