package settlement

import (
	"regexp"
	"strings"
)

// PaymentMethod is a canonical payment channel key. Values outside the
// catalog are unresolved labels passed through from the trip log.
type PaymentMethod string

const (
	MethodCash      PaymentMethod = "cash"
	MethodUber      PaymentMethod = "uber"
	MethodDidi      PaymentMethod = "didi"
	MethodGo        PaymentMethod = "go"
	MethodCredit    PaymentMethod = "credit"
	MethodKyokushin PaymentMethod = "kyokushin"
	MethodOmron     PaymentMethod = "omron"
	MethodKyotoshi  PaymentMethod = "kyotoshi"
	MethodQR        PaymentMethod = "qr"
)

// Methods lists the catalog in display order.
var Methods = []PaymentMethod{
	MethodCash,
	MethodUber,
	MethodDidi,
	MethodGo,
	MethodCredit,
	MethodKyokushin,
	MethodOmron,
	MethodKyotoshi,
	MethodQR,
}

var methodAliases = map[string]PaymentMethod{
	"cash":        MethodCash,
	"uber_cash":   MethodCash,
	"didi_cash":   MethodCash,
	"go_cash":     MethodCash,
	"uber":        MethodUber,
	"didi":        MethodDidi,
	"go":          MethodGo,
	"credit":      MethodCredit,
	"credit_card": MethodCredit,
	"kyokushin":   MethodKyokushin,
	"omron":       MethodOmron,
	"kyotoshi":    MethodKyotoshi,
	"barcode":     MethodQR,
	"qr":          MethodQR,
	"------":      "",
	"--------":    "",
}

var bareGoToken = regexp.MustCompile(`(^|\s)go(\s|$)`)

// ResolvePaymentMethod maps a free-form or legacy label onto the catalog.
// Labels it cannot classify are returned trimmed but otherwise unchanged.
func ResolvePaymentMethod(raw string) PaymentMethod {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if method, ok := methodAliases[val]; ok {
		return method
	}

	lower := strings.ToLower(val)
	switch {
	case strings.Contains(val, "現金"):
		return MethodCash
	case strings.Contains(lower, "uber"), strings.Contains(val, "ウーバー"):
		return MethodUber
	case strings.Contains(lower, "didi"), strings.Contains(lower, "ｄｉｄｉ"), strings.Contains(lower, "di di"), strings.Contains(val, "ディディ"):
		return MethodDidi
	case lower == "ｇｏ", bareGoToken.MatchString(lower):
		return MethodGo
	case strings.Contains(val, "クレジ"), strings.Contains(lower, "credit"):
		return MethodCredit
	case strings.Contains(val, "京交信"):
		return MethodKyokushin
	case strings.Contains(val, "オムロン"), strings.Contains(lower, "omron"):
		return MethodOmron
	case strings.Contains(val, "京都市他"):
		return MethodKyotoshi
	case strings.Contains(val, "バーコード"),
		strings.Contains(lower, "paypay"),
		strings.Contains(val, "微信"),
		strings.Contains(val, "支付宝"),
		strings.Contains(val, "扫码"),
		strings.Contains(lower, "qr"):
		return MethodQR
	}
	return PaymentMethod(val)
}

// Known reports whether m is part of the catalog.
func (m PaymentMethod) Known() bool {
	for _, candidate := range Methods {
		if m == candidate {
			return true
		}
	}
	return false
}

// CompanySide reports whether the fare was settled through a channel the
// company collects, i.e. any catalog key except cash.
func (m PaymentMethod) CompanySide() bool {
	return m != MethodCash && m.Known()
}

// SpecialUberKind returns the special Uber sub-bucket named by the raw label,
// or "" when the label is not one of them. The match is on the raw value.
func SpecialUberKind(raw string) string {
	switch raw {
	case SpecialUberReservation, SpecialUberTip, SpecialUberPromotion:
		return raw
	}
	return ""
}
