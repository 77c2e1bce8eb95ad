package settlement

const (
	ChargeCompany  = "company"
	ChargeDriver   = "driver"
	ChargeCustomer = "customer"

	CardOwnerCompany = "company"
	CardOwnerOwn     = "own"

	ReturnFeeNone         = "none"
	ReturnFeeAppTicket    = "app_ticket"
	ReturnFeeCashToDriver = "cash_to_driver"

	FuelPaidByCompanyCash = "company_cash"
	FuelPaidByOther       = "other"

	CharterJPYCash      = "jpy_cash"
	CharterRMBCash      = "rmb_cash"
	CharterSelfWechat   = "self_wechat"
	CharterBossWechat   = "boss_wechat"
	CharterToCompany    = "to_company"
	CharterBankTransfer = "bank_transfer"

	SpecialUberReservation = "uber_reservation"
	SpecialUberTip         = "uber_tip"
	SpecialUberPromotion   = "uber_promotion"

	RawAdvance = "advance"
)

var charterCashMethods = map[string]struct{}{
	CharterJPYCash:    {},
	CharterRMBCash:    {},
	CharterSelfWechat: {},
	CharterBossWechat: {},
}

var charterUncollectedMethods = map[string]struct{}{
	CharterToCompany:    {},
	CharterBankTransfer: {},
	"":                  {},
}
