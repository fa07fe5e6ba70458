package model

import "github.com/shopspring/decimal"

// PartnerRecord is one row of an uploaded partner-program payout ledger.
// The list is immutable once parsed: a new upload replaces it wholesale,
// and the operator may clear it explicitly.
type PartnerRecord struct {
	FullName    string          `json:"full_name"` // required; rows without it are dropped at parse
	City        string          `json:"city,omitempty"`
	PhoneLast4  string          `json:"phone_last4,omitempty"` // last 4 (or fewer) digits of any phone-like column
	BonusAmount decimal.Decimal `json:"bonus_amount"`           // 0 when column absent or unparsable
	OrdersCount int             `json:"orders_count"`           // 0 when column absent or unparsable
}
