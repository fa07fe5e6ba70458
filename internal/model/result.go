package model

import "github.com/shopspring/decimal"

// Confidence is the qualitative trust level of an automatic match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Label returns the operator-facing form of the confidence level.
// The back office is Russian-language, as are the exports.
func (c Confidence) Label() string {
	switch c {
	case ConfidenceHigh:
		return "Высокая"
	case ConfidenceMedium:
		return "Средняя"
	case ConfidenceLow:
		return "Низкая"
	}
	return ""
}

// MatchResult is the per-courier outcome of a reconciliation run.
// At most one PartnerRecord is attributed to a courier. When Matched is
// false, Confidence, MatchReason, PartnerBonus and PartnerOrders are all
// zero values.
type MatchResult struct {
	Courier

	Matched       bool            `json:"matched"`
	Confidence    Confidence      `json:"confidence,omitempty"`
	MatchReason   string          `json:"match_reason,omitempty"`
	PartnerBonus  decimal.Decimal `json:"partner_bonus,omitempty"`
	PartnerOrders int             `json:"partner_orders,omitempty"`
}

// SummaryStats aggregates a MatchResult list. Recomputed from scratch on
// every run; never patched incrementally.
type SummaryStats struct {
	Total          int             `json:"total"`
	Matched        int             `json:"matched"`
	Unmatched      int             `json:"unmatched"`
	HighConfidence int             `json:"high_confidence"`
	TotalPayout    decimal.Decimal `json:"total_payout"`
}
