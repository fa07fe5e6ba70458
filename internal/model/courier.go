// Package model defines the domain entities shared across the reconciliation pipeline.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Courier is a registered delivery partner from the internal registry.
// Couriers are read-only input to the matcher; this subsystem never mutates them.
type Courier struct {
	ID            int64           `json:"id"`
	FullName      string          `json:"full_name"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"` // digit string, may carry a country code
	City          string          `json:"city,omitempty"`
	ReferralCode  string          `json:"referral_code"`
	TotalOrders   int             `json:"total_orders"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	CreatedAt     time.Time       `json:"created_at"`
}
