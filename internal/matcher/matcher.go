// Package matcher joins internal couriers to partner ledger rows using
// normalized identity heuristics, annotating each match with a confidence
// level and a human-readable reason for operator review.
package matcher

import (
	"github.com/stueygo/recon-cli/internal/model"
	"github.com/stueygo/recon-cli/internal/normalize"
)

// Match reasons shown to the operator.
const (
	ReasonFullMatch = "full match: name+city+phone"
	ReasonNamePhone = "name+last4 phone"
	ReasonNameCity  = "name+city (phone unverified)"
	ReasonNameOnly  = "name only (verify manually)"
)

// Policy controls how field agreements are counted.
type Policy struct {
	// RequireFieldPresence makes city and phone agreement require both
	// sides non-empty. Off by default: two blank cities (or two absent
	// phones) count as agreement, which inflates confidence on sparse
	// data but matches the established operator workflow.
	RequireFieldPresence bool
}

// Reconcile produces one MatchResult per courier by scanning the full
// partner list. Pure and deterministic: the same inputs always yield the
// same results, and each run recomputes everything from scratch.
func Reconcile(couriers []model.Courier, partners []model.PartnerRecord, policy Policy) []model.MatchResult {
	// Normalize partner rows once per run instead of per courier.
	normed := make([]normPartner, len(partners))
	for i, p := range partners {
		normed[i] = normPartner{
			rec:   p,
			name:  normalize.Name(p.FullName),
			city:  normalize.City(p.City),
			last4: p.PhoneLast4,
		}
	}

	results := make([]model.MatchResult, len(couriers))
	for i, c := range couriers {
		results[i] = matchCourier(c, normed, policy)
	}
	return results
}

type normPartner struct {
	rec   model.PartnerRecord
	name  string
	city  string
	last4 string
}

// matchCourier selects the single best partner row for one courier.
// Selection policy, in strict priority order:
//
//  1. name+city+phone  -> high, stop scanning (first wins)
//  2. name+phone       -> high, stop scanning
//  3. name+city        -> medium, upgrades a low/empty best, scan continues
//  4. name only        -> low, recorded only when nothing better is held
func matchCourier(c model.Courier, partners []normPartner, policy Policy) model.MatchResult {
	result := model.MatchResult{Courier: c}

	name := normalize.Name(c.FullName)
	city := normalize.City(c.City)
	last4 := normalize.LastFourDigits(c.Phone)

	var (
		best       *normPartner
		confidence model.Confidence
		reason     string
	)

	for i := range partners {
		p := &partners[i]
		if name != p.name {
			continue
		}

		cityMatch := fieldsAgree(city, p.city, policy)
		phoneMatch := fieldsAgree(last4, p.last4, policy)

		switch {
		case cityMatch && phoneMatch:
			best, confidence, reason = p, model.ConfidenceHigh, ReasonFullMatch
		case phoneMatch:
			best, confidence, reason = p, model.ConfidenceHigh, ReasonNamePhone
		case cityMatch:
			if best == nil || confidence == model.ConfidenceLow {
				best, confidence, reason = p, model.ConfidenceMedium, ReasonNameCity
			}
		default:
			if best == nil {
				best, confidence, reason = p, model.ConfidenceLow, ReasonNameOnly
			}
		}

		if confidence == model.ConfidenceHigh {
			break
		}
	}

	if best == nil {
		return result
	}

	result.Matched = true
	result.Confidence = confidence
	result.MatchReason = reason
	result.PartnerBonus = best.rec.BonusAmount
	result.PartnerOrders = best.rec.OrdersCount
	return result
}

// fieldsAgree reports whether two normalized field values count as an
// agreement under the policy. Without RequireFieldPresence two empty
// strings agree; with it, agreement needs a real value on both sides.
func fieldsAgree(a, b string, policy Policy) bool {
	if policy.RequireFieldPresence && (a == "" || b == "") {
		return false
	}
	return a == b
}
