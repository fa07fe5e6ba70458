package matcher

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stueygo/recon-cli/internal/model"
)

func courier(name, city, phone string) model.Courier {
	return model.Courier{FullName: name, City: city, Phone: phone}
}

func partner(name, city, phone string, bonus int64, orders int) model.PartnerRecord {
	var last4 string
	if phone != "" {
		if len(phone) > 4 {
			phone = phone[len(phone)-4:]
		}
		last4 = phone
	}
	return model.PartnerRecord{
		FullName:    name,
		City:        city,
		PhoneLast4:  last4,
		BonusAmount: decimal.NewFromInt(bonus),
		OrdersCount: orders,
	}
}

func TestReconcile_FullMatch(t *testing.T) {
	couriers := []model.Courier{courier("Иванов Иван", "Москва", "79991234567")}
	partners := []model.PartnerRecord{partner("Иванов Иван", "Москва", "79991234567", 1500, 42)}

	results := Reconcile(couriers, partners, Policy{})
	require.Len(t, results, 1)

	r := results[0]
	assert.True(t, r.Matched)
	assert.Equal(t, model.ConfidenceHigh, r.Confidence)
	assert.Equal(t, ReasonFullMatch, r.MatchReason)
	assert.True(t, r.PartnerBonus.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, 42, r.PartnerOrders)
}

func TestReconcile_Unmatched(t *testing.T) {
	couriers := []model.Courier{courier("Петров Петр", "Казань", "79990000000")}
	partners := []model.PartnerRecord{partner("Иванов Иван", "Москва", "79991234567", 1500, 42)}

	results := Reconcile(couriers, partners, Policy{})
	require.Len(t, results, 1)
	assert.False(t, results[0].Matched)
	assert.Empty(t, results[0].Confidence)
	assert.Empty(t, results[0].MatchReason)
	assert.True(t, results[0].PartnerBonus.IsZero())
	assert.Zero(t, results[0].PartnerOrders)
}

func TestReconcile_NamePhoneWithoutCity(t *testing.T) {
	couriers := []model.Courier{courier("Иванов Иван", "Казань", "79991234567")}
	partners := []model.PartnerRecord{partner("Иванов Иван", "Москва", "79991234567", 100, 1)}

	results := Reconcile(couriers, partners, Policy{})
	require.True(t, results[0].Matched)
	assert.Equal(t, model.ConfidenceHigh, results[0].Confidence)
	assert.Equal(t, ReasonNamePhone, results[0].MatchReason)
}

func TestReconcile_NameCityWithoutPhone(t *testing.T) {
	couriers := []model.Courier{courier("Иванов Иван", "Москва", "79991111111")}
	partners := []model.PartnerRecord{partner("Иванов Иван", "Москва", "79992222222", 100, 1)}

	results := Reconcile(couriers, partners, Policy{})
	require.True(t, results[0].Matched)
	assert.Equal(t, model.ConfidenceMedium, results[0].Confidence)
	assert.Equal(t, ReasonNameCity, results[0].MatchReason)
}

func TestReconcile_NameOnly(t *testing.T) {
	couriers := []model.Courier{courier("Иванов Иван", "Казань", "79991111111")}
	partners := []model.PartnerRecord{partner("Иванов Иван", "Москва", "79992222222", 100, 1)}

	results := Reconcile(couriers, partners, Policy{})
	require.True(t, results[0].Matched)
	assert.Equal(t, model.ConfidenceLow, results[0].Confidence)
	assert.Equal(t, ReasonNameOnly, results[0].MatchReason)
}

func TestReconcile_LaterRowUpgradesToHigh(t *testing.T) {
	couriers := []model.Courier{courier("Иванов Иван", "Москва", "79991234567")}
	partners := []model.PartnerRecord{
		partner("Иванов Иван", "Москва", "79990000000", 10, 1), // medium
		partner("Иванов Иван", "Москва", "79991234567", 20, 2), // full match
	}

	results := Reconcile(couriers, partners, Policy{})
	require.True(t, results[0].Matched)
	assert.Equal(t, model.ConfidenceHigh, results[0].Confidence)
	assert.True(t, results[0].PartnerBonus.Equal(decimal.NewFromInt(20)))
}

func TestReconcile_FirstHighMatchWins(t *testing.T) {
	couriers := []model.Courier{courier("Иванов Иван", "Москва", "79991234567")}
	partners := []model.PartnerRecord{
		partner("Иванов Иван", "Москва", "79991234567", 10, 1),
		partner("Иванов Иван", "Москва", "79991234567", 999, 9),
	}

	results := Reconcile(couriers, partners, Policy{})
	assert.True(t, results[0].PartnerBonus.Equal(decimal.NewFromInt(10)))
}

func TestReconcile_LowDoesNotReplaceMedium(t *testing.T) {
	couriers := []model.Courier{courier("Иванов Иван", "Москва", "79991111111")}
	partners := []model.PartnerRecord{
		partner("Иванов Иван", "Москва", "79992222222", 10, 1),  // medium
		partner("Иванов Иван", "Казань", "79993333333", 999, 9), // name only
	}

	results := Reconcile(couriers, partners, Policy{})
	assert.Equal(t, model.ConfidenceMedium, results[0].Confidence)
	assert.True(t, results[0].PartnerBonus.Equal(decimal.NewFromInt(10)))
}

func TestReconcile_MediumUpgradesLow(t *testing.T) {
	couriers := []model.Courier{courier("Иванов Иван", "Москва", "79991111111")}
	partners := []model.PartnerRecord{
		partner("Иванов Иван", "Казань", "79993333333", 10, 1), // name only
		partner("Иванов Иван", "Москва", "79992222222", 20, 2), // medium
	}

	results := Reconcile(couriers, partners, Policy{})
	assert.Equal(t, model.ConfidenceMedium, results[0].Confidence)
	assert.True(t, results[0].PartnerBonus.Equal(decimal.NewFromInt(20)))
}

func TestReconcile_EmptyFieldsCountAsAgreement(t *testing.T) {
	// Known weak-match behavior: blank city and absent phone on both
	// sides still count toward confidence under the default policy.
	couriers := []model.Courier{courier("Иванов Иван", "", "")}
	partners := []model.PartnerRecord{partner("Иванов Иван", "", "", 100, 1)}

	results := Reconcile(couriers, partners, Policy{})
	assert.Equal(t, model.ConfidenceHigh, results[0].Confidence)
	assert.Equal(t, ReasonFullMatch, results[0].MatchReason)
}

func TestReconcile_RequireFieldPresence(t *testing.T) {
	couriers := []model.Courier{courier("Иванов Иван", "", "")}
	partners := []model.PartnerRecord{partner("Иванов Иван", "", "", 100, 1)}

	results := Reconcile(couriers, partners, Policy{RequireFieldPresence: true})
	require.True(t, results[0].Matched)
	assert.Equal(t, model.ConfidenceLow, results[0].Confidence)
	assert.Equal(t, ReasonNameOnly, results[0].MatchReason)
}

func TestReconcile_NameNormalization(t *testing.T) {
	couriers := []model.Courier{courier("  ИВАНОВ   Иван ", "МОСКВА", "79991234567")}
	partners := []model.PartnerRecord{partner("иванов иван", "москва", "79991234567", 100, 1)}

	results := Reconcile(couriers, partners, Policy{})
	assert.Equal(t, model.ConfidenceHigh, results[0].Confidence)
}

func TestReconcile_Idempotent(t *testing.T) {
	couriers := []model.Courier{
		courier("Иванов Иван", "Москва", "79991234567"),
		courier("Петров Петр", "Казань", "79990000000"),
		courier("Сидоров Антон", "", ""),
	}
	partners := []model.PartnerRecord{
		partner("Иванов Иван", "Москва", "79991234567", 1500, 42),
		partner("Сидоров Антон", "Тверь", "79995555555", 300, 3),
	}

	first := Reconcile(couriers, partners, Policy{})
	second := Reconcile(couriers, partners, Policy{})
	assert.Equal(t, first, second)
}

func TestReconcile_EmptyInputs(t *testing.T) {
	assert.Empty(t, Reconcile(nil, nil, Policy{}))

	results := Reconcile([]model.Courier{courier("A", "", "")}, nil, Policy{})
	require.Len(t, results, 1)
	assert.False(t, results[0].Matched)
}
