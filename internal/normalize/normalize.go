// Package normalize produces comparison-safe forms of free-text identity
// fields. All functions are pure and deterministic; inputs are ASCII or
// Cyrillic names, so plain Unicode lowercasing is sufficient.
package normalize

import "strings"

// Name lowercases, trims, and collapses any run of whitespace to a single
// space. Courier and partner names go through the same transform before
// being compared.
func Name(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// City applies the same transform as Name. Empty input stays empty.
func City(s string) string {
	return Name(s)
}

// LastFourDigits strips every non-digit rune and returns the final four
// characters of what remains, or fewer if the number is short. Empty input
// yields an empty string.
func LastFourDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 4 {
		return digits[len(digits)-4:]
	}
	return digits
}
