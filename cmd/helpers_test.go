package main

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
)

func decodeBody(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

func decimalFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
