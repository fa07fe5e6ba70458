// Package ledger parses uploaded partner-program payout exports into
// structured records. Column roles are inferred from the header row by
// keyword search, so ledgers from different partner back offices parse
// without per-partner configuration.
package ledger

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stueygo/recon-cli/internal/model"
	"github.com/stueygo/recon-cli/internal/normalize"
)

// ErrNoNameColumn is returned when the header contains no recognizable
// name-like column. The upload is aborted and no records are installed.
var ErrNoNameColumn = eris.New("ledger: no name column in header")

// Built-in header keywords per column role. Matching is a case-insensitive
// substring test against the lowercased header cells; the first matching
// cell wins. Extra synonyms can be appended via Synonyms.
var (
	nameKeywords   = []string{"фио", "имя", "name"}
	cityKeywords   = []string{"город", "city"}
	phoneKeywords  = []string{"телефон", "phone"}
	bonusKeywords  = []string{"бонус", "выплата", "bonus"}
	ordersKeywords = []string{"заказ", "orders"}
)

// ColumnMap holds the resolved header index of each column role.
// -1 means the column is absent; only Name is mandatory.
type ColumnMap struct {
	Name   int
	City   int
	Phone  int
	Bonus  int
	Orders int
}

// ResolveColumns maps header cells to column roles. Each role resolves
// independently; missing optional columns are reported as -1.
func ResolveColumns(header []string, syn Synonyms) ColumnMap {
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = strings.ToLower(strings.TrimSpace(h))
	}

	find := func(keywords, extra []string) int {
		for i, cell := range cells {
			for _, kw := range append(keywords, extra...) {
				if kw != "" && strings.Contains(cell, strings.ToLower(kw)) {
					return i
				}
			}
		}
		return -1
	}

	return ColumnMap{
		Name:   find(nameKeywords, syn.Name),
		City:   find(cityKeywords, syn.City),
		Phone:  find(phoneKeywords, syn.Phone),
		Bonus:  find(bonusKeywords, syn.Bonus),
		Orders: find(ordersKeywords, syn.Orders),
	}
}

// Options configures a parse pass.
type Options struct {
	Synonyms Synonyms // extra header keywords, appended to the built-ins
	Encoding string   // "utf-8" (default), "windows-1251", or "auto"
}

// Parse reads a delimited ledger and returns its partner records.
// The first non-blank line is the header; rows whose name cell is empty
// are dropped; unparsable numeric cells default to zero and keep the row.
// A header with no resolvable name column fails with ErrNoNameColumn and
// installs nothing.
func Parse(r io.Reader, opts Options) ([]model.PartnerRecord, error) {
	decoded, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		records []model.PartnerRecord
		cm      ColumnMap
		header  = false
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ledger: read row")
		}
		for i, cell := range row {
			row[i] = strings.Trim(strings.TrimSpace(cell), `"`)
		}
		if blankRow(row) {
			continue
		}

		if !header {
			header = true
			cm = ResolveColumns(row, opts.Synonyms)
			if cm.Name < 0 {
				return nil, ErrNoNameColumn
			}
			continue
		}

		rec := projectRow(row, cm)
		if rec.FullName == "" {
			continue
		}
		records = append(records, rec)
	}

	if !header {
		return nil, ErrNoNameColumn
	}

	zap.L().Debug("ledger parsed",
		zap.Int("records", len(records)),
		zap.Int("name_col", cm.Name),
		zap.Int("city_col", cm.City),
		zap.Int("phone_col", cm.Phone),
		zap.Int("bonus_col", cm.Bonus),
		zap.Int("orders_col", cm.Orders),
	)
	return records, nil
}

// projectRow builds a PartnerRecord from one data row using the resolved
// column map. Index lookups are bounds-checked so short rows are safe.
func projectRow(row []string, cm ColumnMap) model.PartnerRecord {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	return model.PartnerRecord{
		FullName:    strings.TrimSpace(cell(cm.Name)),
		City:        cell(cm.City),
		PhoneLast4:  normalize.LastFourDigits(cell(cm.Phone)),
		BonusAmount: parseBonus(cell(cm.Bonus)),
		OrdersCount: parseOrders(cell(cm.Orders)),
	}
}

// parseBonus parses a decimal amount, defaulting to zero on failure.
// Row-level numeric garbage is a silent warning, never a dropped row.
func parseBonus(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseOrders(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
