// Package report derives summary statistics from match results and writes
// the two operator-facing exports: the payment report and the courier
// roster. Both exports are UTF-8 with a byte-order-mark prefix and fully
// quoted comma-separated cells, which is what spreadsheet imports expect.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/stueygo/recon-cli/internal/model"
	"github.com/stueygo/recon-cli/internal/normalize"
)

// ErrNothingToExport is returned when the payment report is requested but
// no matched result carries a payable bonus. No output is written.
var ErrNothingToExport = eris.New("report: nothing to export")

// ComputeStats aggregates a result list. An empty list yields zero counts
// and a zero payout.
func ComputeStats(results []model.MatchResult) model.SummaryStats {
	stats := model.SummaryStats{Total: len(results), TotalPayout: decimal.Zero}
	for _, r := range results {
		if !r.Matched {
			continue
		}
		stats.Matched++
		if r.Confidence == model.ConfidenceHigh {
			stats.HighConfidence++
		}
		stats.TotalPayout = stats.TotalPayout.Add(r.PartnerBonus)
	}
	stats.Unmatched = stats.Total - stats.Matched
	return stats
}

var paymentHeader = []string{
	"ФИО", "Телефон", "Город", "Посл. 4 цифры", "Реф. код",
	"К выплате", "Заказы (партнёр)", "Заказы (система)", "Уверенность", "Причина",
}

// WritePaymentReport writes the payable-matches table. Only matched
// results with a positive attributed bonus are included; when that set is
// empty the export is refused with ErrNothingToExport and nothing is
// written. A trailing totals row sums the payable column.
func WritePaymentReport(w io.Writer, results []model.MatchResult) error {
	var payable []model.MatchResult
	for _, r := range results {
		if r.Matched && r.PartnerBonus.IsPositive() {
			payable = append(payable, r)
		}
	}
	if len(payable) == 0 {
		return ErrNothingToExport
	}

	cw := newCSVWriter(w)
	if err := cw.row(paymentHeader); err != nil {
		return err
	}

	total := decimal.Zero
	for _, r := range payable {
		total = total.Add(r.PartnerBonus)
		err := cw.row([]string{
			r.FullName,
			r.Phone,
			r.City,
			normalize.LastFourDigits(r.Phone),
			r.ReferralCode,
			r.PartnerBonus.StringFixed(2),
			strconv.Itoa(r.PartnerOrders),
			strconv.Itoa(r.TotalOrders),
			r.Confidence.Label(),
			r.MatchReason,
		})
		if err != nil {
			return err
		}
	}

	return cw.row([]string{"ИТОГО", "", "", "", "", total.StringFixed(2), "", "", "", ""})
}

var rosterHeader = []string{
	"ФИО", "Город", "Телефон", "Посл. 4 цифры", "Email", "Реф. код", "Дата регистрации",
}

// WriteCourierRoster writes the raw internal courier list for the partner
// program to reconcile on their side. Always succeeds, even on an empty
// list (header only).
func WriteCourierRoster(w io.Writer, couriers []model.Courier) error {
	cw := newCSVWriter(w)
	if err := cw.row(rosterHeader); err != nil {
		return err
	}

	for _, c := range couriers {
		err := cw.row([]string{
			c.FullName,
			c.City,
			c.Phone,
			normalize.LastFourDigits(c.Phone),
			c.Email,
			c.ReferralCode,
			c.CreatedAt.Format("2006-01-02"),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// PaymentReportFilename returns payments_report_<ISO-date>.csv.
func PaymentReportFilename(t time.Time) string {
	return fmt.Sprintf("payments_report_%s.csv", t.Format("2006-01-02"))
}

// RosterFilename returns couriers_for_partner_<ISO-date>.csv.
func RosterFilename(t time.Time) string {
	return fmt.Sprintf("couriers_for_partner_%s.csv", t.Format("2006-01-02"))
}

// csvWriter emits BOM-prefixed rows with every cell double-quoted.
// encoding/csv quotes only when required, so cells are formatted by hand
// to keep the established export shape.
type csvWriter struct {
	w       io.Writer
	started bool
}

func newCSVWriter(w io.Writer) *csvWriter {
	return &csvWriter{w: w}
}

func (c *csvWriter) row(cells []string) error {
	if !c.started {
		c.started = true
		if _, err := c.w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return eris.Wrap(err, "report: write BOM")
		}
	}

	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	if _, err := io.WriteString(c.w, strings.Join(quoted, ",")+"\n"); err != nil {
		return eris.Wrap(err, "report: write row")
	}
	return nil
}
