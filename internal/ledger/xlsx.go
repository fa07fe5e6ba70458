package ledger

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/stueygo/recon-cli/internal/model"
)

// ParseXLSX reads the first sheet of a partner ledger workbook. Header and
// row semantics are identical to the CSV path: the first non-blank row
// resolves the column map, a missing name column aborts the import.
func ParseXLSX(path string, opts Options) ([]model.PartnerRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, ErrNoNameColumn
	}

	var (
		records []model.PartnerRecord
		cm      ColumnMap
		header  = false
	)
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}
		if blankRow(cells) {
			continue
		}

		if !header {
			header = true
			cm = ResolveColumns(cells, opts.Synonyms)
			if cm.Name < 0 {
				return nil, ErrNoNameColumn
			}
			continue
		}

		rec := projectRow(cells, cm)
		if rec.FullName == "" {
			continue
		}
		records = append(records, rec)
	}

	if !header {
		return nil, ErrNoNameColumn
	}

	zap.L().Debug("xlsx ledger parsed", zap.String("path", path), zap.Int("records", len(records)))
	return records, nil
}
