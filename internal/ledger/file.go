package ledger

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/stueygo/recon-cli/internal/model"
)

// ParseFile dispatches on file extension: .xlsx workbooks go through the
// sheet reader, everything else is treated as delimited text.
func ParseFile(path string, opts Options) ([]model.PartnerRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ParseXLSX(path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: open file")
	}
	defer f.Close()

	return Parse(f, opts)
}
