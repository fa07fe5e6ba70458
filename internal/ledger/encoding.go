package ledger

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
)

// utf8BOM is the byte-order-mark Excel prepends to UTF-8 CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeReader returns a UTF-8 reader over the raw upload. Ledgers exported
// from Russian-locale Excel installs frequently arrive as windows-1251, so
// "auto" sniffs: valid UTF-8 passes through, anything else is transcoded.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: read upload")
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	switch encoding {
	case "", "utf-8", "utf8":
		return bytes.NewReader(raw), nil
	case "windows-1251", "cp1251":
		return transcode1251(raw)
	case "auto":
		if utf8.Valid(raw) {
			return bytes.NewReader(raw), nil
		}
		return transcode1251(raw)
	default:
		return nil, eris.Errorf("ledger: unsupported encoding %q", encoding)
	}
}

func transcode1251(raw []byte) (io.Reader, error) {
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: decode windows-1251")
	}
	return bytes.NewReader(decoded), nil
}
