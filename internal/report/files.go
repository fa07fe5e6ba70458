package report

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stueygo/recon-cli/internal/model"
)

// SavePaymentReport writes the payment report into dir and returns the
// file path. On ErrNothingToExport no file is left behind.
func SavePaymentReport(dir string, results []model.MatchResult, now time.Time) (string, error) {
	return saveTo(dir, PaymentReportFilename(now), func(f *os.File) error {
		return WritePaymentReport(f, results)
	})
}

// SaveCourierRoster writes the courier roster into dir and returns the
// file path.
func SaveCourierRoster(dir string, couriers []model.Courier, now time.Time) (string, error) {
	return saveTo(dir, RosterFilename(now), func(f *os.File) error {
		return WriteCourierRoster(f, couriers)
	})
}

func saveTo(dir, name string, write func(*os.File) error) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "report: create output dir")
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrap(err, "report: create file")
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", eris.Wrap(err, "report: close file")
	}

	zap.L().Info("report written", zap.String("path", path))
	return path, nil
}
