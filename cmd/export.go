package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/stueygo/recon-cli/internal/report"
)

var (
	exportCouriersPath string
	exportOutDir       string
	exportRunID        string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write operator-facing exports",
}

// export roster always succeeds, even with zero couriers: the partner
// program uses it to reconcile on their side.
var exportRosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Export the courier roster for the partner program",
	RunE: func(cmd *cobra.Command, _ []string) error {
		couriers, err := loadCouriers(cmd.Context(), exportCouriersPath)
		if err != nil {
			return err
		}

		path, err := report.SaveCourierRoster(outDirOrDefault(), couriers, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("roster: %s (%d couriers)\n", path, len(couriers))
		return nil
	},
}

// export payments re-emits the payment report from a stored run.
var exportPaymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Export the payment report from a saved run",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		if st == nil {
			return eris.New("run history is disabled (store.driver=none)")
		}
		defer st.Close()

		run, err := st.GetRun(ctx, exportRunID)
		if err != nil {
			return err
		}

		path, err := report.SavePaymentReport(outDirOrDefault(), run.Results, time.Now())
		if eris.Is(err, report.ErrNothingToExport) {
			fmt.Println("nothing to export: run has no payable matches")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("payment report: %s\n", path)
		return nil
	},
}

func outDirOrDefault() string {
	if exportOutDir != "" {
		return exportOutDir
	}
	return cfg.Export.Dir
}

func init() {
	exportCmd.PersistentFlags().StringVar(&exportOutDir, "out", "", "output directory (default from config)")
	exportRosterCmd.Flags().StringVar(&exportCouriersPath, "couriers", "", "path to couriers JSON (default: fetch from registry API)")
	exportPaymentsCmd.Flags().StringVar(&exportRunID, "run", "", "run ID (required)")
	_ = exportPaymentsCmd.MarkFlagRequired("run")
	exportCmd.AddCommand(exportRosterCmd)
	exportCmd.AddCommand(exportPaymentsCmd)
	rootCmd.AddCommand(exportCmd)
}
