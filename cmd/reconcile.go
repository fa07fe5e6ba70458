package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stueygo/recon-cli/internal/ledger"
	"github.com/stueygo/recon-cli/internal/matcher"
	"github.com/stueygo/recon-cli/internal/model"
	"github.com/stueygo/recon-cli/internal/report"
	"github.com/stueygo/recon-cli/internal/store"
)

var (
	reconcileLedgerPath   string
	reconcileCouriersPath string
	reconcileOutDir       string
	reconcileUnmatched    bool
	reconcileNoStore      bool
	reconcileNoReport     bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match couriers against a partner payout ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		opts, err := ledgerOptions()
		if err != nil {
			return err
		}

		var (
			couriers []model.Courier
			partners []model.PartnerRecord
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			couriers, err = loadCouriers(gctx, reconcileCouriersPath)
			return err
		})
		g.Go(func() error {
			var err error
			partners, err = ledger.ParseFile(reconcileLedgerPath, opts)
			return err
		})
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "reconcile: load inputs")
		}

		zap.L().Info("inputs loaded",
			zap.Int("couriers", len(couriers)),
			zap.Int("partner_records", len(partners)),
		)

		results := matcher.Reconcile(couriers, partners, matcher.Policy{
			RequireFieldPresence: cfg.Match.RequireFieldPresence,
		})
		stats := report.ComputeStats(results)
		printStats(stats)

		if reconcileUnmatched {
			for _, r := range results {
				if !r.Matched {
					fmt.Printf("  unmatched: %s (%s)\n", r.FullName, r.ReferralCode)
				}
			}
		}

		if !reconcileNoStore {
			if err := persistRun(ctx, results, stats, len(partners)); err != nil {
				return err
			}
		}

		if reconcileNoReport {
			return nil
		}
		outDir := reconcileOutDir
		if outDir == "" {
			outDir = cfg.Export.Dir
		}
		path, err := report.SavePaymentReport(outDir, results, time.Now())
		if eris.Is(err, report.ErrNothingToExport) {
			fmt.Println("nothing to export: no matched couriers with a payable bonus")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("payment report: %s\n", path)
		return nil
	},
}

func printStats(stats model.SummaryStats) {
	fmt.Printf("couriers:        %d\n", stats.Total)
	fmt.Printf("matched:         %d\n", stats.Matched)
	fmt.Printf("unmatched:       %d\n", stats.Unmatched)
	fmt.Printf("high confidence: %d\n", stats.HighConfidence)
	fmt.Printf("total payout:    %s\n", stats.TotalPayout.StringFixed(2))
}

func persistRun(ctx context.Context, results []model.MatchResult, stats model.SummaryStats, ledgerRows int) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	if st == nil {
		return nil
	}
	defer st.Close()

	run := &store.ReconRun{
		LedgerName: filepath.Base(reconcileLedgerPath),
		LedgerRows: ledgerRows,
		Stats:      stats,
		Results:    results,
	}
	if err := st.SaveRun(ctx, run); err != nil {
		return err
	}
	zap.L().Info("run saved", zap.String("run_id", run.ID))
	return nil
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileLedgerPath, "ledger", "", "path to partner ledger (.csv or .xlsx, required)")
	reconcileCmd.Flags().StringVar(&reconcileCouriersPath, "couriers", "", "path to couriers JSON (default: fetch from registry API)")
	reconcileCmd.Flags().StringVar(&reconcileOutDir, "out", "", "report output directory (default from config)")
	reconcileCmd.Flags().BoolVar(&reconcileUnmatched, "unmatched", false, "list unmatched couriers")
	reconcileCmd.Flags().BoolVar(&reconcileNoStore, "no-store", false, "skip saving the run to history")
	reconcileCmd.Flags().BoolVar(&reconcileNoReport, "no-report", false, "skip writing the payment report")
	_ = reconcileCmd.MarkFlagRequired("ledger")
	rootCmd.AddCommand(reconcileCmd)
}
