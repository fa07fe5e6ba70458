package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stueygo/recon-cli/internal/ledger"
	"github.com/stueygo/recon-cli/internal/matcher"
	"github.com/stueygo/recon-cli/internal/model"
	"github.com/stueygo/recon-cli/internal/report"
	"github.com/stueygo/recon-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reconciliation dashboard API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng := matcher.NewEngine(matcher.Policy{
			RequireFieldPresence: cfg.Match.RequireFieldPresence,
		})

		// Seed the courier list from the registry when configured; the
		// dashboard can still install one via POST /couriers.
		if cfg.Registry.BaseURL != "" {
			couriers, err := loadCouriers(ctx, "")
			if err != nil {
				return eris.Wrap(err, "serve: fetch couriers")
			}
			eng.SetCouriers(couriers)
			zap.L().Info("courier registry loaded", zap.Int("couriers", len(couriers)))
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close()
		}

		opts, err := ledgerOptions()
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", portOrDefault()),
			Handler: newServeHandler(eng, st, opts),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", portOrDefault()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func portOrDefault() int {
	if servePort != 0 {
		return servePort
	}
	return cfg.Server.Port
}

// newServeHandler builds the dashboard API router around one Engine.
func newServeHandler(eng *matcher.Engine, st store.Store, opts ledger.Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "X-Auth-Token"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/couriers", func(w http.ResponseWriter, req *http.Request) {
		var couriers []model.Courier
		if err := json.NewDecoder(req.Body).Decode(&couriers); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		eng.SetCouriers(couriers)
		writeJSON(w, http.StatusOK, map[string]int{"couriers": len(couriers)})
	})

	r.Post("/ledger", func(w http.ResponseWriter, req *http.Request) {
		// Reserve the generation before the body read so a faster
		// subsequent upload wins over this one.
		token := eng.BeginUpload()

		parseOpts := opts
		if enc := req.URL.Query().Get("encoding"); enc != "" {
			parseOpts.Encoding = enc
		}

		records, err := ledger.Parse(req.Body, parseOpts)
		if err != nil {
			if eris.Is(err, ledger.ErrNoNameColumn) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "no name column in header"})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ledger parse failed"})
			return
		}

		if !eng.InstallLedger(token, records) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "upload superseded by a newer one"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"records": len(records)})
	})

	r.Delete("/ledger", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("confirm") != "true" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "confirmation required: pass confirm=true"})
			return
		}
		eng.ClearLedger()
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	})

	r.Post("/reconcile", func(w http.ResponseWriter, req *http.Request) {
		results := eng.Reconcile()
		stats := report.ComputeStats(results)

		runID := ""
		if st != nil {
			run := &store.ReconRun{
				LedgerRows: eng.PartnerCount(),
				Stats:      stats,
				Results:    results,
			}
			if err := st.SaveRun(req.Context(), run); err != nil {
				zap.L().Error("save run failed", zap.Error(err))
			} else {
				runID = run.ID
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "stats": stats})
	})

	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, report.ComputeStats(eng.Reconcile()))
	})

	r.Get("/results", func(w http.ResponseWriter, req *http.Request) {
		results := eng.Reconcile()
		if req.URL.Query().Get("unmatched") == "true" {
			filtered := results[:0:0]
			for _, r := range results {
				if !r.Matched {
					filtered = append(filtered, r)
				}
			}
			results = filtered
		}
		writeJSON(w, http.StatusOK, results)
	})

	r.Get("/export/payments", func(w http.ResponseWriter, _ *http.Request) {
		results := eng.Reconcile()

		w.Header().Set("Content-Type", "text/csv;charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", report.PaymentReportFilename(time.Now())))
		if err := report.WritePaymentReport(w, results); err != nil {
			if eris.Is(err, report.ErrNothingToExport) {
				w.Header().Del("Content-Disposition")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]string{"error": "nothing to export"})
				return
			}
			zap.L().Error("payment export failed", zap.Error(err))
		}
	})

	r.Get("/export/roster", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv;charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", report.RosterFilename(time.Now())))
		if err := report.WriteCourierRoster(w, eng.Couriers()); err != nil {
			zap.L().Error("roster export failed", zap.Error(err))
		}
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
