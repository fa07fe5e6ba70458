package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/stueygo/recon-cli/internal/ledger"
	"github.com/stueygo/recon-cli/internal/model"
	"github.com/stueygo/recon-cli/internal/store"
	"github.com/stueygo/recon-cli/pkg/courierapi"
)

// loadCouriers reads the courier registry either from a local JSON file
// (offline workflows, fixtures) or from the registry API.
func loadCouriers(ctx context.Context, path string) ([]model.Courier, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrap(err, "read couriers file")
		}
		var couriers []model.Courier
		if err := json.Unmarshal(data, &couriers); err != nil {
			return nil, eris.Wrap(err, "parse couriers file")
		}
		return couriers, nil
	}

	client := courierapi.New(courierapi.Config{
		BaseURL:    cfg.Registry.BaseURL,
		Token:      cfg.Registry.Token,
		Timeout:    time.Duration(cfg.Registry.TimeoutSecs) * time.Second,
		RatePerSec: cfg.Registry.RatePerSec,
		MaxRetries: cfg.Registry.MaxRetries,
	})
	return client.FetchCouriers(ctx)
}

// ledgerOptions builds parse options from config plus the optional
// synonyms file.
func ledgerOptions() (ledger.Options, error) {
	syn, err := ledger.LoadSynonyms(cfg.Ledger.SynonymsPath)
	if err != nil {
		return ledger.Options{}, err
	}
	return ledger.Options{Synonyms: syn, Encoding: cfg.Ledger.Encoding}, nil
}

// openStore opens the configured run-history backend, or nil when history
// is disabled ("none" driver).
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "none", "":
		return nil, nil
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
