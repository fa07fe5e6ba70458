// Package store persists reconciliation run history. Matching never
// depends on it: runs are saved after the fact so operators can audit
// past payouts, and the CLI degrades to in-memory only when no store is
// configured.
package store

import (
	"context"
	"time"

	"github.com/stueygo/recon-cli/internal/model"
)

// ReconRun is one persisted reconciliation run: which ledger was matched,
// the resulting stats, and the full annotated result list.
type ReconRun struct {
	ID          string              `json:"id"`
	LedgerName  string              `json:"ledger_name"`
	LedgerRows  int                 `json:"ledger_rows"`
	Stats       model.SummaryStats  `json:"stats"`
	Results     []model.MatchResult `json:"results,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for run history.
type Store interface {
	SaveRun(ctx context.Context, run *ReconRun) error
	GetRun(ctx context.Context, id string) (*ReconRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]ReconRun, error)

	Migrate(ctx context.Context) error
	Close() error
}
