package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/stueygo/recon-cli/internal/model"
)

// pgPool is the minimal pool surface used by PostgresStore; pgxmock
// satisfies it in tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool. Teams sharing one run
// history point every operator at the same database.
type PostgresStore struct {
	pool pgPool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS recon_runs (
	id          TEXT PRIMARY KEY,
	ledger_name TEXT NOT NULL DEFAULT '',
	ledger_rows INTEGER NOT NULL DEFAULT 0,
	stats       JSONB NOT NULL,
	results     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_recon_runs_created_at ON recon_runs(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *ReconRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stats")
	}
	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal results")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO recon_runs (id, ledger_name, ledger_rows, stats, results, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.LedgerName, run.LedgerRows, statsJSON, resultsJSON, run.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert run")
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*ReconRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, ledger_name, ledger_rows, stats, results, created_at FROM recon_runs WHERE id = $1`, id)

	var (
		run         ReconRun
		statsJSON   []byte
		resultsJSON []byte
	)
	err := row.Scan(&run.ID, &run.LedgerName, &run.LedgerRows, &statsJSON, &resultsJSON, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(err, "postgres: run %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}

	if err := json.Unmarshal(statsJSON, &run.Stats); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal stats")
	}
	if err := json.Unmarshal(resultsJSON, &run.Results); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal results")
	}
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]ReconRun, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, ledger_name, ledger_rows, stats, created_at FROM recon_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []ReconRun
	for rows.Next() {
		var (
			run       ReconRun
			statsJSON []byte
		)
		if err := rows.Scan(&run.ID, &run.LedgerName, &run.LedgerRows, &statsJSON, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(statsJSON, &run.Stats); err != nil {
			run.Stats = model.SummaryStats{}
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
