package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snaik/crypto-tracker/internal/model"
)

const createLatestAssets = `
CREATE TABLE IF NOT EXISTS latest_assets (
	rank           INT PRIMARY KEY,
	asset_id       TEXT NOT NULL,
	symbol         TEXT NOT NULL,
	name           TEXT NOT NULL,
	price          DOUBLE PRECISION NOT NULL,
	market_cap     DOUBLE PRECISION NOT NULL,
	volume_24h     DOUBLE PRECISION NOT NULL,
	change_24h_pct DOUBLE PRECISION NOT NULL,
	cycle_id       UUID NOT NULL,
	fetched_at     TIMESTAMPTZ NOT NULL
)`

const insertLatestAsset = `
INSERT INTO latest_assets (rank, asset_id, symbol, name, price, market_cap, volume_24h, change_24h_pct, cycle_id, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Postgres mirrors the latest batch into a single table. Each cycle
// truncates and reinserts inside one transaction, so readers see
// either the previous snapshot or the new one, never a mix.
type Postgres struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres creates the Postgres sink.
func NewPostgres(db *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{db: db, logger: logger}
}

func (p *Postgres) Name() string { return "postgres" }

// EnsureSchema creates the latest_assets table if missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createLatestAssets); err != nil {
		return fmt.Errorf("ensure latest_assets: %w", err)
	}
	return nil
}

// Publish replaces the table contents with the batch.
func (p *Postgres) Publish(ctx context.Context, batch model.Batch) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return &PublishError{Sink: p.Name(), Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE latest_assets"); err != nil {
		return &PublishError{Sink: p.Name(), Err: fmt.Errorf("truncate: %w", err)}
	}

	b := &pgx.Batch{}
	for _, args := range insertArgs(batch) {
		b.Queue(insertLatestAsset, args...)
	}

	results := tx.SendBatch(ctx, b)
	for range batch.Assets {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return &PublishError{Sink: p.Name(), Err: fmt.Errorf("insert: %w", err)}
		}
	}
	if err := results.Close(); err != nil {
		return &PublishError{Sink: p.Name(), Err: fmt.Errorf("close batch: %w", err)}
	}

	if err := tx.Commit(ctx); err != nil {
		return &PublishError{Sink: p.Name(), Err: fmt.Errorf("commit: %w", err)}
	}

	p.logger.Debug("postgres snapshot replaced",
		"rows", len(batch.Assets),
		"cycle_id", batch.CycleID,
	)
	return nil
}

// insertArgs builds the insert argument rows for a batch.
func insertArgs(batch model.Batch) [][]any {
	rows := make([][]any, 0, len(batch.Assets))
	for _, a := range batch.Assets {
		rows = append(rows, []any{
			a.Rank, a.ID, a.Symbol, a.Name,
			a.Price, a.MarketCap, a.Volume24h, a.Change24hPct,
			batch.CycleID, batch.FetchedAt,
		})
	}
	return rows
}
