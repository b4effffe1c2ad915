// Package store is the Postgres persistence layer: reference catalogs, the
// configuration record, committed koi records and the import batch history.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koitrade/backoffice/internal/importer"
)

// Store wraps a pgx connection pool with the queries the back office needs.
// It satisfies importer.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over an established pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool for lifecycle management (Close).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) listRefEntities(ctx context.Context, query string) ([]importer.RefEntity, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []importer.RefEntity{}
	for rows.Next() {
		var e importer.RefEntity
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListBreeders returns the breeder catalog in id order.
func (s *Store) ListBreeders(ctx context.Context) ([]importer.RefEntity, error) {
	return s.listRefEntities(ctx, `SELECT id, name FROM breeders ORDER BY id`)
}

// ListVarieties returns the variety catalog in id order. Catalog order is
// load-bearing: substring matching in the importer takes the first hit.
func (s *Store) ListVarieties(ctx context.Context) ([]importer.RefEntity, error) {
	return s.listRefEntities(ctx, `SELECT id, name FROM varieties ORDER BY id`)
}

// ListCustomers returns the customer catalog in id order.
func (s *Store) ListCustomers(ctx context.Context) ([]importer.RefEntity, error) {
	return s.listRefEntities(ctx, `SELECT id, name FROM customers ORDER BY id`)
}

// ListShipLocations returns the shipping location catalog in id order.
func (s *Store) ListShipLocations(ctx context.Context) ([]importer.RefEntity, error) {
	return s.listRefEntities(ctx, `SELECT id, name FROM ship_locations ORDER BY id`)
}

// GetConfiguration returns the single settings record. ok is false when none
// exists yet; callers substitute defaults.
func (s *Store) GetConfiguration(ctx context.Context) (importer.Configuration, bool, error) {
	var cfg importer.Configuration
	err := s.pool.QueryRow(ctx,
		`SELECT exchange_rate, default_commission FROM configuration ORDER BY id LIMIT 1`,
	).Scan(&cfg.ExchangeRate, &cfg.DefaultCommission)
	if errors.Is(err, pgx.ErrNoRows) {
		return importer.Configuration{}, false, nil
	}
	if err != nil {
		return importer.Configuration{}, false, err
	}
	return cfg, true, nil
}

// SaveConfiguration upserts the single settings record.
func (s *Store) SaveConfiguration(ctx context.Context, cfg importer.Configuration) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO configuration (id, exchange_rate, default_commission)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE
		SET exchange_rate = EXCLUDED.exchange_rate,
		    default_commission = EXCLUDED.default_commission`,
		cfg.ExchangeRate, cfg.DefaultCommission,
	)
	return err
}

// CreateCustomer inserts a customer and returns its id.
func (s *Store) CreateCustomer(ctx context.Context, name string) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO customers (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create customer %q: %w", name, err)
	}
	return id, nil
}

// CreateShipLocation inserts a shipping location and returns its id.
func (s *Store) CreateShipLocation(ctx context.Context, name string) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO ship_locations (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create ship location %q: %w", name, err)
	}
	return id, nil
}

// CreateBreeder inserts a breeder and returns its id. Used by the admin
// endpoints, never by the importer: breeders are hard references.
func (s *Store) CreateBreeder(ctx context.Context, name string) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO breeders (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create breeder %q: %w", name, err)
	}
	return id, nil
}

// CreateVariety inserts a variety and returns its id.
func (s *Store) CreateVariety(ctx context.Context, name string) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO varieties (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create variety %q: %w", name, err)
	}
	return id, nil
}

// CommitResult summarizes a committed import batch.
type CommitResult struct {
	BatchID  uuid.UUID `json:"batchId"`
	Inserted int       `json:"inserted"`
}

// ImportBatch is one entry of the import history.
type ImportBatch struct {
	ID          uuid.UUID `json:"id"`
	RecordCount int       `json:"recordCount"`
	FailedCount int       `json:"failedCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

var koiRecordColumns = []string{
	"picture_id", "variety_id", "sex", "age", "size_cm", "breeder_id",
	"piece_count", "cost_jpy", "customer_id", "ship_to_id",
	"sale_price_jpy", "sale_price_usd", "commission_rate", "exchange_rate",
	"batch_id", "created_at",
}

// InsertKoiRecords writes a mapped batch in one transaction: the records via
// COPY plus one import history row. failedCount is recorded for the history
// view; the failed rows themselves are returned to the client, not stored.
//
// All-or-nothing: a single conflicting record rolls back the whole batch.
func (s *Store) InsertKoiRecords(ctx context.Context, records []importer.CanonicalRecord, failedCount int) (*CommitResult, error) {
	batchID := uuid.New()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin commit transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The history row goes in first: koi_records carries a foreign key to it.
	_, err = tx.Exec(ctx,
		`INSERT INTO import_batches (id, record_count, failed_count) VALUES ($1, $2, $3)`,
		batchID, len(records), failedCount,
	)
	if err != nil {
		return nil, fmt.Errorf("record import batch: %w", err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"koi_records"},
		koiRecordColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{
				r.PictureID, r.VarietyID, r.Sex, r.Age, r.SizeCm, r.BreederID,
				r.PieceCount, r.CostJpy, r.CustomerID, r.ShipToID,
				r.SalePriceJpy, r.SalePriceUsd, r.CommissionRate, r.ExchangeRate,
				batchID, r.CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("copy koi records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit import batch: %w", err)
	}

	return &CommitResult{BatchID: batchID, Inserted: int(copied)}, nil
}

// ListImportBatches returns the most recent import batches, newest first.
func (s *Store) ListImportBatches(ctx context.Context, limit int) ([]ImportBatch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, record_count, failed_count, created_at
		FROM import_batches
		ORDER BY created_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ImportBatch{}
	for rows.Next() {
		var b ImportBatch
		if err := rows.Scan(&b.ID, &b.RecordCount, &b.FailedCount, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
