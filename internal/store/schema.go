package store

import (
	"context"
	"fmt"
)

// schemaStatements create the tables the back office needs. Statements are
// idempotent so EnsureSchema can run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS breeders (
		id   SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS varieties (
		id   SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id   SERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ship_locations (
		id   SERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS configuration (
		id                 INT PRIMARY KEY,
		exchange_rate      DOUBLE PRECISION NOT NULL,
		default_commission DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS import_batches (
		id           UUID PRIMARY KEY,
		record_count INT NOT NULL,
		failed_count INT NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS koi_records (
		id              BIGSERIAL PRIMARY KEY,
		picture_id      TEXT NOT NULL,
		variety_id      INT NOT NULL REFERENCES varieties(id),
		sex             TEXT NOT NULL,
		age             INT NOT NULL,
		size_cm         TEXT NOT NULL,
		breeder_id      INT NOT NULL REFERENCES breeders(id),
		piece_count     INT NOT NULL,
		cost_jpy        DOUBLE PRECISION NOT NULL,
		customer_id     INT REFERENCES customers(id),
		ship_to_id      INT REFERENCES ship_locations(id),
		sale_price_jpy  DOUBLE PRECISION,
		sale_price_usd  DOUBLE PRECISION,
		commission_rate DOUBLE PRECISION NOT NULL,
		exchange_rate   DOUBLE PRECISION NOT NULL,
		batch_id        UUID NOT NULL REFERENCES import_batches(id),
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS koi_records_batch_idx ON koi_records (batch_id)`,
	`CREATE INDEX IF NOT EXISTS koi_records_picture_idx ON koi_records (picture_id)`,
}

// EnsureSchema creates any missing tables. Safe to run on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
