// Package postgres provides a Postgres-backed implementation of the
// storage.Store interface using pgx as the database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/mmynk/wasteline/internal/storage"
	"github.com/mmynk/wasteline/internal/storage/sqlstore"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

const driverName = "pgx"

// PostgresStore implements storage.Store using Postgres.
type PostgresStore struct {
	*sqlstore.Store
}

// New opens dsn, verifies the connection and runs migrations.
func New(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: DATABASE_URL is required")
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{Store: store}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS households (
    id BIGINT GENERATED BY DEFAULT AS IDENTITY (START WITH 1001) PRIMARY KEY,
    name TEXT NOT NULL,
    address TEXT NOT NULL,
    phone TEXT NOT NULL,
    last_collection_at BIGINT NOT NULL,
    status TEXT NOT NULL,
    assigned_route TEXT NOT NULL,
    version BIGINT NOT NULL DEFAULT 1
)`,
	`CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    household_id BIGINT NOT NULL REFERENCES households(id),
    position INTEGER NOT NULL,
    paid_at BIGINT NOT NULL,
    amount DOUBLE PRECISION NOT NULL,
    month TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS drivers (
    id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL,
    salary DOUBLE PRECISION NOT NULL,
    assigned_route TEXT NOT NULL,
    vehicle_details TEXT NOT NULL DEFAULT '',
    version BIGINT NOT NULL DEFAULT 1
)`,
	`CREATE TABLE IF NOT EXISTS helpers (
    id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL,
    salary DOUBLE PRECISION NOT NULL,
    assigned_route TEXT NOT NULL,
    vehicle_details TEXT NOT NULL DEFAULT '',
    version BIGINT NOT NULL DEFAULT 1
)`,
	`CREATE TABLE IF NOT EXISTS admins (
    username TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_households_phone ON households(phone)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_household_id ON payments(household_id)`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_phone ON drivers(phone)`,
	`CREATE INDEX IF NOT EXISTS idx_helpers_phone ON helpers(phone)`,
}

// Seed rows carry explicit ids, so identity sequences are moved past them.
var afterSeed = []string{
	`SELECT setval(pg_get_serial_sequence('households', 'id'), COALESCE(MAX(id), 1001), MAX(id) IS NOT NULL) FROM households`,
	`SELECT setval(pg_get_serial_sequence('drivers', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM drivers`,
	`SELECT setval(pg_get_serial_sequence('helpers', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM helpers`,
}

// Dialect is the Postgres flavour of the shared SQL store.
var Dialect = sqlstore.Dialect{
	Name:           "postgres",
	Schema:         schema,
	NumberedParams: true,
	AfterSeed:      afterSeed,
}
