package sqlite

import "github.com/mmynk/wasteline/internal/storage/sqlstore"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// AUTOINCREMENT keeps ids from being reused after the highest row changes.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS households (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    address TEXT NOT NULL,
    phone TEXT NOT NULL,
    last_collection_at INTEGER NOT NULL,
    status TEXT NOT NULL,
    assigned_route TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 1
)`,
	`CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    household_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    paid_at INTEGER NOT NULL,
    amount REAL NOT NULL,
    month TEXT NOT NULL,
    FOREIGN KEY (household_id) REFERENCES households(id)
)`,
	`CREATE TABLE IF NOT EXISTS drivers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    phone TEXT NOT NULL,
    salary REAL NOT NULL,
    assigned_route TEXT NOT NULL,
    vehicle_details TEXT NOT NULL DEFAULT '',
    version INTEGER NOT NULL DEFAULT 1
)`,
	`CREATE TABLE IF NOT EXISTS helpers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    phone TEXT NOT NULL,
    salary REAL NOT NULL,
    assigned_route TEXT NOT NULL,
    vehicle_details TEXT NOT NULL DEFAULT '',
    version INTEGER NOT NULL DEFAULT 1
)`,
	`CREATE TABLE IF NOT EXISTS admins (
    username TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL
)`,
	// Household ids start at 1001 on an empty database.
	`INSERT INTO sqlite_sequence (name, seq)
    SELECT 'households', 1000
    WHERE NOT EXISTS (SELECT 1 FROM sqlite_sequence WHERE name = 'households')`,
	`CREATE INDEX IF NOT EXISTS idx_households_phone ON households(phone)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_household_id ON payments(household_id)`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_phone ON drivers(phone)`,
	`CREATE INDEX IF NOT EXISTS idx_helpers_phone ON helpers(phone)`,
}

// Dialect is the SQLite flavour of the shared SQL store.
var Dialect = sqlstore.Dialect{
	Name:   "sqlite",
	Schema: schema,
}
