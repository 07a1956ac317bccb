// Package sqlstore implements storage.Store on database/sql. The SQLite and
// Postgres backends share this code and differ only in their Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Dialect captures what differs between SQL engines.
type Dialect struct {
	// Name is used in log and error messages.
	Name string

	// Schema is executed statement by statement on startup.
	Schema []string

	// NumberedParams rewrites "?" placeholders to "$1", "$2", ...
	NumberedParams bool

	// AfterSeed runs once after seed rows with explicit ids are inserted,
	// typically to move identity sequences past them.
	AfterSeed []string
}

// Store implements storage.Store using a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New runs the dialect's migrations against db and returns a Store.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{db: db, dialect: dialect}
	if err := s.runMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run %s migrations: %w", dialect.Name, err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) runMigrations(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// bind rewrites placeholders for the dialect.
func (s *Store) bind(query string) string {
	if !s.dialect.NumberedParams {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetAdmin returns the operator credential.
func (s *Store) GetAdmin(ctx context.Context) (*models.Admin, error) {
	admin := &models.Admin{}
	err := s.db.QueryRowContext(ctx,
		"SELECT username, password_hash FROM admins LIMIT 1",
	).Scan(&admin.Username, &admin.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("admin: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}

// versionedUpdate runs an UPDATE whose SET clause bumps version and whose
// WHERE clause is "id = ?". A nonzero want adds "AND version = ?" so the
// check and the write are one statement. It returns the new version.
func (s *Store) versionedUpdate(ctx context.Context, q queryer, table, stmt string, id, want int64, args ...any) (int64, error) {
	args = append(args, id)
	if want != 0 {
		stmt += " AND version = ?"
		args = append(args, want)
	}

	var next int64
	err := q.QueryRowContext(ctx, s.bind(stmt+" RETURNING version"), args...).Scan(&next)
	if err == nil {
		return next, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	var current int64
	err = q.QueryRowContext(ctx, s.bind("SELECT version FROM "+table+" WHERE id = ?"), id).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("at version %d, got %d: %w", current, want, storage.ErrVersionConflict)
}
