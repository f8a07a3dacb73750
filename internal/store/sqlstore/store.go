// Package sqlstore implements tracker.Store on database/sql. It runs on
// PostgreSQL (through pgx) and on SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"jobtracker/internal/tracker"
)

//go:embed schema.sql
var schema string

// Store implements tracker.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ tracker.Store = (*Store)(nil)

// New wraps an open database handle.
func New(db *sql.DB, dialect Dialect) (*Store, error) {
	if _, ok := columnTypes[dialect]; !ok {
		return nil, fmt.Errorf("sqlstore: unsupported dialect %q", dialect)
	}
	return &Store{db: db, dialect: dialect}, nil
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	ddl := columnTypes[s.dialect].Replace(schema)
	for _, stmt := range strings.Split(ddl, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) queryRow(ctx context.Context, q queryer, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, q queryer, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) exec(ctx context.Context, q queryer, query string, args ...any) error {
	_, err := q.ExecContext(ctx, s.dialect.rebind(query), args...)
	return err
}

// inTx runs fn in a transaction, rolling back unless fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// exists fails with tracker.ErrNotFound unless table has a row with id.
func (s *Store) exists(ctx context.Context, q queryer, table, kind string, id int64) error {
	var one int
	err := s.queryRow(ctx, q, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(kind, id)
	}
	if err != nil {
		return fmt.Errorf("lookup %s: %w", kind, err)
	}
	return nil
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, tracker.ErrNotFound)
}

// inClause renders "col IN (?, ?, …)" for ids, or "1=1" when empty.
func inClause(col string, ids []int64) (string, []any) {
	if len(ids) == 0 {
		return "1=1", nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return col + " IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}
