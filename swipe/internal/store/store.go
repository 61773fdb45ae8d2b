// Package store provides the data access layer for ideas and their
// engagement records.
//
// Store receives an already-opened *sql.DB (local SQLite or remote libSQL,
// see dbopen) and never opens connections itself. Multi-statement
// operations run on a transaction-bound Store obtained from WithTx.
package store

import (
	"context"
	"database/sql"
)

// querier is the subset of *sql.DB and *sql.Tx used by Store.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps the ideaswipe database.
type Store struct {
	db *sql.DB
	q  querier
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// DB returns the underlying database, for opening transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx returns a Store whose statements run inside tx.
func (s *Store) WithTx(tx *sql.Tx) *Store {
	return &Store{db: s.db, q: tx}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
