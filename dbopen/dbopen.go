// Package dbopen opens the ideaswipe datastore.
//
// A plain path (or ":memory:") opens a local SQLite file through the
// "sqlite" driver. The pragmas travel in the DSN as _pragma parameters, so
// every pooled connection gets them, not only the first:
//
//	foreign_keys = 1
//	busy_timeout = 10000
//	journal_mode = WAL
//	synchronous  = NORMAL
//
// A libsql://, https:// or http:// URL opens a remote libSQL database
// through the "libsql" driver; pragmas are left to the server.
//
// The caller blank-imports the drivers it needs:
//
//	import _ "modernc.org/sqlite"
//	import _ "github.com/tursodatabase/libsql-client-go/libsql"
//
// In tests:
//
//	db := dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))
package dbopen

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	driverSQLite = "sqlite"
	driverLibSQL = "libsql"
)

type config struct {
	authToken    string
	busyTimeout  int
	mkdirAll     bool
	maxOpenConns int
	schemas      []string
}

func defaults() config {
	return config{busyTimeout: 10_000}
}

// Option customises Open behaviour.
type Option func(*config)

// WithAuthToken sets the libSQL auth token (ignored for local files).
func WithAuthToken(token string) Option { return func(c *config) { c.authToken = token } }

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithMkdirAll creates parent directories of a local database path.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// WithMaxOpenConns caps the pool before any statement runs.
func WithMaxOpenConns(n int) Option { return func(c *config) { c.maxOpenConns = n } }

// WithSchema queues SQL to execute once the database is open.
func WithSchema(s string) Option { return func(c *config) { c.schemas = append(c.schemas, s) } }

// IsRemote reports whether dsn targets a libSQL server.
func IsRemote(dsn string) bool {
	for _, p := range []string{"libsql://", "https://", "http://"} {
		if strings.HasPrefix(dsn, p) {
			return true
		}
	}
	return false
}

// Open opens the datastore at dsn.
func Open(dsn string, opts ...Option) (*sql.DB, error) {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}
	driver := driverSQLite
	if IsRemote(dsn) {
		driver = driverLibSQL
		withToken, err := remoteDSN(dsn, cfg.authToken)
		if err != nil {
			return nil, err
		}
		dsn = withToken
	} else {
		if cfg.mkdirAll && dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("dbopen: mkdir: %w", err)
			}
		}
		dsn = localDSN(dsn, &cfg)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("dbopen: open: %w", err)
	}
	if cfg.maxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.maxOpenConns)
	}

	for _, s := range cfg.schemas {
		if _, err := db.Exec(s); err != nil {
			db.Close()
			return nil, fmt.Errorf("dbopen: exec schema: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbopen: ping: %w", err)
	}

	return db, nil
}

// OpenMemory opens an in-memory SQLite database for testing. The pool is
// capped at one connection because every ":memory:" connection is a separate
// database. The database is closed through t.Cleanup.
func OpenMemory(t testing.TB, opts ...Option) *sql.DB {
	t.Helper()
	opts = append([]Option{WithMaxOpenConns(1)}, opts...)
	db, err := Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("dbopen.OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func remoteDSN(dsn, token string) (string, error) {
	if token == "" {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("dbopen: parse url: %w", err)
	}
	q := u.Query()
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// localDSN appends the connection pragmas understood by modernc.org/sqlite.
func localDSN(path string, cfg *config) string {
	q := url.Values{}
	for _, p := range []string{
		"foreign_keys(1)",
		fmt.Sprintf("busy_timeout(%d)", cfg.busyTimeout),
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
	} {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}
