package dbopen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Busy retries back off from 25ms, doubling up to 400ms. The caller's
// context is the budget: no sleep is started that would outlive its
// deadline, and without a deadline at most maxAttempts are made.
const (
	maxAttempts  = 5
	firstBackoff = 25 * time.Millisecond
	maxBackoff   = 400 * time.Millisecond
)

// IsBusy reports whether err indicates an SQLite BUSY condition.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// RunTx executes fn inside a transaction and retries the whole transaction
// while the database reports BUSY. Errors from fn other than BUSY are
// returned unwrapped. fn must use tx for every statement: a pool capped at
// one connection would otherwise block.
func RunTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	return retryBusy(ctx, "tx", func() error {
		return runOnce(ctx, db, fn)
	})
}

// Exec executes a single statement under the same retry policy as RunTx.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retryBusy(ctx, "exec", func() error {
		r, err := db.ExecContext(ctx, query, args...)
		res = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func runOnce(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dbopen: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dbopen: commit: %w", err)
	}
	return nil
}

func retryBusy(ctx context.Context, op string, fn func() error) error {
	backoff := firstBackoff
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsBusy(err) {
			return err
		}
		if attempt == maxAttempts || !fitsDeadline(ctx, backoff) {
			return fmt.Errorf("dbopen: %s still busy after %d attempts: %w", op, attempt, err)
		}
		if err := sleepCtx(ctx, backoff); err != nil {
			return fmt.Errorf("dbopen: %s retry: %w", op, err)
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func fitsDeadline(ctx context.Context, d time.Duration) bool {
	deadline, ok := ctx.Deadline()
	return !ok || time.Until(deadline) > d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
