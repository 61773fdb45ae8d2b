package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Counter names one of the denormalized engagement counters.
type Counter string

const (
	CounterLikes  Counter = "likes"
	CounterPasses Counter = "passes"
	CounterShares Counter = "shares"
)

// incrementSQL whitelists the counter columns; the column name never comes
// from the caller.
var incrementSQL = map[Counter]string{
	CounterLikes:  `UPDATE ideas SET likes = likes + 1 WHERE id = ?`,
	CounterPasses: `UPDATE ideas SET passes = passes + 1 WHERE id = ?`,
	CounterShares: `UPDATE ideas SET shares = shares + 1 WHERE id = ?`,
}

// ErrUnknownCounter is returned by Increment for a counter outside the
// whitelist.
var ErrUnknownCounter = errors.New("store: unknown counter")

// Increment atomically adds one to counter on idea id. Returns false when
// no idea matched.
func (s *Store) Increment(ctx context.Context, id string, counter Counter) (bool, error) {
	q, ok := incrementSQL[counter]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCounter, counter)
	}
	res, err := s.q.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetMetrics reads the counters of idea id. Returns sql.ErrNoRows when the
// idea does not exist.
func (s *Store) GetMetrics(ctx context.Context, id string) (Metrics, error) {
	var m Metrics
	err := s.q.QueryRowContext(ctx,
		`SELECT likes, passes, shares FROM ideas WHERE id = ?`, id).
		Scan(&m.Likes, &m.Passes, &m.Shares)
	return m, err
}

// InsertView appends a view record.
func (s *Store) InsertView(ctx context.Context, v *ViewRecord) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO view_records (idea_id, user_email, action, created_at) VALUES (?, ?, ?, ?)`,
		v.IdeaID, v.UserEmail, v.Action, v.CreatedAt)
	return err
}

// InsertLikeIfAbsent records a like unless the user already liked the idea.
// Reports whether a row was inserted.
func (s *Store) InsertLikeIfAbsent(ctx context.Context, l *Like) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO likes (idea_id, user_email, created_at) VALUES (?, ?, ?)
		ON CONFLICT (idea_id, user_email) DO NOTHING`,
		l.IdeaID, l.UserEmail, l.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// HasLiked reports whether email liked idea id.
func (s *Store) HasLiked(ctx context.Context, id, email string) (bool, error) {
	var one int
	err := s.q.QueryRowContext(ctx,
		`SELECT 1 FROM likes WHERE idea_id = ? AND user_email = ?`, id, email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// CountLikes returns the number of like rows of idea id.
func (s *Store) CountLikes(ctx context.Context, id string) (int64, error) {
	var n int64
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE idea_id = ?`, id).Scan(&n)
	return n, err
}

// ListViews returns the view records of email, oldest first.
func (s *Store) ListViews(ctx context.Context, email string) ([]*ViewRecord, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT idea_id, user_email, action, created_at FROM view_records
		WHERE user_email = ? ORDER BY id`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*ViewRecord
	for rows.Next() {
		var v ViewRecord
		if err := rows.Scan(&v.IdeaID, &v.UserEmail, &v.Action, &v.CreatedAt); err != nil {
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}

// SeenIdeaIDs returns the set of idea IDs email has a view record for.
func (s *Store) SeenIdeaIDs(ctx context.Context, email string) (map[string]bool, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT DISTINCT idea_id FROM view_records WHERE user_email = ?`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seen[id] = true
	}
	return seen, rows.Err()
}
