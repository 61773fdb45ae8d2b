package shield

import "database/sql"

// Schema defines the rate_limits table read by RateLimiter, seeded with the
// limits of the write-heavy engagement endpoints. Endpoints are matched on
// the chi route pattern ("POST /api/ideas/{id}/swipe"). Idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS rate_limits (
    endpoint       TEXT PRIMARY KEY,
    max_requests   INTEGER NOT NULL DEFAULT 60,
    window_seconds INTEGER NOT NULL DEFAULT 60,
    enabled        INTEGER NOT NULL DEFAULT 1
);

INSERT OR IGNORE INTO rate_limits (endpoint, max_requests, window_seconds) VALUES
    ('POST /api/ideas/{id}/swipe', 120, 60),
    ('POST /api/ideas/{id}/share', 30, 60),
    ('POST /api/comments', 20, 60),
    ('POST /api/ideas', 10, 60);
`

// Init creates the shield tables if they don't exist.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
