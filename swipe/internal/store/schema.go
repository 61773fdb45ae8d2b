package store

import "database/sql"

// Schema is the complete ideaswipe schema. Dependents reference ideas
// without ON DELETE CASCADE: DeleteIdeaCascade removes them explicitly.
const Schema = `
CREATE TABLE IF NOT EXISTS ideas (
    id                     TEXT PRIMARY KEY,
    author_email           TEXT NOT NULL,
    title                  TEXT NOT NULL,
    description            TEXT NOT NULL,
    market_size            TEXT,
    market_potential       TEXT,
    technical_requirements TEXT NOT NULL DEFAULT '[]',
    financial_requirement  TEXT,
    timeline               TEXT,
    category               TEXT,
    challenges             TEXT NOT NULL DEFAULT '[]',
    likes                  INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
    passes                 INTEGER NOT NULL DEFAULT 0 CHECK (passes >= 0),
    shares                 INTEGER NOT NULL DEFAULT 0 CHECK (shares >= 0),
    created_at             INTEGER NOT NULL,
    updated_at             INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ideas_created ON ideas(created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_ideas_author ON ideas(author_email, created_at DESC);

-- Append-only swipe log; the feed's seen set.
CREATE TABLE IF NOT EXISTS view_records (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    idea_id    TEXT NOT NULL REFERENCES ideas(id),
    user_email TEXT NOT NULL,
    action     TEXT NOT NULL CHECK (action IN ('left', 'right')),
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_view_records_user ON view_records(user_email);
CREATE INDEX IF NOT EXISTS idx_view_records_idea ON view_records(idea_id);

-- At most one like per user and idea.
CREATE TABLE IF NOT EXISTS likes (
    idea_id    TEXT NOT NULL REFERENCES ideas(id),
    user_email TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (idea_id, user_email)
);

CREATE TABLE IF NOT EXISTS comments (
    id         TEXT PRIMARY KEY,
    idea_id    TEXT NOT NULL REFERENCES ideas(id),
    user_email TEXT NOT NULL,
    content    TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_idea ON comments(idea_id, created_at DESC);
`

// ApplySchema creates the tables if they don't exist.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
