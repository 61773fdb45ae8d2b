package store

import "context"

// InsertComment adds a comment.
func (s *Store) InsertComment(ctx context.Context, c *Comment) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO comments (id, idea_id, user_email, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.IdeaID, c.UserEmail, c.Content, c.CreatedAt)
	return err
}

// ListComments returns the comments of idea id, newest first.
func (s *Store) ListComments(ctx context.Context, ideaID string) ([]*Comment, error) {
	return s.listComments(ctx,
		`SELECT id, idea_id, user_email, content, created_at FROM comments
		WHERE idea_id = ? ORDER BY created_at DESC, id DESC`, ideaID)
}

// ListCommentsOnAuthor returns the comments on every idea written by email,
// newest first.
func (s *Store) ListCommentsOnAuthor(ctx context.Context, email string) ([]*Comment, error) {
	return s.listComments(ctx,
		`SELECT c.id, c.idea_id, c.user_email, c.content, c.created_at
		FROM comments c JOIN ideas i ON i.id = c.idea_id
		WHERE i.author_email = ? ORDER BY c.created_at DESC, c.id DESC`, email)
}

func (s *Store) listComments(ctx context.Context, query string, args ...any) ([]*Comment, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.IdeaID, &c.UserEmail, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
