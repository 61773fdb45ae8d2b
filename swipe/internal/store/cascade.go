package store

import (
	"context"
	"fmt"
)

// cascadeStep deletes the rows of one table that belong to an idea.
type cascadeStep struct {
	table string
	query string
}

// cascadeSteps lists dependents first and the idea itself last.
var cascadeSteps = []cascadeStep{
	{"view_records", `DELETE FROM view_records WHERE idea_id = ?`},
	{"likes", `DELETE FROM likes WHERE idea_id = ?`},
	{"comments", `DELETE FROM comments WHERE idea_id = ?`},
	{"ideas", `DELETE FROM ideas WHERE id = ?`},
}

// CascadeResult counts the rows removed per table.
type CascadeResult map[string]int64

// DeleteIdeaCascade removes an idea and all its dependents, step by step.
// Run it on a transaction-bound Store: a failing step leaves earlier deletes
// to the caller's rollback.
func (s *Store) DeleteIdeaCascade(ctx context.Context, id string) (CascadeResult, error) {
	result := make(CascadeResult, len(cascadeSteps))
	for _, step := range cascadeSteps {
		res, err := s.q.ExecContext(ctx, step.query, id)
		if err != nil {
			return nil, fmt.Errorf("cascade %s: %w", step.table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("cascade %s: %w", step.table, err)
		}
		result[step.table] = n
	}
	return result, nil
}
