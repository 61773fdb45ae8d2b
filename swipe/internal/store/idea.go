package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const ideaColumns = `id, author_email, title, description, market_size, market_potential,
	technical_requirements, financial_requirement, timeline, category, challenges,
	likes, passes, shares, created_at, updated_at`

// InsertIdea adds a new idea. Nil list fields are stored as empty lists.
func (s *Store) InsertIdea(ctx context.Context, idea *Idea) error {
	if idea.TechnicalRequirements == nil {
		idea.TechnicalRequirements = []string{}
	}
	if idea.Challenges == nil {
		idea.Challenges = []string{}
	}
	reqs, err := json.Marshal(idea.TechnicalRequirements)
	if err != nil {
		return fmt.Errorf("encode technical_requirements: %w", err)
	}
	challenges, err := json.Marshal(idea.Challenges)
	if err != nil {
		return fmt.Errorf("encode challenges: %w", err)
	}

	_, err = s.q.ExecContext(ctx,
		`INSERT INTO ideas (`+ideaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idea.ID, idea.AuthorEmail, idea.Title, idea.Description,
		nullString(idea.MarketSize), nullString(idea.MarketPotential), string(reqs),
		nullString(idea.FinancialRequirement), nullString(idea.Timeline), nullString(idea.Category),
		string(challenges), idea.Metrics.Likes, idea.Metrics.Passes, idea.Metrics.Shares,
		idea.CreatedAt, idea.UpdatedAt,
	)
	return err
}

// GetIdea retrieves an idea by ID. Returns nil, nil when absent.
func (s *Store) GetIdea(ctx context.Context, id string) (*Idea, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id = ?`, id)
	idea, err := scanIdea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return idea, err
}

// IdeaExists reports whether an idea with the given ID exists.
func (s *Store) IdeaExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.q.QueryRowContext(ctx, `SELECT 1 FROM ideas WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// UpdateIdea writes the mutable fields of idea. Identity, authorship,
// creation time and counters are never touched.
func (s *Store) UpdateIdea(ctx context.Context, idea *Idea) error {
	reqs, err := json.Marshal(nonNil(idea.TechnicalRequirements))
	if err != nil {
		return fmt.Errorf("encode technical_requirements: %w", err)
	}
	challenges, err := json.Marshal(nonNil(idea.Challenges))
	if err != nil {
		return fmt.Errorf("encode challenges: %w", err)
	}
	_, err = s.q.ExecContext(ctx,
		`UPDATE ideas SET title=?, description=?, market_size=?, market_potential=?,
		technical_requirements=?, financial_requirement=?, timeline=?, category=?,
		challenges=?, updated_at=?
		WHERE id=?`,
		idea.Title, idea.Description, nullString(idea.MarketSize), nullString(idea.MarketPotential),
		string(reqs), nullString(idea.FinancialRequirement), nullString(idea.Timeline),
		nullString(idea.Category), string(challenges), idea.UpdatedAt, idea.ID,
	)
	return err
}

// ListIdeasExcludingAuthor returns every idea not written by email, newest
// first.
func (s *Store) ListIdeasExcludingAuthor(ctx context.Context, email string) ([]*Idea, error) {
	return s.listIdeas(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE author_email <> ?
		ORDER BY created_at DESC, id DESC`, email)
}

// ListIdeasByAuthor returns the ideas written by email, newest first.
func (s *Store) ListIdeasByAuthor(ctx context.Context, email string) ([]*Idea, error) {
	return s.listIdeas(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE author_email = ?
		ORDER BY created_at DESC, id DESC`, email)
}

func (s *Store) listIdeas(ctx context.Context, query string, args ...any) ([]*Idea, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ideas := []*Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIdea(sc scanner) (*Idea, error) {
	var idea Idea
	var marketSize, marketPotential, financial, timeline, category sql.NullString
	var reqs, challenges string
	err := sc.Scan(&idea.ID, &idea.AuthorEmail, &idea.Title, &idea.Description,
		&marketSize, &marketPotential, &reqs, &financial, &timeline, &category,
		&challenges, &idea.Metrics.Likes, &idea.Metrics.Passes, &idea.Metrics.Shares,
		&idea.CreatedAt, &idea.UpdatedAt)
	if err != nil {
		return nil, err
	}
	idea.MarketSize = stringPtr(marketSize)
	idea.MarketPotential = stringPtr(marketPotential)
	idea.FinancialRequirement = stringPtr(financial)
	idea.Timeline = stringPtr(timeline)
	idea.Category = stringPtr(category)
	if idea.TechnicalRequirements, err = decodeList(reqs); err != nil {
		return nil, fmt.Errorf("idea %s technical_requirements: %w", idea.ID, err)
	}
	if idea.Challenges, err = decodeList(challenges); err != nil {
		return nil, fmt.Errorf("idea %s challenges: %w", idea.ID, err)
	}
	return &idea, nil
}

func decodeList(raw string) ([]string, error) {
	list := []string{}
	if raw == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return nonNil(list), nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
