package swipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hazyhaar/ideaswipe/dbopen"
	"github.com/hazyhaar/ideaswipe/observability"
	"github.com/hazyhaar/ideaswipe/swipe/internal/store"
)

// CreateIdea stores a new idea written by authorEmail. Metrics start at zero.
func (s *Service) CreateIdea(ctx context.Context, in IdeaInput, authorEmail string) (*Idea, error) {
	if err := requireEmail(authorEmail); err != nil {
		return nil, err
	}
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	now := s.nowMilli()
	idea := &Idea{
		ID:                    s.newID(),
		AuthorEmail:           authorEmail,
		Title:                 in.Title,
		Description:           in.Description,
		MarketSize:            in.MarketSize,
		MarketPotential:       in.MarketPotential,
		TechnicalRequirements: in.TechnicalRequirements,
		FinancialRequirement:  in.FinancialRequirement,
		Timeline:              in.Timeline,
		Category:              in.Category,
		Challenges:            in.Challenges,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.InsertIdea(ctx, idea); err != nil {
		return nil, storeErr("create idea", err)
	}

	s.logger.Info("swipe: idea created", "idea_id", idea.ID, "author", authorEmail)
	s.emit(ctx, observability.BusinessEvent{
		EventType:  observability.EventIdeaCreated,
		EntityType: "idea",
		EntityID:   idea.ID,
		UserEmail:  authorEmail,
		Action:     "create",
		Success:    true,
	})
	return idea, nil
}

// GetIdea returns the idea with the given ID.
func (s *Service) GetIdea(ctx context.Context, id string) (*Idea, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.getIdea(ctx, s.store, id)
}

func (s *Service) getIdea(ctx context.Context, st *store.Store, id string) (*Idea, error) {
	idea, err := st.GetIdea(ctx, id)
	if err != nil {
		return nil, storeErr("get idea", err)
	}
	if idea == nil {
		return nil, fmt.Errorf("%w: idea %s", ErrNotFound, id)
	}
	return idea, nil
}

// UpdateIdea applies patch to an idea owned by actingEmail and returns the
// updated idea.
func (s *Service) UpdateIdea(ctx context.Context, id string, patch IdeaPatch, actingEmail string) (*Idea, error) {
	if err := requireEmail(actingEmail); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated *Idea
	err := dbopen.RunTx(ctx, s.store.DB(), func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		idea, err := s.getIdea(ctx, st, id)
		if err != nil {
			return err
		}
		if err := authorizeOwner(idea, actingEmail); err != nil {
			return err
		}
		if err := applyPatch(idea, patch); err != nil {
			return err
		}
		idea.UpdatedAt = s.nowMilli()
		if err := st.UpdateIdea(ctx, idea); err != nil {
			return err
		}
		updated = idea
		return nil
	})
	if err != nil {
		return nil, storeErr("update idea", err)
	}

	s.logger.Info("swipe: idea updated", "idea_id", id, "author", actingEmail)
	s.emit(ctx, observability.BusinessEvent{
		EventType:  observability.EventIdeaUpdated,
		EntityType: "idea",
		EntityID:   id,
		UserEmail:  actingEmail,
		Action:     "update",
		Success:    true,
	})
	return updated, nil
}

// DeleteIdea removes an idea owned by actingEmail together with its view
// records, likes and comments, in one transaction.
func (s *Service) DeleteIdea(ctx context.Context, id, actingEmail string) (DeleteResult, error) {
	if err := requireEmail(actingEmail); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var removed DeleteResult
	err := dbopen.RunTx(ctx, s.store.DB(), func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		idea, err := s.getIdea(ctx, st, id)
		if err != nil {
			return err
		}
		if err := authorizeOwner(idea, actingEmail); err != nil {
			return err
		}
		removed, err = st.DeleteIdeaCascade(ctx, id)
		return err
	})
	if err != nil {
		err = storeErr("delete idea", err)
		s.logger.Warn("swipe: idea delete failed", "idea_id", id, "error", err)
		return nil, err
	}

	details, _ := json.Marshal(removed)
	s.logger.Info("swipe: idea deleted", "idea_id", id, "author", actingEmail, "removed", removed)
	s.emit(ctx, observability.BusinessEvent{
		EventType:  observability.EventIdeaDeleted,
		EntityType: "idea",
		EntityID:   id,
		UserEmail:  actingEmail,
		Action:     "delete",
		Details:    string(details),
		Success:    true,
	})
	return removed, nil
}

// ListExcludingAuthor returns every idea not written by email, newest first.
func (s *Service) ListExcludingAuthor(ctx context.Context, email string) ([]*Idea, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ideas, err := s.store.ListIdeasExcludingAuthor(ctx, email)
	if err != nil {
		return nil, storeErr("list ideas", err)
	}
	return ideas, nil
}

// ListByAuthor returns the ideas written by email, newest first, each with
// its comments newest first.
func (s *Service) ListByAuthor(ctx context.Context, email string) ([]*IdeaWithComments, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ideas, err := s.store.ListIdeasByAuthor(ctx, email)
	if err != nil {
		return nil, storeErr("list ideas by author", err)
	}
	comments, err := s.store.ListCommentsOnAuthor(ctx, email)
	if err != nil {
		return nil, storeErr("list comments by author", err)
	}

	byIdea := make(map[string][]*Comment, len(ideas))
	for _, c := range comments {
		byIdea[c.IdeaID] = append(byIdea[c.IdeaID], c)
	}
	out := make([]*IdeaWithComments, 0, len(ideas))
	for _, idea := range ideas {
		cs := byIdea[idea.ID]
		if cs == nil {
			cs = []*Comment{}
		}
		out = append(out, &IdeaWithComments{Idea: idea, Comments: cs})
	}
	return out, nil
}
