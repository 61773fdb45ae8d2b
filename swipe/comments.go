package swipe

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hazyhaar/ideaswipe/dbopen"
	"github.com/hazyhaar/ideaswipe/observability"
)

// CreateComment adds a comment by email on idea ideaID.
func (s *Service) CreateComment(ctx context.Context, ideaID, email, content string) (*Comment, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	content, err := validateComment(content, s.config.MaxCommentBytes)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c := &Comment{
		ID:        s.newID(),
		IdeaID:    ideaID,
		UserEmail: email,
		Content:   content,
		CreatedAt: s.nowMilli(),
	}
	err = dbopen.RunTx(ctx, s.store.DB(), func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		if err := ensureIdea(ctx, st, ideaID); err != nil {
			return err
		}
		return st.InsertComment(ctx, c)
	})
	if err != nil {
		return nil, storeErr("create comment", err)
	}

	details, _ := json.Marshal(map[string]string{"idea_id": ideaID})
	s.emit(ctx, observability.BusinessEvent{
		EventType:  observability.EventCommentCreated,
		EntityType: "comment",
		EntityID:   c.ID,
		UserEmail:  email,
		Action:     "comment",
		Details:    string(details),
		Success:    true,
	})
	return c, nil
}

// ListComments returns the comments of an idea, newest first. An unknown
// idea has no comments.
func (s *Service) ListComments(ctx context.Context, ideaID string) ([]*Comment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	comments, err := s.store.ListComments(ctx, ideaID)
	if err != nil {
		return nil, storeErr("list comments", err)
	}
	return comments, nil
}
