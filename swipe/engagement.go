package swipe

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hazyhaar/ideaswipe/dbopen"
	"github.com/hazyhaar/ideaswipe/observability"
	"github.com/hazyhaar/ideaswipe/swipe/internal/store"
)

// RecordView appends a view record without touching the counters.
func (s *Service) RecordView(ctx context.Context, ideaID, email, action string) error {
	if err := requireEmail(email); err != nil {
		return err
	}
	if err := validateAction(action); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := dbopen.RunTx(ctx, s.store.DB(), func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		if err := ensureIdea(ctx, st, ideaID); err != nil {
			return err
		}
		return st.InsertView(ctx, &ViewRecord{
			IdeaID:    ideaID,
			UserEmail: email,
			Action:    action,
			CreatedAt: s.nowMilli(),
		})
	})
	return storeErr("record view", err)
}

// RecordSwipe records a swipe: the view record, then a like on "right" or a
// pass on "left". Likes are counted once per user and idea; passes are
// counted on every swipe.
func (s *Service) RecordSwipe(ctx context.Context, ideaID, email, action string) (*SwipeResult, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	if err := validateAction(action); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res *SwipeResult
	err := dbopen.RunTx(ctx, s.store.DB(), func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		if err := ensureIdea(ctx, st, ideaID); err != nil {
			return err
		}
		now := s.nowMilli()
		if err := st.InsertView(ctx, &ViewRecord{IdeaID: ideaID, UserEmail: email, Action: action, CreatedAt: now}); err != nil {
			return err
		}

		r := &SwipeResult{IdeaID: ideaID, Action: action}
		switch action {
		case ActionRight:
			inserted, err := st.InsertLikeIfAbsent(ctx, &Like{IdeaID: ideaID, UserEmail: email, CreatedAt: now})
			if err != nil {
				return err
			}
			if inserted {
				if err := increment(ctx, st, ideaID, store.CounterLikes); err != nil {
					return err
				}
			}
			r.Liked = inserted
			r.Duplicate = !inserted
		case ActionLeft:
			if err := increment(ctx, st, ideaID, store.CounterPasses); err != nil {
				return err
			}
		}

		m, err := st.GetMetrics(ctx, ideaID)
		if err != nil {
			return err
		}
		r.Metrics = m
		res = r
		return nil
	})
	if err != nil {
		return nil, storeErr("record swipe", err)
	}

	s.logger.Debug("swipe: recorded", "idea_id", ideaID, "user", email, "action", action, "liked", res.Liked)
	s.emit(ctx, observability.BusinessEvent{
		EventType:  observability.EventIdeaSwiped,
		EntityType: "idea",
		EntityID:   ideaID,
		UserEmail:  email,
		Action:     action,
		Success:    true,
	})
	return res, nil
}

// RecordShare counts a share of an idea and returns its public link. Shares
// are not deduplicated.
func (s *Service) RecordShare(ctx context.Context, ideaID, email string) (*ShareResult, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var m Metrics
	err := dbopen.RunTx(ctx, s.store.DB(), func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		if err := increment(ctx, st, ideaID, store.CounterShares); err != nil {
			return err
		}
		var err error
		m, err = st.GetMetrics(ctx, ideaID)
		return err
	})
	if err != nil {
		return nil, storeErr("record share", err)
	}

	s.emit(ctx, observability.BusinessEvent{
		EventType:  observability.EventIdeaShared,
		EntityType: "idea",
		EntityID:   ideaID,
		UserEmail:  email,
		Action:     "share",
		Success:    true,
	})
	return &ShareResult{
		IdeaID:  ideaID,
		URL:     s.ShareURL(ideaID),
		Metrics: m,
	}, nil
}

// LikeStatus reports whether email liked the idea, read in one transaction
// with its like rows and counters.
func (s *Service) LikeStatus(ctx context.Context, ideaID, email string) (*LikeStatus, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res := &LikeStatus{IdeaID: ideaID}
	err := dbopen.RunTx(ctx, s.store.DB(), func(tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		if err := ensureIdea(ctx, st, ideaID); err != nil {
			return err
		}
		var err error
		if res.Liked, err = st.HasLiked(ctx, ideaID, email); err != nil {
			return err
		}
		if res.LikeRows, err = st.CountLikes(ctx, ideaID); err != nil {
			return err
		}
		res.Metrics, err = st.GetMetrics(ctx, ideaID)
		return err
	})
	if err != nil {
		return nil, storeErr("like status", err)
	}
	return res, nil
}

// History returns the swipe log of email, oldest first.
func (s *Service) History(ctx context.Context, email string) ([]*ViewRecord, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	views, err := s.store.ListViews(ctx, email)
	if err != nil {
		return nil, storeErr("history", err)
	}
	if views == nil {
		views = []*ViewRecord{}
	}
	return views, nil
}

// ShareURL returns the public link of an idea.
func (s *Service) ShareURL(ideaID string) string {
	return s.config.PublicURL + "/idea/" + ideaID
}

func ensureIdea(ctx context.Context, st *store.Store, id string) error {
	ok, err := st.IdeaExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: idea %s", ErrNotFound, id)
	}
	return nil
}

func increment(ctx context.Context, st *store.Store, id string, c store.Counter) error {
	ok, err := st.Increment(ctx, id, c)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: idea %s", ErrNotFound, id)
	}
	return nil
}
