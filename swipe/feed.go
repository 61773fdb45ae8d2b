package swipe

import "context"

// ComputeFeed returns the ideas email has not swiped yet, excluding their
// own, newest first. The feed is recomputed from scratch on every call.
func (s *Service) ComputeFeed(ctx context.Context, email string) ([]*Idea, error) {
	if err := requireEmail(email); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	seen, err := s.store.SeenIdeaIDs(ctx, email)
	if err != nil {
		return nil, storeErr("load seen ideas", err)
	}
	candidates, err := s.store.ListIdeasExcludingAuthor(ctx, email)
	if err != nil {
		return nil, storeErr("list ideas", err)
	}

	feed := make([]*Idea, 0, len(candidates))
	for _, idea := range candidates {
		if !seen[idea.ID] {
			feed = append(feed, idea)
		}
	}
	return feed, nil
}
