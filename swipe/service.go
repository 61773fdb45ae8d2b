package swipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/ideaswipe/idgen"
	"github.com/hazyhaar/ideaswipe/observability"
	"github.com/hazyhaar/ideaswipe/swipe/internal/store"
)

// EventSink receives business events. *observability.EventLogger
// implements it.
type EventSink interface {
	LogEvent(ctx context.Context, event observability.BusinessEvent)
}

// Service is the ideaswipe domain service.
type Service struct {
	store  *store.Store
	config *Config
	logger *slog.Logger
	events EventSink // optional
	newID  idgen.Generator
	now    func() time.Time
}

// ServiceOption configures a Service during creation.
type ServiceOption func(*Service)

// WithEvents records business events to sink.
func WithEvents(sink EventSink) ServiceOption {
	return func(s *Service) { s.events = sink }
}

// WithIDGenerator sets the generator for idea and comment IDs.
func WithIDGenerator(gen idgen.Generator) ServiceOption {
	return func(s *Service) { s.newID = gen }
}

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// New creates a Service on db. The schema must already be applied
// (ApplySchema).
func New(db *sql.DB, cfg *Config, logger *slog.Logger, opts ...ServiceOption) *Service {
	if cfg == nil {
		cfg = defaultConfig()
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:  store.NewStore(db),
		config: cfg,
		logger: logger,
		newID:  idgen.Default,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplySchema creates the ideaswipe tables on db.
func ApplySchema(db *sql.DB) error {
	return store.ApplySchema(db)
}

// Schema is the DDL applied by ApplySchema.
const Schema = store.Schema

func (s *Service) nowMilli() int64 {
	return s.now().UnixMilli()
}

// withTimeout bounds a datastore call by the configured store timeout.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.StoreTimeout)
}

// storeErr classifies a datastore error. Domain errors pass through.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden),
		errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrConflict), errors.Is(err, ErrUpstream):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", ErrTimeout, op)
	default:
		return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
	}
}

// authorizeOwner is the single ownership guard of every idea mutation.
func authorizeOwner(idea *Idea, actingEmail string) error {
	if actingEmail == "" {
		return ErrUnauthorized
	}
	if idea.AuthorEmail != actingEmail {
		return fmt.Errorf("%w: idea %s belongs to another user", ErrForbidden, idea.ID)
	}
	return nil
}

func requireEmail(email string) error {
	if email == "" {
		return ErrUnauthorized
	}
	return nil
}

// emit logs a business event when a sink is configured.
func (s *Service) emit(ctx context.Context, ev observability.BusinessEvent) {
	if s.events == nil {
		return
	}
	s.events.LogEvent(ctx, ev)
}
