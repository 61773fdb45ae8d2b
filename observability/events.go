package observability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/ideaswipe/dbopen"
	"github.com/hazyhaar/ideaswipe/idgen"
)

// Business event types written by the swipe service.
const (
	EventIdeaCreated    = "idea_created"
	EventIdeaUpdated    = "idea_updated"
	EventIdeaDeleted    = "idea_deleted"
	EventIdeaSwiped     = "idea_swiped"
	EventIdeaShared     = "idea_shared"
	EventCommentCreated = "comment_created"
)

// BusinessEvent represents a domain-level event to record.
type BusinessEvent struct {
	EventType  string
	EntityType string
	EntityID   string
	UserEmail  string
	Action     string
	Details    string // optional JSON
	Success    bool
}

// EventLogger persists business events from a buffered queue. LogEvent never
// blocks the caller: when the queue is full the event is dropped and a
// warning is logged.
type EventLogger struct {
	db     *sql.DB
	newID  idgen.Generator
	ch     chan BusinessEvent
	wg     sync.WaitGroup
	closed sync.Once
}

// EventLoggerOption configures an EventLogger.
type EventLoggerOption func(*EventLogger)

// WithEventIDGenerator sets a custom ID generator for event IDs.
func WithEventIDGenerator(gen idgen.Generator) EventLoggerOption {
	return func(l *EventLogger) { l.newID = gen }
}

// WithQueueSize sets the event queue capacity (default 256).
func WithQueueSize(n int) EventLoggerOption {
	return func(l *EventLogger) { l.ch = make(chan BusinessEvent, n) }
}

// NewEventLogger creates a logger backed by the given observability database
// and starts its writer goroutine. Call Close to drain the queue.
func NewEventLogger(db *sql.DB, opts ...EventLoggerOption) *EventLogger {
	l := &EventLogger{
		db:    db,
		newID: idgen.Prefixed("evt_", idgen.Default),
		ch:    make(chan BusinessEvent, 256),
	}
	for _, o := range opts {
		o(l)
	}
	l.wg.Add(1)
	go l.run()
	return l
}

// LogEvent queues a business event.
func (l *EventLogger) LogEvent(_ context.Context, event BusinessEvent) {
	select {
	case l.ch <- event:
	default:
		slog.Warn("observability: event queue full, dropping", "event_type", event.EventType, "entity_id", event.EntityID)
	}
}

// Close stops accepting events and waits until queued events are written.
func (l *EventLogger) Close() error {
	l.closed.Do(func() { close(l.ch) })
	l.wg.Wait()
	return nil
}

func (l *EventLogger) run() {
	defer l.wg.Done()
	for ev := range l.ch {
		if err := l.write(ev); err != nil {
			slog.Error("observability: event log failed", "error", err, "event_type", ev.EventType)
		}
	}
}

func (l *EventLogger) write(ev BusinessEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO business_event_logs (
			event_id, event_type, entity_type, entity_id,
			user_email, action, details, success, created_at
		) VALUES (?,?,?,?,?,?,?,?,?)`,
		l.newID(), ev.EventType, ev.EntityType, ev.EntityID,
		ev.UserEmail, ev.Action, nullIfEmpty(ev.Details), ev.Success, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RetentionConfig specifies per-table retention in days. Zero means no cleanup.
type RetentionConfig struct {
	EventLogsDays  int
	MetricsDays    int
	HeartbeatsDays int
}

// Cleanup deletes records exceeding the retention thresholds.
func Cleanup(ctx context.Context, db *sql.DB, cfg RetentionConfig) error {
	now := time.Now().Unix()
	targets := []struct {
		query string
		days  int
	}{
		{"DELETE FROM business_event_logs WHERE created_at < ?", cfg.EventLogsDays},
		{"DELETE FROM metrics_timeseries WHERE timestamp < ?", cfg.MetricsDays},
		{"DELETE FROM server_heartbeats WHERE timestamp < ?", cfg.HeartbeatsDays},
	}
	for _, t := range targets {
		if t.days <= 0 {
			continue
		}
		cutoff := now - int64(t.days)*86400
		if _, err := dbopen.Exec(ctx, db, t.query, cutoff); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}
	return nil
}

// StartCleanup runs Cleanup once a day until ctx is cancelled.
func StartCleanup(ctx context.Context, db *sql.DB, cfg RetentionConfig) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			if err := Cleanup(ctx, db, cfg); err != nil && ctx.Err() == nil {
				slog.Warn("observability: cleanup failed", "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
