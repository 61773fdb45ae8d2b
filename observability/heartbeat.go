package observability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// RuntimeStats captures Go process health at a point in time.
type RuntimeStats struct {
	Goroutines    int
	MemoryAllocMB float64
	MemorySysMB   float64
	GCCount       uint32
}

// CollectRuntimeStats reads current Go runtime stats.
func CollectRuntimeStats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		MemoryAllocMB: float64(mem.Alloc) / 1024 / 1024,
		MemorySysMB:   float64(mem.Sys) / 1024 / 1024,
		GCCount:       mem.NumGC,
	}
}

// Heartbeat writes periodic liveness rows for one server instance.
type Heartbeat struct {
	db       *sql.DB
	instance string
	hostname string
	pid      int
	interval time.Duration
}

// NewHeartbeat creates a heartbeat writer for instance.
func NewHeartbeat(db *sql.DB, instance string, interval time.Duration) *Heartbeat {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &Heartbeat{
		db:       db,
		instance: instance,
		hostname: hostname,
		pid:      os.Getpid(),
		interval: interval,
	}
}

// Beat writes a single heartbeat row.
func (hb *Heartbeat) Beat(ctx context.Context) error {
	s := CollectRuntimeStats()
	_, err := hb.db.ExecContext(ctx, `
		INSERT INTO server_heartbeats (
			instance, hostname, pid, timestamp,
			goroutines_count, memory_alloc_mb, memory_sys_mb, gc_count
		) VALUES (?,?,?,?,?,?,?,?)`,
		hb.instance, hb.hostname, hb.pid, time.Now().Unix(),
		s.Goroutines, s.MemoryAllocMB, s.MemorySysMB, s.GCCount)
	if err != nil {
		return fmt.Errorf("insert heartbeat: %w", err)
	}
	return nil
}

// Run beats immediately, then every interval until ctx is cancelled.
func (hb *Heartbeat) Run(ctx context.Context) {
	ticker := time.NewTicker(hb.interval)
	defer ticker.Stop()
	for {
		if err := hb.Beat(ctx); err != nil && ctx.Err() == nil {
			slog.Error("heartbeat write failed", "error", err, "instance", hb.instance)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// HeartbeatStatus is the latest heartbeat of an instance.
type HeartbeatStatus struct {
	Instance   string    `json:"instance"`
	Hostname   string    `json:"hostname"`
	PID        int       `json:"pid"`
	Timestamp  time.Time `json:"timestamp"`
	Goroutines int       `json:"goroutines"`
	Alive      bool      `json:"alive"`
}

// LatestHeartbeat returns the most recent heartbeat of instance; Alive is
// set when it is younger than staleAfter. Returns nil, nil before the first
// beat.
func LatestHeartbeat(ctx context.Context, db *sql.DB, instance string, staleAfter time.Duration) (*HeartbeatStatus, error) {
	var hs HeartbeatStatus
	var ts int64
	err := db.QueryRowContext(ctx, `
		SELECT instance, hostname, pid, timestamp, goroutines_count
		FROM server_heartbeats
		WHERE instance = ?
		ORDER BY timestamp DESC LIMIT 1`, instance).
		Scan(&hs.Instance, &hs.Hostname, &hs.PID, &ts, &hs.Goroutines)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest heartbeat: %w", err)
	}
	hs.Timestamp = time.Unix(ts, 0)
	hs.Alive = time.Since(hs.Timestamp) <= staleAfter
	return &hs, nil
}
