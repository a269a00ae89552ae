// Package scheduler triggers periodic scrapes. It is deliberately thin: all
// retry, dedup and fallback intelligence lives in the orchestrator, so a
// failed tick is logged and simply waits for the next one.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/use-agent/podium/models"
	"github.com/use-agent/podium/scraper"
)

// Scheduler drives the orchestrator on a fixed interval.
type Scheduler struct {
	orch     *scraper.Orchestrator
	interval time.Duration

	mu      sync.Mutex
	running bool
	nextRun time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a stopped Scheduler with the given interval in minutes.
func New(orch *scraper.Orchestrator, intervalMinutes int) *Scheduler {
	if intervalMinutes <= 0 {
		intervalMinutes = 30
	}
	return &Scheduler{
		orch:     orch,
		interval: time.Duration(intervalMinutes) * time.Minute,
	}
}

// Start launches the ticker loop and fires one eager scrape so the cache and
// store are warm before the first interval elapses. Idempotent.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.nextRun = time.Now().Add(s.interval)

	slog.Info("scheduler started", "interval", s.interval)
	go s.loop(ctx)
}

// Stop halts the ticker loop and waits for it to exit. Idempotent. The
// interval is preserved so a later Start resumes with the same cadence.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	slog.Info("scheduler stopped")
}

// Status reports the current scheduler state.
func (s *Scheduler) Status() models.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := models.SchedulerStatus{
		Running:         s.running,
		IntervalMinutes: int(s.interval / time.Minute),
	}
	if s.running {
		next := s.nextRun
		status.NextRun = &next
	}
	return status
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	s.run(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.nextRun = time.Now().Add(s.interval)
			s.mu.Unlock()
			s.run(ctx)
		}
	}
}

// run fires one forced scrape. Failures are swallowed here; the orchestrator
// has already logged the cause and the next tick will try again.
func (s *Scheduler) run(ctx context.Context) {
	result, err := s.orch.TriggerScrape(ctx)
	if err != nil {
		slog.Warn("scheduled scrape failed", "error", err)
		return
	}
	slog.Info("scheduled scrape complete", "entries", result.TotalEntries)
}
