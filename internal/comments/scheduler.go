package comments

import (
	"context"
	"time"

	"github.com/adhocore/gronx"
	"github.com/eliseohh/confessbot/internal/logger"
)

const retryDelay = 30 * time.Second

// Scheduler snapshots a Store on every tick of a cron expression.
type Scheduler struct {
	store *Store
	cron  string
	dir   string
	now   func() time.Time
}

func NewScheduler(store *Store, cron, dir string) *Scheduler {
	return &Scheduler{store: store, cron: cron, dir: dir, now: time.Now}
}

// Run blocks until ctx is done. It returns immediately when no cron
// expression is configured.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cron == "" {
		return nil
	}
	logger.Info("snapshot_enabled", "cron", s.cron, "dir", s.dir)

	for {
		next, err := s.Next()
		if err != nil {
			logger.Error("snapshot_nexttick_failed", "cron", s.cron, "error", err)
			if !sleep(ctx, retryDelay) {
				return nil
			}
			continue
		}

		if !sleep(ctx, next.Sub(s.now())) {
			return nil
		}
		s.RunOnce()
	}
}

// Next returns the next tick strictly after now.
func (s *Scheduler) Next() (time.Time, error) {
	return gronx.NextTickAfter(s.cron, s.now(), false)
}

// RunOnce takes one snapshot and logs the outcome.
func (s *Scheduler) RunOnce() {
	path, err := s.store.Snapshot(s.dir)
	if err != nil {
		logger.Error("snapshot_failed", "dir", s.dir, "error", err)
		return
	}
	st := s.store.Stats()
	logger.Info("snapshot_written", "path", path, "threads", st.Threads, "comments", st.Comments)
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
