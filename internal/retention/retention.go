package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mr1hm/go-raid-alerts/internal/metrics"
)

// Purger deletes alert history older than a cutoff.
type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler prunes alert history on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	repo      Purger
	retention time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewScheduler(repo Purger, retention time.Duration, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		repo:      repo,
		retention: retention,
		metrics:   m,
		now:       time.Now,
	}
}

// Start registers the purge job and starts the scheduler. schedule accepts
// five-field cron specs and descriptors such as "@hourly" or "@every 10m".
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			slog.Error("history purge failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling history purge %q: %w", schedule, err)
	}

	s.cron.Start()
	slog.Info("history retention scheduled", "schedule", schedule, "retention", s.retention)
	return nil
}

// RunOnce deletes alerts older than the retention period.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.repo.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error purging alerts before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if s.metrics != nil {
		s.metrics.HistoryPurged.Add(float64(n))
	}
	if n > 0 {
		slog.Info("purged alert history", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// Stop waits for a running purge to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
