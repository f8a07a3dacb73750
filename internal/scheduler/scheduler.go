// Package scheduler wires up the cron job that reports the day's progress
// toward the application goal and the job boards still to check.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"jobtracker/internal/lock"
	"jobtracker/internal/metrics"
	"jobtracker/internal/tracker"
)

const (
	digestLockKey = "jobtracker:lock:digest"
	digestLockTTL = 5 * time.Minute
	digestTimeout = 30 * time.Second
)

// Digest is the outcome of one digest run.
type Digest struct {
	Progress        tracker.Progress
	UnvisitedBoards []string
}

// Scheduler wraps robfig/cron and runs the digest on its spec.
type Scheduler struct {
	cron   *cron.Cron
	svc    *tracker.Service
	locker lock.Locker
	spec   string
	log    *slog.Logger
}

// New creates a Scheduler firing on the standard cron spec, evaluated in
// the service's time zone.
func New(svc *tracker.Service, locker lock.Locker, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(svc.Location())),
		svc:    svc,
		locker: locker,
		spec:   spec,
		log:    logger,
	}
}

// Start registers the digest job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, digestTimeout)
		defer cancel()
		if _, err := s.RunDigest(runCtx); err != nil && !errors.Is(err, lock.ErrHeld) {
			s.log.Warn("digest failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("digest scheduled", "spec", s.spec, "timezone", s.svc.Location().String())
	return nil
}

// Stop stops the scheduler and waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("digest scheduler stopped")
}

// RunDigest computes and logs one digest. It returns lock.ErrHeld when
// another replica is already running it.
func (s *Scheduler) RunDigest(ctx context.Context) (*Digest, error) {
	token, err := s.locker.TryLock(ctx, digestLockKey, digestLockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			s.log.Info("digest skipped, another run holds the lock")
		}
		return nil, err
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), digestLockKey, token); err != nil {
			s.log.Warn("digest unlock failed", "err", err)
		}
	}()

	now := s.svc.Now()
	progress, err := s.svc.DailyProgress(ctx, now)
	if err != nil {
		return nil, err
	}
	boards, err := s.svc.ListJobBoards(ctx, now)
	if err != nil {
		return nil, err
	}

	d := &Digest{Progress: progress, UnvisitedBoards: []string{}}
	for _, b := range boards {
		if !b.VisitedToday {
			d.UnvisitedBoards = append(d.UnvisitedBoards, b.Name)
		}
	}

	metrics.SetDailyProgress(progress)
	s.log.Info("daily digest",
		"date", now.Format(tracker.DateLayout),
		"applications", progress.Count,
		"goal", progress.Goal,
		"goalReached", progress.GoalReached,
		"streak", progress.Streak,
		"unvisitedBoards", d.UnvisitedBoards,
	)
	return d, nil
}
