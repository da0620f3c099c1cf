// Package scheduler drives automatic session lifecycle transitions. A
// recurring sweep loads due sessions, evaluates the pure state machine for
// each, and persists the changes. A global advisory lock guarantees that at
// most one instance applies a sweep at a time.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"checkinapp/internal/events"
	"checkinapp/internal/locks"
	"checkinapp/internal/sessions/lifecycle"
	"checkinapp/internal/sessions/repository"
	"checkinapp/pkg/config"
)

const lockResource = "scheduler:global"

type Scheduler struct {
	repo      repository.SessionRepository
	locks     *locks.Manager
	publisher *events.Publisher
	cfg       *config.Config

	// now is swappable for tests; production uses the wall clock.
	now func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewScheduler(
	repo repository.SessionRepository,
	lockMgr *locks.Manager,
	publisher *events.Publisher,
	cfg *config.Config,
) *Scheduler {
	return &Scheduler{
		repo:      repo,
		locks:     lockMgr,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled. It
// runs one sweep immediately so a freshly deployed instance does not wait a
// full interval to catch up on overdue transitions.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		s.cfg.Log.Info("Lifecycle scheduler started",
			"interval", s.cfg.SchedulerInterval,
		)

		s.Sweep(ctx)

		ticker := time.NewTicker(s.cfg.SchedulerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-s.stop:
				s.cfg.Log.Info("Lifecycle scheduler stopped")
				return
			case <-ctx.Done():
				s.cfg.Log.Info("Lifecycle scheduler stopped", "reason", ctx.Err())
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

// Sweep applies one pass of lifecycle transitions under the global lock.
// When another instance holds the lock the whole pass is skipped; the next
// tick retries and transitions are idempotent, so skipping is always safe.
func (s *Scheduler) Sweep(ctx context.Context) {
	err := s.locks.WithLock(ctx, lockResource, func(ctx context.Context) error {
		return s.applyTransitions(ctx)
	})
	if err != nil {
		if errors.Is(err, locks.ErrContended) {
			s.cfg.Log.Debug("Sweep skipped, another instance holds the scheduler lock")
			return
		}
		s.cfg.Log.Error("Sweep failed", "error", err)
	}
}

func (s *Scheduler) applyTransitions(ctx context.Context) error {
	now := s.now()

	candidates, err := s.repo.FindDueForTransition(ctx, now, s.maxLead())
	if err != nil {
		return err
	}

	var applied int
	for _, session := range candidates {
		policy := lifecycle.ResolvePolicy(session, s.cfg)
		next := lifecycle.NextState(session, now, policy)
		if next == session.Status {
			continue
		}

		moved, err := s.repo.UpdateStatus(ctx, session.ID, session.Status, next)
		if err != nil {
			s.cfg.Log.Error("Failed to persist transition",
				"session_id", session.ID,
				"from", session.Status,
				"to", next,
				"error", err,
			)
			continue
		}
		if !moved {
			// Already transitioned by a manual action since the query ran.
			continue
		}

		s.cfg.Log.Info("Session transitioned",
			"session_id", session.ID,
			"from", session.Status,
			"to", next,
		)
		s.publisher.SessionTransitioned(ctx, session.ID, session.Status, next, now)
		applied++
	}

	if applied > 0 {
		s.cfg.Log.Info("Sweep complete",
			"candidates", len(candidates),
			"transitions", applied,
		)
	}
	return nil
}

// maxLead bounds the candidate query. Sessions can widen their auto-open
// window beyond the global default, so the query looks a full day ahead and
// the exact per-session policy decides in applyTransitions.
func (s *Scheduler) maxLead() time.Duration {
	lead := time.Duration(s.cfg.AutoOpenMinutesBefore) * time.Minute
	if lead < 24*time.Hour {
		lead = 24 * time.Hour
	}
	return lead
}
