package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"checkinapp/internal/locks"
	"checkinapp/internal/locks/store"
	sessionserrors "checkinapp/internal/sessions/errors"
	"checkinapp/pkg/config"
	mongotx "checkinapp/pkg/db/mongo"
	"checkinapp/pkg/logger"
	"checkinapp/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockSessionRepository struct {
	findDueForTransitionFunc func(ctx context.Context, now time.Time, maxLead time.Duration) ([]*model.Session, error)
	updateStatusFunc         func(ctx context.Context, id string, from, to model.SessionStatus) (bool, error)
}

func (m *mockSessionRepository) Create(ctx context.Context, s *model.Session) error { return nil }

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return nil, sessionserrors.ErrNotFound
}

func (m *mockSessionRepository) FindAll(ctx context.Context, limit int, offset int) ([]*model.Session, error) {
	return nil, nil
}

func (m *mockSessionRepository) FindDueForTransition(ctx context.Context, now time.Time, maxLead time.Duration) ([]*model.Session, error) {
	if m.findDueForTransitionFunc != nil {
		return m.findDueForTransitionFunc(ctx, now, maxLead)
	}
	return []*model.Session{}, nil
}

func (m *mockSessionRepository) UpdateStatus(ctx context.Context, id string, from, to model.SessionStatus) (bool, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	return true, nil
}

func (m *mockSessionRepository) Update(ctx context.Context, id string, s *model.Session) (*mongo.UpdateResult, error) {
	return nil, nil
}

func (m *mockSessionRepository) IncrementCheckIns(ctx context.Context, id string) error { return nil }

func (m *mockSessionRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockSessionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                   logger.New(logger.Config{Level: "error", Format: logger.JSON, Output: io.Discard, Service: "test"}),
		SchedulerInterval:     time.Minute,
		AutoOpenMinutesBefore: 10,
		AutoEndGraceMinutes:   30,
		LateThresholdMinutes:  10,
	}
}

func newTestScheduler(repo *mockSessionRepository, lockStore store.Store, at time.Time) *Scheduler {
	cfg := testConfig()
	mgr := locks.NewManager(lockStore, locks.Options{MaxAttempts: 1}, cfg.Log)
	s := NewScheduler(repo, mgr, nil, cfg)
	s.now = func() time.Time { return at }
	return s
}

func TestSweep_OpensAtExactThreshold(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	session := &model.Session{
		ID:        "65f000000000000000000001",
		Status:    model.SessionScheduled,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		AutoEnd:   true,
	}

	var gotFrom, gotTo model.SessionStatus
	repo := &mockSessionRepository{
		findDueForTransitionFunc: func(ctx context.Context, now time.Time, maxLead time.Duration) ([]*model.Session, error) {
			return []*model.Session{session}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.SessionStatus) (bool, error) {
			gotFrom, gotTo = from, to
			return true, nil
		},
	}

	// Tick lands exactly on startTime - autoOpenMinutesBefore.
	s := newTestScheduler(repo, store.NewMemoryStore(), start.Add(-10*time.Minute))
	s.Sweep(context.Background())

	if gotFrom != model.SessionScheduled || gotTo != model.SessionOpen {
		t.Errorf("transition = %s -> %s, want scheduled -> open", gotFrom, gotTo)
	}
}

func TestSweep_TooEarlyLeavesScheduled(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	session := &model.Session{
		ID:        "65f000000000000000000001",
		Status:    model.SessionScheduled,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		AutoEnd:   true,
	}

	repo := &mockSessionRepository{
		findDueForTransitionFunc: func(ctx context.Context, now time.Time, maxLead time.Duration) ([]*model.Session, error) {
			return []*model.Session{session}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.SessionStatus) (bool, error) {
			t.Errorf("unexpected transition %s -> %s one minute before the open window", from, to)
			return false, nil
		},
	}

	s := newTestScheduler(repo, store.NewMemoryStore(), start.Add(-11*time.Minute))
	s.Sweep(context.Background())
}

func TestSweep_EndsAfterGrace(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	session := &model.Session{
		ID:        "65f000000000000000000002",
		Status:    model.SessionOpen,
		StartTime: start,
		EndTime:   end,
		AutoEnd:   true,
	}

	var gotTo model.SessionStatus
	repo := &mockSessionRepository{
		findDueForTransitionFunc: func(ctx context.Context, now time.Time, maxLead time.Duration) ([]*model.Session, error) {
			return []*model.Session{session}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.SessionStatus) (bool, error) {
			gotTo = to
			return true, nil
		},
	}

	s := newTestScheduler(repo, store.NewMemoryStore(), end.Add(30*time.Minute))
	s.Sweep(context.Background())

	if gotTo != model.SessionEnded {
		t.Errorf("transition to = %s, want ended", gotTo)
	}
}

func TestSweep_PerSessionOverrideWins(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	lead := 60
	session := &model.Session{
		ID:                    "65f000000000000000000003",
		Status:                model.SessionScheduled,
		StartTime:             start,
		EndTime:               start.Add(time.Hour),
		AutoEnd:               true,
		AutoOpenMinutesBefore: &lead,
	}

	var transitioned bool
	repo := &mockSessionRepository{
		findDueForTransitionFunc: func(ctx context.Context, now time.Time, maxLead time.Duration) ([]*model.Session, error) {
			return []*model.Session{session}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.SessionStatus) (bool, error) {
			transitioned = true
			return true, nil
		},
	}

	// 30 minutes out: past the session's 60-minute override, before the
	// global 10-minute default.
	s := newTestScheduler(repo, store.NewMemoryStore(), start.Add(-30*time.Minute))
	s.Sweep(context.Background())

	if !transitioned {
		t.Error("expected the per-session auto-open override to trigger the transition")
	}
}

func TestSweep_SkippedWhenLockHeld(t *testing.T) {
	repo := &mockSessionRepository{
		findDueForTransitionFunc: func(ctx context.Context, now time.Time, maxLead time.Duration) ([]*model.Session, error) {
			t.Error("sweep body must not run while another instance holds the lock")
			return nil, nil
		},
	}

	mem := store.NewMemoryStore()
	if ok, err := mem.TrySet(context.Background(), "scheduler:global", "other-instance", time.Minute); err != nil || !ok {
		t.Fatalf("failed to seed foreign lock: ok=%v err=%v", ok, err)
	}

	s := newTestScheduler(repo, mem, time.Now())
	s.Sweep(context.Background())
}

func TestSweep_LostRaceProducesNoEvent(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	session := &model.Session{
		ID:        "65f000000000000000000004",
		Status:    model.SessionScheduled,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		AutoEnd:   true,
	}

	repo := &mockSessionRepository{
		findDueForTransitionFunc: func(ctx context.Context, now time.Time, maxLead time.Duration) ([]*model.Session, error) {
			return []*model.Session{session}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from, to model.SessionStatus) (bool, error) {
			// A manual close happened between the query and the write.
			return false, nil
		},
	}

	// The nil publisher makes the assertion implicit: a non-idempotent
	// sweep would still have to survive a false UpdateStatus without error.
	s := newTestScheduler(repo, store.NewMemoryStore(), start)
	s.Sweep(context.Background())
}

func TestStartStop(t *testing.T) {
	repo := &mockSessionRepository{}
	cfg := testConfig()
	cfg.SchedulerInterval = 10 * time.Millisecond
	mgr := locks.NewManager(store.NewMemoryStore(), locks.Options{MaxAttempts: 1}, cfg.Log)
	s := NewScheduler(repo, mgr, nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	time.Sleep(25 * time.Millisecond)
	s.Stop()
}
