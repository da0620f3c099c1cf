package locks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"checkinapp/internal/locks/store"
	"checkinapp/pkg/logger"

	"github.com/google/uuid"
)

// ErrContended is returned when another owner kept the resource through
// every acquisition attempt. Callers must treat it as a signal to skip the
// guarded operation, not as a hard failure.
var ErrContended = errors.New("lock held by another owner")

const releaseTimeout = 2 * time.Second

// Lock is an acquired (or degraded) hold on a named resource. A degraded
// lock is granted without the store backing it and releases as a no-op.
type Lock struct {
	resource  string
	token     string
	expiresAt time.Time
	degraded  bool
	released  atomic.Bool
}

func (l *Lock) Resource() string { return l.resource }

// Token is the ownership proof presented on release; only the matching
// token can delete the stored lock.
func (l *Lock) Token() string { return l.token }

// Degraded reports whether the lock was granted without the shared store,
// i.e. without the cross-instance exclusivity guarantee.
func (l *Lock) Degraded() bool { return l.degraded }

type Options struct {
	TTL         time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// Manager acquires and releases named distributed mutexes backed by a
// shared store. When the store is unreachable it degrades to granting
// no-op locks: a single-instance deployment keeps functioning, trading
// cross-instance exclusivity for availability.
type Manager struct {
	store store.Store
	opts  Options
	log   *logger.Logger
	host  string
}

func NewManager(s store.Store, opts Options, log *logger.Logger) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 150 * time.Millisecond
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return &Manager{
		store: s,
		opts:  opts,
		log:   log,
		host:  host,
	}
}

// newToken builds an ownership token unique across concurrent acquirers:
// host + pid + nanotime + random suffix. No cryptographic strength needed.
func (m *Manager) newToken() string {
	return fmt.Sprintf("%s:%d:%d:%s", m.host, os.Getpid(), time.Now().UnixNano(), uuid.NewString()[:8])
}

// Acquire attempts to take the named resource, retrying on contention up to
// MaxAttempts with RetryDelay between attempts. A transport-level store
// failure grants a degraded lock instead of propagating the error;
// contention that survives every retry returns ErrContended.
func (m *Manager) Acquire(ctx context.Context, resource string) (*Lock, error) {
	if m.store == nil {
		return m.degradedLock(resource, errors.New("no lock store configured")), nil
	}

	for attempt := 1; attempt <= m.opts.MaxAttempts; attempt++ {
		token := m.newToken()

		ok, err := m.store.TrySet(ctx, resource, token, m.opts.TTL)
		if err != nil {
			return m.degradedLock(resource, err), nil
		}
		if ok {
			return &Lock{
				resource:  resource,
				token:     token,
				expiresAt: time.Now().Add(m.opts.TTL),
			}, nil
		}

		if attempt == m.opts.MaxAttempts {
			break
		}
		select {
		case <-time.After(m.opts.RetryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.log.Debug("Lock contended after all attempts",
		"resource", resource,
		"attempts", m.opts.MaxAttempts,
	)
	return nil, ErrContended
}

func (m *Manager) degradedLock(resource string, cause error) *Lock {
	m.log.Warn("Lock store unavailable, granting degraded lock",
		"resource", resource,
		"error", cause,
	)
	return &Lock{
		resource: resource,
		degraded: true,
	}
}

// Release deletes the lock if and only if the stored token still matches.
// Idempotent: repeated calls, foreign-owned locks and expired locks are all
// no-ops. Runs on a fresh deadline so a caller whose context already
// expired still releases.
func (m *Manager) Release(ctx context.Context, l *Lock) {
	if l == nil || l.degraded || !l.released.CompareAndSwap(false, true) {
		return
	}

	if ctx.Err() != nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, releaseTimeout)
	defer cancel()

	ok, err := m.store.ConditionalDelete(ctx, l.resource, l.token)
	if err != nil {
		m.log.Warn("Failed to release lock, TTL will reap it",
			"resource", l.resource,
			"error", err,
		)
		return
	}
	if !ok {
		m.log.Debug("Lock already expired or foreign-owned on release",
			"resource", l.resource,
		)
	}
}

// WithLock acquires the resource, runs body, and releases on every exit
// path, including body errors and panics.
func (m *Manager) WithLock(ctx context.Context, resource string, body func(ctx context.Context) error) error {
	lock, err := m.Acquire(ctx, resource)
	if err != nil {
		return err
	}
	defer m.Release(ctx, lock)

	return body(ctx)
}

// Degraded reports whether the shared store is currently unreachable.
func (m *Manager) Degraded(ctx context.Context) bool {
	if m.store == nil {
		return true
	}
	return m.store.Ping(ctx) != nil
}
