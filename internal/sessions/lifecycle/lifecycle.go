// Package lifecycle holds the pure session state machine. It performs no I/O
// so the scheduler and the admission path can both evaluate transitions
// against an explicit clock.
package lifecycle

import (
	"time"

	"checkinapp/pkg/config"
	"checkinapp/pkg/model"
)

// Policy is the resolved timing policy for one session: per-session
// overrides already merged over the process-wide defaults.
type Policy struct {
	AutoOpenLead  time.Duration
	AutoEndGrace  time.Duration
	LateThreshold time.Duration
	AutoEnd       bool
}

// ResolvePolicy merges a session's overrides over the global defaults.
// A nil override falls back to the corresponding config value.
func ResolvePolicy(session *model.Session, cfg *config.Config) Policy {
	p := Policy{
		AutoOpenLead:  time.Duration(cfg.AutoOpenMinutesBefore) * time.Minute,
		AutoEndGrace:  time.Duration(cfg.AutoEndGraceMinutes) * time.Minute,
		LateThreshold: time.Duration(cfg.LateThresholdMinutes) * time.Minute,
		AutoEnd:       session.AutoEnd,
	}
	if session.AutoOpenMinutesBefore != nil {
		p.AutoOpenLead = time.Duration(*session.AutoOpenMinutesBefore) * time.Minute
	}
	if session.AutoEndGraceMinutes != nil {
		p.AutoEndGrace = time.Duration(*session.AutoEndGraceMinutes) * time.Minute
	}
	if session.LateThresholdMinutes != nil {
		p.LateThreshold = time.Duration(*session.LateThresholdMinutes) * time.Minute
	}
	return p
}

// NextState maps (current status, now, policy) to the status the session
// should hold. Idempotent: feeding the result back in with the same clock
// yields the same status again. Terminal statuses never move.
//
// Boundary instants transition: a tick landing exactly on the open or end
// threshold counts as past it.
func NextState(session *model.Session, now time.Time, policy Policy) model.SessionStatus {
	if session.Status.IsTerminal() {
		return session.Status
	}

	switch session.Status {
	case model.SessionScheduled:
		openAt := session.StartTime.Add(-policy.AutoOpenLead)
		if !now.Before(openAt) {
			return model.SessionOpen
		}
	case model.SessionOpen:
		if policy.AutoEnd {
			endAt := session.EndTime.Add(policy.AutoEndGrace)
			if !now.Before(endAt) {
				return model.SessionEnded
			}
		}
	}
	return session.Status
}

// IsLate reports whether a check-in at the given instant counts as late.
// Strictly past the threshold: arriving exactly on it is on time.
func IsLate(checkInTime, startTime time.Time, policy Policy) bool {
	return checkInTime.Sub(startTime) > policy.LateThreshold
}
