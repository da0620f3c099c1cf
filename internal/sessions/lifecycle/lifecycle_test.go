package lifecycle

import (
	"testing"
	"time"

	"checkinapp/pkg/config"
	"checkinapp/pkg/model"
)

func intPtr(n int) *int { return &n }

func TestNextState_Scheduled(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	policy := Policy{AutoOpenLead: 10 * time.Minute, AutoEndGrace: 30 * time.Minute, AutoEnd: true}

	tests := []struct {
		name string
		now  time.Time
		want model.SessionStatus
	}{
		{
			name: "before open window stays scheduled",
			now:  start.Add(-11 * time.Minute),
			want: model.SessionScheduled,
		},
		{
			name: "exactly at open threshold opens",
			now:  start.Add(-10 * time.Minute),
			want: model.SessionOpen,
		},
		{
			name: "inside open window opens",
			now:  start.Add(-5 * time.Minute),
			want: model.SessionOpen,
		},
		{
			name: "after start opens",
			now:  start.Add(time.Minute),
			want: model.SessionOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &model.Session{Status: model.SessionScheduled, StartTime: start, EndTime: end}
			if got := NextState(session, tt.now, policy); got != tt.want {
				t.Errorf("NextState() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNextState_Open(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name    string
		now     time.Time
		autoEnd bool
		want    model.SessionStatus
	}{
		{
			name:    "before grace expiry stays open",
			now:     end.Add(29 * time.Minute),
			autoEnd: true,
			want:    model.SessionOpen,
		},
		{
			name:    "exactly at grace expiry ends",
			now:     end.Add(30 * time.Minute),
			autoEnd: true,
			want:    model.SessionEnded,
		},
		{
			name:    "past grace expiry ends",
			now:     end.Add(time.Hour),
			autoEnd: true,
			want:    model.SessionEnded,
		},
		{
			name:    "auto-end disabled never ends",
			now:     end.Add(24 * time.Hour),
			autoEnd: false,
			want:    model.SessionOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &model.Session{Status: model.SessionOpen, StartTime: start, EndTime: end}
			policy := Policy{AutoOpenLead: 10 * time.Minute, AutoEndGrace: 30 * time.Minute, AutoEnd: tt.autoEnd}
			if got := NextState(session, tt.now, policy); got != tt.want {
				t.Errorf("NextState() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNextState_TerminalStatusesNeverMove(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	policy := Policy{AutoOpenLead: 10 * time.Minute, AutoEndGrace: 30 * time.Minute, AutoEnd: true}

	for _, status := range []model.SessionStatus{model.SessionEnded, model.SessionClosed, model.SessionCancelled} {
		t.Run(string(status), func(t *testing.T) {
			session := &model.Session{Status: status, StartTime: start, EndTime: start.Add(time.Hour)}
			// Well past every threshold.
			if got := NextState(session, start.Add(48*time.Hour), policy); got != status {
				t.Errorf("NextState() = %s, want unchanged %s", got, status)
			}
		})
	}
}

func TestNextState_Idempotent(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	policy := Policy{AutoOpenLead: 10 * time.Minute, AutoEndGrace: 30 * time.Minute, AutoEnd: true}
	now := start.Add(-5 * time.Minute)

	session := &model.Session{Status: model.SessionScheduled, StartTime: start, EndTime: start.Add(time.Hour)}

	first := NextState(session, now, policy)
	session.Status = first
	second := NextState(session, now, policy)

	if first != second {
		t.Errorf("re-applying NextState changed the result: %s then %s", first, second)
	}
	if first != model.SessionOpen {
		t.Errorf("expected open, got %s", first)
	}
}

func TestResolvePolicy(t *testing.T) {
	cfg := &config.Config{
		AutoOpenMinutesBefore: 15,
		AutoEndGraceMinutes:   30,
		LateThresholdMinutes:  10,
	}

	t.Run("defaults when no overrides", func(t *testing.T) {
		session := &model.Session{AutoEnd: true}
		p := ResolvePolicy(session, cfg)
		if p.AutoOpenLead != 15*time.Minute {
			t.Errorf("AutoOpenLead = %s, want 15m", p.AutoOpenLead)
		}
		if p.AutoEndGrace != 30*time.Minute {
			t.Errorf("AutoEndGrace = %s, want 30m", p.AutoEndGrace)
		}
		if p.LateThreshold != 10*time.Minute {
			t.Errorf("LateThreshold = %s, want 10m", p.LateThreshold)
		}
		if !p.AutoEnd {
			t.Error("AutoEnd should carry over from the session")
		}
	})

	t.Run("session overrides win", func(t *testing.T) {
		session := &model.Session{
			AutoOpenMinutesBefore: intPtr(5),
			AutoEndGraceMinutes:   intPtr(0),
			LateThresholdMinutes:  intPtr(20),
		}
		p := ResolvePolicy(session, cfg)
		if p.AutoOpenLead != 5*time.Minute {
			t.Errorf("AutoOpenLead = %s, want 5m", p.AutoOpenLead)
		}
		if p.AutoEndGrace != 0 {
			t.Errorf("AutoEndGrace = %s, want 0", p.AutoEndGrace)
		}
		if p.LateThreshold != 20*time.Minute {
			t.Errorf("LateThreshold = %s, want 20m", p.LateThreshold)
		}
	})
}

func TestIsLate(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	policy := Policy{LateThreshold: 10 * time.Minute}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before start", start.Add(-time.Minute), false},
		{"within threshold", start.Add(9 * time.Minute), false},
		{"exactly at threshold is on time", start.Add(10 * time.Minute), false},
		{"past threshold is late", start.Add(10*time.Minute + time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLate(tt.at, start, policy); got != tt.want {
				t.Errorf("IsLate() = %v, want %v", got, tt.want)
			}
		})
	}
}
