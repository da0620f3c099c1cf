package validator

import (
	"io"
	"testing"
	"time"

	"checkinapp/pkg/logger"
	"checkinapp/pkg/model"
)

func newTestValidator() *SessionValidator {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Output: io.Discard, Service: "test"})
	return NewSessionValidator(log)
}

func validSession() *model.Session {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &model.Session{
		Name:      "Morning Standup",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.SessionScheduled,
		Capacity:  50,
	}
}

func TestValidate_ValidSession(t *testing.T) {
	v := newTestValidator()
	if err := v.Validate(validSession()); err != nil {
		t.Errorf("expected valid session, got %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(s *model.Session)
	}{
		{
			name:   "missing name",
			mutate: func(s *model.Session) { s.Name = "" },
		},
		{
			name:   "name too short",
			mutate: func(s *model.Session) { s.Name = "x" },
		},
		{
			name:   "unknown status",
			mutate: func(s *model.Session) { s.Status = "paused" },
		},
		{
			name:   "end before start",
			mutate: func(s *model.Session) { s.EndTime = s.StartTime.Add(-time.Hour) },
		},
		{
			name:   "end equals start",
			mutate: func(s *model.Session) { s.EndTime = s.StartTime },
		},
		{
			name:   "window longer than a day",
			mutate: func(s *model.Session) { s.EndTime = s.StartTime.Add(25 * time.Hour) },
		},
		{
			name:   "negative capacity",
			mutate: func(s *model.Session) { s.Capacity = -1 },
		},
		{
			name: "enforced capacity of zero",
			mutate: func(s *model.Session) {
				s.Capacity = 0
				s.CapacityEnforced = true
			},
		},
		{
			name: "negative late threshold override",
			mutate: func(s *model.Session) {
				n := -5
				s.LateThresholdMinutes = &n
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSession()
			tt.mutate(s)
			if err := v.Validate(s); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidate_UnlimitedCapacityUnenforced(t *testing.T) {
	v := newTestValidator()
	s := validSession()
	s.Capacity = 0
	s.CapacityEnforced = false
	if err := v.Validate(s); err != nil {
		t.Errorf("unlimited capacity without enforcement should validate, got %v", err)
	}
}
