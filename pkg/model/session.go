package model

import (
	"time"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionOpen      SessionStatus = "open"
	SessionEnded     SessionStatus = "ended"
	SessionClosed    SessionStatus = "closed"
	SessionCancelled SessionStatus = "cancelled"
)

// IsTerminal reports whether no automatic transition may leave the status.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionEnded, SessionClosed, SessionCancelled:
		return true
	}
	return false
}

type Session struct {
	ID                   string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name                 string        `json:"name" bson:"name" validate:"required,min=2,max=120"`
	StartTime            time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime              time.Time     `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status               SessionStatus `json:"status" bson:"status" validate:"required,oneof=scheduled open ended closed cancelled"`
	Capacity             int           `json:"capacity" bson:"capacity" validate:"min=0,max=10000"`
	CapacityEnforced     bool          `json:"capacity_enforced" bson:"capacity_enforced"`
	RequiresRegistration bool          `json:"requires_registration" bson:"requires_registration"`
	CheckInsCount        int           `json:"check_ins_count" bson:"check_ins_count" validate:"min=0"`
	AutoEnd              bool          `json:"auto_end" bson:"auto_end"`

	// Per-session overrides; nil falls back to the process-wide defaults.
	AutoOpenMinutesBefore *int `json:"auto_open_minutes_before,omitempty" bson:"auto_open_minutes_before,omitempty" validate:"omitempty,min=0,max=1440"`
	AutoEndGraceMinutes   *int `json:"auto_end_grace_minutes,omitempty" bson:"auto_end_grace_minutes,omitempty" validate:"omitempty,min=0,max=1440"`
	LateThresholdMinutes  *int `json:"late_threshold_minutes,omitempty" bson:"late_threshold_minutes,omitempty" validate:"omitempty,min=0,max=1440"`

	CreatedBy string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type SessionUpdate struct {
	Name                  *string    `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	StartTime             *time.Time `json:"start_time,omitempty"`
	EndTime               *time.Time `json:"end_time,omitempty"`
	Capacity              *int       `json:"capacity,omitempty" validate:"omitempty,min=0,max=10000"`
	CapacityEnforced      *bool      `json:"capacity_enforced,omitempty"`
	RequiresRegistration  *bool      `json:"requires_registration,omitempty"`
	AutoEnd               *bool      `json:"auto_end,omitempty"`
	AutoOpenMinutesBefore *int       `json:"auto_open_minutes_before,omitempty" validate:"omitempty,min=0,max=1440"`
	AutoEndGraceMinutes   *int       `json:"auto_end_grace_minutes,omitempty" validate:"omitempty,min=0,max=1440"`
	LateThresholdMinutes  *int       `json:"late_threshold_minutes,omitempty" validate:"omitempty,min=0,max=1440"`
}
