package model

import "time"

type CheckInMethod string

const (
	MethodQRScan CheckInMethod = "qr_scan"
	MethodManual CheckInMethod = "manual"
)

// CheckIn is keyed uniquely by (participant_id, session_id): at most one
// successful check-in per participant per session. The uniqueness is enforced
// by a unique Mongo index and re-checked logically under the session lock.
type CheckIn struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ParticipantID string        `json:"participant_id" bson:"participant_id" validate:"required,min=1,max=64"`
	SessionID     string        `json:"session_id" bson:"session_id" validate:"required,mongodb"`
	CheckInTime   time.Time     `json:"check_in_time" bson:"check_in_time"`
	Method        CheckInMethod `json:"method" bson:"method" validate:"required,oneof=qr_scan manual"`
	IsLate        bool          `json:"is_late" bson:"is_late"`
	RecordedBy    string        `json:"recorded_by,omitempty" bson:"recorded_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
}
